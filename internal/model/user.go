package model

import "time"

// Role is the closed set of account roles.  Every capability check in the
// application is expressed in terms of these three values.
type Role string

const (
    RolePassenger Role = "passenger"
    RoleConductor Role = "conductor"
    RoleAdmin     Role = "admin"
)

// ParseRole converts a claim or column value into a Role.  The second
// return value is false for anything outside the closed set.
func ParseRole(s string) (Role, bool) {
    switch r := Role(s); r {
    case RolePassenger, RoleConductor, RoleAdmin:
        return r, true
    }
    return "", false
}

// User represents an account as stored in the `users` table.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password (never serialized).
//  FullName     – display name.
//  Phone        – optional contact number.
//  Role         – passenger, conductor or admin.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    `json:"id"`        // users.id
    Email        string    `json:"email"`     // users.email
    PasswordHash string    `json:"-"`         // users.password_hash
    FullName     string    `json:"fullName"`  // users.full_name
    Phone        *string   `json:"phone"`     // users.phone (nullable)
    Role         Role      `json:"role"`      // users.role
    CreatedAt    time.Time `json:"createdAt"` // users.created_at
    UpdatedAt    time.Time `json:"updatedAt"` // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the raw token is stored.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
