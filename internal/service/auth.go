package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/bus-ticketing/internal/model"
	"github.com/iliyamo/bus-ticketing/internal/repository"
	"github.com/iliyamo/bus-ticketing/internal/utils"
)

// AuthConfig carries the token and hashing settings of AuthService.
type AuthConfig struct {
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
}

// RegisterRequest is the input of Register. Role is not accepted: every
// self-registered account is a passenger.
type RegisterRequest struct {
	Email    string
	Password string
	FullName string
	Phone    string
}

// Session is an issued token pair together with the account it belongs to.
type Session struct {
	User           model.User
	AccessToken    string
	AccessExpires  time.Time
	RefreshToken   string
	RefreshExpires time.Time
}

// AuthService registers accounts and issues and rotates tokens.
type AuthService struct {
	Cfg    AuthConfig
	Users  UserStore
	Tokens TokenStore
}

func NewAuthService(cfg AuthConfig, users UserStore, tokens TokenStore) *AuthService {
	return &AuthService{Cfg: cfg, Users: users, Tokens: tokens}
}

// Register creates a passenger account and returns a fresh session.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := utils.ValidateCredentials(email, req.Password); err != nil {
		return Session{}, Validation(err.Error(), nil)
	}
	if strings.TrimSpace(req.FullName) == "" {
		return Session{}, Validation("Full name is required", nil)
	}
	var phone *string
	if p := strings.TrimSpace(req.Phone); p != "" {
		phone = &p
	}

	uid, err := s.Users.Create(ctx, repository.NewUser{
		Email:    email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    phone,
		Role:     model.RolePassenger,
	}, s.Cfg.BcryptCost)
	if errors.Is(err, repository.ErrEmailExists) {
		return Session{}, Duplicate("User already exists")
	}
	if err != nil {
		return Session{}, Internal(err)
	}
	u, err := s.Users.GetByID(ctx, uid)
	if err != nil {
		return Session{}, Internal(err)
	}
	return s.issue(ctx, u)
}

// Login verifies the credentials and returns a fresh session. Unknown
// emails and wrong passwords are indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Session{}, Validation("email/password required", nil)
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, Unauthorized("Invalid credentials")
	}
	if err != nil {
		return Session{}, Internal(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return Session{}, Unauthorized("Invalid credentials")
	}
	return s.issue(ctx, u)
}

// Refresh validates a refresh token, revokes it and issues a new pair.
func (s *AuthService) Refresh(ctx context.Context, raw string) (Session, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Session{}, Validation("refreshToken required", nil)
	}
	hash := utils.HashRefreshRaw(raw)
	userID, err := s.Tokens.ValidateRefresh(ctx, hash)
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, Unauthorized("invalid refresh token")
	}
	if err != nil {
		return Session{}, Internal(err)
	}
	if err := s.Tokens.RevokeByHash(ctx, hash); err != nil {
		return Session{}, Internal(err)
	}
	u, err := s.Users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, Unauthorized("invalid refresh token")
	}
	if err != nil {
		return Session{}, Internal(err)
	}
	return s.issue(ctx, u)
}

// Logout revokes a single refresh token when raw is set, otherwise every
// refresh token of the actor. A nil actor with no token is a validation
// failure.
func (s *AuthService) Logout(ctx context.Context, actor *Actor, raw string) error {
	raw = strings.TrimSpace(raw)
	switch {
	case raw != "":
		hash := utils.HashRefreshRaw(raw)
		if _, err := s.Tokens.ValidateRefresh(ctx, hash); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return Unauthorized("invalid refresh token")
			}
			return Internal(err)
		}
		if err := s.Tokens.RevokeByHash(ctx, hash); err != nil {
			return Internal(err)
		}
		return nil
	case actor != nil:
		if err := s.Tokens.RevokeAllForUser(ctx, actor.UserID); err != nil {
			return Internal(err)
		}
		return nil
	}
	return Validation("provide Authorization header or refreshToken", nil)
}

// Me returns the actor's account.
func (s *AuthService) Me(ctx context.Context, actor Actor) (model.User, error) {
	u, err := s.Users.GetByID(ctx, actor.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, Unauthorized("User not found")
	}
	if err != nil {
		return model.User{}, Internal(err)
	}
	return u, nil
}

func (s *AuthService) issue(ctx context.Context, u model.User) (Session, error) {
	access, err := utils.NewAccessToken(s.Cfg.JWTSecret, u.ID, string(u.Role), s.Cfg.AccessTTLMin)
	if err != nil {
		return Session{}, Internal(err)
	}
	refresh, err := utils.NewRefreshToken(s.Cfg.RefreshTTLDays)
	if err != nil {
		return Session{}, Internal(err)
	}
	if err := s.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return Session{}, Internal(err)
	}
	return Session{
		User:           u,
		AccessToken:    access.Token,
		AccessExpires:  access.Exp,
		RefreshToken:   refresh.Raw,
		RefreshExpires: refresh.Exp,
	}, nil
}
