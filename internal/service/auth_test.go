package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/bus-ticketing/internal/model"
	"github.com/iliyamo/bus-ticketing/internal/repository"
	"github.com/iliyamo/bus-ticketing/internal/utils"
)

const testSecret = "test-secret"

// userTable is a tiny in-memory account table behind mockUserStore.
type userTable struct {
	mu    sync.Mutex
	users []model.User
}

func (u *userTable) store() *mockUserStore {
	return &mockUserStore{
		create: func(_ context.Context, nu repository.NewUser, cost int) (uint64, error) {
			u.mu.Lock()
			defer u.mu.Unlock()
			for _, existing := range u.users {
				if existing.Email == nu.Email {
					return 0, repository.ErrEmailExists
				}
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), cost)
			if err != nil {
				return 0, err
			}
			id := uint64(len(u.users) + 1)
			u.users = append(u.users, model.User{ID: id, Email: nu.Email, PasswordHash: string(hash), FullName: nu.FullName, Phone: nu.Phone, Role: nu.Role})
			return id, nil
		},
		getByEmail: func(_ context.Context, email string) (model.User, error) {
			u.mu.Lock()
			defer u.mu.Unlock()
			for _, existing := range u.users {
				if existing.Email == email {
					return existing, nil
				}
			}
			return model.User{}, repository.ErrNotFound
		},
		getByID: func(_ context.Context, id uint64) (model.User, error) {
			u.mu.Lock()
			defer u.mu.Unlock()
			for _, existing := range u.users {
				if existing.ID == id {
					return existing, nil
				}
			}
			return model.User{}, repository.ErrNotFound
		},
	}
}

func newAuth() (*AuthService, *userTable, *memTokens) {
	users := &userTable{}
	tokens := newMemTokens()
	cfg := AuthConfig{JWTSecret: testSecret, AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: bcrypt.MinCost}
	return NewAuthService(cfg, users.store(), tokens), users, tokens
}

func TestRegisterCreatesPassenger(t *testing.T) {
	svc, users, tokens := newAuth()

	s, err := svc.Register(context.Background(), RegisterRequest{
		Email: "  Ravi@Example.com ", Password: "Test@123", FullName: "Ravi Kumar", Phone: "9876543210",
	})
	require.NoError(t, err)
	assert.Equal(t, "ravi@example.com", s.User.Email)
	assert.Equal(t, model.RolePassenger, s.User.Role)
	require.NotNil(t, s.User.Phone)
	assert.Equal(t, "9876543210", *s.User.Phone)
	assert.NotEqual(t, "Test@123", users.users[0].PasswordHash)

	id, err := utils.ParseAccessToken(testSecret, s.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, id.UserID)
	assert.Equal(t, "passenger", id.Role)
	assert.Equal(t, 1, tokens.active())

	_, err = svc.Register(context.Background(), RegisterRequest{Email: "ravi@example.com", Password: "Other@123", FullName: "Someone"})
	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, KindDuplicate, se.Kind)
	assert.Equal(t, "User already exists", se.Message)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newAuth()
	for _, req := range []RegisterRequest{
		{Email: "not-an-email", Password: "Test@123", FullName: "A"},
		{Email: "a@example.com", Password: "123", FullName: "A"},
		{Email: "a@example.com", Password: "Test@123", FullName: " "},
	} {
		_, err := svc.Register(context.Background(), req)
		assert.Equal(t, KindValidation, KindOf(err), req.Email)
	}
}

func TestLogin(t *testing.T) {
	svc, _, _ := newAuth()
	_, err := svc.Register(context.Background(), RegisterRequest{Email: "ravi@example.com", Password: "Test@123", FullName: "Ravi"})
	require.NoError(t, err)

	s, err := svc.Login(context.Background(), "RAVI@example.com", "Test@123")
	require.NoError(t, err)
	assert.NotEmpty(t, s.RefreshToken)

	for _, c := range []struct{ email, password string }{
		{"ravi@example.com", "wrong"},
		{"nobody@example.com", "Test@123"},
	} {
		_, err := svc.Login(context.Background(), c.email, c.password)
		var se *Error
		require.True(t, errors.As(err, &se))
		assert.Equal(t, KindUnauthorized, se.Kind)
		assert.Equal(t, "Invalid credentials", se.Message)
	}

	_, err = svc.Login(context.Background(), "", "")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestRefreshRotates(t *testing.T) {
	svc, _, tokens := newAuth()
	s, err := svc.Register(context.Background(), RegisterRequest{Email: "ravi@example.com", Password: "Test@123", FullName: "Ravi"})
	require.NoError(t, err)

	next, err := svc.Refresh(context.Background(), s.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, s.RefreshToken, next.RefreshToken)
	assert.Equal(t, 1, tokens.active())

	_, err = svc.Refresh(context.Background(), s.RefreshToken)
	assert.Equal(t, KindUnauthorized, KindOf(err), "a rotated token is single use")
}

func TestLogout(t *testing.T) {
	svc, _, tokens := newAuth()
	s, err := svc.Register(context.Background(), RegisterRequest{Email: "ravi@example.com", Password: "Test@123", FullName: "Ravi"})
	require.NoError(t, err)
	_, err = svc.Login(context.Background(), "ravi@example.com", "Test@123")
	require.NoError(t, err)
	require.Equal(t, 2, tokens.active())

	require.NoError(t, svc.Logout(context.Background(), nil, s.RefreshToken))
	assert.Equal(t, 1, tokens.active())
	assert.Equal(t, KindUnauthorized, KindOf(svc.Logout(context.Background(), nil, s.RefreshToken)))

	actor := Actor{UserID: s.User.ID, Role: s.User.Role}
	require.NoError(t, svc.Logout(context.Background(), &actor, ""))
	assert.Equal(t, 0, tokens.active())

	assert.Equal(t, KindValidation, KindOf(svc.Logout(context.Background(), nil, "")))
}

func TestMe(t *testing.T) {
	svc, _, _ := newAuth()
	s, err := svc.Register(context.Background(), RegisterRequest{Email: "ravi@example.com", Password: "Test@123", FullName: "Ravi"})
	require.NoError(t, err)

	u, err := svc.Me(context.Background(), Actor{UserID: s.User.ID, Role: model.RolePassenger})
	require.NoError(t, err)
	assert.Equal(t, "Ravi", u.FullName)

	_, err = svc.Me(context.Background(), Actor{UserID: 404, Role: model.RolePassenger})
	assert.Equal(t, KindUnauthorized, KindOf(err))
}
