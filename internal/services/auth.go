package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"libroteca/internal/auth"
	"libroteca/internal/entities"
	"libroteca/internal/store"
	"libroteca/internal/validate"
)

// RegisterInput is the signup payload. New accounts always get the
// "user" role; admins are provisioned through the user management API.
type RegisterInput struct {
	Username string `validate:"required,min=3,max=50"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// LoginResult carries the issued token plus a trimmed user view.
type LoginResult struct {
	Token string    `json:"token"`
	User  LoginUser `json:"user"`
}

type LoginUser struct {
	ID       int64             `json:"id"`
	Username string            `json:"username"`
	Role     entities.UserRole `json:"role"`
}

// AuthService owns registration, login and logout. Passwords are
// hashed here, exactly once, before any store sees them.
type AuthService struct {
	store       store.AuthStore
	secret      []byte
	tokenExpiry time.Duration
	bcryptCost  int
}

// NewAuthService creates the service.
func NewAuthService(authStore store.AuthStore, secret []byte, tokenExpiry time.Duration, bcryptCost int) *AuthService {
	return &AuthService{
		store:       authStore,
		secret:      secret,
		tokenExpiry: tokenExpiry,
		bcryptCost:  bcryptCost,
	}
}

// Register creates a user account and returns its id.
func (s *AuthService) Register(input RegisterInput) (int64, error) {
	if fields := validate.Struct(input); fields != nil {
		return 0, &ValidationError{Fields: fields}
	}

	_, err := s.store.FindByEmail(input.Email)
	if err == nil {
		return 0, &ConflictError{Message: "email is already registered"}
	}
	if !errors.Is(err, store.ErrNotFound) {
		return 0, storageErr(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := s.store.CreateUser(input.Username, input.Email, hash, entities.UserRoleUser)
	if err != nil {
		return 0, storageErr(err)
	}
	return id, nil
}

// Login verifies credentials and issues a signed token. Unknown email
// and wrong password both come back as unauthorized, so callers cannot
// probe which addresses exist.
func (s *AuthService) Login(email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, &ValidationError{Fields: []validate.FieldError{
			{Field: "email", Message: "email and password are required"},
		}}
	}

	user, err := s.store.FindByEmail(email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &UnauthorizedError{Message: "invalid credentials"}
	}
	if err != nil {
		return nil, storageErr(err)
	}

	if err := auth.CheckPassword(password, user.PasswordHash); err != nil {
		return nil, &UnauthorizedError{Message: "invalid credentials"}
	}

	token, err := auth.SignToken(s.secret, user.ID, user.Role, s.tokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &LoginResult{
		Token: token,
		User:  LoginUser{ID: user.ID, Username: user.Username, Role: user.Role},
	}, nil
}

// Logout blacklists the token after verifying it actually is one of
// ours. Re-blacklisting is a no-op.
func (s *AuthService) Logout(token string) error {
	if token == "" {
		return &ValidationError{Fields: []validate.FieldError{
			{Field: "token", Message: "token is required"},
		}}
	}
	if _, err := auth.ParseToken(s.secret, token); err != nil {
		return &UnauthorizedError{Message: "invalid token"}
	}
	if err := s.store.BlacklistToken(token); err != nil {
		return storageErr(err)
	}
	return nil
}

// PurgeBlacklist sweeps expired blacklist entries; driven by the
// scheduler and once at process start.
func (s *AuthService) PurgeBlacklist() (int64, error) {
	removed, err := s.store.PurgeExpiredBlacklistEntries()
	if err != nil {
		return 0, storageErr(err)
	}
	if removed > 0 {
		log.Printf("Blacklist purge: removed %d expired tokens", removed)
	}
	return removed, nil
}
