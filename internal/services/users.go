package services

import (
	"errors"
	"fmt"

	"libroteca/internal/auth"
	"libroteca/internal/entities"
	"libroteca/internal/store"
	"libroteca/internal/validate"
)

// CreateUserInput is the admin-facing create payload. Unlike signup it
// allows choosing the role.
type CreateUserInput struct {
	Username string `validate:"required,min=3,max=50"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	Role     string `validate:"omitempty,oneof=user admin"`
}

// UpdateUserInput replaces the mutable profile fields. Passwords are
// changed through the auth flow, not here.
type UpdateUserInput struct {
	Username string `validate:"required,min=3,max=50"`
	Email    string `validate:"required,email"`
	Role     string `validate:"required,oneof=user admin"`
}

// UserService owns user management.
type UserService struct {
	users      store.UserStore
	bcryptCost int
}

// NewUserService creates the service.
func NewUserService(users store.UserStore, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost}
}

func (s *UserService) List() ([]entities.User, error) {
	users, err := s.users.List()
	if err != nil {
		return nil, storageErr(err)
	}
	if users == nil {
		users = []entities.User{}
	}
	return users, nil
}

func (s *UserService) GetByID(id int64) (*entities.User, error) {
	user, err := s.users.GetByID(id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Resource: "user"}
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return user, nil
}

// Create hashes the password and persists the account.
func (s *UserService) Create(input CreateUserInput) (*entities.User, error) {
	if fields := validate.Struct(input); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	if _, err := s.users.GetByEmail(input.Email); err == nil {
		return nil, &ConflictError{Message: "email is already registered"}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, storageErr(err)
	}

	role := entities.UserRole(input.Role)
	if role == "" {
		role = entities.UserRoleUser
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(input.Username, input.Email, hash, role)
	if err != nil {
		return nil, storageErr(err)
	}
	return user, nil
}

func (s *UserService) Update(id int64, input UpdateUserInput) (*entities.User, error) {
	if fields := validate.Struct(input); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	// The new email must not belong to a different account.
	if existing, err := s.users.GetByEmail(input.Email); err == nil && existing.ID != id {
		return nil, &ConflictError{Message: "email is already registered"}
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, storageErr(err)
	}

	user, err := s.users.Update(id, store.UserUpdate{
		Username: input.Username,
		Email:    input.Email,
		Role:     entities.UserRole(input.Role),
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, &NotFoundError{Resource: "user"}
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return user, nil
}

func (s *UserService) Delete(id int64) error {
	deleted, err := s.users.Delete(id)
	if err != nil {
		return storageErr(err)
	}
	if !deleted {
		return &NotFoundError{Resource: "user"}
	}
	return nil
}

func (s *UserService) Count() (int64, error) {
	count, err := s.users.Count()
	if err != nil {
		return 0, storageErr(err)
	}
	return count, nil
}
