package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libroteca/internal/auth"
	"libroteca/internal/entities"
	"libroteca/internal/store/filestore"
)

func setupUserService(t *testing.T) (*UserService, *filestore.UserStore) {
	t.Helper()
	userStore := filestore.NewUserStore(filepath.Join(t.TempDir(), "users.json"))
	return NewUserService(userStore, testBcryptCost), userStore
}

func TestUserServiceCreateHashesPassword(t *testing.T) {
	svc, store := setupUserService(t)

	user, err := svc.Create(CreateUserInput{
		Username: "admin",
		Email:    "admin@example.com",
		Password: "sup3rsecret",
		Role:     "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, entities.UserRoleAdmin, user.Role)

	stored, err := store.GetByEmail("admin@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "sup3rsecret", stored.PasswordHash)
	assert.NoError(t, auth.CheckPassword("sup3rsecret", stored.PasswordHash))
}

func TestUserServiceCreateDefaultsRole(t *testing.T) {
	svc, _ := setupUserService(t)

	user, err := svc.Create(CreateUserInput{
		Username: "plain",
		Email:    "plain@example.com",
		Password: "password",
	})
	require.NoError(t, err)
	assert.Equal(t, entities.UserRoleUser, user.Role)
}

func TestUserServiceCreateDuplicateEmail(t *testing.T) {
	svc, _ := setupUserService(t)

	input := CreateUserInput{Username: "maria", Email: "maria@example.com", Password: "password"}
	_, err := svc.Create(input)
	require.NoError(t, err)

	_, err = svc.Create(input)
	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestUserServiceUpdateRejectsTakenEmail(t *testing.T) {
	svc, _ := setupUserService(t)

	first, err := svc.Create(CreateUserInput{Username: "first", Email: "first@example.com", Password: "password"})
	require.NoError(t, err)
	second, err := svc.Create(CreateUserInput{Username: "second", Email: "second@example.com", Password: "password"})
	require.NoError(t, err)

	_, err = svc.Update(second.ID, UpdateUserInput{
		Username: "second",
		Email:    "first@example.com",
		Role:     "user",
	})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)

	// Keeping your own email is not a conflict.
	updated, err := svc.Update(first.ID, UpdateUserInput{
		Username: "renamed",
		Email:    "first@example.com",
		Role:     "user",
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Username)
}

func TestUserServiceDeleteAndCount(t *testing.T) {
	svc, _ := setupUserService(t)

	user, err := svc.Create(CreateUserInput{Username: "gone", Email: "gone@example.com", Password: "password"})
	require.NoError(t, err)

	count, err := svc.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, svc.Delete(user.ID))

	var notFound *NotFoundError
	assert.ErrorAs(t, svc.Delete(user.ID), &notFound)

	count, err = svc.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUserServiceGetByIDMissing(t *testing.T) {
	svc, _ := setupUserService(t)

	_, err := svc.GetByID(42)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "user", notFound.Resource)
}
