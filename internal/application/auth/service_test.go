package auth

import (
	"context"
	"testing"

	usersvc "realty-backend/internal/application/user"
	"realty-backend/internal/infrastructure/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFinder(t *testing.T) *GormUserFinder {
	db, err := database.Open("sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	users := &usersvc.Service{DB: db}
	_, err = users.Register(context.Background(), usersvc.RegisterInput{Email: "owner@example.com", Password: "password123"})
	require.NoError(t, err)
	return &GormUserFinder{DB: db}
}

func TestAuthenticate_Success(t *testing.T) {
	f := setupFinder(t)
	u, err := f.Authenticate(context.Background(), "Owner@Example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", u.Email)
}

func TestAuthenticate_FailuresAreIndistinguishable(t *testing.T) {
	f := setupFinder(t)
	ctx := context.Background()

	_, wrongPassword := f.Authenticate(ctx, "owner@example.com", "wrong-password1")
	_, unknownEmail := f.Authenticate(ctx, "nobody@example.com", "password123")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestAuthenticate_MissingFields(t *testing.T) {
	f := setupFinder(t)
	_, err := f.Authenticate(context.Background(), "", "password123")
	assert.ErrorIs(t, err, ErrEmailPasswordRequired)
}

func TestVerifyUser_Nil(t *testing.T) {
	u, err := VerifyUser(nil)
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)
}

func TestVerifyUser_NoUserID(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{"email": "a@b.com"})
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)
}

func TestVerifyUser_Valid(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{
		"user_id": "550e8400-e29b-41d4-a716-446655440000",
		"email":   "test@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", u.UserID)
	assert.Equal(t, "test@example.com", u.Email)
}
