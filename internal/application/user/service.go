package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"realty-backend/internal/domain"
	"realty-backend/internal/pkg/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 10

var (
	ErrEmailTaken      = errors.New("Email already exists.")
	ErrInvalidEmail    = errors.New("Invalid email format")
	ErrInvalidPassword = errors.New("Password must be between 8 and 72 characters")
)

// Service is the user store.
type Service struct {
	DB *gorm.DB
}

// RegisterInput is the register request body.
// Passwords are capped at 72 bytes, the most bcrypt hashes.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Validate lower-cases the email and checks both fields. Email problems are
// reported before password ones.
func (in *RegisterInput) Validate() error {
	in.Email = NormalizeEmail(in.Email)
	err := validation.Struct(in)
	var verr *validation.Error
	if !errors.As(err, &verr) {
		return err
	}
	if _, ok := verr.Fields["email"]; ok {
		return ErrInvalidEmail
	}
	return ErrInvalidPassword
}

// Register creates an account. One account per (lower-cased) email.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	email := in.Email

	var existing domain.User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{Email: email, PasswordHash: string(hash)}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		// Lost a race with a concurrent register for the same email.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// NormalizeEmail trims and lower-cases an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
