package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type UserService struct {
	repo       repository.UserRepository
	logger     *logrus.Logger
	bcryptCost int
}

func NewUserService(repo repository.UserRepository, logger *logrus.Logger) *UserService {
	return &UserService{
		repo:       repo,
		logger:     logger,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Signup registers a new user. The first registered user becomes the
// administrator.
func (s *UserService) Signup(ctx context.Context, in domain.SignupInput) (*domain.User, error) {
	name := cases.Title(language.English).String(strings.TrimSpace(in.Name))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	switch {
	case name == "":
		return nil, invalidUser("name", "is required")
	case email == "" || !strings.Contains(email, "@"):
		return nil, invalidUser("email", "is not a valid address")
	case in.Password == "":
		return nil, invalidUser("password", "is required")
	case in.Password != in.ConfirmPassword:
		return nil, domain.ErrPasswordMismatch
	}

	_, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, fmt.Errorf("user %s: %w", email, domain.ErrDuplicateUser)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, invalidUser("password", "is too long")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"user_id": u.ID,
		"role":    u.Role,
	}).Info("user signed up")
	return u, nil
}

// Login checks the credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return u, nil
}

func invalidUser(field, reason string) error {
	return &domain.ValidationError{Kind: domain.ErrInvalidUser, Field: field, Reason: reason}
}
