package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"lostluggage/models"
	"lostluggage/repository"
	"lostluggage/utils"
)

// bcrypt only looks at the first 72 bytes
const maxPasswordBytes = 72

func checkPassword(password string) error {
	if password == "" {
		return invalid("password", errors.New("password is required"))
	}
	if len(password) > maxPasswordBytes {
		return invalid("password", fmt.Errorf("password must be at most %d bytes", maxPasswordBytes))
	}
	return nil
}

func (s *Service) createUser(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := utils.ValidateField("name", name, utils.MaxFieldLength); err != nil {
		return nil, invalid("name", err)
	}
	if err := utils.ValidateEmail(email); err != nil {
		return nil, invalid("email", fmt.Errorf("invalid email address"))
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.Users.Create(ctx, &models.User{Name: name, Email: email, PasswordHash: hash, Role: role})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	s.Logger.Info("user created", zap.Int64("user_id", u.ID), zap.String("role", string(role)))
	return u, nil
}

// Register creates a passenger account. Registration never grants admin.
func (s *Service) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	return s.createUser(ctx, name, email, password, models.RolePassenger)
}

// CreateAdmin seeds an administrator. Admin passwords must satisfy the strong
// password rule.
func (s *Service) CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	if err := utils.ValidatePassword(password); err != nil {
		return nil, invalid("password", err)
	}
	return s.createUser(ctx, name, email, password, models.RoleAdmin)
}

// EnsureAdmin creates the bootstrap admin unless the email is already taken.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	_, err := s.CreateAdmin(ctx, name, email, password)
	if errors.Is(err, ErrDuplicateEmail) {
		return false, nil
	}
	return err == nil, err
}

// Login checks credentials. Unknown email and wrong password produce the same
// error.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.BurnPasswordCheck(password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
