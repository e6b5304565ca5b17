// Package authpw provides email/password authentication for the admin account.
package authpw

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"folio/api/internal/rbac"
	"folio/api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// ErrAdminExists is returned by Setup when the admin account was already created.
var ErrAdminExists = errors.New("admin account already exists")

// Service provides email/password authentication
type Service struct {
	store UserStore
}

// UserStore defines the storage interface for auth
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (store.User, error)
	GetUserByID(ctx context.Context, id string) (store.User, error)
	CreateUser(ctx context.Context, user store.User) error
	AdminExists(ctx context.Context) (bool, error)
	UpdateUserPassword(ctx context.Context, userID, passwordHash string) error
}

// NewService creates a new auth service
func NewService(store UserStore) *Service {
	return &Service{store: store}
}

// SetupRequest contains first-run admin setup parameters
type SetupRequest struct {
	Email       string
	Password    string
	DisplayName string
}

// Setup creates the single admin account. It refuses once an admin exists;
// this endpoint is only useful on a fresh deployment.
func (s *Service) Setup(ctx context.Context, req SetupRequest) (store.User, error) {
	if req.Email == "" || req.Password == "" {
		return store.User{}, errors.New("email and password are required")
	}

	if len(req.Password) < 8 {
		return store.User{}, errors.New("password must be at least 8 characters")
	}

	exists, err := s.store.AdminExists(ctx)
	if err != nil {
		return store.User{}, fmt.Errorf("check admin account: %w", err)
	}
	if exists {
		return store.User{}, ErrAdminExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return store.User{}, fmt.Errorf("hash password: %w", err)
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = "Admin"
	}

	user := store.User{
		ID:           generateID(),
		DisplayName:  displayName,
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hash),
		Role:         string(rbac.RoleAdmin),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		// The single-admin constraint rejects a concurrent setup that
		// lost the race after passing the check above.
		if exists, checkErr := s.store.AdminExists(ctx); checkErr == nil && exists {
			return store.User{}, ErrAdminExists
		}
		return store.User{}, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// AdminExists reports whether the admin account has been set up.
func (s *Service) AdminExists(ctx context.Context) (bool, error) {
	return s.store.AdminExists(ctx)
}

// SignInRequest contains sign-in parameters
type SignInRequest struct {
	Email    string
	Password string
}

// SignIn authenticates a user by email and password.
func (s *Service) SignIn(ctx context.Context, req SignInRequest) (store.User, error) {
	if req.Email == "" || req.Password == "" {
		return store.User{}, errors.New("email and password are required")
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		// Don't reveal whether the email exists
		return store.User{}, errors.New("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return store.User{}, errors.New("invalid email or password")
	}

	return user, nil
}

// ChangePassword replaces a user's password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return errors.New("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.UpdateUserPassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}

// generateID creates a simple ID
func generateID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
