package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"productivity/internal/auth"
	"productivity/internal/core"
	"productivity/internal/log"
)

// RegisterInput is the body of POST /api/auth/register.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileInput changes the caller's name or email; nil fields are kept.
type ProfileInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type PasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Session is returned by register and login.
type Session struct {
	User core.User `json:"user"`
	auth.TokenPair
}

const invalidCredentials = "Invalid email or password"

// AccountService manages users and their tokens.
type AccountService struct {
	users  UserStore
	hasher auth.PasswordHasher
	tokens *auth.TokenIssuer
	opts   Options
}

func NewAccountService(users UserStore, hasher auth.PasswordHasher, tokens *auth.TokenIssuer, opts Options) *AccountService {
	return &AccountService{users: users, hasher: hasher, tokens: tokens, opts: opts.withDefaults(log.ComponentAuth)}
}

// Register creates a regular user and signs them in.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (Session, error) {
	u, err := s.newUser(in.Name, in.Email, in.Password, core.RoleUser)
	if err != nil {
		return Session{}, err
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return Session{}, fmt.Errorf("register user: %w", err)
	}
	s.opts.Logger.InfoContext(ctx, "User registered", log.FieldUserID, u.ID)
	return s.startSession(ctx, u)
}

// Login checks credentials. Unknown emails and wrong passwords are indistinguishable.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (Session, error) {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return Session{}, core.NewValidationError("email", "email and password are required")
	}
	u, err := s.users.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, core.ErrNotFound) {
		return Session{}, core.NewAuthenticationError(invalidCredentials)
	}
	if err != nil {
		return Session{}, fmt.Errorf("login: %w", err)
	}
	if !s.hasher.Matches(u.PasswordHash, in.Password) {
		s.opts.Logger.WarnContext(ctx, "Failed login", log.FieldUserID, u.ID)
		return Session{}, core.NewAuthenticationError(invalidCredentials)
	}
	return s.startSession(ctx, u)
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// single use: the stored hash is rotated.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	userID, hash, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return auth.TokenPair{}, err
	}

	var pair auth.TokenPair
	_, err = s.users.UpdateUser(ctx, userID, func(u *core.User) error {
		if u.RefreshTokenHash == "" || u.RefreshTokenHash != hash {
			return core.NewAuthenticationError("Invalid refresh token")
		}
		var next string
		var err error
		pair, next, err = s.tokens.Issue(*u)
		if err != nil {
			return err
		}
		u.RefreshTokenHash = next
		u.UpdatedAt = s.opts.now()
		return nil
	})
	if errors.Is(err, core.ErrNotFound) {
		return auth.TokenPair{}, core.NewAuthenticationError("Invalid refresh token")
	}
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("refresh token: %w", err)
	}
	return pair, nil
}

// Logout revokes the caller's refresh token.
func (s *AccountService) Logout(ctx context.Context, id core.Identity) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	_, err := s.users.UpdateUser(ctx, id.UserID, func(u *core.User) error {
		u.RefreshTokenHash = ""
		u.UpdatedAt = s.opts.now()
		return nil
	})
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *AccountService) Me(ctx context.Context, id core.Identity) (core.User, error) {
	if err := requireIdentity(id); err != nil {
		return core.User{}, err
	}
	u, err := s.users.GetUserByID(ctx, id.UserID)
	if err != nil {
		return core.User{}, fmt.Errorf("get profile: %w", err)
	}
	return u, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, id core.Identity, in ProfileInput) (core.User, error) {
	if err := requireIdentity(id); err != nil {
		return core.User{}, err
	}
	u, err := s.users.UpdateUser(ctx, id.UserID, func(u *core.User) error {
		if in.Name != nil {
			u.Name = strings.TrimSpace(*in.Name)
		}
		if in.Email != nil {
			u.Email = core.NormalizeEmail(*in.Email)
		}
		u.UpdatedAt = s.opts.now()
		return u.Validate()
	})
	if err != nil {
		return core.User{}, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

// ChangePassword replaces the password after verifying the current one and
// revokes outstanding refresh tokens.
func (s *AccountService) ChangePassword(ctx context.Context, id core.Identity, in PasswordInput) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	if err := validatePassword("newPassword", in.NewPassword); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	_, err = s.users.UpdateUser(ctx, id.UserID, func(u *core.User) error {
		if !s.hasher.Matches(u.PasswordHash, in.CurrentPassword) {
			return core.NewValidationError("currentPassword", "current password is incorrect")
		}
		u.PasswordHash = hash
		u.RefreshTokenHash = ""
		u.UpdatedAt = s.opts.now()
		return nil
	})
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

// EnsureAdmin creates an admin account, or promotes the existing account
// with that email. created reports which happened.
func (s *AccountService) EnsureAdmin(ctx context.Context, name, email, password string) (u core.User, created bool, err error) {
	existing, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		u, err = s.users.UpdateUser(ctx, existing.ID, func(u *core.User) error {
			u.Role = core.RoleAdmin
			u.UpdatedAt = s.opts.now()
			return nil
		})
		if err != nil {
			return core.User{}, false, fmt.Errorf("promote admin: %w", err)
		}
		return u, false, nil
	case !errors.Is(err, core.ErrNotFound):
		return core.User{}, false, fmt.Errorf("find admin: %w", err)
	}

	u, err = s.newUser(name, email, password, core.RoleAdmin)
	if err != nil {
		return core.User{}, false, err
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return core.User{}, false, fmt.Errorf("create admin: %w", err)
	}
	return u, true, nil
}

func (s *AccountService) newUser(name, email, password string, role core.Role) (core.User, error) {
	now := s.opts.now()
	u := core.User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Email:     core.NormalizeEmail(email),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	if err := validatePassword("password", password); err != nil {
		return core.User{}, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	return u, nil
}

// startSession issues tokens for u and stores the refresh token hash.
func (s *AccountService) startSession(ctx context.Context, u core.User) (Session, error) {
	pair, hash, err := s.tokens.Issue(u)
	if err != nil {
		return Session{}, fmt.Errorf("issue tokens: %w", err)
	}
	u, err = s.users.UpdateUser(ctx, u.ID, func(u *core.User) error {
		u.RefreshTokenHash = hash
		return nil
	})
	if err != nil {
		return Session{}, fmt.Errorf("store refresh token: %w", err)
	}
	return Session{User: u, TokenPair: pair}, nil
}

func validatePassword(field, password string) error {
	if len(password) < core.MinPasswordLength {
		return core.NewValidationError(field, "password must be at least %d characters", core.MinPasswordLength)
	}
	return nil
}
