package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avstrong/discovertours/internal/apperr"
	"github.com/avstrong/discovertours/internal/logger"
)

const minPasswordLen = 8

// ErrInvalidCredentials is returned for any login failure so callers cannot
// tell an unknown username from a wrong password.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized)

type idGenerator interface {
	GetID(ctx context.Context) (string, error)
}

type store interface {
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	InsertUser(ctx context.Context, u *User) error
	UpdateUser(ctx context.Context, u *User) error
}

type Manager struct {
	l           *logger.Logger
	storage     store
	tokens      *TokenIssuer
	idGenerator idGenerator
	now         func() time.Time
}

func New(l *logger.Logger, storage store, tokens *TokenIssuer, idGenerator idGenerator) *Manager {
	return &Manager{
		l:           l,
		storage:     storage,
		tokens:      tokens,
		idGenerator: idGenerator,
		now:         time.Now,
	}
}

func (m *Manager) Login(ctx context.Context, username, password string) (*User, string, error) {
	u, err := m.storage.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}

	if err != nil {
		return nil, "", fmt.Errorf("get user %s: %w", username, err)
	}

	if !CheckPasswordHash(password, u.PasswordHash) {
		m.l.LogWarnf("Failed login attempt for user %s", u.Username)

		return nil, "", ErrInvalidCredentials
	}

	token, err := m.tokens.Issue(u)
	if err != nil {
		return nil, "", fmt.Errorf("issue token for user %s: %w", u.ID, err)
	}

	return u, token, nil
}

// Authenticate verifies a bearer token and checks the user still exists.
func (m *Manager) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := m.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	if claims.Role != RoleAdmin {
		return nil, fmt.Errorf("role %q: %w", claims.Role, ErrInvalidToken)
	}

	if _, err := m.storage.GetUser(ctx, claims.UserID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("user %s is gone: %w", claims.UserID, ErrInvalidToken)
		}

		return nil, fmt.Errorf("get user %s: %w", claims.UserID, err)
	}

	return claims, nil
}

func (in *UpdateProfileInput) validate() error {
	inputErr := apperr.NewInputError()

	if strings.TrimSpace(in.Username) == "" {
		inputErr.Add("username", "provide username")
	}

	if in.CurrentPassword == "" {
		inputErr.Add("currentPassword", "provide current password")
	}

	if in.NewPassword != "" && len(in.NewPassword) < minPasswordLen {
		inputErr.Add("newPassword", fmt.Sprintf("new password must be at least %d characters", minPasswordLen))
	}

	return inputErr.OrNil()
}

// UpdateProfile changes the username and optionally the password of the
// user named by subject. The current password is always required.
func (m *Manager) UpdateProfile(ctx context.Context, subject string, input *UpdateProfileInput) (*User, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	if input.ID != "" && input.ID != subject {
		return nil, fmt.Errorf("update of user %s by %s: %w", input.ID, subject, apperr.ErrUnauthorized)
	}

	u, err := m.storage.GetUser(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", subject, err)
	}

	if !CheckPasswordHash(input.CurrentPassword, u.PasswordHash) {
		inputErr := apperr.NewInputError()
		inputErr.Add("currentPassword", "current password is incorrect")

		return nil, inputErr
	}

	username := strings.TrimSpace(input.Username)
	if username != u.Username {
		other, err := m.storage.GetUserByUsername(ctx, username)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("get user %s: %w", username, err)
		}

		if other != nil && other.ID != u.ID {
			return nil, apperr.Conflictf("username %q is taken", username)
		}

		u.Username = username
	}

	if input.NewPassword != "" {
		if u.PasswordHash, err = HashPassword(input.NewPassword); err != nil {
			return nil, err
		}
	}

	u.UpdatedAt = m.now().UTC()

	if err := m.storage.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("update user %s: %w", u.ID, err)
	}

	m.l.LogInfo("Profile of user %s has been updated", u.ID)

	return u, nil
}

// EnsureAdmin creates the admin account unless a user with that name exists.
func (m *Manager) EnsureAdmin(ctx context.Context, username, password string) (*User, error) {
	existing, err := m.storage.GetUserByUsername(ctx, username)
	if err == nil {
		return existing, nil
	}

	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("get user %s: %w", username, err)
	}

	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("admin password must be at least %d characters: %w", minPasswordLen, errWeakPassword)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	id, err := m.idGenerator.GetID(ctx)
	if err != nil {
		return nil, fmt.Errorf("get next user id: %w", err)
	}

	now := m.now().UTC()
	u := &User{
		ID:           id,
		Username:     username,
		PasswordHash: hash,
		Role:         RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := m.storage.InsertUser(ctx, u); err != nil {
		return nil, fmt.Errorf("insert user %s: %w", username, err)
	}

	return u, nil
}

var errWeakPassword = errors.New("weak password")

func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}
