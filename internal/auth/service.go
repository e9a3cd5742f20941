// Package auth implements account registration and session login.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nabil/meshbari/internal/model"
	"github.com/nabil/meshbari/internal/repository"
)

// DefaultSessionTTL is how long a login session stays valid unless
// configured otherwise.
const DefaultSessionTTL = 7 * 24 * time.Hour

// ServiceConfig tunes the auth service.
type ServiceConfig struct {
	// SessionTTL is the lifetime of a new session. Zero means
	// DefaultSessionTTL.
	SessionTTL time.Duration
}

// Service handles registration, login and session lifecycle.
type Service struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	sessionTTL time.Duration
}

// NewService creates an auth service.
func NewService(users repository.UserRepository, sessions repository.SessionRepository, config ServiceConfig) *Service {
	ttl := config.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{users: users, sessions: sessions, sessionTTL: ttl}
}

// RegisterInput is the registration request payload.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
	Role     string
}

// Register creates a new account. Only student and owner accounts can be
// self-registered; admin accounts are provisioned out of band.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)

	if email == "" || !strings.Contains(email, "@") {
		return nil, model.NewValidationError("a valid email address is required")
	}
	if name == "" {
		return nil, model.NewValidationError("name is required")
	}
	if len(input.Password) < 8 {
		return nil, model.NewValidationError("password must be at least 8 characters")
	}

	role := model.Role(input.Role)
	if role != model.RoleStudent && role != model.RoleOwner {
		return nil, model.NewInvalidRoleError(input.Role)
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, model.NewEmailTakenError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return user, nil
}

// Login verifies credentials and opens a session. Unknown email and wrong
// password produce the same error, so the response does not reveal whether
// an account exists.
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, nil, model.NewInvalidCredentialsError()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, model.NewInvalidCredentialsError()
	}
	if user.Banned {
		return nil, nil, model.NewUserBannedError()
	}

	sessionID, err := generateSessionID()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := time.Now()
	session := &model.Session{
		ID:        sessionID,
		UserID:    user.ID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))
	return user, session, nil
}

// Logout closes the given session. Missing sessions are not an error so
// logout is idempotent.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Me returns the account of the authenticated user.
func (s *Service) Me(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// generateSessionID returns a 256-bit random hex token. Session IDs are
// bearer credentials, so uuid is not enough here.
func generateSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
