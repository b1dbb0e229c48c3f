// Package service implements registration and login. Password hashing uses
// bcrypt; session identity is an HS256 JWT carrying the user id and role.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"bisaathi/internal/auth/models"
	id "bisaathi/pkg/domain"
	dErrors "bisaathi/pkg/domain-errors"
	"bisaathi/pkg/platform/audit"
	"bisaathi/pkg/platform/sentinel"
)

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, userID id.UserID) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// TokenIssuer mints access tokens for authenticated users.
type TokenIssuer interface {
	GenerateAccessToken(userID uuid.UUID, role string, expiresIn time.Duration) (string, error)
}

// AuditPublisher emits audit events for security-relevant operations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	users    UserStore
	tokens   TokenIssuer
	tokenTTL time.Duration
	auditor  AuditPublisher
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditor = publisher }
}

func New(users UserStore, tokens TokenIssuer, tokenTTL time.Duration, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, errors.New("user store is required")
	}
	if tokens == nil {
		return nil, errors.New("token issuer is required")
	}

	svc := &Service{
		users:    users,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Session is what login and registration hand back to the transport layer.
type Session struct {
	User  models.User
	Token string
}

// Register creates an account and signs the user in.
func (s *Service) Register(ctx context.Context, name, email, password string) (Session, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return Session{}, dErrors.New(dErrors.CodeValidation, "name and email are required")
	}
	if !strings.Contains(email, "@") {
		return Session{}, dErrors.New(dErrors.CodeValidation, "email is malformed")
	}
	if len(password) < 8 {
		return Session{}, dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	user := models.User{
		ID:           id.NewUserID(),
		Name:         name,
		Email:        strings.ToLower(email),
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return Session{}, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return Session{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.emitAudit(ctx, audit.Event{
		UserID: user.ID,
		Action: string(audit.EventUserRegistered),
	})

	return s.issue(user)
}

// Login verifies credentials and returns a fresh session. The same generic
// error covers unknown email and wrong password.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Session{}, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
		}
		return Session{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}

	s.emitAudit(ctx, audit.Event{
		UserID: user.ID,
		Action: string(audit.EventUserLoggedIn),
	})

	return s.issue(user)
}

// EnsureOfficer creates the bootstrap officer account when it does not exist
// yet. An account already registered under the email is left untouched, so
// repeated startups are safe.
func (s *Service) EnsureOfficer(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return dErrors.New(dErrors.CodeValidation, "officer email and password are required")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up officer account")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	officer := models.User{
		ID:           id.NewUserID(),
		Name:         "Compliance Officer",
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleOfficer,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, officer); err != nil {
		// A concurrent start may have created it first.
		if errors.Is(err, sentinel.ErrConflict) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create officer account")
	}

	s.emitAudit(ctx, audit.Event{
		UserID: officer.ID,
		Action: string(audit.EventUserRegistered),
	})
	return nil
}

// Profile returns the account for an authenticated user id.
func (s *Service) Profile(ctx context.Context, userID id.UserID) (models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.User{}, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return models.User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

func (s *Service) issue(user models.User) (Session, error) {
	token, err := s.tokens.GenerateAccessToken(uuid.UUID(user.ID), user.Role, s.tokenTTL)
	if err != nil {
		return Session{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	return Session{User: user, Token: token}, nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}
