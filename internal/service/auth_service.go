package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"
	"todo_webapp/internal/metrics"
)

// UserStore is the credential store
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	GenerateJWT(userID int64) (string, error)
	ParseJWT(token string) (int64, error)
}

// AuthResult is what a successful register or login hands back: the user and exactly one token
type AuthResult struct {
	User  *domain.User
	Token string
}

type AuthService struct {
	users  UserStore
	hasher PasswordHasher
	tokens TokenIssuer
	audit  *AuditService

	// compared against on unknown emails so both login failures cost a hash
	dummyHash string
}

func NewAuthService(users UserStore, hasher PasswordHasher, tokens TokenIssuer, audit *AuditService) *AuthService {
	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		logger.Warn("failed to precompute dummy password hash", "error", err)
	}
	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		audit:     audit,
		dummyHash: dummy,
	}
}

// NormalizeEmail trims and lower-cases an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(name, email, password string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	case email == "":
		return fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	case password == "":
		return fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return fmt.Errorf("%w: email is malformed", domain.ErrInvalidInput)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("%w: password is too long", domain.ErrInvalidInput)
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	if err := validateRegistration(name, email, password); err != nil {
		metrics.AuthAttempts.WithLabelValues("register", "invalid").Inc()
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{Name: name, Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			metrics.AuthAttempts.WithLabelValues("register", "duplicate").Inc()
		}
		return nil, err
	}

	token, err := s.tokens.GenerateJWT(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	metrics.AuthAttempts.WithLabelValues("register", "ok").Inc()
	s.audit.LogRegister(ctx, user.ID)
	logger.WithContext(ctx).Info("user registered", "user_id", user.ID)

	return &AuthResult{User: user, Token: token}, nil
}

// Login returns ErrInvalidCredentials for both unknown emails and wrong passwords
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if s.dummyHash != "" {
			_ = s.hasher.Compare(s.dummyHash, password)
		}
		metrics.AuthAttempts.WithLabelValues("login", "rejected").Inc()
		s.audit.LogLoginFailed(ctx, 0)
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "rejected").Inc()
		s.audit.LogLoginFailed(ctx, user.ID)
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateJWT(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	metrics.AuthAttempts.WithLabelValues("login", "ok").Inc()
	s.audit.LogLogin(ctx, user.ID)

	return &AuthResult{User: user, Token: token}, nil
}

// Authenticate verifies a bearer token and returns its user id
func (s *AuthService) Authenticate(token string) (int64, error) {
	if token == "" {
		return 0, domain.ErrUnauthorized
	}
	return s.tokens.ParseJWT(token)
}

func (s *AuthService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// Activity returns the user's newest audit entries, at most limit
func (s *AuthService) Activity(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	logs, err := s.audit.GetUserAuditLogs(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = make([]*domain.AuditLog, 0)
	}
	return logs, nil
}
