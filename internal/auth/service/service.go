// Package service implements registration and login.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"healthstack/internal/auth/models"
	"healthstack/internal/platform/metrics"
	dErrors "healthstack/pkg/domain-errors"
	audit "healthstack/pkg/platform/audit"
	"healthstack/pkg/platform/sentinel"
	"healthstack/pkg/requestcontext"
)

// Store is the persistence boundary for user accounts.
type Store interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByEmailAndRole(ctx context.Context, email, role string) (*models.User, error)
}

// AuditEmitter records auth events.
type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns account lifecycle and credential checks.
type Service struct {
	store   Store
	tokens  *TokenManager
	metrics *metrics.Metrics
	auditor AuditEmitter
}

// New constructs the auth service.
func New(store Store, tokens *TokenManager, m *metrics.Metrics, auditor AuditEmitter) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("user store is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token manager is required")
	}
	return &Service{store: store, tokens: tokens, metrics: m, auditor: auditor}, nil
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Role = strings.TrimSpace(req.Role)
	if req.Name == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		return dErrors.New(dErrors.CodeValidation, "all fields are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to register user")
	}

	s.metrics.IncrementUsersRegistered()
	s.audit(ctx, audit.EventUserRegistered, req.Email, "role "+req.Role)
	return nil
}

// Login verifies credentials and issues a bearer token. A missing account is
// a not-found outcome; a bad password is unauthorized — the invoking
// interface presents them differently.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email and password are required")
	}

	var user *models.User
	var err error
	if req.Role != "" {
		user, err = s.store.FindByEmailAndRole(ctx, req.Email, req.Role)
	} else {
		user, err = s.store.FindByEmail(ctx, req.Email)
	}
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.audit(ctx, audit.EventLoginFailed, req.Email, "invalid credentials")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := s.tokens.Issue(user.ID.String(), user.Email, user.Role, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.audit(ctx, audit.EventLoginSucceeded, user.Email, "")
	return &models.LoginResponse{
		Message: "Login successful",
		Token:   token,
		Role:    user.Role,
		Name:    user.Name,
		Email:   user.Email,
	}, nil
}

func (s *Service) audit(ctx context.Context, action audit.AuditEvent, identity, detail string) {
	if s.auditor == nil {
		return
	}
	_ = s.auditor.Emit(ctx, audit.Event{
		Identity:  identity,
		Action:    string(action),
		Detail:    detail,
		RequestID: requestcontext.RequestID(ctx),
	})
}
