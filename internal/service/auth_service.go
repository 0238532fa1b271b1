package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/errorutil"
)

// ErrInvalidCredentials is the single failure returned for unknown emails,
// inactive accounts and wrong passwords.
var ErrInvalidCredentials = apperrors.NewUnauthorized("Invalid credentials")

// AuthService coordinates login flows.
type AuthService struct {
	admins   repository.AdminRepository
	tokenMgr *auth.TokenManager
	dummy    *auth.DummyHasher
	logger   *zap.Logger
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Admin     *domain.Admin
	Token     string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, admins repository.AdminRepository, tokens *auth.TokenManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		admins:   admins,
		tokenMgr: tokens,
		dummy:    auth.NewDummyHasher(cfg.BcryptCost),
		logger:   logger,
	}
}

// Tokens exposes the token manager.
func (s *AuthService) Tokens() *auth.TokenManager {
	return s.tokenMgr
}

// Authenticate checks the credentials of an active admin. Every credential
// failure performs one bcrypt comparison and returns ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.Admin, error) {
	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.dummy.Compare(password)
			return nil, ErrInvalidCredentials
		}
		return nil, apperrors.NewInternalError(err)
	}
	if !admin.IsActive {
		s.dummy.Compare(password)
		return nil, ErrInvalidCredentials
	}
	if err := auth.ComparePassword(admin.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return admin, nil
}

// Login authenticates and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	admin, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	token, exp, err := s.tokenMgr.Issue(admin)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("admin logged in", zap.Int64("admin_id", admin.ID))
	return &LoginResult{Admin: admin, Token: token, ExpiresAt: exp}, nil
}

// Me resolves the current admin from a verified session.
func (s *AuthService) Me(ctx context.Context, adminID int64) (*domain.Admin, error) {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		return nil, mapRepoError(err, "admin")
	}
	return admin, nil
}
