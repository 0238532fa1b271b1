package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/errorutil"
)

// AdminService manages admin accounts.
type AdminService struct {
	admins     repository.AdminRepository
	categories repository.CategoryRepository
	bcryptCost int
	logger     *zap.Logger
}

// AdminCreateInput describes a new account.
type AdminCreateInput struct {
	Email      string
	Password   string
	Name       string
	Role       domain.AdminRole
	CategoryID *int64
}

// AdminUpdateInput replaces an account's profile. An empty password keeps
// the current one.
type AdminUpdateInput struct {
	Email      string
	Password   string
	Name       string
	Role       domain.AdminRole
	CategoryID *int64
	IsActive   bool
}

// NewAdminService constructs the service.
func NewAdminService(admins repository.AdminRepository, categories repository.CategoryRepository, bcryptCost int, logger *zap.Logger) *AdminService {
	return &AdminService{admins: admins, categories: categories, bcryptCost: bcryptCost, logger: logger}
}

// List returns every admin, newest first.
func (s *AdminService) List(ctx context.Context) ([]domain.Admin, error) {
	admins, err := s.admins.List(ctx, repository.AdminFilter{})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return admins, nil
}

// ListActive returns active admins sorted by name, for assignment pickers.
func (s *AdminService) ListActive(ctx context.Context) ([]domain.Admin, error) {
	active := true
	admins, err := s.admins.List(ctx, repository.AdminFilter{Active: &active, OrderByName: true})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return admins, nil
}

// Create adds a new admin account.
func (s *AdminService) Create(ctx context.Context, input AdminCreateInput) (*domain.Admin, error) {
	email := strings.TrimSpace(input.Email)
	name := strings.TrimSpace(input.Name)
	if email == "" || name == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("Email, password, and name are required", "")
	}
	role := input.Role
	if role == "" {
		role = domain.AdminRoleAdmin
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("Invalid role", string(role))
	}
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	admin := &domain.Admin{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
		CategoryID:   input.CategoryID,
		IsActive:     true,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("Email already exists", "")
		}
		return nil, mapRepoError(err, "admin")
	}
	s.logger.Info("admin created", zap.Int64("admin_id", admin.ID), zap.String("role", string(admin.Role)))
	return s.reload(ctx, admin.ID)
}

// Update replaces the admin's profile.
func (s *AdminService) Update(ctx context.Context, id int64, input AdminUpdateInput) (*domain.Admin, error) {
	admin, err := s.admins.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "admin")
	}
	email := strings.TrimSpace(input.Email)
	name := strings.TrimSpace(input.Name)
	if email == "" || name == "" {
		return nil, apperrors.NewValidationError("Email and name are required", "")
	}
	if input.Role != "" && !input.Role.Valid() {
		return nil, apperrors.NewValidationError("Invalid role", string(input.Role))
	}
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	admin.Email = email
	admin.Name = name
	if input.Role != "" {
		admin.Role = input.Role
	}
	admin.CategoryID = input.CategoryID
	admin.IsActive = input.IsActive
	if input.Password != "" {
		hash, err := auth.HashPassword(input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		admin.PasswordHash = hash
	}

	if err := s.admins.Update(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("Email already exists", "")
		}
		return nil, mapRepoError(err, "admin")
	}
	return s.reload(ctx, admin.ID)
}

// Bootstrap creates a super admin when the admin table is empty. It reports
// whether an account was created; an existing admin makes it a no-op.
func (s *AdminService) Bootstrap(ctx context.Context, email, password, name string) (bool, error) {
	existing, err := s.admins.List(ctx, repository.AdminFilter{})
	if err != nil {
		return false, mapRepoError(err, "admin")
	}
	if len(existing) > 0 {
		return false, nil
	}
	admin, err := s.Create(ctx, AdminCreateInput{
		Email:    email,
		Password: password,
		Name:     name,
		Role:     domain.AdminRoleSuperAdmin,
	})
	if err != nil {
		return false, err
	}
	s.logger.Info("bootstrap super admin created", zap.Int64("admin_id", admin.ID), zap.String("email", admin.Email))
	return true, nil
}

// Delete removes an admin. Admins cannot delete themselves.
func (s *AdminService) Delete(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return apperrors.NewValidationError("Cannot delete your own account", "")
	}
	if err := s.admins.Delete(ctx, id); err != nil {
		return mapRepoError(err, "admin")
	}
	s.logger.Info("admin deleted", zap.Int64("admin_id", id), zap.Int64("actor_id", actorID))
	return nil
}

func (s *AdminService) checkCategory(ctx context.Context, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categories.GetByID(ctx, *categoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewValidationError("Invalid category", "")
		}
		return apperrors.NewInternalError(err)
	}
	return nil
}

func (s *AdminService) reload(ctx context.Context, id int64) (*domain.Admin, error) {
	admin, err := s.admins.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "admin")
	}
	return admin, nil
}
