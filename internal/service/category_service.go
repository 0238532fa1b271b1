package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/errorutil"
)

// CategoryService serves the category reference list.
type CategoryService struct {
	categories repository.CategoryRepository
	logger     *zap.Logger
}

// NewCategoryService constructs the service.
func NewCategoryService(categories repository.CategoryRepository, logger *zap.Logger) *CategoryService {
	return &CategoryService{categories: categories, logger: logger}
}

// List returns all categories, seeding the defaults when none exist.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if len(cats) > 0 {
		return cats, nil
	}
	if err := s.Seed(ctx); err != nil {
		return nil, err
	}
	cats, err = s.categories.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return cats, nil
}

// Seed inserts the default categories that are missing.
func (s *CategoryService) Seed(ctx context.Context) error {
	if err := s.categories.SeedDefaults(ctx, domain.DefaultCategories()); err != nil {
		return apperrors.NewInternalError(err)
	}
	s.logger.Info("default categories seeded")
	return nil
}
