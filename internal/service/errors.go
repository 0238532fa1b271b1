package service

import (
	"errors"

	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/errorutil"
)

// mapRepoError translates repository sentinels into domain errors.
func mapRepoError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource)
	case errors.Is(err, repository.ErrInvalidReference):
		return apperrors.NewValidationError("Invalid reference", resource)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict(resource+" already exists", "")
	default:
		return apperrors.NewInternalError(err)
	}
}
