package service

import (
	"errors"

	"computing-marketplace/api/internal/apperr"
	"computing-marketplace/api/internal/repository"
)

// storeError maps repository sentinels onto the API error kinds.
func storeError(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(entity + " not found")
	case errors.Is(err, repository.ErrConflict):
		return apperr.Conflict(entity + " already exists")
	case errors.Is(err, repository.ErrInvalidReference):
		return apperr.Validation("Referenced record does not exist", nil)
	default:
		return apperr.Internal(err)
	}
}
