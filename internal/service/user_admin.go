package service

import (
	"context"
	"errors"
	"strings"

	"computing-marketplace/api/internal/apperr"
	"computing-marketplace/api/internal/ids"
	"computing-marketplace/api/internal/models"
	"computing-marketplace/api/internal/repository"
)

type AccountStore interface {
	UserStore
	SetActive(ctx context.Context, id string, active bool) error
}

// UserAdmin manages accounts out of band, for roles self-registration cannot grant.
type UserAdmin struct {
	users  AccountStore
	hasher PasswordHasher
}

func NewUserAdmin(users AccountStore, hasher PasswordHasher) *UserAdmin {
	return &UserAdmin{users: users, hasher: hasher}
}

type CreateUserInput struct {
	Email    string
	FullName string
	Password string
	Role     models.UserRole
}

func (a *UserAdmin) Create(ctx context.Context, input CreateUserInput) (models.User, error) {
	email := normalizeEmail(input.Email)
	fields := map[string]string{}
	if email == "" || !strings.Contains(email, "@") {
		fields["email"] = "must be a valid email address"
	}
	if strings.TrimSpace(input.FullName) == "" {
		fields["fullName"] = "is required"
	}
	if !input.Role.Valid() {
		fields["role"] = "must be one of ADMIN SALES CUSTOMER"
	}
	if len(fields) > 0 {
		return models.User{}, apperr.Validation("Validation failed", fields)
	}

	hash, err := a.hasher.Hash(input.Password)
	if err != nil {
		return models.User{}, apperr.Internal(err)
	}

	user, err := a.users.Create(ctx, models.User{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		Role:         input.Role,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return models.User{}, apperr.Conflict("Email already registered")
		}
		return models.User{}, apperr.Internal(err)
	}
	return user, nil
}

// SetActive flips the account flag. A deactivated user can no longer log in or
// refresh; outstanding access tokens run until they expire.
func (a *UserAdmin) SetActive(ctx context.Context, email string, active bool) (models.User, error) {
	user, err := a.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return models.User{}, storeError(err, "User")
	}
	if err := a.users.SetActive(ctx, user.ID, active); err != nil {
		return models.User{}, storeError(err, "User")
	}
	user.IsActive = active
	return user, nil
}
