package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"computing-marketplace/api/internal/apperr"
	"computing-marketplace/api/internal/ids"
	"computing-marketplace/api/internal/models"
	"computing-marketplace/api/internal/repository"
	"computing-marketplace/api/internal/security"
	"computing-marketplace/api/internal/session"
)

const msgInvalidCredentials = "Invalid email or password"

type UserStore interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password string, encoded string) (bool, error)
}

type AuthService struct {
	users    UserStore
	hasher   PasswordHasher
	tokens   *security.TokenIssuer
	sessions *session.Guard
	activity *ActivityRecorder
	log      zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	users UserStore,
	hasher PasswordHasher,
	tokens *security.TokenIssuer,
	sessions *session.Guard,
	activity *ActivityRecorder,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		sessions: sessions,
		activity: activity,
		log:      log,
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	FullName    string
	Phone       *string
	CompanyName *string
}

type AuthResult struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

type TokenResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	email := normalizeEmail(input.Email)

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return AuthResult{}, apperr.Conflict("Email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return AuthResult{}, apperr.Internal(err)
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return AuthResult{}, apperr.Internal(err)
	}

	user, err := s.users.Create(ctx, models.User{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     strings.TrimSpace(input.FullName),
		Phone:        input.Phone,
		CompanyName:  input.CompanyName,
		Role:         models.RoleCustomer,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return AuthResult{}, apperr.Conflict("Email already registered")
		}
		return AuthResult{}, apperr.Internal(err)
	}

	s.activity.Record(ctx, &user.ID, "user.registered", "user", user.ID, nil)
	return s.startSession(ctx, user)
}

type LoginInput struct {
	Email    string
	Password string
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.burnHash(input.Password)
			return AuthResult{}, apperr.Unauthorized(msgInvalidCredentials)
		}
		return AuthResult{}, apperr.Internal(err)
	}

	ok, err := s.hasher.Verify(input.Password, user.PasswordHash)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("stored password hash unreadable")
		return AuthResult{}, apperr.Unauthorized(msgInvalidCredentials)
	}
	if !ok {
		return AuthResult{}, apperr.Unauthorized(msgInvalidCredentials)
	}
	if !user.IsActive {
		return AuthResult{}, apperr.Forbidden("Account is deactivated")
	}

	return s.startSession(ctx, user)
}

// burnHash spends roughly the same time as a real verification so that an
// unknown email is not distinguishable by latency.
func (s *AuthService) burnHash(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("dummy-password")
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}

// startSession issues a pair after an account change that is already committed,
// so the session write is best-effort.
func (s *AuthService) startSession(ctx context.Context, user models.User) (AuthResult, error) {
	pair, err := s.mint(user)
	if err != nil {
		return AuthResult{}, err
	}
	s.sessions.Remember(ctx, user.ID, session.Record{Token: pair.RefreshToken, IssuedAt: pair.IssuedAt}, s.tokens.RefreshTTL())
	return AuthResult{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

func (s *AuthService) mint(user models.User) (security.TokenPair, error) {
	pair, err := s.tokens.IssuePair(security.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		return security.TokenPair{}, apperr.Internal(err)
	}
	return pair, nil
}

// rotate mints a pair and records its refresh token as the user's only valid
// one, applying the session policy to the write.
func (s *AuthService) rotate(ctx context.Context, user models.User) (security.TokenPair, error) {
	pair, err := s.mint(user)
	if err != nil {
		return security.TokenPair{}, err
	}

	record := session.Record{Token: pair.RefreshToken, IssuedAt: pair.IssuedAt}
	if err := s.sessions.Save(ctx, user.ID, record, s.tokens.RefreshTTL()); err != nil {
		return security.TokenPair{}, err
	}
	return pair, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenResult, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return TokenResult{}, apperr.BadRequest("Refresh token is required")
	}

	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return TokenResult{}, apperr.Unauthorized("Invalid or expired refresh token")
	}

	lookup, err := s.sessions.Load(ctx, claims.UserID)
	if err != nil {
		return TokenResult{}, err
	}
	if !lookup.Matches(refreshToken, claims.IssuedAtTime()) {
		return TokenResult{}, apperr.Unauthorized("Refresh token has been revoked")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenResult{}, apperr.Unauthorized("User not found or inactive")
		}
		return TokenResult{}, apperr.Internal(err)
	}
	if !user.IsActive {
		return TokenResult{}, apperr.Unauthorized("User not found or inactive")
	}

	pair, err := s.rotate(ctx, user)
	if err != nil {
		return TokenResult{}, err
	}
	return TokenResult{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Logout drops the stored refresh token. It never fails; identity may be nil
// when the caller presented no usable access token.
func (s *AuthService) Logout(ctx context.Context, identity *security.Identity) {
	if identity == nil || identity.UserID == "" {
		return
	}
	s.sessions.Revoke(ctx, identity.UserID)
}

func (s *AuthService) Me(ctx context.Context, userID string) (models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.User{}, apperr.NotFound("User not found")
		}
		return models.User{}, apperr.Internal(err)
	}
	return user, nil
}

type ChangePasswordInput struct {
	UserID          string
	CurrentPassword string
	NewPassword     string
}

// ChangePassword re-hashes, revokes the current refresh token and starts a new session.
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) (AuthResult, error) {
	user, err := s.Me(ctx, input.UserID)
	if err != nil {
		return AuthResult{}, err
	}

	ok, err := s.hasher.Verify(input.CurrentPassword, user.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, apperr.Validation("Current password is incorrect", map[string]string{
			"currentPassword": "does not match",
		})
	}
	if input.CurrentPassword == input.NewPassword {
		return AuthResult{}, apperr.Validation("New password must differ from the current one", map[string]string{
			"newPassword": "must differ from current password",
		})
	}

	passwordHash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return AuthResult{}, apperr.Internal(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return AuthResult{}, apperr.Internal(err)
	}

	s.sessions.Revoke(ctx, user.ID)
	s.activity.Record(ctx, &user.ID, "user.password_changed", "user", user.ID, nil)
	return s.startSession(ctx, user)
}
