package session

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"computing-marketplace/api/internal/apperr"
)

type Policy string

const (
	// PolicyStrict surfaces every store failure as Unavailable.
	PolicyStrict Policy = "strict"
	// PolicyPermissive logs store failures and carries on without revocation guarantees.
	PolicyPermissive Policy = "permissive"
)

// Guard applies the configured failure policy around a Store. Remember and
// Revoke are best-effort under both policies; the policy governs the refresh
// path (Save, Load).
type Guard struct {
	store  Store
	policy Policy
	log    zerolog.Logger
}

func NewGuard(store Store, policy Policy, log zerolog.Logger) *Guard {
	return &Guard{store: store, policy: policy, log: log}
}

func (g *Guard) Policy() Policy {
	return g.policy
}

func (g *Guard) Save(ctx context.Context, userID string, record Record, ttl time.Duration) error {
	err := g.store.Set(ctx, userID, record, ttl)
	if err == nil {
		return nil
	}
	if g.policy == PolicyStrict {
		return apperr.Unavailable("Session store unavailable", err)
	}
	g.warn(err, userID, "session record write failed; continuing without revocation")
	return nil
}

// Remember writes the record issued by register, login or a password change.
// A failure never fails the caller: the account change is already committed,
// and under the strict policy the next refresh reports the store as unavailable.
func (g *Guard) Remember(ctx context.Context, userID string, record Record, ttl time.Duration) {
	if err := g.store.Set(ctx, userID, record, ttl); err != nil {
		g.warn(err, userID, "session record write failed; token not revocable until next refresh")
	}
}

// Lookup is the outcome of reading the current record for a refresh.
type Lookup struct {
	Record Record
	// Checked is false when the store could not be consulted and the
	// permissive policy chose to skip verification.
	Checked bool
}

func (g *Guard) Load(ctx context.Context, userID string) (Lookup, error) {
	record, err := g.store.Get(ctx, userID)
	switch {
	case err == nil:
		return Lookup{Record: record, Checked: true}, nil
	case errors.Is(err, ErrNoRecord):
		return Lookup{Checked: true}, nil
	case g.policy == PolicyStrict:
		return Lookup{}, apperr.Unavailable("Session store unavailable", err)
	default:
		g.warn(err, userID, "session record read failed; skipping refresh token check")
		return Lookup{}, nil
	}
}

func (g *Guard) Revoke(ctx context.Context, userID string) {
	if err := g.store.Delete(ctx, userID); err != nil {
		g.warn(err, userID, "session record delete failed")
	}
}

func (g *Guard) warn(err error, userID string, msg string) {
	g.log.Warn().
		Err(err).
		Str("user_id", userID).
		Str("policy", string(g.policy)).
		Msg(msg)
}

// Matches reports whether a presented refresh token is the current one.
// A record newer than the token means a later login or refresh superseded it.
func (l Lookup) Matches(token string, issuedAt time.Time) bool {
	if !l.Checked {
		return true
	}
	if l.Record.Token == "" || l.Record.Token != token {
		return false
	}
	if !l.Record.IssuedAt.IsZero() && !issuedAt.IsZero() && l.Record.IssuedAt.After(issuedAt) {
		return false
	}
	return true
}
