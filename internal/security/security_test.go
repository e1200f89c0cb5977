package security

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastParams = Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestPasswordRoundTrip(t *testing.T) {
	h := NewPasswordHasher(fastParams)

	encoded, err := h.Hash("secret123")
	require.NoError(t, err)
	assert.Contains(t, encoded, "$argon2id$v=19$t=1,m=1024,p=1$")

	ok, err := h.Verify("secret123", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("secret124", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHashIsSalted(t *testing.T) {
	h := NewPasswordHasher(fastParams)
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyUsesStoredParams(t *testing.T) {
	encoded, err := NewPasswordHasher(fastParams).Hash("pw")
	require.NoError(t, err)

	ok, err := NewPasswordHasher(DefaultArgon2Params).Verify("pw", encoded)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyMalformed(t *testing.T) {
	h := NewPasswordHasher(fastParams)
	for _, bad := range []string{"", "plain", "$bcrypt$x$y$z$w", "$argon2id$v=19$t=x,m=1,p=1$AA$AA"} {
		_, err := h.Verify("pw", bad)
		assert.ErrorIs(t, err, ErrMalformedHash, bad)
	}
}

func newIssuer(now time.Time) *TokenIssuer {
	return NewTokenIssuer("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour).
		WithClock(func() time.Time { return now })
}

func TestIssueAndParsePair(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	issuer := newIssuer(now)
	id := Identity{UserID: "u1", Email: "bob@x.com", Role: "CUSTOMER"}

	pair, err := issuer.IssuePair(id)
	require.NoError(t, err)
	assert.Equal(t, now.Add(15*time.Minute), pair.AccessExpiresAt)
	assert.Equal(t, now.Add(7*24*time.Hour), pair.RefreshExpiresAt)

	access, err := issuer.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id, access.Identity)
	assert.Equal(t, TokenTypeAccess, access.Type)

	refresh, err := issuer.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, id, refresh.Identity)
	assert.Equal(t, now, refresh.IssuedAtTime())
}

func TestPairsMintedInSameSecondDiffer(t *testing.T) {
	issuer := newIssuer(time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC))
	id := Identity{UserID: "u1", Email: "a@b.c", Role: "ADMIN"}

	a, err := issuer.IssuePair(id)
	require.NoError(t, err)
	b, err := issuer.IssuePair(id)
	require.NoError(t, err)
	assert.NotEqual(t, a.RefreshToken, b.RefreshToken)
	assert.NotEqual(t, a.AccessToken, b.AccessToken)
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	issuer := NewTokenIssuer("same-secret", "same-secret", time.Minute, time.Hour)
	pair, err := issuer.IssuePair(Identity{UserID: "u1"})
	require.NoError(t, err)

	_, err = issuer.ParseAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = issuer.ParseRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessTokenExpires(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	issuer := newIssuer(now)
	pair, err := issuer.IssuePair(Identity{UserID: "u1"})
	require.NoError(t, err)

	_, err = issuer.WithClock(func() time.Time { return now.Add(14 * time.Minute) }).ParseAccess(pair.AccessToken)
	require.NoError(t, err)

	later := issuer.WithClock(func() time.Time { return now.Add(16 * time.Minute) })
	_, err = later.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = later.ParseRefresh(pair.RefreshToken)
	assert.NoError(t, err)
}

func TestParseRejectsGarbageAndForeignSecret(t *testing.T) {
	issuer := newIssuer(time.Now())
	_, err := issuer.ParseRefresh("not-a-jwt")
	assert.True(t, errors.Is(err, ErrInvalidToken))

	other := NewTokenIssuer("other", "other", time.Minute, time.Hour)
	pair, err := other.IssuePair(Identity{UserID: "u1"})
	require.NoError(t, err)
	_, err = issuer.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestObjectSignature(t *testing.T) {
	sig := ObjectSignature("k", "img1", "2026/10/15/img1.png")
	assert.True(t, VerifyObjectSignature("k", sig, "img1", "2026/10/15/img1.png"))
	assert.False(t, VerifyObjectSignature("k", sig, "img2", "2026/10/15/img1.png"))
}
