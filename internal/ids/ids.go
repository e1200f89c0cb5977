package ids

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/ksuid"
)

// New returns a k-sortable unique identifier for entity rows.
func New() string {
	return ksuid.New().String()
}

const orderAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// OrderNumber renders a human-readable order number such as ORD-20261015-7KQ2MZ.
func OrderNumber(now time.Time) (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("order number entropy: %w", err)
	}
	var sb strings.Builder
	for _, b := range buf {
		sb.WriteByte(orderAlphabet[int(b)%len(orderAlphabet)])
	}
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), sb.String()), nil
}
