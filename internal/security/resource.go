package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// ObjectSignature binds an uploaded object to its image id so the worker can
// refuse tasks whose payload was tampered with.
func ObjectSignature(secret string, parts ...string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(parts, ":")))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func VerifyObjectSignature(secret string, signature string, parts ...string) bool {
	expected := ObjectSignature(secret, parts...)
	return hmac.Equal([]byte(signature), []byte(expected))
}
