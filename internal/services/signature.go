package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// WebhookVerifier authenticates inbound provider events against the shared
// webhook secret.
type WebhookVerifier struct {
	secret string
}

// NewWebhookVerifier creates a verifier for the given shared secret.
func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: secret}
}

// Verify reports whether signature is the hex HMAC-SHA256 digest of body under
// the shared secret. The comparison is constant time. Callers must not parse
// the body before this check passes; an unverified body is untrusted input.
func (v *WebhookVerifier) Verify(body []byte, signature string) bool {
	if v.secret == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
