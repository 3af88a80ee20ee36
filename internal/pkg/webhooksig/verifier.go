package webhooksig

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Verifier checks webhook signatures the way Square computes them: the
// signature header carries base64(HMAC-SHA256(secret, notificationURL || rawBody)).
// The notification URL must match the one registered with the processor
// byte for byte, so it comes from configuration rather than the request.
type Verifier struct {
	secret          []byte
	notificationURL string
}

func NewVerifier(secret, notificationURL string) *Verifier {
	return &Verifier{secret: []byte(secret), notificationURL: notificationURL}
}

// Verify reports whether signature matches the raw request body. Comparison
// is constant-time.
func (v *Verifier) Verify(signature string, body []byte) bool {
	expected := v.Sign(body)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the signature for a body. Tests and local tooling use it to
// produce valid headers.
func (v *Verifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(v.notificationURL))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
