package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// signer produces the provider's required auth headers: a fresh nonce
// and unix timestamp per request, plus an HMAC-SHA256 over
// timestamp‖nonce‖body keyed with the pre-shared secret.
type signer struct {
	apiKey     string
	apiSecret  string
	merchantID string

	// injection seams for tests
	now      func() time.Time
	newNonce func() string
}

func newSigner(apiKey, apiSecret, merchantID string) *signer {
	return &signer{
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		merchantID: merchantID,
		now:        time.Now,
		newNonce:   uuid.NewString,
	}
}

func (s *signer) apply(req *http.Request, body []byte) {
	nonce := s.newNonce()
	timestamp := strconv.FormatInt(s.now().Unix(), 10)

	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("X-ASSUME-MERCHANT", s.merchantID)
	req.Header.Set("X-REQUEST-NONCE", nonce)
	req.Header.Set("X-REQUEST-TIMESTAMP", timestamp)
	req.Header.Set("X-REQUEST-HMAC", s.sign(timestamp, nonce, body))
}

func (s *signer) sign(timestamp, nonce string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(s.apiSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte(nonce))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
