package payment

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// NewMerchantPaymentID generates a collision-resistant identifier for
// one payment attempt: a millisecond timestamp plus 4 random bytes.
func NewMerchantPaymentID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// fallback: time-based entropy
		return fmt.Sprintf("ORDER_%d_%08x", time.Now().UnixMilli(), time.Now().UnixNano()&0xffffffff)
	}
	return fmt.Sprintf("ORDER_%d_%s", time.Now().UnixMilli(), hex.EncodeToString(buf))
}
