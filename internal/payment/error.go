package payment

import (
	"errors"
	"fmt"
)

var (
	// -- Transport --
	ErrUnavailable = errors.New("payment provider unreachable")

	// -- Provider Rejections --
	ErrCreateFailed = errors.New("payment create failed")
	ErrStatusFailed = errors.New("payment status lookup failed")
	ErrRefundFailed = errors.New("payment refund failed")
)

// ProviderError carries the provider's own error code and message from
// a non-success resultInfo.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider rejected request (%s): %s", e.Code, e.Message)
}
