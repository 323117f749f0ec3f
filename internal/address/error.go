package address

import "errors"

var (
	ErrAuthRequired = errors.New("sign in required")
	ErrNotFound     = errors.New("address not found")
)
