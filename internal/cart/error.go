package cart

import "errors"

var (
	// -- Authentication/Authorization --
	ErrAuthRequired = errors.New("sign-in required")

	// -- Validation & Input --
	ErrInvalidQuantity = errors.New("invalid cart quantity")

	// -- Resource State --
	ErrLineNotFound = errors.New("cart line not found")
)
