package favorite

import "errors"

var ErrAuthRequired = errors.New("sign in required")
