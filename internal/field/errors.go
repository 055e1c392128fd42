package field

import "errors"

// ErrInvalidConfig is returned by New and Config.Validate for unusable parameters.
var ErrInvalidConfig = errors.New("invalid field config")
