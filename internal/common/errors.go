// Package common defines shared constants and sentinel errors used across
// storygen layers. Callers should use errors.Is to match these values.
package common

import "errors"

// ErrValidation marks client-side validation failures such as a missing
// field or an unsupported file type. The concrete reason is wrapped alongside.
var ErrValidation = errors.New("validation failed")
