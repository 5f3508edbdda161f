package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork wraps transport failures: the request never got a response.
	ErrNetwork = errors.New("network failure")
	// ErrUnauthorized matches any response with status 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnavailable is returned by Ping when the service is not healthy.
	ErrUnavailable = errors.New("server unavailable")
)

const (
	defaultFailureMessage   = "Request failed"
	defaultMalformedMessage = "Unexpected server response"
)

// RequestFailedError is a non-2xx response with a JSON body.
type RequestFailedError struct {
	Status  int
	Message string
}

func (e *RequestFailedError) Error() string {
	return e.Message
}

func (e *RequestFailedError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// MalformedResponseError is a response whose body is not JSON. Raw holds the
// body text.
type MalformedResponseError struct {
	Status int
	Raw    string
}

func (e *MalformedResponseError) Error() string {
	if e.Raw == "" {
		return defaultMalformedMessage
	}
	return e.Raw
}

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// failureMessage picks the user-facing message out of an error body:
// "detail", then "message", then a generic fallback. FastAPI validation
// errors carry a list under "detail"; the first entry's "msg" is used.
func failureMessage(data any) string {
	obj, ok := data.(map[string]any)
	if !ok {
		return defaultFailureMessage
	}

	for _, key := range []string{"detail", "message"} {
		switch v := obj[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case []any:
			if len(v) == 0 {
				continue
			}
			if first, ok := v[0].(map[string]any); ok {
				if msg, ok := first["msg"].(string); ok && msg != "" {
					return msg
				}
			}
			return fmt.Sprint(v[0])
		}
	}
	return defaultFailureMessage
}
