// Package common contains shared constants and sentinel errors used across
// storygen components.
package common

const (
	// AuthorizationHeaderName carries the bearer credential on outbound requests.
	AuthorizationHeaderName = "Authorization"

	// RequestIDHeaderName tags every outbound request with a unique id.
	RequestIDHeaderName = "X-Request-ID"

	// TokenStorageKey is the metadata key the credential is persisted under.
	TokenStorageKey = "token"

	// LegacyTokenStorageKey is read as a fallback and cleared on logout.
	LegacyTokenStorageKey = "ch_token"
)
