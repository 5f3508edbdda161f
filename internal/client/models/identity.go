// Package models defines the client-side data carried between the CLI, the
// session layer and the story extraction API.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ID is a user identifier the server may send either as a JSON number or a
// string.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", b, err)
	}
	*id = ID(n.String())
	return nil
}

// Identity is the authenticated user as reported by the server.
type Identity struct {
	ID           ID     `json:"id,omitempty"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Organisation string `json:"organisation,omitempty"`
}

// DisplayName prefers the name and falls back to the email.
func (i Identity) DisplayName() string {
	if n := strings.TrimSpace(i.Name); n != "" {
		return n
	}
	return i.Email
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	AccessToken string   `json:"access_token"`
	User        Identity `json:"user"`
}
