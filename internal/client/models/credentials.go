package models

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/dmitrijs2005/storygen/internal/common"
)

// SignupFields are collected from the user when creating an account.
// Organisation is optional.
type SignupFields struct {
	Name         string
	Email        string
	Organisation string
	Password     string
}

// LoginFields are collected from the user when signing in.
type LoginFields struct {
	Email    string
	Password string
}

// NormalizeEmail trims and lowercases an address the way the server does.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Normalize returns a copy with whitespace trimmed and the email normalized.
// The password is left untouched.
func (f SignupFields) Normalize() SignupFields {
	return SignupFields{
		Name:         strings.TrimSpace(f.Name),
		Email:        NormalizeEmail(f.Email),
		Organisation: strings.TrimSpace(f.Organisation),
		Password:     f.Password,
	}
}

func (f SignupFields) Validate() error {
	err := validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&f.Email, validation.Required, is.EmailFormat),
		validation.Field(&f.Organisation, validation.Length(0, 200)),
		validation.Field(&f.Password, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrValidation, err)
	}
	return nil
}

func (f LoginFields) Normalize() LoginFields {
	return LoginFields{Email: NormalizeEmail(f.Email), Password: f.Password}
}

func (f LoginFields) Validate() error {
	err := validation.ValidateStruct(&f,
		validation.Field(&f.Email, validation.Required, is.EmailFormat),
		validation.Field(&f.Password, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrValidation, err)
	}
	return nil
}
