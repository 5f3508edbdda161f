package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/dmitrijs2005/storygen/internal/common"
)

// AcceptedExtensions lists the upload types the extraction service reads.
var AcceptedExtensions = []string{".pdf", ".docx"}

var errUnsupportedType = validation.NewError("validation_unsupported_type", "only .pdf and .docx files are accepted")

// Document is a file selected for upload.
type Document struct {
	Name string
	Data []byte
}

// LoadDocument reads path into a Document named after its base name.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &Document{Name: filepath.Base(path), Data: data}, nil
}

func (d Document) Validate() error {
	err := validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required, validation.By(func(value any) error {
			ext := strings.ToLower(filepath.Ext(value.(string)))
			for _, a := range AcceptedExtensions {
				if ext == a {
					return nil
				}
			}
			return errUnsupportedType
		})),
		validation.Field(&d.Data, validation.Required.Error("file is empty")),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrValidation, err)
	}
	return nil
}

// IsValidationError reports whether err came from one of the Validate methods.
func IsValidationError(err error) bool {
	return errors.Is(err, common.ErrValidation)
}
