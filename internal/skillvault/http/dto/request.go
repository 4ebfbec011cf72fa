// Package dto provides data transfer objects for skill vault HTTP requests.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/secrets/internal/validation"
)

// UploadRequest contains the parameters for uploading a skill rule document.
// The package id is extracted from the URL path, not the request body.
type UploadRequest struct {
	Plaintext string `json:"plaintext"` // base64-encoded rule document
}

// Validate checks that the upload request carries well-formed base64.
func (r *UploadRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Plaintext,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Base64,
		),
	)
}
