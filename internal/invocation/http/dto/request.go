// Package dto provides data transfer objects for invocation HTTP requests.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/secrets/internal/validation"
)

// InvokeRequest contains the parameters for a skill invocation. The package
// id is extracted from the URL path, not the request body.
type InvokeRequest struct {
	Query       string `json:"query"`
	ExpertShare string `json:"expert_share,omitempty"`
	LabKey      string `json:"lab_key,omitempty"`
	Tier        string `json:"tier,omitempty"`
}

// Validate checks that the invocation request carries a non-blank query.
func (r *InvokeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Query, validation.Required, customValidation.NotBlank),
	)
}
