package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ironcrest/sigforge/internal/render"
)

// Signature is a saved signature: a name, the selected template, and the
// full builder configuration.
type Signature struct {
	ID          uuid.UUID              `json:"id"`
	UserID      uuid.UUID              `json:"user_id"`
	Name        string                 `json:"name"`
	TemplateKey string                 `json:"template_key"`
	Config      render.SignatureConfig `json:"config"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// CreateSignatureRequest is the payload for creating a signature.
type CreateSignatureRequest struct {
	Name        string                 `json:"name" binding:"required"`
	TemplateKey string                 `json:"template_key"`
	Config      render.SignatureConfig `json:"config"`
}

// UpdateSignatureRequest is the payload for updating a signature. Nil
// fields are left unchanged.
type UpdateSignatureRequest struct {
	Name        *string                 `json:"name,omitempty"`
	TemplateKey *string                 `json:"template_key,omitempty"`
	Config      *render.SignatureConfig `json:"config,omitempty"`
}
