package echoapi

import (
	"github.com/go-playground/validator/v10"

	"github.com/terakoya-app/terakoya/core"
)

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	// UserActionRequest discriminates a privileged user mutation. Unknown
	// action values are rejected before any backend call is attempted.
	UserActionRequest struct {
		Action string `json:"action" validate:"required,oneof=suspend reinstate"`
	}

	ReportRequest struct {
		StudentID string `json:"student_id" validate:"required"`
	}

	SuccessResponse struct {
		Success bool `json:"success"`
	}

	PortalResponse struct {
		URL string `json:"url"`
	}
)

func (r *LoginRequest) Validate(validate *validator.Validate) error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	return validate.Struct(r)
}

func (r *UserActionRequest) Validate(validate *validator.Validate) error {
	r.Action = core.CleanString(r.Action, true /* lower */)
	return validate.Struct(r)
}

func (r *ReportRequest) Validate(validate *validator.Validate) error {
	r.StudentID = core.CleanString(r.StudentID)
	return validate.Struct(r)
}
