// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"vitrina/internal/apperr"
)

// validate is the shared validator instance. Struct tags on request
// payloads drive all field-level validation.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// "required" accepts whitespace-only strings; user-facing names must
	// survive trimming.
	v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// checkRequest validates a decoded request payload and converts
// validator failures into a VALIDATION_ERROR with per-field details.
func checkRequest(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return apperr.Validation("invalid request payload")
	}

	fields := make(map[string]any, len(vErrs))
	for _, fe := range vErrs {
		fields[strings.ToLower(fe.Field())] = failureMessage(fe)
	}
	return &apperr.Error{
		Code:    apperr.CodeValidation,
		Message: "request validation failed",
		Details: map[string]any{"fields": fields},
	}
}

// failureMessage renders a single validator failure as a human-readable
// sentence fragment.
func failureMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}
