// Thread - Wardrobe Outfit Recommendation Engine
// Copyright 2026 The Thread Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mdcscry/thread

package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/mdcscry/thread/internal/models"
	"github.com/mdcscry/thread/internal/recommend/preference"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// FieldError describes one rejected field.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Value   interface{}
	Message string
}

func (e FieldError) Error() string { return e.Message }

// RequestValidationError collects every rejected field of one struct.
type RequestValidationError struct {
	Errors []FieldError
}

func (ve *RequestValidationError) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(ve.Errors))
	for i, fe := range ve.Errors {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// Fields maps field name to message, for structured log fields.
func (ve *RequestValidationError) Fields() map[string]string {
	out := make(map[string]string, len(ve.Errors))
	for _, fe := range ve.Errors {
		out[fe.Field] = fe.Message
	}
	return out
}

// GetValidator returns the shared validator with Thread's vocabulary tags
// registered: signal, category and hexcolor_or_empty.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		for tag, fn := range map[string]validator.Func{
			"signal":            isKnownSignal,
			"category":          isKnownCategory,
			"hexcolor_or_empty": isHexOrEmpty,
		} {
			// Fails only for an empty tag or nil func.
			_ = validate.RegisterValidation(tag, fn)
		}
	})
	return validate
}

// isKnownSignal accepts signals the preference model assigns a weight.
func isKnownSignal(fl validator.FieldLevel) bool {
	_, ok := preference.Weight(models.SignalType(strings.TrimSpace(fl.Field().String())))
	return ok
}

func isKnownCategory(fl validator.FieldLevel) bool {
	want := models.Category(strings.ToLower(strings.TrimSpace(fl.Field().String())))
	for _, c := range models.Categories {
		if c == want {
			return true
		}
	}
	return false
}

func isHexOrEmpty(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || hexColor.MatchString(s)
}

// ValidateStruct checks s against its validate tags. It returns a typed nil
// on success, so compare against nil before wrapping:
//
//	if verr := validation.ValidateStruct(&c); verr != nil {
//	    return fmt.Errorf("invalid context: %w", verr)
//	}
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestValidationError{Errors: []FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}}
	}

	out := &RequestValidationError{Errors: make([]FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Errors = append(out.Errors, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   fe.Value(),
			Message: message(fe),
		})
	}
	return out
}

// message renders a FieldError as a sentence.
func message(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "signal":
		return field + " must be a known feedback signal"
	case "category":
		return field + " must be one of: " + categoryList()
	case "hexcolor_or_empty":
		return field + " must be a #rrggbb color"
	case "uuid":
		return field + " must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case "gte", "gtefield":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, param)
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, param)
	case "min":
		return bound(fe, "at least")
	case "max":
		return bound(fe, "at most")
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// bound phrases min and max by the kind of value being measured.
func bound(fe validator.FieldError, qualifier string) string {
	switch fe.Kind().String() {
	case "string":
		return fmt.Sprintf("%s must be %s %s characters", fe.Field(), qualifier, fe.Param())
	case "slice":
		return fmt.Sprintf("%s must contain %s %s entries", fe.Field(), qualifier, fe.Param())
	default:
		return fmt.Sprintf("%s must be %s %s", fe.Field(), qualifier, fe.Param())
	}
}

func categoryList() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, " ")
}
