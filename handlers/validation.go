package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	apperrors "github.com/NomadCrew/itinerary-builder/errors"
	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator that reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldMessage renders one failed rule the way API clients display it.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "datetime":
		return "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	default:
		return fmt.Sprintf("Failed on the '%s' rule.", fe.Tag())
	}
}

// validationError converts a validator or JSON decoding error into a 400 with
// per-field details.
func validationError(err error) *apperrors.AppError {
	var fields apperrors.FieldErrors

	var validationErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &validationErrs):
		for _, fe := range validationErrs {
			fields.Add(fe.Field(), fieldMessage(fe))
		}
	case errors.As(err, &typeErr) && typeErr.Field != "":
		fields.Add(typeErr.Field, "Not a valid string.")
	default:
		fields.Add("non_field_errors", "Invalid JSON body.")
	}

	appErr := apperrors.ValidationFields("Invalid input data", fields)
	appErr.Raw = err
	return appErr
}
