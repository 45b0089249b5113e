package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"payment-service/internal/apperr"
)

// ErrorResponse is the uniform envelope for every non-2xx response.
type ErrorResponse struct {
	ErrorCode   string            `json:"errorCode"`
	Message     string            `json:"message"`
	Path        string            `json:"path"`
	Status      int               `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, r *http.Request, code apperr.Code) {
	respondJSON(w, code.HTTPStatus(), ErrorResponse{
		ErrorCode: string(code),
		Message:   code.Message(),
		Path:      r.URL.Path,
		Status:    code.HTTPStatus(),
		Timestamp: time.Now().UTC(),
	})
}

func respondValidationError(w http.ResponseWriter, r *http.Request, fieldErrors map[string]string) {
	code := apperr.ValidationError
	respondJSON(w, code.HTTPStatus(), ErrorResponse{
		ErrorCode:   string(code),
		Message:     code.Message(),
		Path:        r.URL.Path,
		Status:      code.HTTPStatus(),
		Timestamp:   time.Now().UTC(),
		FieldErrors: fieldErrors,
	})
}

// newValidator builds the request validator, reporting fields by their json
// names so fieldErrors match the wire format.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldErrorsFrom flattens validator failures into field-name -> message.
func fieldErrorsFrom(err error) map[string]string {
	fieldErrors := map[string]string{}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fieldErrors
	}

	for _, fe := range errs {
		if _, exists := fieldErrors[fe.Field()]; exists {
			continue
		}
		fieldErrors[fe.Field()] = validationMessage(fe)
	}

	return fieldErrors
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must not exceed %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "number":
		return "must contain only digits"
	case "http_url":
		return "must be an absolute http or https URL"
	default:
		return "is invalid"
	}
}
