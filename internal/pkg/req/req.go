/*
Package req provides helper functions for HTTP request parsing and data binding.

It decodes JSON request bodies strictly (single document, no unknown fields) and validates
the bound struct with go-playground/validator tags.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"connect/internal/pkg/errs"
)

// MaxJSONBodyBytes caps the size of JSON request bodies.
const MaxJSONBodyBytes int64 = 1 << 20

var validate = validator.New()

// BindJSON decodes the JSON request body into dst and validates it.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return Validate(dst)
}

// Validate checks the `validate` struct tags of v.
func Validate(v any) *errs.CustomError {
	if err := validate.Struct(v); err != nil {
		return errs.NewError(errs.ErrInvalidParams)
	}
	return nil
}

// BindPayload decodes a raw JSON payload (e.g. from a WebSocket command) into dst and validates it.
func BindPayload(raw json.RawMessage, dst any) *errs.CustomError {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	return Validate(dst)
}
