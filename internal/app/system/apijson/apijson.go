// Package apijson is the JSON request/response layer shared by every
// feature handler: body decoding with validation, response encoding, and
// the API error taxonomy (unauthenticated, forbidden, not_found, conflict,
// validation).
package apijson

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Kind classifies an API error. Kinds map 1:1 onto HTTP status codes.
type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated" // 401
	KindForbidden       Kind = "forbidden"       // 403
	KindNotFound        Kind = "not_found"       // 404
	KindConflict        Kind = "conflict"        // 400, see Status
	KindValidation      Kind = "validation"      // 400
	KindRateLimited     Kind = "rate_limited"    // 429
	KindInternal        Kind = "internal"        // 500
)

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		// Unique-constraint violations (duplicate email, duplicate team
		// name) go out as 400; the kind still distinguishes them from
		// validation failures.
		return http.StatusBadRequest
	case KindValidation:
		return http.StatusBadRequest
	case KindRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// Error is a structured API error with a kind and a caller-facing message.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

func Unauthenticated(msg string) *Error { return &Error{Kind: KindUnauthenticated, Message: msg} }
func Forbidden(msg string) *Error       { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) *Error        { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error        { return &Error{Kind: KindConflict, Message: msg} }
func Validation(msg string) *Error      { return &Error{Kind: KindValidation, Message: msg} }
func RateLimited(msg string) *Error     { return &Error{Kind: KindRateLimited, Message: msg} }

// validate is shared; validator.Validate is safe for concurrent use.
var validate = validator.New()

// Decode reads a JSON body into dst and runs struct validation on it.
// Failures come back as validation-kind errors suitable for WriteError.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return Validation("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return Validation(fmt.Sprintf("field %q failed %q validation", f.Field(), f.Tag()))
		}
		return Validation("invalid request body")
	}
	return nil
}

// Write encodes v as JSON with the given status code.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err as a structured JSON error. Errors outside the
// taxonomy are logged and surfaced as a generic internal error so store
// details never leak to callers.
func WriteError(w http.ResponseWriter, err error, log *zap.Logger) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		if log != nil {
			log.Error("internal error", zap.Error(err))
		}
		apiErr = &Error{Kind: KindInternal, Message: "internal server error"}
	}
	Write(w, apiErr.Kind.Status(), apiErr)
}
