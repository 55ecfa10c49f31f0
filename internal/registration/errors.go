package registration

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingRequiredField   = errors.New("missing required field")
	ErrInvalidBirthDate       = errors.New("invalid birth date")
	ErrInvalidCategory        = errors.New("invalid category")
	ErrAgeOutOfRange          = errors.New("age out of range")
	ErrConsentNotAcknowledged = errors.New("consent not acknowledged")
	ErrMissingSignature       = errors.New("missing signature")
	ErrInvalidUpload          = errors.New("invalid upload")

	ErrMissingAsset   = errors.New("missing asset")
	ErrRenderFailure  = errors.New("render failure")
	ErrPersistence    = errors.New("persistence failure")
	ErrRecordNotFound = errors.New("registration not found")
)

// ValidationError carries the details of a rejected submission. It unwraps
// to one of the validation sentinels above.
type ValidationError struct {
	Kind     error
	Fields   []string
	Category Category
	Age      int
}

func (e *ValidationError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrAgeOutOfRange):
		return fmt.Sprintf("%s: age %d not allowed for %s", e.Kind, e.Age, e.Category)
	case errors.Is(e.Kind, ErrInvalidCategory):
		return fmt.Sprintf("%s: %q", e.Kind, e.Category)
	case len(e.Fields) > 0:
		return fmt.Sprintf("%s: %s", e.Kind, strings.Join(e.Fields, ", "))
	default:
		return e.Kind.Error()
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// IsValidation reports whether err is a rejection caused by the submitted
// data rather than by the service.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrInvalidUpload)
}

// Reason is a short stable label for err, used as a metric attribute.
func Reason(err error) string {
	for _, kind := range []struct {
		err   error
		label string
	}{
		{ErrMissingRequiredField, "missing_required_field"},
		{ErrInvalidBirthDate, "invalid_birth_date"},
		{ErrInvalidCategory, "invalid_category"},
		{ErrAgeOutOfRange, "age_out_of_range"},
		{ErrConsentNotAcknowledged, "consent_not_acknowledged"},
		{ErrMissingSignature, "missing_signature"},
		{ErrInvalidUpload, "invalid_upload"},
		{ErrMissingAsset, "missing_asset"},
		{ErrRenderFailure, "render_failure"},
		{ErrPersistence, "persistence_failure"},
	} {
		if errors.Is(err, kind.err) {
			return kind.label
		}
	}
	return "internal"
}
