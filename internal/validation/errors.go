package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid matches every validation failure via errors.Is.
var ErrInvalid = errors.New("validation failed")

type Kind string

const (
	EmptyValue       Kind = "empty_value"
	TooShort         Kind = "too_short"
	TooLong          Kind = "too_long"
	InvalidFormat    Kind = "invalid_format"
	BelowMinimum     Kind = "below_minimum"
	AboveMaximum     Kind = "above_maximum"
	TooManyDecimals  Kind = "too_many_decimals"
	DuplicateName    Kind = "duplicate_name"
	DuplicateCode    Kind = "duplicate_code"
	WeakPassword     Kind = "weak_password"
	PasswordMismatch Kind = "password_mismatch"
	EmptyOrder       Kind = "empty_order"
	MissingValue     Kind = "missing_value"
	StartsWithDigit  Kind = "starts_with_digit"
)

type FieldError struct {
	Field   string
	Kind    Kind
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Is(target error) bool { return target == ErrInvalid }

func newErr(field string, kind Kind, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Errors collects field failures of one operation.
type Errors []*FieldError

func (es *Errors) Add(fe *FieldError) {
	if fe != nil {
		*es = append(*es, fe)
	}
}

// Collect keeps validation failures in the collection and hands back anything else
// (lookup/infrastructure errors) so the caller can abort.
func (es *Errors) Collect(err error) error {
	if err == nil {
		return nil
	}
	if list, ok := As(err); ok {
		*es = append(*es, list...)
		return nil
	}
	return err
}

func (es Errors) Error() string {
	parts := make([]string, 0, len(es))
	for _, e := range es {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

func (es Errors) Is(target error) bool { return target == ErrInvalid }

// Err returns nil when nothing was collected.
func (es Errors) Err() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

func (es Errors) Has(field string, kind Kind) bool {
	for _, e := range es {
		if e.Field == field && e.Kind == kind {
			return true
		}
	}
	return false
}

// Kinds returns the kinds reported for a field, in order.
func (es Errors) Kinds(field string) []Kind {
	var out []Kind
	for _, e := range es {
		if e.Field == field {
			out = append(out, e.Kind)
		}
	}
	return out
}

// As extracts the collection from err; a single FieldError becomes a one-element collection.
func As(err error) (Errors, bool) {
	var list Errors
	if errors.As(err, &list) {
		return list, true
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		return Errors{fe}, true
	}
	return nil, false
}

// Single wraps one failure into a collection.
func Single(field string, kind Kind, message string) error {
	return Errors{{Field: field, Kind: kind, Message: message}}
}

// NewError builds a FieldError with a formatted message.
func NewError(field string, kind Kind, format string, args ...any) *FieldError {
	return newErr(field, kind, format, args...)
}
