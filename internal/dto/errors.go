package dto

import "github.com/c0ex38/Backend-DuaMiss/internal/validation"

// BaseError универсальный корневой формат ошибки
// Code: машинно-ориентированный код (snake_case)
// Message: краткое человеко-читаемое описание
// Fields: для валидационных ошибок
type BaseError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details string       `json:"details,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError: Tag: вид нарушения (empty_value, duplicate_code, ...).
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag,omitempty"`
}

func FieldsFrom(list validation.Errors) []FieldError {
	out := make([]FieldError, 0, len(list))
	for _, fe := range list {
		out = append(out, FieldError{Field: fe.Field, Message: fe.Message, Tag: string(fe.Kind)})
	}
	return out
}

func NewValidationError(msg string, fields []FieldError) BaseError {
	return BaseError{Code: "validation_error", Message: msg, Fields: fields}
}
func NewUnauthorizedError(msg string) BaseError {
	return BaseError{Code: "unauthorized", Message: msg}
}
func NewForbiddenError(msg, details string) BaseError {
	return BaseError{Code: "forbidden", Message: msg, Details: details}
}
func NewNotFoundError(msg string) BaseError {
	return BaseError{Code: "not_found", Message: msg}
}
func NewInternalError(details string) BaseError {
	return BaseError{Code: "internal_error", Message: "internal server error", Details: details}
}
