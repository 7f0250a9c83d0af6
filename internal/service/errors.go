package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

type ForbiddenKind string

const (
	ForbiddenCompany ForbiddenKind = "forbidden_company"
	ForbiddenProduct ForbiddenKind = "forbidden_product"
)

// ForbiddenError: принципал аутентифицирован, но ссылается на чужую запись.
type ForbiddenError struct {
	Kind    ForbiddenKind
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }
func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %s not found", e.Entity, e.ID) }
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func notFound(entity string, id uuid.UUID) error { return &NotFoundError{Entity: entity, ID: id} }
