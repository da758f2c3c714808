package db

import (
	"errors"
	"fmt"
	"strings"

	"invensys/lifecycle"

	"gorm.io/gorm"
)

// Stable error categories. Callers branch on these with errors.Is; the
// wrapped message carries the detail.
var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrPrecedenceViolation = errors.New("precedence violation")
	ErrConflict            = errors.New("conflict")
	ErrUnauthorized        = errors.New("unauthorized")
)

func notFound(what string) error { return fmt.Errorf("%s: %w", what, ErrNotFound) }

// translate maps storage errors onto the taxonomy. Errors already in the
// taxonomy pass through untouched.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case inTaxonomy(err):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound(what)
	case isUniqueViolation(err):
		return fmt.Errorf("%s already exists: %w", what, ErrConflict)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%s is still referenced: %w", what, ErrConflict)
	case errors.Is(err, lifecycle.ErrUnknownStatus):
		return fmt.Errorf("%s: %w: %w", what, ErrNotFound, err)
	case errors.Is(err, lifecycle.ErrIllegalTransition):
		return fmt.Errorf("%s: %w: %w", what, ErrConflict, err)
	}
	return err
}

func inTaxonomy(err error) bool {
	for _, e := range []error{ErrNotFound, ErrForbidden, ErrPrecedenceViolation, ErrConflict, ErrUnauthorized} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}
