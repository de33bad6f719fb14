// Package errtranslator maps driver errors to driver independent constraint errors.
package errtranslator

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicatedKey a unique or primary key constraint failed
	ErrDuplicatedKey = errors.New("duplicated key not allowed")
	// ErrForeignKeyViolated a foreign key constraint failed
	ErrForeignKeyViolated = errors.New("violates foreign key constraint")
	// ErrNotNullViolated a NOT NULL constraint failed
	ErrNotNullViolated = errors.New("violates not null constraint")
	// ErrCheckViolated a CHECK constraint failed
	ErrCheckViolated = errors.New("violates check constraint")
)

type ErrTranslator interface {
	Translate(err error) error
}

// ConstraintError a classified driver error. It matches both Kind and the driver error with errors.Is and errors.As.
type ConstraintError struct {
	Kind error
	Code int
	Err  error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%v, code: %d, message: %v", e.Kind, e.Code, e.Err)
}

func (e *ConstraintError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
