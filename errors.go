package teloquent

import (
	"errors"
	"fmt"

	"github.com/teloquent/teloquent/errtranslator"
	"github.com/teloquent/teloquent/logger"
)

var (
	// ErrRecordNotFound record not found error
	ErrRecordNotFound = logger.ErrRecordNotFound
	// ErrNotInitialized no DB bound to the model type and no default DB
	ErrNotInitialized = errors.New("database is not initialized, call teloquent.Initialize or bind the model type to a DB")
	// ErrUnknownRelation relation name not registered on the model type
	ErrUnknownRelation = errors.New("unknown relation")
	// ErrMissingPrimaryKey the record has no primary key value
	ErrMissingPrimaryKey = errors.New("primary key required")
	// ErrDuplicatedKey occurs when there is a unique key constraint violation
	ErrDuplicatedKey = errtranslator.ErrDuplicatedKey
	// ErrForeignKeyViolated occurs when there is a foreign key constraint violation
	ErrForeignKeyViolated = errtranslator.ErrForeignKeyViolated
)

// NotFoundError is returned by FindOrFail and FirstOrFail, it matches ErrRecordNotFound with errors.Is
type NotFoundError struct {
	Model string
	Key   interface{}
}

func (e *NotFoundError) Error() string {
	if e.Key == nil {
		return fmt.Sprintf("%s not found", e.Model)
	}
	return fmt.Sprintf("%s not found with key %v", e.Model, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrRecordNotFound
}
