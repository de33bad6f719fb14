package errtranslator

import "errors"

// sqlite extended result codes
var sqliteErrCodes = map[int]error{
	275:  ErrCheckViolated,      // SQLITE_CONSTRAINT_CHECK
	787:  ErrForeignKeyViolated, // SQLITE_CONSTRAINT_FOREIGNKEY
	1299: ErrNotNullViolated,    // SQLITE_CONSTRAINT_NOTNULL
	1555: ErrDuplicatedKey,      // SQLITE_CONSTRAINT_PRIMARYKEY
	2067: ErrDuplicatedKey,      // SQLITE_CONSTRAINT_UNIQUE
}

type SqliteErrTranslator struct{}

// Translate classifies errors carrying an extended result code, as returned by modernc.org/sqlite.
// Other errors are returned unchanged.
func (SqliteErrTranslator) Translate(err error) error {
	var coder interface{ Code() int }
	if err == nil || !errors.As(err, &coder) {
		return err
	}

	if kind, ok := sqliteErrCodes[coder.Code()]; ok {
		return &ConstraintError{Kind: kind, Code: coder.Code(), Err: err}
	}
	return err
}
