package usuarios

import "errors"

var (
	// ErrTableMissing means the store has no usuarios table.
	ErrTableMissing = errors.New("table missing")

	// ErrColumnMissing means the table lacks a column a report groups by.
	ErrColumnMissing = errors.New("column missing")

	// ErrUnsupportedDialect means no DDL is known for the backend.
	ErrUnsupportedDialect = errors.New("unsupported dialect")
)
