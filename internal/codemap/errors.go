package codemap

import "errors"

// Error kinds surfaced by map operations. Callers match with errors.Is;
// every failure aborts the invoking action with no partial mutation.
var (
	// ErrNotFound reports a requested key that is absent: a file not in the
	// map, a symbol not in a file's table, or a record not in a list.
	ErrNotFound = errors.New("not found")

	// ErrUsage reports an operation that is invalid in the current state,
	// such as hiding at the file level or keeping an empty selection.
	ErrUsage = errors.New("invalid operation")

	// ErrConflict reports a rename whose target key already exists.
	ErrConflict = errors.New("already exists")

	// ErrCorrupted reports persisted data missing required fields.
	ErrCorrupted = errors.New("corrupted map file")
)
