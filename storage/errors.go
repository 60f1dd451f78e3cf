package storage

import "fmt"

// CorruptError indicates a collection file exists but cannot be decoded into
// well-formed records. The store never discards the file itself; the caller
// may offer the user an explicit reset to an empty collection.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt collection file %s: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }
