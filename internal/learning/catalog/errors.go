package catalog

import "fmt"

// ContentStoreError is a persistence failure. Generation may already have
// succeeded when it is returned.
type ContentStoreError struct {
	Op  string
	Err error
}

func (e *ContentStoreError) Error() string {
	return fmt.Sprintf("content store %s: %v", e.Op, e.Err)
}

func (e *ContentStoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ContentStoreError{Op: op, Err: err}
}
