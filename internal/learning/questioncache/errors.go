package questioncache

import "fmt"

// CacheUnavailableError wraps a storage failure. The cache logs it and carries
// on as if the bucket were empty; callers never see it.
type CacheUnavailableError struct {
	Op  string
	Key string
	Err error
}

func (e *CacheUnavailableError) Error() string {
	return fmt.Sprintf("question cache %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *CacheUnavailableError) Unwrap() error { return e.Err }
