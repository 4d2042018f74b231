/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package ttlcache

import (
	"errors"
	"fmt"
)

// ErrFetch is matched by errors.Is for every *FetchError.
var ErrFetch = errors.New("fetch failed and no cached value is available")

// FetchError is returned by GetOrFetch when the fetch function fails
// and there is no previously stored value to fall back to.
type FetchError struct {
	Key   string
	Cause error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %q: %v", e.Key, e.Cause)
}

// Unwrap returns the error returned by the fetch function.
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrFetch.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}
