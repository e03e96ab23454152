package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound reports an empty result. It is a normal outcome, not a failure.
var ErrNotFound = errors.New("no scripts found")

// TransportError is a network failure or a non-2xx response.
type TransportError struct {
	Op         string
	URL        string
	StatusCode int // zero when the request never produced a response
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// SchemaError reports an upstream response missing an expected key.
type SchemaError struct {
	Op  string
	Key string
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: unexpected response, missing or invalid key %q", e.Op, e.Key)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

func missingKey(op, key string) error {
	return &SchemaError{Op: op, Key: key}
}
