package backend

import (
	"fmt"
	"net/http"
)

// Failure is the single failure outcome of a backend call: a network error,
// a non-2xx status, or a body with success:false. Message is shown to the
// user verbatim.
type Failure struct {
	Status  int
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Message != "" {
		return f.Message
	}
	if f.Err != nil {
		return f.Err.Error()
	}
	if f.Status != 0 {
		return fmt.Sprintf("Request failed (HTTP %d %s)", f.Status, http.StatusText(f.Status))
	}
	return "Request failed"
}

func (f *Failure) Unwrap() error { return f.Err }
