package screenshot

import (
	"errors"
	"fmt"
)

// Kind classifies why the worker stopped.
type Kind string

const (
	KindToken   Kind = "token"
	KindCapture Kind = "capture"
	KindEncode  Kind = "encode"
	KindUpload  Kind = "upload"
)

// ErrMissingToken is reported when a cycle starts without a bearer token.
var ErrMissingToken = errors.New("no auth token available")

// Failure is the terminal error of a worker.
type Failure struct {
	Kind Kind
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("screenshot %s failure: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// KindOf returns the failure kind carried by err.
func KindOf(err error) (Kind, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind, true
	}
	return "", false
}

// StatusError is returned by HTTPUploader for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upload rejected with status %d", e.StatusCode)
	}
	return fmt.Sprintf("upload rejected with status %d: %s", e.StatusCode, e.Body)
}
