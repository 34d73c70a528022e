package download

import (
	"errors"
	"fmt"
)

var (
	// ErrNoContentLength means the server did not declare the artifact size.
	ErrNoContentLength = errors.New("response has no content length")
	// ErrBadStatus means the server answered with a non-2xx status.
	ErrBadStatus = errors.New("unexpected http status")
)

// TransferInitError means the transfer could not be started: the request
// failed to send or the response was unusable.
type TransferInitError struct {
	URL string
	Err error
}

func (e *TransferInitError) Error() string {
	return fmt.Sprintf("start transfer %s: %v", e.URL, e.Err)
}

func (e *TransferInitError) Unwrap() error { return e.Err }

// TransferError is a read failure in the middle of the response stream.
type TransferError struct {
	URL        string
	Downloaded int64
	Err        error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("read %s after %d bytes: %v", e.URL, e.Downloaded, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// IOError is a local filesystem failure.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// IsTransferInit reports whether err is (or wraps) a TransferInitError.
func IsTransferInit(err error) bool {
	var e *TransferInitError
	return errors.As(err, &e)
}

// IsTransfer reports whether err is (or wraps) a TransferError.
func IsTransfer(err error) bool {
	var e *TransferError
	return errors.As(err, &e)
}

// IsIO reports whether err is (or wraps) an IOError.
func IsIO(err error) bool {
	var e *IOError
	return errors.As(err, &e)
}
