package client

import (
	"errors"
	"fmt"
)

var (
	// ErrClientClosed is returned when an operation is issued through a
	// closed Client
	ErrClientClosed = errors.New("kvgrid: client is closed")

	// ErrTableClosed is returned when an operation is issued on a closed
	// Table
	ErrTableClosed = errors.New("kvgrid: table is closed")

	// ErrScannerClosed is returned by Scanner.Next after Close
	ErrScannerClosed = errors.New("kvgrid: scanner is closed")

	// ErrEmptyMutation is returned by Put for a mutation naming no cells
	ErrEmptyMutation = errors.New("kvgrid: mutation names no column edits")
)

// RemoteWriteError reports that a Put's remote call failed or was rejected.
// The write is not retried at this layer; retry and backoff belong to the
// transport substrate.
type RemoteWriteError struct {
	Table string
	Row   []byte
	Err   error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("kvgrid: write to table %s, row %q failed: %v", e.Table, e.Row, e.Err)
}

func (e *RemoteWriteError) Unwrap() error {
	return e.Err
}

// RemoteError reports an error message returned by a region server as the
// outcome of a single remote call
type RemoteError struct {
	Msg string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("kvgrid: remote error: %s", e.Msg)
}
