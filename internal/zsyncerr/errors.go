// Package zsyncerr defines the fatal error taxonomy shared by every core
// component. Callers distinguish failure classes with errors.Is against
// these sentinels rather than matching on error strings.
package zsyncerr

import "errors"

var (
	// ErrMalformedControl marks a control file with a missing required
	// header key, a non-numeric numeric field, an invalid Hash-Lengths
	// triple, or a truncated block-sum table.
	ErrMalformedControl = errors.New("malformed control file")

	// ErrChecksumMismatch marks a fully-assembled output whose whole-file
	// SHA-1 disagrees with the control file's SHA-1 header.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrRemoteMissing marks a 404 response for the data URL.
	ErrRemoteMissing = errors.New("remote resource not found")

	// ErrTransportError marks an unexpected HTTP status or network failure.
	ErrTransportError = errors.New("transport error")

	// ErrMalformedResponse marks a multipart parsing failure, a missing or
	// duplicated Content-Range header, a boundary mismatch, or unexpected EOF.
	ErrMalformedResponse = errors.New("malformed range response")

	// ErrIncompleteRangeResponse marks a batch in which a requested range
	// was never delivered.
	ErrIncompleteRangeResponse = errors.New("incomplete range response")

	// ErrIoError marks a local file or filesystem failure.
	ErrIoError = errors.New("io error")
)
