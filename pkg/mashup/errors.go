package mashup

import (
	"errors"
	"fmt"

	"github.com/bradland/pqmashup-go/pkg/mashup/archive"
	"github.com/bradland/pqmashup-go/pkg/mashup/host"
	"github.com/bradland/pqmashup-go/pkg/mashup/parser"
)

// ErrInputNotFound indicates a missing source workbook or directory.
var ErrInputNotFound = errors.New("input not found")

// Errors re-exported from the component packages.
var (
	// ErrBlobNotFound is returned when no DataMashup element, or no package
	// archive inside it, can be found.
	ErrBlobNotFound = parser.ErrBlobNotFound

	// ErrMalformedArchive is returned when the workbook or the inner
	// package cannot be parsed as a ZIP archive.
	ErrMalformedArchive = archive.ErrMalformed

	// ErrUnsafeEntry is returned when an inner entry name escapes the
	// extraction directory.
	ErrUnsafeEntry = archive.ErrUnsafeEntry

	// ErrEncryptedWorkbook is returned for password-protected workbooks.
	ErrEncryptedWorkbook = archive.ErrEncrypted

	// ErrUnsupportedFormat is returned for containers other than OOXML.
	ErrUnsupportedFormat = archive.ErrUnsupportedFormat

	// ErrAutomation is returned when the spreadsheet host fails.
	ErrAutomation = host.ErrAutomation

	// ErrHostUnavailable is returned when no spreadsheet host exists.
	ErrHostUnavailable = host.ErrUnavailable
)

// OpError records the pipeline and path of a failed operation.
type OpError struct {
	Op   string // "extract", "repack", "reinject", "refresh", "inspect"
	Path string
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// NewOpError creates a new OpError.
func NewOpError(op, path string, err error) *OpError {
	return &OpError{
		Op:   op,
		Path: path,
		Err:  err,
	}
}
