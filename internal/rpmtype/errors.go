// Package rpmtype defines the error taxonomy and progress types shared by the
// rpm package and its internal codecs. This avoids circular imports between
// rpm and internal/header, internal/cpio and friends.
package rpmtype

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds. Every structural failure wraps exactly one of these.
var (
	// ErrBadMagic is returned when a lead, header, or archive entry magic mismatches.
	ErrBadMagic = errors.New("rpm: bad magic")

	// ErrUnsupportedVersion is returned for lead versions outside {3.0, 3.1, 4.0}.
	ErrUnsupportedVersion = errors.New("rpm: unsupported version")

	// ErrNameTooLong is returned when a lead name does not fit its 66-byte field.
	ErrNameTooLong = errors.New("rpm: name too long")

	// ErrOversizedField is returned when a declared size or count exceeds a hard cap.
	ErrOversizedField = errors.New("rpm: oversized field")

	// ErrOutOfBounds is returned when an index entry resolves outside the data blob.
	ErrOutOfBounds = errors.New("rpm: offset out of bounds")

	// ErrInvalidEncoding is returned for non-decodable text or malformed fields.
	ErrInvalidEncoding = errors.New("rpm: invalid encoding")

	// ErrInvalidName is returned when an archive entry name is not valid text.
	ErrInvalidName = fmt.Errorf("%w: entry name", ErrInvalidEncoding)

	// ErrUnsafePath is returned for traversal or symlink redirection during extraction.
	ErrUnsafePath = errors.New("rpm: unsafe path")

	// ErrUnsupportedCompression is returned for an unrecognized payload compressor.
	ErrUnsupportedCompression = errors.New("rpm: unsupported compression")

	// ErrCompression is returned when the underlying codec fails.
	ErrCompression = errors.New("rpm: compression failed")

	// ErrUnsupportedType is returned when encoding a value kind the format cannot carry.
	ErrUnsupportedType = errors.New("rpm: unsupported value type")

	// ErrPayloadConsumed is returned when a non-seekable payload is iterated twice.
	ErrPayloadConsumed = errors.New("rpm: payload already consumed")

	// ErrInvalidConfig is returned when a builder configuration fails validation.
	ErrInvalidConfig = errors.New("rpm: invalid package configuration")
)

// Section names the part of a package a FormatError refers to.
type Section string

// Package sections.
const (
	SectionLead      Section = "lead"
	SectionSignature Section = "signature header"
	SectionHeader    Section = "header"
	SectionPayload   Section = "payload"
	SectionArchive   Section = "archive"
	SectionExtract   Section = "extract"
	SectionBuild     Section = "build"
)

// FormatError describes a structural failure while decoding or encoding a package.
// errors.Is matches both the kind and the underlying cause.
type FormatError struct {
	// Section is where the failure was detected.
	Section Section
	// Err is one of the sentinel kinds above.
	Err error
	// Detail is a short human-readable context string, such as an entry name.
	Detail string
	// Cause is the underlying error, if any.
	Cause error
}

// Errorf creates a FormatError with a formatted detail string.
func Errorf(section Section, kind error, format string, args ...any) *FormatError {
	return &FormatError{Section: section, Err: kind, Detail: fmt.Sprintf(format, args...)}
}

// Wrap creates a FormatError that carries cause.
func Wrap(section Section, kind, cause error, detail string) *FormatError {
	return &FormatError{Section: section, Err: kind, Detail: detail, Cause: cause}
}

func (e *FormatError) Error() string {
	var b strings.Builder
	if e.Section != "" {
		b.WriteString(string(e.Section))
		b.WriteString(": ")
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString("format error")
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the kind and the cause.
func (e *FormatError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// VersionError reports a lead version outside the supported set.
type VersionError struct {
	Major, Minor uint8
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("%s %d.%d", ErrUnsupportedVersion, e.Major, e.Minor)
}

// Unwrap returns ErrUnsupportedVersion.
func (e *VersionError) Unwrap() error { return ErrUnsupportedVersion }
