package rpm

import "github.com/meigma/rpm/internal/rpmtype"

// Error kinds re-exported from the internal codecs.
var (
	// ErrBadMagic is returned when a lead, header, or archive entry magic mismatches.
	ErrBadMagic = rpmtype.ErrBadMagic

	// ErrUnsupportedVersion is returned for lead versions outside {3.0, 3.1, 4.0}.
	ErrUnsupportedVersion = rpmtype.ErrUnsupportedVersion

	// ErrNameTooLong is returned when a lead name does not fit its 66-byte field.
	ErrNameTooLong = rpmtype.ErrNameTooLong

	// ErrOversizedField is returned when a declared size or count exceeds a cap.
	ErrOversizedField = rpmtype.ErrOversizedField

	// ErrOutOfBounds is returned when a header entry resolves outside its data blob.
	ErrOutOfBounds = rpmtype.ErrOutOfBounds

	// ErrInvalidEncoding is returned for non-decodable text or malformed fields.
	ErrInvalidEncoding = rpmtype.ErrInvalidEncoding

	// ErrInvalidName is returned when an archive entry name is not valid text.
	ErrInvalidName = rpmtype.ErrInvalidName

	// ErrUnsafePath is returned for traversal or symlink redirection during extraction.
	ErrUnsafePath = rpmtype.ErrUnsafePath

	// ErrUnsupportedCompression is returned for an unrecognized payload compressor.
	ErrUnsupportedCompression = rpmtype.ErrUnsupportedCompression

	// ErrCompression is returned when the payload codec fails.
	ErrCompression = rpmtype.ErrCompression

	// ErrUnsupportedType is returned when encoding a value kind the format cannot carry.
	ErrUnsupportedType = rpmtype.ErrUnsupportedType

	// ErrPayloadConsumed is returned when a non-seekable payload is read twice.
	ErrPayloadConsumed = rpmtype.ErrPayloadConsumed

	// ErrInvalidConfig is returned when a builder configuration fails validation.
	ErrInvalidConfig = rpmtype.ErrInvalidConfig
)

type (
	// FormatError describes a structural failure and the section it occurred in.
	FormatError = rpmtype.FormatError

	// VersionError reports a rejected lead version.
	VersionError = rpmtype.VersionError
)
