package rpm

import (
	"github.com/meigma/rpm/internal/compress"
	"github.com/meigma/rpm/internal/cpio"
	"github.com/meigma/rpm/internal/header"
	"github.com/meigma/rpm/internal/lead"
	"github.com/meigma/rpm/internal/rpmtype"
	"github.com/meigma/rpm/internal/tag"
)

// Lead is the fixed 96-byte package preamble.
type Lead = lead.Lead

// Package types recorded in the lead.
const (
	Binary = lead.Binary
	Source = lead.Source
)

// Header is a decoded signature or metadata header.
type Header = header.Header

// HeaderEntry is one tag and its value.
type HeaderEntry = header.Entry

// Diagnostic reports a tolerated decode condition such as an unknown tag.
type Diagnostic = header.Diagnostic

// Value is a header value. The concrete types below are its variants.
type Value = header.Value

// Header value variants. BinaryValue is header.Binary; Binary names the
// lead package type.
type (
	Null        = header.Null
	Char        = header.Char
	Int8        = header.Int8
	Int16       = header.Int16
	Int32       = header.Int32
	Int64       = header.Int64
	String      = header.String
	StringArray = header.StringArray
	BinaryValue = header.Binary
	I18NString  = header.I18NString
	Unknown     = header.Unknown
)

// EntryMeta is the cpio metadata of one payload entry.
type EntryMeta = cpio.Header

// Codec is a payload compression format that can be registered with
// WithCodec.
type Codec = compress.Codec

// Progress reporting.
type (
	ProgressEvent = rpmtype.ProgressEvent
	ProgressStage = rpmtype.ProgressStage
	ProgressFunc  = rpmtype.ProgressFunc
)

// Progress stages.
const (
	StageCollecting = rpmtype.StageCollecting
	StageArchiving  = rpmtype.StageArchiving
	StageExtracting = rpmtype.StageExtracting
)

// Frequently used tag numbers. The full tables are HeaderTags and
// SignatureTags.
const (
	TagName              = tag.Name
	TagVersion           = tag.Version
	TagRelease           = tag.Release
	TagEpoch             = tag.Epoch
	TagSummary           = tag.Summary
	TagDescription       = tag.Description
	TagArch              = tag.Arch
	TagOS                = tag.OS
	TagLicense           = tag.License
	TagPayloadFormat     = tag.PayloadFormat
	TagPayloadCompressor = tag.PayloadCompressor
	TagPayloadFlags      = tag.PayloadFlags
)

// Tag name tables.
var (
	HeaderTags    = tag.Header
	SignatureTags = tag.Signature
)
