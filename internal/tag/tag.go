// Package tag is the static tag-number lookup table for RPM headers.
//
// The header engine uses a Set only to flag tags it does not recognize; it
// never changes how a value decodes.
package tag

import (
	"slices"
	"strconv"
)

// Region and table tags shared by both headers.
const (
	HeaderSignatures = 62
	HeaderImmutable  = 63
	HeaderI18NTable  = 100
)

// Metadata header tags.
const (
	Name              = 1000
	Version           = 1001
	Release           = 1002
	Epoch             = 1003
	Summary           = 1004
	Description       = 1005
	BuildTime         = 1006
	BuildHost         = 1007
	Size              = 1009
	Vendor            = 1011
	License           = 1014
	Packager          = 1015
	Group             = 1016
	URL               = 1020
	OS                = 1021
	Arch              = 1022
	FileSizes         = 1028
	FileModes         = 1030
	FileRdevs         = 1033
	FileMTimes        = 1034
	FileDigests       = 1035
	FileLinkTos       = 1036
	FileFlags         = 1037
	FileUserName      = 1039
	FileGroupName     = 1040
	SourceRPM         = 1044
	FileVerifyFlags   = 1045
	ProvideName       = 1047
	RequireFlags      = 1048
	RequireName       = 1049
	RequireVersion    = 1050
	RPMVersion        = 1064
	FileDevices       = 1095
	FileInodes        = 1096
	FileLangs         = 1097
	ProvideFlags      = 1112
	ProvideVersion    = 1113
	DirIndexes        = 1116
	BaseNames         = 1117
	DirNames          = 1118
	PayloadFormat     = 1124
	PayloadCompressor = 1125
	PayloadFlags      = 1126
	LongFileSizes     = 5008
	LongSize          = 5009
	FileDigestAlgo    = 5011
	Encoding          = 5062
	PayloadDigest     = 5092
	PayloadDigestAlgo = 5093
	PayloadDigestAlt  = 5097
)

// Signature header tags.
const (
	SigSHA1            = 269
	SigLongSize        = 270
	SigLongArchiveSize = 271
	SigSHA256          = 273
	SigSize            = 1000
	SigMD5             = 1004
	SigPayloadSize     = 1007
)

// Digest algorithm identifiers stored in FileDigestAlgo and PayloadDigestAlgo.
const (
	DigestMD5    = 1
	DigestSHA1   = 2
	DigestSHA256 = 8
	DigestSHA512 = 10
)

// Set maps tag numbers to their canonical names.
type Set map[uint32]string

// Contains reports whether t is a known tag.
func (s Set) Contains(t uint32) bool {
	_, ok := s[t]
	return ok
}

// Name returns the canonical name of t, or its decimal number if unknown.
func (s Set) Name(t uint32) string {
	if name, ok := s[t]; ok {
		return name
	}
	return strconv.FormatUint(uint64(t), 10)
}

// Lookup returns the tag number for a canonical name.
func (s Set) Lookup(name string) (uint32, bool) {
	for t, n := range s {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// Tags returns the known tag numbers in ascending order.
func (s Set) Tags() []uint32 {
	out := make([]uint32, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}
