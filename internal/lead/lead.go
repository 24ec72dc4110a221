// Package lead decodes and encodes the fixed 96-byte RPM package lead.
package lead

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/meigma/rpm/internal/rpmtype"
	"github.com/meigma/rpm/internal/textutil"
)

// Size is the encoded size of a lead in bytes.
const Size = 96

// NameSize is the width of the NUL-padded name field.
const NameSize = 66

// Magic identifies an RPM lead.
var Magic = [4]byte{0xed, 0xab, 0xee, 0xdb}

// Type is the package type recorded in the lead.
type Type uint16

// Package types.
const (
	Binary Type = 0
	Source Type = 1
)

func (t Type) String() string {
	switch t {
	case Binary:
		return "binary"
	case Source:
		return "source"
	default:
		return fmt.Sprintf("type(%d)", uint16(t))
	}
}

// SignatureHeaderType is the signature type written by modern rpmbuild:
// a header-style signature section follows the lead.
const SignatureHeaderType = 5

// Lead is the decoded package lead.
type Lead struct {
	Major         uint8
	Minor         uint8
	Type          Type
	Arch          uint16
	Name          [NameSize]byte
	OS            uint16
	SignatureType uint16
	Reserved      [16]byte
}

// New returns a version 3.0 lead for name, as rpmbuild writes it.
func New(name string, typ Type, arch uint16) (Lead, error) {
	l := Lead{
		Major:         3,
		Minor:         0,
		Type:          typ,
		Arch:          arch,
		OS:            1,
		SignatureType: SignatureHeaderType,
	}
	if err := l.SetName(name); err != nil {
		return Lead{}, err
	}
	return l, nil
}

// NameString returns the name up to its first NUL byte.
func (l *Lead) NameString() string {
	return textutil.CString(l.Name[:])
}

// SetName stores name NUL-padded. The name and its terminator must fit in NameSize bytes.
func (l *Lead) SetName(name string) error {
	if len(name)+1 > NameSize {
		return rpmtype.Errorf(rpmtype.SectionLead, rpmtype.ErrNameTooLong, "%d bytes", len(name))
	}
	if bytes.IndexByte([]byte(name), 0) >= 0 {
		return rpmtype.Errorf(rpmtype.SectionLead, rpmtype.ErrInvalidEncoding, "name contains NUL")
	}
	l.Name = [NameSize]byte{}
	copy(l.Name[:], name)
	return nil
}

// Equal reports whether two leads are equal. Names compare by their
// NUL-terminated prefix; every other field, including Reserved, compares exactly.
func (l Lead) Equal(o Lead) bool {
	return l.Major == o.Major &&
		l.Minor == o.Minor &&
		l.Type == o.Type &&
		l.Arch == o.Arch &&
		l.NameString() == o.NameString() &&
		l.OS == o.OS &&
		l.SignatureType == o.SignatureType &&
		l.Reserved == o.Reserved
}

func supported(major, minor uint8) bool {
	switch {
	case major == 3 && minor == 0, major == 3 && minor == 1, major == 4 && minor == 0:
		return true
	default:
		return false
	}
}

// Decode reads exactly Size bytes from r and decodes a lead.
func Decode(r io.Reader) (Lead, error) {
	var buf [Size]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Lead{}, fmt.Errorf("read lead: %w", err)
	}
	return Parse(buf[:])
}

// Parse decodes a lead from the first Size bytes of b.
func Parse(b []byte) (Lead, error) {
	if len(b) < Size {
		return Lead{}, rpmtype.Errorf(rpmtype.SectionLead, rpmtype.ErrOutOfBounds, "need %d bytes, have %d", Size, len(b))
	}
	if !bytes.Equal(b[:4], Magic[:]) {
		return Lead{}, rpmtype.Errorf(rpmtype.SectionLead, rpmtype.ErrBadMagic, "% x", b[:4])
	}

	var l Lead
	l.Major, l.Minor = b[4], b[5]
	if !supported(l.Major, l.Minor) {
		return Lead{}, &rpmtype.VersionError{Major: l.Major, Minor: l.Minor}
	}
	l.Type = Type(binary.BigEndian.Uint16(b[6:8]))
	if l.Type != Binary && l.Type != Source {
		return Lead{}, rpmtype.Errorf(rpmtype.SectionLead, rpmtype.ErrInvalidEncoding, "package type %d", uint16(l.Type))
	}
	l.Arch = binary.BigEndian.Uint16(b[8:10])
	copy(l.Name[:], b[10:76])
	l.OS = binary.BigEndian.Uint16(b[76:78])
	l.SignatureType = binary.BigEndian.Uint16(b[78:80])
	copy(l.Reserved[:], b[80:96])
	return l, nil
}

// AppendBinary appends the 96-byte encoding of l to dst.
func (l Lead) AppendBinary(dst []byte) ([]byte, error) {
	if bytes.IndexByte(l.Name[:], 0) < 0 {
		return dst, rpmtype.Errorf(rpmtype.SectionLead, rpmtype.ErrNameTooLong, "name field is not NUL-terminated")
	}
	dst = append(dst, Magic[:]...)
	dst = append(dst, l.Major, l.Minor)
	dst = binary.BigEndian.AppendUint16(dst, uint16(l.Type))
	dst = binary.BigEndian.AppendUint16(dst, l.Arch)
	dst = append(dst, l.Name[:]...)
	dst = binary.BigEndian.AppendUint16(dst, l.OS)
	dst = binary.BigEndian.AppendUint16(dst, l.SignatureType)
	dst = append(dst, l.Reserved[:]...)
	return dst, nil
}

// Encode writes the 96-byte encoding of l to w.
func Encode(w io.Writer, l Lead) error {
	buf, err := l.AppendBinary(make([]byte, 0, Size))
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}
