package header

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is the on-disk type identifier of an index entry.
type Type uint32

// Index entry types.
const (
	TypeNull        Type = 0
	TypeChar        Type = 1
	TypeInt8        Type = 2
	TypeInt16       Type = 3
	TypeInt32       Type = 4
	TypeInt64       Type = 5
	TypeString      Type = 6
	TypeBinary      Type = 7
	TypeStringArray Type = 8
	TypeI18NString  Type = 9
)

func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeChar:
		return "char"
	case TypeInt8:
		return "int8"
	case TypeInt16:
		return "int16"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeString:
		return "string"
	case TypeBinary:
		return "bin"
	case TypeStringArray:
		return "string_array"
	case TypeI18NString:
		return "i18nstring"
	default:
		return "type(" + strconv.FormatUint(uint64(t), 10) + ")"
	}
}

// width returns the element size of fixed-width types, or 0.
func (t Type) width() uint64 {
	switch t {
	case TypeChar, TypeInt8:
		return 1
	case TypeInt16:
		return 2
	case TypeInt32:
		return 4
	case TypeInt64:
		return 8
	default:
		return 0
	}
}

// Value is a decoded index entry value. The concrete type is one of
// Null, Char, Int8, Int16, Int32, Int64, String, StringArray, Binary,
// I18NString, or Unknown.
type Value interface {
	// Type returns the on-disk type identifier.
	Type() Type
	// Count returns the index entry count the value encodes with.
	Count() int
	isValue()
}

// Null is the NULL type.
type Null struct{}

// Char is a sequence of single-byte characters.
type Char []byte

// Int8 is one or more 8-bit integers. A one-element slice is a scalar.
type Int8 []uint8

// Int16 is one or more 16-bit integers.
type Int16 []uint16

// Int32 is one or more 32-bit integers.
type Int32 []uint32

// Int64 is one or more 64-bit integers.
type Int64 []uint64

// String is a single NUL-terminated string.
type String string

// StringArray is a sequence of NUL-terminated strings packed consecutively.
type StringArray []string

// Binary is a raw byte range.
type Binary []byte

// I18NString holds one string per locale in the header's I18N table.
type I18NString []string

// Unknown stands in for an entry whose type identifier is not recognized.
// It is produced by Decode and rejected by Encode.
type Unknown struct {
	ID    Type
	Items uint32
}

func (Null) Type() Type        { return TypeNull }
func (Char) Type() Type        { return TypeChar }
func (Int8) Type() Type        { return TypeInt8 }
func (Int16) Type() Type       { return TypeInt16 }
func (Int32) Type() Type       { return TypeInt32 }
func (Int64) Type() Type       { return TypeInt64 }
func (String) Type() Type      { return TypeString }
func (StringArray) Type() Type { return TypeStringArray }
func (Binary) Type() Type      { return TypeBinary }
func (I18NString) Type() Type  { return TypeI18NString }
func (u Unknown) Type() Type   { return u.ID }

func (Null) Count() int          { return 1 }
func (v Char) Count() int        { return len(v) }
func (v Int8) Count() int        { return len(v) }
func (v Int16) Count() int       { return len(v) }
func (v Int32) Count() int       { return len(v) }
func (v Int64) Count() int       { return len(v) }
func (String) Count() int        { return 1 }
func (v StringArray) Count() int { return len(v) }
func (v Binary) Count() int      { return len(v) }
func (v I18NString) Count() int  { return len(v) }
func (u Unknown) Count() int     { return int(u.Items) }

func (Null) isValue()        {}
func (Char) isValue()        {}
func (Int8) isValue()        {}
func (Int16) isValue()       {}
func (Int32) isValue()       {}
func (Int64) isValue()       {}
func (String) isValue()      {}
func (StringArray) isValue() {}
func (Binary) isValue()      {}
func (I18NString) isValue()  {}
func (Unknown) isValue()     {}

// Uint64s widens any integer value to a slice of uint64.
func Uint64s(v Value) ([]uint64, bool) {
	switch v := v.(type) {
	case Int8:
		return widen(v), true
	case Int16:
		return widen(v), true
	case Int32:
		return widen(v), true
	case Int64:
		return append([]uint64(nil), v...), true
	default:
		return nil, false
	}
}

func widen[T uint8 | uint16 | uint32](in []T) []uint64 {
	out := make([]uint64, len(in))
	for i, x := range in {
		out[i] = uint64(x)
	}
	return out
}

// Uint64 returns the first element of an integer value.
func Uint64(v Value) (uint64, bool) {
	vals, ok := Uint64s(v)
	if !ok || len(vals) == 0 {
		return 0, false
	}
	return vals[0], true
}

// Str returns the text of a string-like value. I18N strings and string
// arrays yield their first element.
func Str(v Value) (string, bool) {
	switch v := v.(type) {
	case String:
		return string(v), true
	case I18NString:
		if len(v) == 0 {
			return "", false
		}
		return v[0], true
	case StringArray:
		if len(v) == 0 {
			return "", false
		}
		return v[0], true
	default:
		return "", false
	}
}

// Strs returns the elements of a string-like value.
func Strs(v Value) ([]string, bool) {
	switch v := v.(type) {
	case String:
		return []string{string(v)}, true
	case StringArray:
		return []string(v), true
	case I18NString:
		return []string(v), true
	default:
		return nil, false
	}
}

// Format renders v for display.
func Format(v Value) string {
	switch v := v.(type) {
	case nil:
		return ""
	case Null:
		return ""
	case Char:
		return string(v)
	case String:
		return string(v)
	case StringArray:
		return strings.Join(v, ", ")
	case I18NString:
		return strings.Join(v, ", ")
	case Binary:
		return fmt.Sprintf("%x", []byte(v))
	case Unknown:
		return fmt.Sprintf("<unknown %s x%d>", v.ID, v.Items)
	}
	if vals, ok := Uint64s(v); ok {
		parts := make([]string, len(vals))
		for i, x := range vals {
			parts[i] = strconv.FormatUint(x, 10)
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v)
}
