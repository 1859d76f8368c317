package schema

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"flatdb/dberror"
)

// Kind is the storage type of a column. Each kind knows its own fixed
// width and how to write a string value into its slot and read it back.
type Kind uint8

const (
	Integer Kind = iota
	Text
	Float
	Boolean
)

// Tags written to schema files. They are the legacy on-disk spellings.
const (
	tagInteger = "integer"
	tagText    = "str"
	tagFloat   = "number"
	tagBoolean = "bool"
)

// String returns the on-disk type tag.
func (k Kind) String() string {
	switch k {
	case Integer:
		return tagInteger
	case Text:
		return tagText
	case Float:
		return tagFloat
	case Boolean:
		return tagBoolean
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind accepts the on-disk tags as well as the usual SQL spellings.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case tagInteger, "int", "int32":
		return Integer, nil
	case tagText, "text", "string", "varchar", "char":
		return Text, nil
	case tagFloat, "float", "double", "real":
		return Float, nil
	case tagBoolean, "boolean":
		return Boolean, nil
	}
	return 0, fmt.Errorf("unknown column type %q", s)
}

// MarshalText writes the type tag, so kinds read as names in JSON.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText accepts anything ParseKind does.
func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k <= Boolean
}

// Numeric reports whether values of this kind compare by parsed number.
func (k Kind) Numeric() bool {
	return k == Integer || k == Float
}

// FixedWidth returns the slot size for fixed-size kinds and 0 for Text,
// whose width is its declared maximum length.
func (k Kind) FixedWidth() int {
	switch k {
	case Integer, Float:
		return 4
	case Boolean:
		return 1
	}
	return 0
}

// Encode writes value into dst, which must be exactly the column width.
// An empty value for a numeric kind writes zero bytes.
func (k Kind) Encode(dst []byte, value string) error {
	clear(dst)
	switch k {
	case Integer:
		if value == "" {
			return nil
		}
		n, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return dberror.New("", dberror.ErrEncoding, "invalid integer %q", value)
		}
		binary.LittleEndian.PutUint32(dst, uint32(int32(n)))
	case Float:
		if value == "" {
			return nil
		}
		f, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return dberror.New("", dberror.ErrEncoding, "invalid number %q", value)
		}
		binary.LittleEndian.PutUint32(dst, math.Float32bits(float32(f)))
	case Boolean:
		if value == "true" || value == "1" {
			dst[0] = 1
		}
	case Text:
		copy(dst, value)
	default:
		return dberror.New("", dberror.ErrEncoding, "unknown kind %d", uint8(k))
	}
	return nil
}

// Decode reads the string form of a slot written by Encode.
func (k Kind) Decode(src []byte) string {
	switch k {
	case Integer:
		return strconv.FormatInt(int64(int32(binary.LittleEndian.Uint32(src))), 10)
	case Float:
		f := math.Float32frombits(binary.LittleEndian.Uint32(src))
		return strconv.FormatFloat(float64(f), 'f', -1, 32)
	case Boolean:
		if src[0] != 0 {
			return "true"
		}
		return "false"
	default:
		return string(bytes.TrimRight(src, "\x00"))
	}
}

// Check reports whether value can be encoded as k.
func (k Kind) Check(value string) error {
	w := k.FixedWidth()
	if w == 0 {
		return nil
	}
	return k.Encode(make([]byte, w), value)
}

// Action is what happens to matching rows when a foreign key fires.
type Action int32

const (
	Restrict Action = iota
	NoAction
	Cascade
	SetNull
	SetDefault
)

func (a Action) String() string {
	switch a {
	case Restrict:
		return "RESTRICT"
	case NoAction:
		return "NO ACTION"
	case Cascade:
		return "CASCADE"
	case SetNull:
		return "SET NULL"
	case SetDefault:
		return "SET DEFAULT"
	default:
		return fmt.Sprintf("ACTION(%d)", int32(a))
	}
}

func (a Action) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Action) UnmarshalText(text []byte) error {
	v, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Valid reports whether a is a known action code.
func (a Action) Valid() bool {
	return a >= Restrict && a <= SetDefault
}

// Blocks reports whether the action rejects the triggering statement.
func (a Action) Blocks() bool {
	return a == Restrict || a == NoAction
}

// ParseAction parses the SQL spelling of an action. Underscores and
// repeated spaces are accepted, so "set_null" and "SET  NULL" both work.
func ParseAction(s string) (Action, error) {
	norm := strings.Join(strings.Fields(strings.ReplaceAll(strings.ToUpper(s), "_", " ")), " ")
	switch norm {
	case "RESTRICT", "":
		return Restrict, nil
	case "NO ACTION", "NOACTION":
		return NoAction, nil
	case "CASCADE":
		return Cascade, nil
	case "SET NULL", "SETNULL":
		return SetNull, nil
	case "SET DEFAULT", "SETDEFAULT":
		return SetDefault, nil
	}
	return 0, fmt.Errorf("unknown foreign key action %q", s)
}
