package schema

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"flatdb/dberror"
)

// Schema file layout, little-endian:
//
//	int32 column count
//	per column: [32]name [32]type tag int32 width u8 primary key u8 nullable [32]default
//	int32 foreign key count
//	per key: [32]column [32]ref table [32]ref column int32 on delete int32 on update
//
// Text slots are zero padded. Strings longer than IdentifierSize bytes are
// cut to IdentifierSize bytes, so an overlong identifier does not survive
// a round trip.
const (
	columnRecordSize = 3*IdentifierSize + 4 + 1 + 1
	fkRecordSize     = 3*IdentifierSize + 4 + 4
)

type columnRecord struct {
	Name       [IdentifierSize]byte
	Tag        [IdentifierSize]byte
	Width      int32
	PrimaryKey uint8
	Nullable   uint8
	Default    [IdentifierSize]byte
}

type fkRecord struct {
	Column    [IdentifierSize]byte
	RefTable  [IdentifierSize]byte
	RefColumn [IdentifierSize]byte
	OnDelete  int32
	OnUpdate  int32
}

func slot(s string) (b [IdentifierSize]byte) {
	copy(b[:], s)
	return b
}

// slotName is name as it reads back after a round trip through a slot.
func slotName(name string) string {
	return unslot(slot(name))
}

func unslot(b [IdentifierSize]byte) string {
	return string(bytes.TrimRight(b[:], "\x00"))
}

func flag(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

// MarshalBinary encodes the schema in the schema file layout.
func (t *Table) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Grow(8 + len(t.Columns)*columnRecordSize + len(t.ForeignKeys)*fkRecordSize)

	if err := binary.Write(buf, binary.LittleEndian, int32(len(t.Columns))); err != nil {
		return nil, err
	}
	for _, c := range t.Columns {
		rec := columnRecord{
			Name:       slot(c.Name),
			Tag:        slot(c.Kind.String()),
			Width:      int32(c.Width),
			PrimaryKey: flag(c.PrimaryKey),
			Nullable:   flag(c.Nullable),
			Default:    slot(c.Default),
		}
		if err := binary.Write(buf, binary.LittleEndian, &rec); err != nil {
			return nil, err
		}
	}

	if err := binary.Write(buf, binary.LittleEndian, int32(len(t.ForeignKeys))); err != nil {
		return nil, err
	}
	for _, fk := range t.ForeignKeys {
		rec := fkRecord{
			Column:    slot(fk.Column),
			RefTable:  slot(fk.RefTable),
			RefColumn: slot(fk.RefColumn),
			OnDelete:  int32(fk.OnDelete),
			OnUpdate:  int32(fk.OnUpdate),
		}
		if err := binary.Write(buf, binary.LittleEndian, &rec); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a schema file. Short or malformed input is reported
// as ErrSchemaNotFound, the same kind as a missing file.
func Unmarshal(data []byte) (*Table, error) {
	r := bytes.NewReader(data)
	corrupt := func(err error) error {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return dberror.Wrap("read schema", dberror.ErrSchemaNotFound, err)
	}

	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, corrupt(err)
	}
	if n < 0 || int(n) > r.Len()/columnRecordSize {
		return nil, dberror.New("read schema", dberror.ErrSchemaNotFound, "corrupt column count %d", n)
	}

	t := &Table{Columns: make([]Column, 0, n)}
	for range n {
		var rec columnRecord
		if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
			return nil, corrupt(err)
		}
		kind, err := ParseKind(unslot(rec.Tag))
		if err != nil {
			return nil, dberror.Wrap("read schema", dberror.ErrSchemaNotFound, err)
		}
		t.Columns = append(t.Columns, Column{
			Name:       unslot(rec.Name),
			Kind:       kind,
			Width:      int(rec.Width),
			PrimaryKey: rec.PrimaryKey != 0,
			Nullable:   rec.Nullable != 0,
			Default:    unslot(rec.Default),
		})
	}

	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, corrupt(err)
	}
	if n < 0 || int(n) > r.Len()/fkRecordSize {
		return nil, dberror.New("read schema", dberror.ErrSchemaNotFound, "corrupt foreign key count %d", n)
	}
	for range n {
		var rec fkRecord
		if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
			return nil, corrupt(err)
		}
		t.ForeignKeys = append(t.ForeignKeys, ForeignKey{
			Column:    unslot(rec.Column),
			RefTable:  unslot(rec.RefTable),
			RefColumn: unslot(rec.RefColumn),
			OnDelete:  Action(rec.OnDelete),
			OnUpdate:  Action(rec.OnUpdate),
		})
	}
	return t, nil
}
