// Package schema provides type definitions and the on-disk format for table schemas.
//
// The schema package defines the core data structures used throughout the database
// to represent tables, columns and foreign keys. A table's column order fixes the
// byte layout of its rows, so every column carries the exact width its kind
// occupies in a row.
//
// Key Types:
//   - Kind: closed set of column types (Integer, Text, Float, Boolean), each
//     with its own fixed width and encode/decode logic
//   - Column: name, kind, width, primary key, nullable and default value
//   - ForeignKey: a local column bound to a column of another table, with
//     OnDelete and OnUpdate actions
//   - Action: Restrict, NoAction, Cascade, SetNull, SetDefault
//   - Table: ordered columns plus foreign keys
//   - Migration: ordered schema changes producing a new Table and a row Plan
//
// Column Widths:
//   - Integer: 4 bytes, little-endian int32
//   - Float: 4 bytes, little-endian IEEE-754 float32
//   - Boolean: 1 byte
//   - Text: the declared maximum length, zero padded
//
// Schema File Format:
//
// MarshalBinary and Unmarshal implement the fixed-layout schema file. Names,
// type tags and default values occupy 32-byte slots; longer strings are
// truncated on write and Table.Truncations reports which ones would be.
//
// Usage Example:
//
//	users, err := schema.New([]schema.Column{
//		{Name: "ID", Kind: schema.Integer, PrimaryKey: true},
//		{Name: "Name", Kind: schema.Text, Width: 32},
//		{Name: "Age", Kind: schema.Integer, Nullable: true, Default: "20"},
//	}, nil)
//
//	data, err := users.MarshalBinary()
//	loaded, err := schema.Unmarshal(data)
//
//	next, plan, err := schema.Migration{Operations: []schema.MigrationOp{
//		&schema.AddColumnOp{Columns: []schema.Column{{Name: "Active", Kind: schema.Boolean}}},
//	}}.Apply(users)
package schema
