// Package catalog provides database catalog management functionality.
//
// The catalog is responsible for the on-disk layout of one database: a directory
// holding one subdirectory per table. A table directory contains exactly three
// files, named after the table:
//
//	<table>/<table>.schema   binary schema, see schema.Table.MarshalBinary
//	<table>/<table>.rows     fixed-width row data, see storage.RowFile
//	<table>/<table>.aux      reserved, created empty
//
// Key Responsibilities:
//   - Creating, dropping, renaming and listing tables
//   - Reading schema files on every lookup (there is no schema cache)
//   - Replacing schema files atomically through a storage.SwapSet
//   - Finding the tables whose foreign keys reference a given table
//
// Usage Example:
//
//	cat, err := catalog.New("./DB/TestDB")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	users, err := schema.New([]schema.Column{
//		{Name: "ID", Kind: schema.Integer, PrimaryKey: true},
//		{Name: "Name", Kind: schema.Text, Width: 32},
//	}, nil)
//	err = cat.CreateTable("users", users)
//
//	table, err := cat.GetTable("users")
//	rows := cat.Rows(table)
//
// Package catalog works closely with the schema package for the file format
// and with the storage package for row files. It is used by the database
// package to resolve table names into schemas and files.
package catalog
