// Package database provides the storage and constraint engine and its high-level operations.
//
// The database package orchestrates the catalog, schema and storage packages. Each
// operation reads the table schema from disk, derives the row layout, and streams
// through the row file. There is no query language, index or log: every operation
// is a full linear scan, and every mutation is a copy-on-write rewrite.
//
// Architecture:
//   - File-Based: a database is a directory, a table a subdirectory of three files
//   - Copy-On-Write: update, delete, alter and foreign key actions write temp
//     files and rename them into place only after a full successful pass
//   - Statement-Atomic: all files touched by one statement are committed
//     together, or none are
//   - Unsynchronized: no locking; callers must not run two operations on
//     the same table concurrently
//
// Key Responsibilities:
//   - Creating, opening, listing and dropping databases (Session tracks the
//     selected one per client)
//   - Record operations (Insert, Scan, Update, Delete, Truncate)
//   - Constraint checks: nullability, defaults, primary keys and foreign keys
//   - Foreign key actions (RESTRICT, NO ACTION, CASCADE, SET NULL, SET DEFAULT)
//   - Schema evolution (AddColumns, DropColumns, ModifyColumn, RenameColumn,
//     ChangeColumn, AddForeignKey, DropForeignKey, RenameTable)
//   - Query operators (Select, OrderBy, InnerJoin, ReadColumn)
//
// Foreign Keys:
//
// When a row carrying a foreign key is deleted, or its foreign key column is
// updated, the key's action is applied to the rows of the referenced table whose
// reference column holds the old value: RESTRICT and NO ACTION abort the
// statement, CASCADE removes those rows, SET NULL zeroes the column and
// SET DEFAULT writes the column default. Independently, deleting or changing a
// value that rows of another table reference through a RESTRICT or NO ACTION
// key is rejected.
//
// Usage Example:
//
//	err := database.CreateDatabase("./DB", "TestDB")
//	db, err := database.Open("./DB", "TestDB", database.WithLogger(log))
//
//	users, _ := schema.New([]schema.Column{
//		{Name: "ID", Kind: schema.Integer, PrimaryKey: true},
//		{Name: "Name", Kind: schema.Text, Width: 32},
//		{Name: "Age", Kind: schema.Integer, Nullable: true, Default: "20"},
//	}, nil)
//	err = db.CreateTable("T", users)
//
//	err = db.Insert("T", []string{"1", "Alice", "30"})
//
//	res, err := db.Select("T", []string{"Name"}, database.Where{
//		{Column: "Age", Op: database.Gt, Value: "25"},
//	})
//
//	n, err := db.Update("T", database.Where{{Column: "ID", Op: database.Eq, Value: "1"}},
//		map[string]string{"Age": "31"})
package database
