// Package parser turns statement text into Statement values.
//
// The language is a small SQL dialect over the operations of the database
// package. Statements are recognised by their leading keywords and picked
// apart with regular expressions; column definitions and ALTER TABLE actions
// go through a quote-aware tokenizer.
//
// Supported statements:
//   - CREATE DATABASE d, DROP DATABASE d, SHOW DATABASES, USE d
//   - SHOW TABLES, DESCRIBE t, DROP TABLE t, TRUNCATE TABLE t, RENAME TABLE a TO b
//   - CREATE TABLE t (col type[(width)] [PRIMARY KEY] [NOT NULL] [DEFAULT v]
//     [REFERENCES r(c) [ON DELETE action] [ON UPDATE action]], ...)
//   - INSERT INTO t [(cols)] VALUES (v, ...)
//   - SELECT fields FROM t [WHERE c op v [AND ...]] [ORDER BY c [ASC|DESC], ...]
//   - SELECT fields FROM a JOIN b ON a.x = b.y
//   - SELECT COUNT(*)|COUNT(c)|SUM(c)|AVG(c)|MIN(c)|MAX(c) FROM t [WHERE ...]
//   - UPDATE t SET c = v[, ...] [WHERE ...]
//   - DELETE FROM t [WHERE ...]
//   - ALTER TABLE t ADD COLUMN def | DROP COLUMN c[, ...] | MODIFY COLUMN def |
//     RENAME COLUMN a TO b | CHANGE COLUMN a def | ADD FOREIGN KEY (c) REFERENCES r(c) |
//     DROP FOREIGN KEY c | RENAME TO n
//
// Column types are the kind names accepted by schema.ParseKind. Values may
// be quoted with ' or "; an unquoted NULL is the empty value. Keywords are
// case-insensitive, names are not.
//
// Usage Example:
//
//	p := parser.New()
//
//	stmt, err := p.Parse("SELECT Name FROM Users WHERE Age >= 21 ORDER BY Name")
//	if err != nil {
//		log.Fatal(err)
//	}
//	// stmt.Type == parser.Select
//	// stmt.Name == "Users"
//	// stmt.Where[0] == database.Condition{Column: "Age", Op: database.Ge, Value: "21"}
//
// Text that matches no statement fails with dberror.ErrSyntax.
package parser
