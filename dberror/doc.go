// Package dberror defines the error kinds reported by the storage engine.
//
// Every failure that crosses a package boundary is classified by one of the
// sentinel kinds below. Callers test for a kind with errors.Is, and for the
// underlying cause (for example fs.ErrNotExist) the same way:
//
//	if errors.Is(err, dberror.ErrConstraintViolation) {
//		// the statement was rejected, no file was changed
//	}
//
// Key Kinds:
//   - ErrSchemaNotFound: a table's schema file is missing or corrupt
//   - ErrColumnNotFound / ErrDuplicateColumn / ErrInvalidColumn: column definition problems
//   - ErrConstraintViolation: nullability, primary key or foreign key rules
//   - ErrEncoding: a value could not be written into its fixed-width slot
//   - ErrAlreadyExists: a create or rename target is taken
//   - ErrIO: the filesystem refused a read or write
package dberror
