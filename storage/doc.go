// Package storage provides the fixed-width row codec and row file primitives.
//
// The storage package is responsible for physical data storage. Every row of a
// table has the same byte width, fixed by the table's schema, so rows are stored
// back to back and addressed purely by position.
//
// Key Components:
//   - Layout: column offsets for a schema, with Encode/Decode between
//     ordered string values and row bytes
//   - RowFile: append-only writes and lazy, restartable scans of a row file
//   - SwapSet: copy-on-write rewrites through temp files, committed together
//     by rename or discarded together
//   - Migrator: converts rows between two versions of a schema
//
// Storage Format:
//   - Integer: 4 bytes little-endian int32
//   - Float: 4 bytes little-endian float32
//   - Boolean: 1 byte, 1 for true
//   - Text: the declared width, zero padded, trailing zeros trimmed on read
//
// Empty values in numeric columns are stored as zero bytes and read back as "0".
//
// Usage Example:
//
//	layout := storage.NewLayout(table)
//	rows := storage.NewRowFile("DB/TestDB/T/T.rows", layout)
//
//	raw, err := layout.Encode([]string{"1", "Alice", "30"})
//	err = rows.Append(raw)
//
//	for row, err := range rows.Scan() {
//		if err != nil {
//			return err
//		}
//		fmt.Println(row.Values)
//	}
//
//	swap := storage.NewSwapSet()
//	defer swap.Discard()
//	n, err := swap.Rewrite(rows, func(raw []byte) ([]byte, bool, error) {
//		return raw, layout.DecodeField(raw, 0) != "1", nil
//	})
//	err = swap.Commit()
//
// The package performs no locking. Callers must not run two operations
// against the same file concurrently.
package storage
