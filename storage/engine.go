package storage

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"os"

	"flatdb/dberror"
)

// RowFile is a table's row data file.
//
// Format: rows are stored back to back with no header or separators, each
// exactly Layout.Width() bytes. A trailing chunk shorter than one row is
// the remains of an interrupted append and is ignored by scans.
type RowFile struct {
	Path   string
	Layout *Layout
}

// NewRowFile binds a row file path to its layout.
func NewRowFile(path string, layout *Layout) *RowFile {
	return &RowFile{Path: path, Layout: layout}
}

// Create creates an empty row file, truncating any existing one.
func (f *RowFile) Create() error {
	file, err := os.Create(f.Path)
	if err != nil {
		return dberror.Wrap("create rows", dberror.ErrIO, err)
	}
	return dberror.Wrap("create rows", dberror.ErrIO, file.Close())
}

// Append writes one encoded row at the end of the file.
func (f *RowFile) Append(raw []byte) error {
	if len(raw) != f.Layout.Width() {
		return dberror.New("append", dberror.ErrEncoding, "row is %d bytes, layout needs %d", len(raw), f.Layout.Width())
	}
	file, err := os.OpenFile(f.Path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return dberror.Wrap("append", dberror.ErrIO, err)
	}
	if _, err := file.Write(raw); err != nil {
		file.Close()
		return dberror.Wrap("append", dberror.ErrIO, err)
	}
	return dberror.Wrap("append", dberror.ErrIO, file.Close())
}

// Truncate removes every row.
func (f *RowFile) Truncate() error {
	return dberror.Wrap("truncate", dberror.ErrIO, os.Truncate(f.Path, 0))
}

// ScanRaw yields the raw bytes of every row in file order. The file is
// opened anew on each iteration and closed when the loop ends, including
// on break. Each yielded slice is freshly allocated.
func (f *RowFile) ScanRaw() iter.Seq2[[]byte, error] {
	return scanFile(f.Path, f.Layout.Width())
}

// Scan yields every row decoded.
func (f *RowFile) Scan() iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		for raw, err := range f.ScanRaw() {
			if err != nil {
				yield(Row{}, err)
				return
			}
			row, err := f.Layout.Decode(raw)
			if !yield(row, err) || err != nil {
				return
			}
		}
	}
}

// Count returns the number of complete rows.
func (f *RowFile) Count() (int, error) {
	info, err := os.Stat(f.Path)
	if err != nil {
		return 0, dberror.Wrap("count", dberror.ErrIO, err)
	}
	return int(info.Size()) / f.Layout.Width(), nil
}

func scanFile(path string, width int) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		file, err := os.Open(path)
		if err != nil {
			yield(nil, dberror.Wrap("scan", dberror.ErrIO, err))
			return
		}
		defer file.Close()

		r := bufio.NewReader(file)
		for {
			raw := make([]byte, width)
			if _, err := io.ReadFull(r, raw); err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
					return
				}
				yield(nil, dberror.Wrap("scan", dberror.ErrIO, err))
				return
			}
			if !yield(raw, nil) {
				return
			}
		}
	}
}
