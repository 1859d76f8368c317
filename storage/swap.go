package storage

import (
	"bufio"
	"errors"
	"iter"
	"os"
	"path/filepath"

	"flatdb/dberror"
)

// RewriteFunc maps one stored row to its replacement. Returning keep=false
// drops the row. The returned slice may be raw itself.
type RewriteFunc func(raw []byte) (out []byte, keep bool, err error)

// SwapSet collects the temp files produced by one statement. Nothing is
// visible until Commit renames every temp file over its target; Discard
// throws them all away. A file rewritten twice in the same set is read
// back from its pending temp file, so later passes see earlier ones.
type SwapSet struct {
	pending map[string]string
	order   []string
}

// NewSwapSet returns an empty set.
func NewSwapSet() *SwapSet {
	return &SwapSet{pending: make(map[string]string)}
}

// Source returns the path holding the current contents of target:
// its pending temp file if one exists, else target itself.
func (s *SwapSet) Source(target string) string {
	if tmp, ok := s.pending[target]; ok {
		return tmp
	}
	return target
}

// Len returns the number of pending files.
func (s *SwapSet) Len() int { return len(s.order) }

// Scan reads f through the set, seeing any pending rewrite of it.
func (s *SwapSet) Scan(f *RowFile) iter.Seq2[[]byte, error] {
	return scanFile(s.Source(f.Path), f.Layout.Width())
}

// Rewrite streams every row of f through fn into a new temp file and
// stages it. It returns how many rows fn changed or dropped. On error the
// new temp file is removed and the set is left as it was.
func (s *SwapSet) Rewrite(f *RowFile, fn RewriteFunc) (int, error) {
	tmp, err := createTemp(f.Path)
	if err != nil {
		return 0, err
	}
	w := bufio.NewWriter(tmp)

	affected := 0
	err = func() error {
		for raw, err := range s.Scan(f) {
			if err != nil {
				return err
			}
			orig := string(raw)
			out, keep, err := fn(raw)
			if err != nil {
				return err
			}
			if !keep {
				affected++
				continue
			}
			if string(out) != orig {
				affected++
			}
			if _, err := w.Write(out); err != nil {
				return dberror.Wrap("rewrite", dberror.ErrIO, err)
			}
		}
		return dberror.Wrap("rewrite", dberror.ErrIO, w.Flush())
	}()
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = dberror.Wrap("rewrite", dberror.ErrIO, cerr)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return 0, err
	}
	s.replace(f.Path, tmp.Name())
	return affected, nil
}

// Stage stages data as the new full contents of target.
func (s *SwapSet) Stage(target string, data []byte) error {
	tmp, err := createTemp(target)
	if err != nil {
		return err
	}
	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return dberror.Wrap("stage", dberror.ErrIO, err)
	}
	s.replace(target, tmp.Name())
	return nil
}

func (s *SwapSet) replace(target, tmp string) {
	if old, ok := s.pending[target]; ok {
		os.Remove(old)
	} else {
		s.order = append(s.order, target)
	}
	s.pending[target] = tmp
}

// Commit renames every pending temp file over its target in staging
// order. If a rename fails the remaining temp files are discarded.
func (s *SwapSet) Commit() error {
	for len(s.order) > 0 {
		target := s.order[0]
		tmp := s.pending[target]
		s.order = s.order[1:]
		delete(s.pending, target)
		if err := os.Rename(tmp, target); err != nil {
			os.Remove(tmp)
			return errors.Join(dberror.Wrap("commit", dberror.ErrIO, err), s.discard())
		}
	}
	return nil
}

// Discard removes every pending temp file. Targets are left untouched.
func (s *SwapSet) Discard() {
	s.discard()
}

func (s *SwapSet) discard() error {
	var errs []error
	for _, target := range s.order {
		if err := os.Remove(s.pending[target]); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
		delete(s.pending, target)
	}
	s.order = nil
	return errors.Join(errs...)
}

func createTemp(target string) (*os.File, error) {
	tmp, err := os.CreateTemp(filepath.Dir(target), filepath.Base(target)+".*.tmp")
	if err != nil {
		return nil, dberror.Wrap("create temp", dberror.ErrIO, err)
	}
	return tmp, nil
}
