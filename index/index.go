package index

import (
	"math"
	"strconv"
)

// Index is a hash index from column values to the positions of the rows
// holding them. It is built for one query and thrown away.
type Index struct {
	numeric bool
	Data    map[string][]int // key -> positions in insertion order
}

// New creates an empty index. A numeric index compares values as numbers,
// so "2", "2.0" and "2e0" share a key and unparsable values never match.
func New(numeric bool) *Index {
	return &Index{
		numeric: numeric,
		Data:    make(map[string][]int),
	}
}

// Key returns the key value is stored under, or false if value can never
// match anything.
func (idx *Index) Key(value string) (string, bool) {
	if !idx.numeric {
		return value, true
	}
	x, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(x) {
		return "", false
	}
	if x == 0 {
		x = 0 // -0
	}
	return strconv.FormatFloat(x, 'g', -1, 64), true
}

// Add records that the row at pos holds value.
func (idx *Index) Add(value string, pos int) {
	if key, ok := idx.Key(value); ok {
		idx.Data[key] = append(idx.Data[key], pos)
	}
}

// Lookup returns the positions of the rows equal to value, in the order
// they were added.
func (idx *Index) Lookup(value string) []int {
	key, ok := idx.Key(value)
	if !ok {
		return nil
	}
	return idx.Data[key]
}

// Exists checks if any row holds value.
func (idx *Index) Exists(value string) bool {
	return len(idx.Lookup(value)) > 0
}

// Len returns the number of distinct keys.
func (idx *Index) Len() int {
	return len(idx.Data)
}
