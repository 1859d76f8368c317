// Package index provides hash-based lookups of column values.
//
// An Index maps column values to the positions of the rows holding them.
// It lives only as long as one query: the join operator builds one over the
// right table so every left row finds its matches without rescanning the
// file. Tables carry no persistent indexes.
//
// Usage Example:
//
//	idx := index.New(true) // numeric column
//	idx.Add("2", 0)
//	idx.Add("3", 1)
//	idx.Add("2.0", 2)
//
//	idx.Lookup("2") // [0 2]
//	idx.Lookup("x") // nil, never equal to a number
package index
