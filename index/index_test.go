package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextIndex(t *testing.T) {
	idx := New(false)
	idx.Add("Alice", 0)
	idx.Add("Bob", 1)
	idx.Add("Alice", 2)

	assert.Equal(t, []int{0, 2}, idx.Lookup("Alice"))
	assert.Equal(t, []int{1}, idx.Lookup("Bob"))
	assert.Nil(t, idx.Lookup("alice"))
	assert.True(t, idx.Exists("Bob"))
	assert.Equal(t, 2, idx.Len())
}

func TestNumericIndex(t *testing.T) {
	idx := New(true)
	idx.Add("2", 0)
	idx.Add("2.0", 1)
	idx.Add("-0", 2)
	idx.Add("abc", 3)
	idx.Add("NaN", 4)

	assert.Equal(t, []int{0, 1}, idx.Lookup("2e0"))
	assert.Equal(t, []int{2}, idx.Lookup("0"))
	assert.Nil(t, idx.Lookup("abc"))
	assert.False(t, idx.Exists("NaN"))
	assert.Equal(t, 2, idx.Len())
}
