package pyparser

import "sort"

// LineIndex maps byte offsets in a source file to 1-based line numbers.
// Lookup is O(log n) over the recorded line-start offsets.
type LineIndex struct {
	starts []uint32
}

// NewLineIndex builds the index in a single pass over the source.
func NewLineIndex(source []byte) *LineIndex {
	starts := []uint32{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, uint32(i)+1)
		}
	}
	return &LineIndex{starts: starts}
}

// Line returns the 1-based line number containing the given byte offset.
// Offset 0 is always line 1.
func (ix *LineIndex) Line(offset uint32) uint32 {
	// First start strictly greater than offset; the line is the one before it.
	i := sort.Search(len(ix.starts), func(i int) bool {
		return ix.starts[i] > offset
	})
	return uint32(i)
}

// Count returns the number of lines in the indexed source.
func (ix *LineIndex) Count() int {
	return len(ix.starts)
}
