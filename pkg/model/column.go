package model

import (
	"bytes"
	"fmt"
	"sort"
)

// ColumnRef names a column inside a row. An empty qualifier is a family-wide
// reference and matches every qualifier under the family.
type ColumnRef struct {
	Family    []byte
	Qualifier []byte
}

func NewColumnRef(family, qualifier []byte) *ColumnRef {
	return &ColumnRef{Family: family, Qualifier: qualifier}
}

func (ref *ColumnRef) Matches(c *Cell) bool {
	if !bytes.Equal(ref.Family, c.Family) {
		return false
	}
	if len(ref.Qualifier) == 0 {
		return true
	}
	return bytes.Equal(ref.Qualifier, c.Qualifier)
}

func (ref *ColumnRef) Equal(o *ColumnRef) bool {
	return bytes.Equal(ref.Family, o.Family) && bytes.Equal(ref.Qualifier, o.Qualifier)
}

func (ref *ColumnRef) String() string {
	return fmt.Sprintf("%s:%s", ref.Family, ref.Qualifier)
}

func CompareColumnRefs(a, b *ColumnRef) int {
	if r := bytes.Compare(a.Family, b.Family); r != 0 {
		return r
	}
	return bytes.Compare(a.Qualifier, b.Qualifier)
}

// SortedColumnRefs returns a defensive copy, sorted and deduped. Trackers key
// themselves on this canonical form.
func SortedColumnRefs(refs []*ColumnRef) []*ColumnRef {
	sorted := make([]*ColumnRef, len(refs))
	copy(sorted, refs)
	sort.Slice(sorted, func(i, j int) bool {
		return CompareColumnRefs(sorted[i], sorted[j]) < 0
	})
	deduped := sorted[:0]
	for _, ref := range sorted {
		if len(deduped) > 0 && deduped[len(deduped)-1].Equal(ref) {
			continue
		}
		deduped = append(deduped, ref)
	}
	return deduped
}
