package scanner

import (
	"bytes"

	"sidx/pkg/iface/stateif"
	"sidx/pkg/model"
)

type deleteMask struct {
	inner stateif.Scanner
	cmp   model.Comparator
	// highest tombstone ts per column, valid while the scan stays on it
	family    []byte
	qualifier []byte
	maskTs    uint64
	armed     bool
	next      *model.Cell
}

// MaskDeletes wraps a scanner so tombstones are applied instead of emitted:
// a tombstone at ts hides every put at or below ts in the same column. The
// inner scanner must come from a Builder, the mask relies on its ordering.
func MaskDeletes(inner stateif.Scanner, cmp model.Comparator) stateif.Scanner {
	mask := &deleteMask{inner: inner, cmp: cmp}
	mask.advance()
	return mask
}

func (mask *deleteMask) sameColumn(c *model.Cell) bool {
	return bytes.Equal(mask.family, c.Family) && bytes.Equal(mask.qualifier, c.Qualifier)
}

func (mask *deleteMask) advance() {
	for {
		cell := mask.inner.Next()
		if cell == nil {
			mask.next = nil
			return
		}
		if !mask.armed || !mask.sameColumn(cell) {
			mask.family = cell.Family
			mask.qualifier = cell.Qualifier
			mask.armed = false
		}
		if cell.Tombstone {
			// newest first, so the first tombstone in a column has the
			// highest ts
			if !mask.armed {
				mask.armed = true
				mask.maskTs = cell.Ts
			}
			continue
		}
		if mask.armed && cell.Ts <= mask.maskTs {
			continue
		}
		mask.next = cell
		return
	}
}

func (mask *deleteMask) Peek() *model.Cell {
	return mask.next
}

func (mask *deleteMask) Next() *model.Cell {
	cell := mask.next
	if cell != nil {
		mask.advance()
	}
	return cell
}

func (mask *deleteMask) Seek(target *model.Cell) bool {
	for mask.next != nil && mask.cmp.Compare(mask.next, target) < 0 {
		mask.advance()
	}
	return mask.next != nil
}
