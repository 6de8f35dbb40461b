package scanner

import (
	"sort"

	"sidx/pkg/iface/stateif"
	"sidx/pkg/memstore"
	"sidx/pkg/model"
	"sidx/pkg/tracking"
)

// Builder produces filtered views over one overlay store. Every build call
// snapshots the store layers anew; a scanner is single-pass, rebuilding is
// the only way to restart.
type Builder struct {
	store *memstore.Store
	cmp   model.Comparator
}

func NewBuilder(store *memstore.Store) *Builder {
	return &Builder{
		store: store,
		cmp:   store.Comparator(),
	}
}

// BuildIndexedColumnScanner merges the staged pending cells with both store
// layers, restricted to columns and capped at ceiling. Cells above the
// ceiling are dropped from the view but their timestamps are recorded into
// tracker as the scan consumes them: the tracker ends up describing exactly
// what this read saw and what it had to skip.
func (b *Builder) BuildIndexedColumnScanner(pending []*model.Cell, columns []*model.ColumnRef, tracker *tracking.ColumnTracker, ceiling uint64) stateif.Scanner {
	return b.build(pending, columns, tracker, ceiling)
}

// BuildNonIndexedColumnsScanner is the tracker-free variant, for columns no
// index depends on.
func (b *Builder) BuildNonIndexedColumnsScanner(columns []*model.ColumnRef, ceiling uint64) stateif.Scanner {
	return b.build(nil, columns, nil, ceiling)
}

func (b *Builder) build(pending []*model.Cell, columns []*model.ColumnRef, tracker *tracking.ColumnTracker, ceiling uint64) stateif.Scanner {
	include := func(c *model.Cell) bool {
		if !matchesAny(columns, c) {
			return false
		}
		if c.Ts > ceiling {
			if tracker != nil {
				tracker.SetTs(c.Ts)
			}
			return false
		}
		return true
	}
	return newMergeScanner(b.cmp, include,
		b.sortedPending(pending), b.store.DeltaCells(), b.store.BaseCells())
}

func matchesAny(columns []*model.ColumnRef, c *model.Cell) bool {
	for _, ref := range columns {
		if ref.Matches(c) {
			return true
		}
	}
	return false
}

// sortedPending puts staged cells into comparator order. Staging order breaks
// identity ties, the latest staged cell wins.
func (b *Builder) sortedPending(pending []*model.Cell) []*model.Cell {
	if len(pending) == 0 {
		return nil
	}
	sorted := make([]*model.Cell, len(pending))
	copy(sorted, pending)
	sort.SliceStable(sorted, func(i, j int) bool {
		return b.cmp.Compare(sorted[i], sorted[j]) < 0
	})
	deduped := sorted[:0]
	for _, cell := range sorted {
		if len(deduped) > 0 && b.cmp.Compare(deduped[len(deduped)-1], cell) == 0 {
			deduped[len(deduped)-1] = cell
			continue
		}
		deduped = append(deduped, cell)
	}
	return deduped
}
