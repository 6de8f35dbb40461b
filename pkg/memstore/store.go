package memstore

import (
	"sync"

	"sidx/pkg/model"

	"github.com/google/btree"
)

const treeDegree = 8

type cellItem struct {
	cell *model.Cell
	cmp  model.Comparator
}

func (item *cellItem) Less(than btree.Item) bool {
	return item.cmp.Compare(item.cell, than.(*cellItem).cell) < 0
}

// Store is the row overlay: an immutable base layer holding the cells fetched
// from the backing table, plus a delta layer holding the cells this mutation
// added on top. Cells with the same (row, family, qualifier, ts) identity
// occupy one slot per layer, and the delta shadows the base.
type Store struct {
	sync.RWMutex
	cmp    model.Comparator
	base   *btree.BTree
	delta  *btree.BTree
	seeded bool
}

func New(cmp model.Comparator) *Store {
	if cmp == nil {
		cmp = model.DefaultComparator
	}
	return &Store{
		cmp:   cmp,
		base:  btree.New(treeDegree),
		delta: btree.New(treeDegree),
	}
}

func (store *Store) Comparator() model.Comparator { return store.cmp }

// Seed installs the fetched row as the base layer. It runs at most once per
// store; the lazy-init path guarantees that.
func (store *Store) Seed(cells []*model.Cell) {
	store.Lock()
	defer store.Unlock()
	if store.seeded {
		panic("not expected")
	}
	for _, cell := range cells {
		if cell == nil {
			continue
		}
		store.base.ReplaceOrInsert(&cellItem{cell: cell, cmp: store.cmp})
	}
	store.seeded = true
}

func (store *Store) Seeded() bool {
	store.RLock()
	defer store.RUnlock()
	return store.seeded
}

// Add puts one cell into the delta layer. A cell with the same identity
// replaces the previous one, the comparator ignores values.
func (store *Store) Add(cell *model.Cell) {
	if cell == nil {
		return
	}
	store.Lock()
	defer store.Unlock()
	store.delta.ReplaceOrInsert(&cellItem{cell: cell, cmp: store.cmp})
}

func (store *Store) AddAll(cells []*model.Cell) {
	for _, cell := range cells {
		store.Add(cell)
	}
}

// Rollback removes cell from the delta layer, but only on an exact match:
// identity plus value plus tombstone flag. Anything else leaves the store
// untouched. The base layer is never rolled back.
func (store *Store) Rollback(cell *model.Cell) bool {
	if cell == nil {
		return false
	}
	store.Lock()
	defer store.Unlock()
	key := &cellItem{cell: cell, cmp: store.cmp}
	found := store.delta.Get(key)
	if found == nil {
		return false
	}
	if !found.(*cellItem).cell.SameExact(cell) {
		return false
	}
	store.delta.Delete(key)
	return true
}

func (store *Store) BaseCells() []*model.Cell {
	store.RLock()
	defer store.RUnlock()
	return collect(store.base)
}

func (store *Store) DeltaCells() []*model.Cell {
	store.RLock()
	defer store.RUnlock()
	return collect(store.delta)
}

// Snapshot merges both layers into one ascending run. On an identity clash
// the delta cell wins.
func (store *Store) Snapshot() []*model.Cell {
	store.RLock()
	base := collect(store.base)
	delta := collect(store.delta)
	store.RUnlock()

	merged := make([]*model.Cell, 0, len(base)+len(delta))
	i, j := 0, 0
	for i < len(base) && j < len(delta) {
		r := store.cmp.Compare(base[i], delta[j])
		if r < 0 {
			merged = append(merged, base[i])
			i++
		} else if r > 0 {
			merged = append(merged, delta[j])
			j++
		} else {
			merged = append(merged, delta[j])
			i++
			j++
		}
	}
	merged = append(merged, base[i:]...)
	merged = append(merged, delta[j:]...)
	return merged
}

func collect(tree *btree.BTree) []*model.Cell {
	cells := make([]*model.Cell, 0, tree.Len())
	tree.Ascend(func(item btree.Item) bool {
		cells = append(cells, item.(*cellItem).cell)
		return true
	})
	return cells
}
