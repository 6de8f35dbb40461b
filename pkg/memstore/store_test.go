package memstore

import (
	"testing"

	"sidx/pkg/model"

	"github.com/stretchr/testify/assert"
)

var testRow = []byte("r1")

func cell(q string, ts uint64, v string) *model.Cell {
	return model.NewCell(testRow, []byte("cf"), []byte(q), ts, []byte(v))
}

func TestSeedOnce(t *testing.T) {
	store := New(nil)
	assert.False(t, store.Seeded())
	store.Seed([]*model.Cell{cell("a", 1, "v")})
	assert.True(t, store.Seeded())
	assert.Panics(t, func() {
		store.Seed(nil)
	})
}

func TestAddReplacesSameIdentity(t *testing.T) {
	store := New(nil)
	store.Add(cell("a", 10, "v1"))
	store.Add(cell("a", 10, "v2"))
	store.Add(cell("a", 7, "old"))

	delta := store.DeltaCells()
	assert.Equal(t, 2, len(delta))
	assert.Equal(t, []byte("v2"), delta[0].Value)
	assert.Equal(t, []byte("old"), delta[1].Value)
}

func TestRollbackExactMatchOnly(t *testing.T) {
	store := New(nil)
	store.Add(cell("a", 10, "v1"))

	// same identity, different value: stays
	assert.False(t, store.Rollback(cell("a", 10, "other")))
	assert.Equal(t, 1, len(store.DeltaCells()))

	// absent cell: no-op
	assert.False(t, store.Rollback(cell("b", 10, "v1")))
	assert.False(t, store.Rollback(nil))

	assert.True(t, store.Rollback(cell("a", 10, "v1")))
	assert.Equal(t, 0, len(store.DeltaCells()))

	// tombstone does not match the put it shadows
	store.Add(cell("a", 10, "v1"))
	assert.False(t, store.Rollback(model.NewTombstone(testRow, []byte("cf"), []byte("a"), 10)))
	assert.Equal(t, 1, len(store.DeltaCells()))
}

func TestSnapshotOrder(t *testing.T) {
	store := New(nil)
	store.Seed([]*model.Cell{cell("a", 5, "base-a5"), cell("b", 3, "base-b3")})
	store.AddAll([]*model.Cell{cell("a", 9, "delta-a9"), cell("c", 1, "delta-c1")})

	cells := store.Snapshot()
	assert.Equal(t, 4, len(cells))
	// per column newest first, columns ascending
	assert.Equal(t, []byte("delta-a9"), cells[0].Value)
	assert.Equal(t, []byte("base-a5"), cells[1].Value)
	assert.Equal(t, []byte("base-b3"), cells[2].Value)
	assert.Equal(t, []byte("delta-c1"), cells[3].Value)
}

func TestDeltaShadowsBase(t *testing.T) {
	store := New(nil)
	store.Seed([]*model.Cell{cell("a", 10, "base")})
	store.Add(cell("a", 10, "delta"))

	cells := store.Snapshot()
	assert.Equal(t, 1, len(cells))
	assert.Equal(t, []byte("delta"), cells[0].Value)

	// rolling the delta cell back re-exposes the base cell
	assert.True(t, store.Rollback(cell("a", 10, "delta")))
	cells = store.Snapshot()
	assert.Equal(t, 1, len(cells))
	assert.Equal(t, []byte("base"), cells[0].Value)
}

func TestUnseededSnapshot(t *testing.T) {
	store := New(nil)
	store.Add(cell("a", 1, "v"))
	cells := store.Snapshot()
	assert.Equal(t, 1, len(cells))
	assert.Equal(t, 0, len(store.BaseCells()))
}
