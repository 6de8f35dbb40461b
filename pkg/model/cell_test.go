package model

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellOrdering(t *testing.T) {
	row := []byte("r1")
	a := NewCell(row, []byte("cf"), []byte("a"), 10, []byte("v"))
	b := NewCell(row, []byte("cf"), []byte("a"), 7, []byte("v"))
	c := NewCell(row, []byte("cf"), []byte("b"), 10, []byte("v"))
	d := NewCell(row, []byte("df"), []byte("a"), 10, []byte("v"))

	// same column, newer ts sorts first
	assert.True(t, CompareCells(a, b) < 0)
	assert.True(t, CompareCells(b, a) > 0)
	// qualifier then family ascending
	assert.True(t, CompareCells(a, c) < 0)
	assert.True(t, CompareCells(c, d) < 0)

	e := NewCell(row, []byte("cf"), []byte("a"), 10, []byte("other"))
	assert.Equal(t, 0, CompareCells(a, e))
	assert.True(t, a.SameIdentity(e))
	assert.False(t, a.SameExact(e))
	assert.True(t, a.SameExact(NewCell(row, []byte("cf"), []byte("a"), 10, []byte("v"))))
	assert.False(t, a.SameExact(NewTombstone(row, []byte("cf"), []byte("a"), 10)))
}

func TestCellMarshal(t *testing.T) {
	cells := []*Cell{
		NewCell([]byte("r1"), []byte("cf"), []byte("q1"), 42, []byte("value")),
		NewTombstone([]byte("r1"), []byte("cf"), []byte("q2"), 7),
		NewCell([]byte("r1"), []byte("cf"), nil, 1, nil),
	}
	for _, cell := range cells {
		var w bytes.Buffer
		err := cell.WriteTo(&w)
		assert.Nil(t, err)
		decoded := new(Cell)
		err = decoded.ReadFrom(bytes.NewBuffer(w.Bytes()))
		assert.Nil(t, err)
		assert.True(t, cell.SameExact(decoded))
		assert.Equal(t, cell.Tombstone, decoded.Tombstone)
	}
}

func TestColumnRefMatches(t *testing.T) {
	cell := NewCell([]byte("r1"), []byte("cf"), []byte("q1"), 1, []byte("v"))
	assert.True(t, NewColumnRef([]byte("cf"), []byte("q1")).Matches(cell))
	assert.False(t, NewColumnRef([]byte("cf"), []byte("q2")).Matches(cell))
	assert.False(t, NewColumnRef([]byte("df"), []byte("q1")).Matches(cell))
	// empty qualifier covers the whole family
	assert.True(t, NewColumnRef([]byte("cf"), nil).Matches(cell))
	assert.False(t, NewColumnRef([]byte("df"), nil).Matches(cell))
}

func TestSortedColumnRefs(t *testing.T) {
	refs := []*ColumnRef{
		NewColumnRef([]byte("cf"), []byte("q2")),
		NewColumnRef([]byte("cf"), []byte("q1")),
		NewColumnRef([]byte("af"), []byte("q9")),
		NewColumnRef([]byte("cf"), []byte("q1")),
	}
	sorted := SortedColumnRefs(refs)
	assert.Equal(t, 3, len(sorted))
	assert.Equal(t, "af:q9", sorted[0].String())
	assert.Equal(t, "cf:q1", sorted[1].String())
	assert.Equal(t, "cf:q2", sorted[2].String())
	// input order untouched
	assert.Equal(t, "cf:q2", refs[0].String())
}

func TestRowUpdate(t *testing.T) {
	update := NewRowUpdate([]byte("r1"))
	update.Add(NewCell([]byte("r1"), []byte("cf"), []byte("q1"), 1, []byte("v"))).
		Add(NewTombstone([]byte("r1"), []byte("cf"), []byte("q2"), 2))
	update.SetAttribute("idx", []byte("meta"))

	assert.Equal(t, []byte("r1"), update.GetRow())
	assert.Equal(t, 2, len(update.GetCells()))
	assert.Equal(t, []byte("meta"), update.GetAttributes()["idx"])
}
