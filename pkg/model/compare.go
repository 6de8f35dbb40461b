package model

// Comparator fixes the total order of cells for one row context. The overlay
// store and scanners share a single comparator so merge results stay stable.
type Comparator interface {
	Compare(a, b *Cell) int
	Name() string
}

var DefaultComparator Comparator = new(cellComparator)

type cellComparator struct{}

func (c *cellComparator) Compare(a, b *Cell) int { return CompareCells(a, b) }
func (c *cellComparator) Name() string           { return "default" }
