package stateif

import (
	"sidx/pkg/model"
	"sidx/pkg/tracking"
)

// Scanner walks cells in comparator order. Next returns nil once the scan is
// exhausted. Seek is forward-only: it positions the scanner at the first cell
// not less than the target and reports whether such a cell exists.
type Scanner interface {
	Next() *model.Cell
	Peek() *model.Cell
	Seek(target *model.Cell) bool
}

// RowLoader fetches the currently persisted cells of the row an update
// targets. Implementations decide how much of the row to materialize; the
// engine treats whatever comes back as the complete baseline.
type RowLoader interface {
	LoadRowState(update *model.RowUpdate) ([]*model.Cell, error)
}

// ColumnGroup is a read-only set of column references.
type ColumnGroup interface {
	GetColumns() []*model.ColumnRef
	Covers(ref *model.ColumnRef) bool
}

type Env struct {
	Comparator model.Comparator
}

func NewEnv() *Env {
	return &Env{Comparator: model.DefaultComparator}
}

type TableState interface {
	GetEnv() *Env
	GetCurrentTS() uint64
	SetCurrentTS(ts uint64)
	GetRowKey() []byte
	GetAttributes() map[string][]byte
	GetPendingUpdate() []*model.Cell
	GetColumnHints() []ColumnGroup

	ReadIndexedColumns(columns []*model.ColumnRef) (Scanner, *IndexUpdate, error)
	ReadNonIndexedColumns(columns []*model.ColumnRef) (Scanner, error)
}

var _ ColumnGroup = (*tracking.ColumnTracker)(nil)
