package stateif

import (
	"sidx/pkg/model"
	"sidx/pkg/tracking"
)

// IndexUpdate pairs the column tracker a read was served under with the
// mutation the caller derived from that read. The tracker half is set at read
// time; the mutation half is filled in later, once the caller has built the
// index row it wants applied.
type IndexUpdate struct {
	tracker *tracking.ColumnTracker
	table   []byte
	update  *model.RowUpdate
}

func NewIndexUpdate(tracker *tracking.ColumnTracker) *IndexUpdate {
	return &IndexUpdate{tracker: tracker}
}

func (u *IndexUpdate) GetIndexedColumns() *tracking.ColumnTracker {
	return u.tracker
}

func (u *IndexUpdate) SetUpdate(table []byte, update *model.RowUpdate) {
	u.table = table
	u.update = update
}

func (u *IndexUpdate) GetUpdate() *model.RowUpdate { return u.update }
func (u *IndexUpdate) GetTableName() []byte        { return u.table }

// IsValid reports whether both halves are filled in. Only valid updates may
// be handed to the journal.
func (u *IndexUpdate) IsValid() bool {
	return u.tracker != nil && len(u.table) > 0 && u.update != nil
}
