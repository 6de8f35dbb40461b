package state

import (
	"bytes"
	"errors"
	"sync"
	"sync/atomic"

	"sidx/pkg/iface/stateif"
	"sidx/pkg/memstore"
	"sidx/pkg/model"
	"sidx/pkg/scanner"
	"sidx/pkg/tracking"

	"github.com/sirupsen/logrus"
)

var (
	ErrNoRowLoader = errors.New("sidx: no row loader")
)

const (
	StateUninitialized int32 = iota
	StateInitialized
)

// RowState is the per-mutation view of one row: the overlay store holding
// persisted plus applied cells, the staged pending cells, and the trackers
// describing what reads against this view have observed. One instance serves
// exactly one mutation; it is not reused.
type RowState struct {
	sync.RWMutex
	env      *stateif.Env
	loader   stateif.RowLoader
	update   *model.RowUpdate
	store    *memstore.Store
	builder  *scanner.Builder
	trackers *tracking.Registry
	pending  []*model.Cell
	hints    []stateif.ColumnGroup
	ts       uint64
	state    int32
}

func NewRowState(env *stateif.Env, loader stateif.RowLoader, update *model.RowUpdate) *RowState {
	if update == nil {
		panic("logic error")
	}
	if env == nil {
		env = stateif.NewEnv()
	}
	store := memstore.New(env.Comparator)
	s := &RowState{
		env:      env,
		loader:   loader,
		update:   update,
		store:    store,
		builder:  scanner.NewBuilder(store),
		trackers: tracking.NewRegistry(),
	}
	return s
}

func (s *RowState) GetEnv() *stateif.Env             { return s.env }
func (s *RowState) GetRowKey() []byte                { return s.update.GetRow() }
func (s *RowState) GetAttributes() map[string][]byte { return s.update.GetAttributes() }

func (s *RowState) GetCurrentTS() uint64 {
	return atomic.LoadUint64(&s.ts)
}

func (s *RowState) SetCurrentTS(ts uint64) {
	atomic.StoreUint64(&s.ts, ts)
}

func (s *RowState) Initialized() bool {
	return atomic.LoadInt32(&s.state) == StateInitialized
}

func (s *RowState) checkRow(cells []*model.Cell) {
	row := s.update.GetRow()
	for _, cell := range cells {
		if cell == nil {
			continue
		}
		if !bytes.Equal(cell.Row, row) {
			panic("logic error")
		}
	}
}

// AddPendingUpdates stages cells and applies them to the overlay in one step.
// The cells stay listed as pending until ApplyPendingUpdates or a new staging
// replaces them, so scans can tell applied state from staged state.
func (s *RowState) AddPendingUpdates(cells ...*model.Cell) {
	if len(cells) == 0 {
		return
	}
	s.SetPendingUpdates(cells...)
	s.store.AddAll(cells)
}

// SetPendingUpdates stages cells without touching the overlay. A later
// ApplyPendingUpdates folds them in.
func (s *RowState) SetPendingUpdates(cells ...*model.Cell) {
	s.checkRow(cells)
	s.Lock()
	defer s.Unlock()
	s.pending = append(s.pending[:0], cells...)
}

// ApplyPendingUpdates merges the currently staged cells into the overlay.
// The staging area is left as is, so staging followed by apply is idempotent
// with AddPendingUpdates on the same batch.
func (s *RowState) ApplyPendingUpdates() {
	s.store.AddAll(s.GetPendingUpdate())
}

func (s *RowState) GetPendingUpdate() []*model.Cell {
	s.RLock()
	defer s.RUnlock()
	return s.pending
}

// Rollback removes exactly the given cells from the overlay delta. Cells that
// were never applied, or were applied with a different value, stay put.
func (s *RowState) Rollback(cells ...*model.Cell) {
	for _, cell := range cells {
		s.store.Rollback(cell)
	}
}

func (s *RowState) ensureInitialized() error {
	if atomic.LoadInt32(&s.state) == StateInitialized {
		return nil
	}
	s.Lock()
	defer s.Unlock()
	if atomic.LoadInt32(&s.state) == StateInitialized {
		return nil
	}
	if s.loader == nil {
		return ErrNoRowLoader
	}
	cells, err := s.loader.LoadRowState(s.update)
	if err != nil {
		logrus.Warnf("load row %s: %v", s.update.GetRow(), err)
		return err
	}
	s.store.Seed(cells)
	atomic.StoreInt32(&s.state, StateInitialized)
	return nil
}

// ReadIndexedColumns initializes the overlay from the backing row if needed,
// registers a tracker for the column set, and returns the filtered view plus
// the index-update placeholder carrying that tracker.
func (s *RowState) ReadIndexedColumns(columns []*model.ColumnRef) (stateif.Scanner, *stateif.IndexUpdate, error) {
	if err := s.ensureInitialized(); err != nil {
		return nil, nil, err
	}
	tracker := s.trackers.GetOrCreate(columns)
	scan := s.builder.BuildIndexedColumnScanner(s.GetPendingUpdate(), columns, tracker, s.GetCurrentTS())
	return scan, stateif.NewIndexUpdate(tracker), nil
}

// ReadNonIndexedColumns is the tracker-free read path.
func (s *RowState) ReadNonIndexedColumns(columns []*model.ColumnRef) (stateif.Scanner, error) {
	if err := s.ensureInitialized(); err != nil {
		return nil, err
	}
	return s.builder.BuildNonIndexedColumnsScanner(columns, s.GetCurrentTS()), nil
}

// MaterializeRow initializes if needed and returns the merged row, every
// column, no ceiling.
func (s *RowState) MaterializeRow() ([]*model.Cell, error) {
	if err := s.ensureInitialized(); err != nil {
		return nil, err
	}
	return s.store.Snapshot(), nil
}

func (s *RowState) SetColumnHints(hints []stateif.ColumnGroup) {
	s.Lock()
	defer s.Unlock()
	s.hints = hints
}

func (s *RowState) GetColumnHints() []stateif.ColumnGroup {
	s.RLock()
	defer s.RUnlock()
	return s.hints
}

func (s *RowState) GetTrackedColumns() []*tracking.ColumnTracker {
	return s.trackers.Trackers()
}

func (s *RowState) ResetTrackedColumns() {
	s.trackers.ResetAll()
}

func (s *RowState) GetTrackerRegistry() *tracking.Registry {
	return s.trackers
}

var _ stateif.TableState = (*RowState)(nil)
