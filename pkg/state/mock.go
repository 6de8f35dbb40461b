package state

import (
	"sync"
	"sync/atomic"

	"sidx/pkg/iface/stateif"
	"sidx/pkg/model"
)

// MockRowLoader is an in-memory backing store for tests. It counts load
// attempts and can be armed with a sticky error.
type MockRowLoader struct {
	sync.RWMutex
	rows  map[string][]*model.Cell
	loads int32
	err   error
}

func NewMockRowLoader() *MockRowLoader {
	return &MockRowLoader{
		rows: make(map[string][]*model.Cell),
	}
}

func (loader *MockRowLoader) PutRow(row []byte, cells ...*model.Cell) {
	loader.Lock()
	defer loader.Unlock()
	loader.rows[string(row)] = cells
}

func (loader *MockRowLoader) SetError(err error) {
	loader.Lock()
	defer loader.Unlock()
	loader.err = err
}

func (loader *MockRowLoader) GetLoadCount() int {
	return int(atomic.LoadInt32(&loader.loads))
}

func (loader *MockRowLoader) LoadRowState(update *model.RowUpdate) ([]*model.Cell, error) {
	atomic.AddInt32(&loader.loads, 1)
	loader.RLock()
	defer loader.RUnlock()
	if loader.err != nil {
		return nil, loader.err
	}
	return loader.rows[string(update.GetRow())], nil
}

var _ stateif.RowLoader = (*MockRowLoader)(nil)
