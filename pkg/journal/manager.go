package journal

import (
	"fmt"
	"sync"

	"sidx/pkg/iface/stateif"

	"github.com/matrixorigin/matrixone/pkg/vm/engine/aoe/storage/logstore/sm"
	"github.com/sirupsen/logrus"
)

// FlushOp carries one record through the manager's pipeline. Callers block
// on WaitDone for the assigned LSN.
type FlushOp struct {
	sync.WaitGroup
	Record Record
	Lsn    uint64
	Err    error
}

func newFlushOp(record Record) *FlushOp {
	op := &FlushOp{Record: record}
	op.Add(1)
	return op
}

func (op *FlushOp) Repr() string {
	return fmt.Sprintf("[Flush][Type-%d]", op.Record.GetType())
}

func (op *FlushOp) WaitDone() (uint64, error) {
	op.Wait()
	return op.Lsn, op.Err
}

// Manager serializes journal appends behind a two-stage queue: records are
// appended in arrival order, completions are signalled off the append path.
type Manager struct {
	sm.ClosedState
	sm.StateMachine
	driver Driver
}

func NewManager(driver Driver) *Manager {
	mgr := &Manager{
		driver: driver,
	}
	pqueue := sm.NewSafeQueue(10000, 200, mgr.onRecords)
	cqueue := sm.NewSafeQueue(10000, 200, mgr.onDone)
	mgr.StateMachine = sm.NewStateMachine(new(sync.WaitGroup), mgr, pqueue, cqueue)
	return mgr
}

// LogRecord enqueues a record for appending. The returned op is done once
// the record is durable.
func (mgr *Manager) LogRecord(record Record) *FlushOp {
	op := newFlushOp(record)
	mgr.EnqueueRecevied(op)
	return op
}

// LogIndexUpdate is the placeholder-to-journal shortcut.
func (mgr *Manager) LogIndexUpdate(u *stateif.IndexUpdate) (*FlushOp, error) {
	record, err := FromIndexUpdate(u)
	if err != nil {
		return nil, err
	}
	return mgr.LogRecord(record), nil
}

func (mgr *Manager) onRecords(items ...interface{}) {
	for _, item := range items {
		op := item.(*FlushOp)
		op.Lsn, op.Err = mgr.driver.AppendRecord(op.Record)
		mgr.EnqueueCheckpoint(op)
	}
}

func (mgr *Manager) onDone(items ...interface{}) {
	for _, item := range items {
		op := item.(*FlushOp)
		op.Done()
		logrus.Debugf("%s lsn %d", op.Repr(), op.Lsn)
	}
}
