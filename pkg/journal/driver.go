package journal

import (
	"sync"

	"github.com/jiangxinmeng1/logstore/pkg/entry"
	"github.com/jiangxinmeng1/logstore/pkg/store"
	"github.com/matrixorigin/matrixone/pkg/vm/engine/aoe/storage/common"
	"github.com/sirupsen/logrus"
)

// Driver appends records to the durable log and hands back their LSN.
type Driver interface {
	AppendRecord(Record) (uint64, error)
	Close() error
}

type logDriver struct {
	sync.RWMutex
	impl store.Store
	lsn  *common.IdAlloctor
	own  bool
}

func NewDriver(dir, name string, cfg *store.StoreCfg) Driver {
	impl, err := store.NewBaseStore(dir, name, cfg)
	if err != nil {
		panic(err)
	}
	return NewDriverWithStore(impl, true)
}

func NewDriverWithStore(impl store.Store, own bool) Driver {
	driver := new(logDriver)
	driver.impl = impl
	driver.lsn = common.NewIdAlloctor(1)
	driver.own = own
	return driver
}

func makeLogEntry(record Record) (LogEntry, error) {
	buf, err := record.Marshal()
	if err != nil {
		return nil, err
	}
	e := entry.GetBase()
	e.SetType(ETIndexUpdate)
	e.Unmarshal(buf)
	return e, nil
}

func (driver *logDriver) AppendRecord(record Record) (uint64, error) {
	e, err := makeLogEntry(record)
	if err != nil {
		return 0, err
	}
	driver.Lock()
	lsn := driver.lsn.Alloc()
	e.SetInfo(&entry.Info{
		CommitId: lsn,
	})
	err = driver.impl.AppendEntry(e)
	driver.Unlock()
	if err != nil {
		return lsn, err
	}
	e.WaitDone()
	logrus.Debugf("journaled %d bytes at lsn %d", e.GetPayloadSize(), lsn)
	e.Free()
	return lsn, nil
}

func (driver *logDriver) Close() error {
	if driver.own {
		return driver.impl.Close()
	}
	return nil
}
