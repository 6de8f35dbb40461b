package journal

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"sidx/pkg/iface/stateif"
	"sidx/pkg/model"
	"sidx/pkg/tracking"

	"github.com/panjf2000/ants/v2"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/stretchr/testify/assert"
)

func initTestPath(t *testing.T) string {
	dir := filepath.Join("/tmp", t.Name())
	os.RemoveAll(dir)
	return dir
}

func testCell(q string, ts uint64, v string) *model.Cell {
	return model.NewCell([]byte("idxrow"), []byte("f"), []byte(q), ts, []byte(v))
}

func testRecord(n int) *UpdateRecord {
	record := NewUpdateRecord([]byte("idx_table"), []byte("idxrow"))
	for i := 0; i < n; i++ {
		record.Cells = append(record.Cells, testCell("q", uint64(i+1), "v"))
	}
	return record
}

func TestUpdateRecordMarshal(t *testing.T) {
	record := testRecord(3)
	record.Cells = append(record.Cells, model.NewTombstone([]byte("idxrow"), []byte("f"), []byte("old"), 9))
	record.Attrs["src"] = []byte("idx-builder")
	record.Attrs["phase"] = []byte("post")
	buf, err := record.Marshal()
	assert.Nil(t, err)

	decoded, err := BuildRecordFrom(bytes.NewBuffer(buf))
	assert.Nil(t, err)
	decoded2 := decoded.(*UpdateRecord)
	assert.Equal(t, record.Table, decoded2.Table)
	assert.Equal(t, record.Row, decoded2.Row)
	assert.Equal(t, record.Attrs, decoded2.Attrs)
	assert.Equal(t, len(record.Cells), len(decoded2.Cells))
	for i := range record.Cells {
		assert.True(t, record.Cells[i].SameExact(decoded2.Cells[i]))
	}
}

func TestComposedRecordMarshal(t *testing.T) {
	composed := NewComposedRecord()
	composed.AddRecord(testRecord(1))
	composed.AddRecord(testRecord(4))
	buf, err := composed.Marshal()
	assert.Nil(t, err)

	decoded, err := BuildRecordFrom(bytes.NewBuffer(buf))
	assert.Nil(t, err)
	decoded2 := decoded.(*ComposedRecord)
	assert.Equal(t, 2, len(decoded2.Records))
	assert.Equal(t, 1, len(decoded2.Records[0].Cells))
	assert.Equal(t, 4, len(decoded2.Records[1].Cells))
}

func TestUnknownRecord(t *testing.T) {
	var w bytes.Buffer
	w.Write([]byte{0x7f, 0x7f})
	_, err := BuildRecordFrom(&w)
	assert.Equal(t, ErrUnknownRecord, err)
}

func TestFromIndexUpdate(t *testing.T) {
	tracker := tracking.NewColumnTracker([]*model.ColumnRef{
		model.NewColumnRef([]byte("f"), []byte("q")),
	})
	placeholder := stateif.NewIndexUpdate(tracker)

	_, err := FromIndexUpdate(placeholder)
	assert.Equal(t, ErrInvalidUpdate, err)
	_, err = FromIndexUpdate(nil)
	assert.Equal(t, ErrInvalidUpdate, err)

	update := model.NewRowUpdate([]byte("idxrow")).Add(testCell("q", 3, "v"))
	update.SetAttribute("origin", []byte("mut-42"))
	placeholder.SetUpdate([]byte("idx_table"), update)
	record, err := FromIndexUpdate(placeholder)
	assert.Nil(t, err)
	assert.Equal(t, []byte("idx_table"), record.Table)
	assert.Equal(t, []byte("idxrow"), record.Row)
	assert.Equal(t, 1, len(record.Cells))
	assert.Equal(t, []byte("mut-42"), record.Attrs["origin"])
}

func TestDriverAppend(t *testing.T) {
	dir := initTestPath(t)
	driver := NewDriver(dir, "journal", nil)
	defer driver.Close()

	prev := uint64(0)
	for i := 0; i < 10; i++ {
		lsn, err := driver.AppendRecord(testRecord(2))
		assert.Nil(t, err)
		assert.True(t, lsn > prev)
		prev = lsn
	}
}

func TestManager(t *testing.T) {
	dir := initTestPath(t)
	driver := NewDriver(dir, "journal", nil)
	mgr := NewManager(driver)
	mgr.Start()
	defer driver.Close()
	defer mgr.Stop()

	op := mgr.LogRecord(testRecord(1))
	lsn, err := op.WaitDone()
	assert.Nil(t, err)
	assert.True(t, lsn > 0)

	tracker := tracking.NewColumnTracker([]*model.ColumnRef{
		model.NewColumnRef([]byte("f"), []byte("q")),
	})
	placeholder := stateif.NewIndexUpdate(tracker)
	_, err = mgr.LogIndexUpdate(placeholder)
	assert.Equal(t, ErrInvalidUpdate, err)

	placeholder.SetUpdate([]byte("idx_table"), model.NewRowUpdate([]byte("idxrow")).Add(testCell("q", 1, "v")))
	op2, err := mgr.LogIndexUpdate(placeholder)
	assert.Nil(t, err)
	lsn2, err := op2.WaitDone()
	assert.Nil(t, err)
	assert.True(t, lsn2 > lsn)
}

func TestManagerConcurrent(t *testing.T) {
	dir := initTestPath(t)
	driver := NewDriver(dir, "journal", nil)
	mgr := NewManager(driver)
	mgr.Start()
	defer driver.Close()
	defer mgr.Stop()

	pool, err := ants.NewPool(8)
	assert.Nil(t, err)
	defer pool.Release()

	lsns := xsync.NewMapOf[uint64, bool]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			op := mgr.LogRecord(testRecord(1))
			lsn, err := op.WaitDone()
			assert.Nil(t, err)
			lsns.Store(lsn, true)
		})
		assert.Nil(t, err)
	}
	wg.Wait()
	assert.Equal(t, 50, lsns.Size())
}
