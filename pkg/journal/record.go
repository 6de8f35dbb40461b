package journal

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"sidx/pkg/common"
	"sidx/pkg/iface/stateif"
	"sidx/pkg/model"

	"github.com/jiangxinmeng1/logstore/pkg/entry"
)

type LogEntry = entry.Entry
type LogEntryType = entry.Type

const (
	ETIndexUpdate LogEntryType = iota + entry.ETCustomizedStart
)

const (
	RecordUpdate int16 = iota
	RecordComposed
)

var (
	ErrInvalidUpdate = errors.New("sidx: invalid index update")
	ErrUnknownRecord = errors.New("sidx: unknown record type")
)

type Record interface {
	WriteTo(io.Writer) error
	ReadFrom(io.Reader) error
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
	GetType() int16
}

// UpdateRecord is the durable form of one index-table mutation: the target
// table, the index row it touches, the cells to write there and the
// attributes the originating mutation carried.
type UpdateRecord struct {
	Table []byte
	Row   []byte
	Cells []*model.Cell
	Attrs map[string][]byte
}

func NewUpdateRecord(table, row []byte) *UpdateRecord {
	return &UpdateRecord{
		Table: table,
		Row:   row,
		Attrs: make(map[string][]byte),
	}
}

// FromIndexUpdate converts a filled-in placeholder into its durable record.
// Placeholders still missing their mutation half are rejected.
func FromIndexUpdate(u *stateif.IndexUpdate) (*UpdateRecord, error) {
	if u == nil || !u.IsValid() {
		return nil, ErrInvalidUpdate
	}
	update := u.GetUpdate()
	record := NewUpdateRecord(u.GetTableName(), update.GetRow())
	record.Cells = update.GetCells()
	for k, v := range update.GetAttributes() {
		record.Attrs[k] = v
	}
	return record, nil
}

func (record *UpdateRecord) GetType() int16 {
	return RecordUpdate
}

func (record *UpdateRecord) WriteTo(w io.Writer) (err error) {
	if err = binary.Write(w, binary.BigEndian, record.GetType()); err != nil {
		return
	}
	if _, err = common.WriteBytes(record.Table, w); err != nil {
		return
	}
	if _, err = common.WriteBytes(record.Row, w); err != nil {
		return
	}
	if err = binary.Write(w, binary.BigEndian, uint32(len(record.Cells))); err != nil {
		return
	}
	for _, cell := range record.Cells {
		if err = cell.WriteTo(w); err != nil {
			return
		}
	}
	if err = binary.Write(w, binary.BigEndian, uint32(len(record.Attrs))); err != nil {
		return
	}
	for k, v := range record.Attrs {
		if _, err = common.WriteString(k, w); err != nil {
			return
		}
		if _, err = common.WriteBytes(v, w); err != nil {
			return
		}
	}
	return
}

func (record *UpdateRecord) ReadFrom(r io.Reader) (err error) {
	if record.Table, _, err = common.ReadBytes(r); err != nil {
		return
	}
	if record.Row, _, err = common.ReadBytes(r); err != nil {
		return
	}
	var cnt uint32
	if err = binary.Read(r, binary.BigEndian, &cnt); err != nil {
		return
	}
	record.Cells = make([]*model.Cell, 0, cnt)
	for i := 0; i < int(cnt); i++ {
		cell := new(model.Cell)
		if err = cell.ReadFrom(r); err != nil {
			return
		}
		record.Cells = append(record.Cells, cell)
	}
	if err = binary.Read(r, binary.BigEndian, &cnt); err != nil {
		return
	}
	record.Attrs = make(map[string][]byte)
	for i := 0; i < int(cnt); i++ {
		var k string
		var v []byte
		if k, _, err = common.ReadString(r); err != nil {
			return
		}
		if v, _, err = common.ReadBytes(r); err != nil {
			return
		}
		record.Attrs[k] = v
	}
	return
}

func (record *UpdateRecord) Marshal() (buf []byte, err error) {
	var bbuf bytes.Buffer
	if err = record.WriteTo(&bbuf); err != nil {
		return
	}
	buf = bbuf.Bytes()
	return
}

func (record *UpdateRecord) Unmarshal(buf []byte) error {
	bbuf := bytes.NewBuffer(buf)
	return record.ReadFrom(bbuf)
}

// ComposedRecord batches the updates of one mutation across all its index
// tables, so they become durable in a single log entry.
type ComposedRecord struct {
	Records []*UpdateRecord
}

func NewComposedRecord() *ComposedRecord {
	return &ComposedRecord{
		Records: make([]*UpdateRecord, 0),
	}
}

func (record *ComposedRecord) AddRecord(sub *UpdateRecord) {
	record.Records = append(record.Records, sub)
}

func (record *ComposedRecord) GetType() int16 {
	return RecordComposed
}

func (record *ComposedRecord) WriteTo(w io.Writer) (err error) {
	if err = binary.Write(w, binary.BigEndian, record.GetType()); err != nil {
		return
	}
	if err = binary.Write(w, binary.BigEndian, uint32(len(record.Records))); err != nil {
		return
	}
	for _, sub := range record.Records {
		if err = sub.WriteTo(w); err != nil {
			return
		}
	}
	return
}

func (record *ComposedRecord) ReadFrom(r io.Reader) (err error) {
	var cnt uint32
	if err = binary.Read(r, binary.BigEndian, &cnt); err != nil {
		return
	}
	record.Records = make([]*UpdateRecord, 0, cnt)
	for i := 0; i < int(cnt); i++ {
		var sub Record
		if sub, err = BuildRecordFrom(r); err != nil {
			return
		}
		record.Records = append(record.Records, sub.(*UpdateRecord))
	}
	return
}

func (record *ComposedRecord) Marshal() (buf []byte, err error) {
	var bbuf bytes.Buffer
	if err = record.WriteTo(&bbuf); err != nil {
		return
	}
	buf = bbuf.Bytes()
	return
}

func (record *ComposedRecord) Unmarshal(buf []byte) error {
	bbuf := bytes.NewBuffer(buf)
	return record.ReadFrom(bbuf)
}

// BuildRecordFrom decodes one record off the reader, dispatching on the type
// tag its WriteTo wrote first.
func BuildRecordFrom(r io.Reader) (record Record, err error) {
	var typ int16
	if err = binary.Read(r, binary.BigEndian, &typ); err != nil {
		return
	}
	switch typ {
	case RecordUpdate:
		record = new(UpdateRecord)
	case RecordComposed:
		record = new(ComposedRecord)
	default:
		return nil, ErrUnknownRecord
	}
	err = record.ReadFrom(r)
	return
}
