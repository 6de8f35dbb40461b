package model

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sidx/pkg/common"
)

// Cell is a single versioned value inside a row: one (family, qualifier,
// timestamp) data point, or a tombstone for it. Cells are immutable once
// built; every layer of the engine shares them by pointer.
type Cell struct {
	Row       []byte
	Family    []byte
	Qualifier []byte
	Ts        uint64
	Value     []byte
	Tombstone bool
}

func NewCell(row, family, qualifier []byte, ts uint64, value []byte) *Cell {
	return &Cell{
		Row:       row,
		Family:    family,
		Qualifier: qualifier,
		Ts:        ts,
		Value:     value,
	}
}

func NewTombstone(row, family, qualifier []byte, ts uint64) *Cell {
	return &Cell{
		Row:       row,
		Family:    family,
		Qualifier: qualifier,
		Ts:        ts,
		Tombstone: true,
	}
}

func (c *Cell) Ref() *ColumnRef {
	return &ColumnRef{Family: c.Family, Qualifier: c.Qualifier}
}

// SameIdentity is equality under (row, family, qualifier, ts), the key the
// overlay store dedups on.
func (c *Cell) SameIdentity(o *Cell) bool {
	if o == nil {
		return false
	}
	return c.Ts == o.Ts &&
		bytes.Equal(c.Row, o.Row) &&
		bytes.Equal(c.Family, o.Family) &&
		bytes.Equal(c.Qualifier, o.Qualifier)
}

// SameExact additionally matches value and tombstone flag. Rollback removes a
// cell only on an exact match.
func (c *Cell) SameExact(o *Cell) bool {
	return c.SameIdentity(o) && c.Tombstone == o.Tombstone && bytes.Equal(c.Value, o.Value)
}

func (c *Cell) String() string {
	if c.Tombstone {
		return fmt.Sprintf("%s/%s:%s@%d(del)", c.Row, c.Family, c.Qualifier, c.Ts)
	}
	return fmt.Sprintf("%s/%s:%s@%d=%s", c.Row, c.Family, c.Qualifier, c.Ts, c.Value)
}

func (c *Cell) WriteTo(w io.Writer) (err error) {
	if _, err = common.WriteBytes(c.Row, w); err != nil {
		return
	}
	if _, err = common.WriteBytes(c.Family, w); err != nil {
		return
	}
	if _, err = common.WriteBytes(c.Qualifier, w); err != nil {
		return
	}
	if err = binary.Write(w, binary.BigEndian, c.Ts); err != nil {
		return
	}
	if _, err = common.WriteBytes(c.Value, w); err != nil {
		return
	}
	_, err = common.WriteBool(c.Tombstone, w)
	return
}

func (c *Cell) ReadFrom(r io.Reader) (err error) {
	if c.Row, _, err = common.ReadBytes(r); err != nil {
		return
	}
	if c.Family, _, err = common.ReadBytes(r); err != nil {
		return
	}
	if c.Qualifier, _, err = common.ReadBytes(r); err != nil {
		return
	}
	if err = binary.Read(r, binary.BigEndian, &c.Ts); err != nil {
		return
	}
	if c.Value, _, err = common.ReadBytes(r); err != nil {
		return
	}
	c.Tombstone, _, err = common.ReadBool(r)
	return
}

// CompareCells orders cells the way scans emit them: row, family, qualifier
// ascending, then timestamp descending so the newest version comes first.
// Value and tombstone flag do not participate.
func CompareCells(a, b *Cell) int {
	if r := bytes.Compare(a.Row, b.Row); r != 0 {
		return r
	}
	if r := bytes.Compare(a.Family, b.Family); r != 0 {
		return r
	}
	if r := bytes.Compare(a.Qualifier, b.Qualifier); r != 0 {
		return r
	}
	if a.Ts > b.Ts {
		return -1
	} else if a.Ts < b.Ts {
		return 1
	}
	return 0
}
