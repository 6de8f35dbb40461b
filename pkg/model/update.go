package model

// RowUpdate is one client mutation against a single row: the cells it writes
// plus opaque attributes the caller attached (index metadata travels this
// way). All cells in an update must share the update's row key.
type RowUpdate struct {
	row   []byte
	attrs map[string][]byte
	cells []*Cell
}

func NewRowUpdate(row []byte) *RowUpdate {
	return &RowUpdate{
		row:   row,
		attrs: make(map[string][]byte),
	}
}

func (u *RowUpdate) Add(cells ...*Cell) *RowUpdate {
	u.cells = append(u.cells, cells...)
	return u
}

func (u *RowUpdate) SetAttribute(key string, value []byte) *RowUpdate {
	u.attrs[key] = value
	return u
}

func (u *RowUpdate) GetRow() []byte                   { return u.row }
func (u *RowUpdate) GetAttributes() map[string][]byte { return u.attrs }
func (u *RowUpdate) GetCells() []*Cell                { return u.cells }
