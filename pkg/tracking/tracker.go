package tracking

import (
	"bytes"
	"fmt"
	"sync"

	"sidx/pkg/model"

	"github.com/RoaringBitmap/roaring"
	"github.com/cespare/xxhash"
)

// NoNewerTs is the initial timestamp of a tracker: nothing newer than the
// read ceiling has been seen yet.
const NoNewerTs = ^uint64(0)

// ColumnTracker follows one group of columns across a read. The column set is
// fixed at construction; the timestamp side records the oldest cell the read
// had to skip because it was newer than the read ceiling. If that ever
// happens the group is no longer current as of the ceiling and the caller
// must not reuse cached state for it.
type ColumnTracker struct {
	sync.RWMutex
	refs []*model.ColumnRef
	cols *roaring.Bitmap
	ts   uint64
	fp   uint64
}

func NewColumnTracker(columns []*model.ColumnRef) *ColumnTracker {
	refs := model.SortedColumnRefs(columns)
	return &ColumnTracker{
		refs: refs,
		cols: roaring.New(),
		ts:   NoNewerTs,
		fp:   fingerprint(refs),
	}
}

func fingerprint(refs []*model.ColumnRef) uint64 {
	var buf bytes.Buffer
	for _, ref := range refs {
		buf.Write(ref.Family)
		buf.WriteByte(0x00)
		buf.Write(ref.Qualifier)
		buf.WriteByte(0x01)
	}
	return xxhash.Sum64(buf.Bytes())
}

// Fingerprint identifies the column set, independent of the order the caller
// listed the columns in.
func (tracker *ColumnTracker) Fingerprint() uint64 { return tracker.fp }

func (tracker *ColumnTracker) GetColumns() []*model.ColumnRef { return tracker.refs }

func (tracker *ColumnTracker) Covers(ref *model.ColumnRef) bool {
	for _, r := range tracker.refs {
		if r.Equal(ref) {
			return true
		}
		if len(r.Qualifier) == 0 && bytes.Equal(r.Family, ref.Family) {
			return true
		}
	}
	return false
}

// SetTs keeps the minimum: the tracker remembers the oldest timestamp above
// the ceiling, which is the first point the cached view diverges at.
func (tracker *ColumnTracker) SetTs(ts uint64) {
	tracker.Lock()
	defer tracker.Unlock()
	if ts < tracker.ts {
		tracker.ts = ts
	}
}

func (tracker *ColumnTracker) GetTs() uint64 {
	tracker.RLock()
	defer tracker.RUnlock()
	return tracker.ts
}

func (tracker *ColumnTracker) HasNewerTimestamps() bool {
	return tracker.GetTs() != NoNewerTs
}

// Merge folds the other tracker's timestamp into this one. Column sets are
// not merged, they are the tracker's identity.
func (tracker *ColumnTracker) Merge(o *ColumnTracker) {
	tracker.SetTs(o.GetTs())
}

// ColumnBits exposes the registry-assigned column id bitmap. Empty until the
// tracker goes through a registry.
func (tracker *ColumnTracker) ColumnBits() *roaring.Bitmap {
	tracker.RLock()
	defer tracker.RUnlock()
	return tracker.cols
}

func (tracker *ColumnTracker) setColumnBits(bits *roaring.Bitmap) {
	tracker.Lock()
	defer tracker.Unlock()
	tracker.cols = bits
}

func (tracker *ColumnTracker) String() string {
	var buf bytes.Buffer
	buf.WriteString("tracker[")
	for i, ref := range tracker.refs {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString(ref.String())
	}
	ts := tracker.GetTs()
	if ts == NoNewerTs {
		buf.WriteString("]")
	} else {
		buf.WriteString(fmt.Sprintf("]@%d", ts))
	}
	return buf.String()
}
