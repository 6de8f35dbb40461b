package tracking

import (
	"sync"

	"sidx/pkg/model"

	"github.com/RoaringBitmap/roaring"
	"github.com/puzpuzpuz/xsync/v3"
)

// Registry dedups column trackers by fingerprint and keeps the union of all
// tracked column ids. Column names are interned to stable uint32 ids; the
// interner survives resets so ids stay comparable across mutations.
type Registry struct {
	entries *xsync.MapOf[uint64, *ColumnTracker]

	mu      sync.Mutex
	ids     map[string]uint32
	nextID  uint32
	tracked *roaring.Bitmap
}

func NewRegistry() *Registry {
	return &Registry{
		entries: xsync.NewMapOf[uint64, *ColumnTracker](),
		ids:     make(map[string]uint32),
		tracked: roaring.New(),
	}
}

func internKey(ref *model.ColumnRef) string {
	return string(ref.Family) + "\x00" + string(ref.Qualifier)
}

func (registry *Registry) internLocked(ref *model.ColumnRef) uint32 {
	key := internKey(ref)
	id, ok := registry.ids[key]
	if !ok {
		id = registry.nextID
		registry.nextID++
		registry.ids[key] = id
	}
	return id
}

// GetOrCreate returns a fresh tracker bound to this read, registering the
// column set if it was not tracked yet. The registry keeps the first tracker
// of each set; later reads of the same set get their own instance so
// per-read timestamps never bleed between scans.
func (registry *Registry) GetOrCreate(columns []*model.ColumnRef) *ColumnTracker {
	fresh := NewColumnTracker(columns)

	bits := roaring.New()
	registry.mu.Lock()
	for _, ref := range fresh.GetColumns() {
		bits.Add(registry.internLocked(ref))
	}
	registry.mu.Unlock()
	fresh.setColumnBits(bits)

	if _, loaded := registry.entries.LoadOrStore(fresh.Fingerprint(), fresh); !loaded {
		registry.mu.Lock()
		registry.tracked.Or(bits)
		registry.mu.Unlock()
	}
	return fresh
}

// Overlaps reports whether any of the given columns is already tracked. It
// probes by exact column id, never allocating new ids.
func (registry *Registry) Overlaps(columns []*model.ColumnRef) bool {
	probe := roaring.New()
	registry.mu.Lock()
	defer registry.mu.Unlock()
	for _, ref := range columns {
		if id, ok := registry.ids[internKey(ref)]; ok {
			probe.Add(id)
		}
	}
	probe.And(registry.tracked)
	return !probe.IsEmpty()
}

func (registry *Registry) Trackers() []*ColumnTracker {
	trackers := make([]*ColumnTracker, 0, registry.entries.Size())
	registry.entries.Range(func(_ uint64, tracker *ColumnTracker) bool {
		trackers = append(trackers, tracker)
		return true
	})
	return trackers
}

func (registry *Registry) Size() int {
	return registry.entries.Size()
}

func (registry *Registry) Tracked() *roaring.Bitmap {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return registry.tracked.Clone()
}

// ResetAll drops all registered trackers and clears the tracked set. Interned
// ids are kept.
func (registry *Registry) ResetAll() {
	registry.entries.Range(func(fp uint64, _ *ColumnTracker) bool {
		registry.entries.Delete(fp)
		return true
	})
	registry.mu.Lock()
	registry.tracked.Clear()
	registry.mu.Unlock()
}
