package wecs

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"unsafe"
)

// resourceEntry holds one singleton resource and its change-tracking state.
// version is bumped on every write; lastSeen records, per system, the version
// observed at that system's most recent fetch.
type resourceEntry struct {
	value   unsafe.Pointer
	typ     reflect.Type
	version atomic.Uint64

	mu       sync.Mutex
	lastSeen map[SystemID]uint64
}

// markChanged records a write to the resource.
func (e *resourceEntry) markChanged() {
	e.version.Add(1)
}

// Resources is a container of singleton values keyed by type. Fetches are
// keyed by (type, SystemID) so each system carries its own "last observed"
// version per resource, making change detection correct even when many
// systems read the same resource.
type Resources struct {
	mu      sync.RWMutex
	entries map[reflect.Type]*resourceEntry
}

// NewResources creates an empty resource container.
func NewResources() *Resources {
	return &Resources{entries: make(map[reflect.Type]*resourceEntry)}
}

// Add inserts a resource, passed as a struct value or pointer to struct.
// Panics if a resource of the same type already exists; use setAny via
// Commands.InsertResource for replace semantics.
func (r *Resources) Add(res any) {
	t := resourceTypeOf(res)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[t]; ok {
		panic(fmt.Sprintf("wecs: resource %v already exists", t))
	}
	r.entries[t] = newResourceEntry(res, t)
}

// Contains reports whether a resource of the given type exists.
func (r *Resources) Contains(t reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[t]
	return ok
}

// setAny inserts or replaces a resource. Used by command buffer flushes,
// which must not fail on a duplicate.
func (r *Resources) setAny(res any) {
	t := resourceTypeOf(res)
	ptr := resourcePointer(res, t)

	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.entries[t]; ok {
		entry.value = ptr
		entry.markChanged()
		return
	}
	r.entries[t] = newResourceEntry(res, t)
}

// initialize ensures storage and a change-tracking slot exist for the given
// resource type and system. Absent resources are lazily allocated with their
// zero value. Called exactly once per declared resource from System.Initialize.
func (r *Resources) initialize(t reflect.Type, id SystemID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[t]
	if !ok {
		entry = &resourceEntry{
			value:    reflect.New(t).UnsafePointer(),
			typ:      t,
			lastSeen: make(map[SystemID]uint64),
		}
		entry.version.Store(1)
		r.entries[t] = entry
	}

	entry.mu.Lock()
	if _, ok := entry.lastSeen[id]; !ok {
		entry.lastSeen[id] = 0
	}
	entry.mu.Unlock()
}

// fetch returns the storage pointer for a resource along with whether it has
// changed since system id last fetched it, and advances the system's observed
// version. The entry must have been initialized for this system.
func (r *Resources) fetch(t reflect.Type, id SystemID) (unsafe.Pointer, *resourceEntry, bool) {
	r.mu.RLock()
	entry, ok := r.entries[t]
	r.mu.RUnlock()
	if !ok {
		panic(fmt.Sprintf("wecs: resource %v fetched before initialization", t))
	}

	version := entry.version.Load()
	entry.mu.Lock()
	last := entry.lastSeen[id]
	entry.lastSeen[id] = version
	entry.mu.Unlock()

	return entry.value, entry, version > last
}

// newResourceEntry builds an entry owning a copy of (or pointer to) res.
func newResourceEntry(res any, t reflect.Type) *resourceEntry {
	ptr := resourcePointer(res, t)
	entry := &resourceEntry{
		value:    ptr,
		typ:      t,
		lastSeen: make(map[SystemID]uint64),
	}
	entry.version.Store(1)
	return entry
}

// resourceTypeOf returns the struct type behind a resource argument.
func resourceTypeOf(res any) reflect.Type {
	if res == nil {
		panic("wecs: nil resource")
	}
	t := reflect.TypeOf(res)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("wecs: resource must be a struct or pointer to struct, got %T", res))
	}
	return t
}

// resourcePointer normalizes res to a stable pointer of type *t.
func resourcePointer(res any, t reflect.Type) unsafe.Pointer {
	rv := reflect.ValueOf(res)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			panic("wecs: nil resource pointer")
		}
		return rv.UnsafePointer()
	}
	pv := reflect.New(t)
	pv.Elem().Set(rv)
	return pv.UnsafePointer()
}

// GetResource retrieves the resource of type T, or nil if absent.
func GetResource[T any](r *Resources) *T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[reflect.TypeFor[T]()]
	if !ok {
		return nil
	}
	return (*T)(entry.value)
}

// Res is a read-only handle to a singleton resource, injected into system
// functions that declare it as a parameter. The handle is a cheap shallow
// copy; cloning it does not duplicate the underlying resource.
type Res[T any] struct {
	value   *T
	changed bool
}

// Value returns a copy of the resource value.
func (r Res[T]) Value() T {
	return *r.value
}

// Changed reports whether the resource was written since the owning system's
// previous run. The first run always reports true.
func (r Res[T]) Changed() bool {
	return r.changed
}

func (Res[T]) resourceType() reflect.Type { return reflect.TypeFor[T]() }
func (Res[T]) resourceMutable() bool      { return false }

// ResMut is a mutable handle to a singleton resource. Accessing the value
// marks the resource changed for every other system's change detection.
type ResMut[T any] struct {
	value   *T
	entry   *resourceEntry
	changed bool
}

// Value returns a pointer to the resource value and marks it changed.
func (r ResMut[T]) Value() *T {
	r.entry.markChanged()
	return r.value
}

// Changed reports whether the resource was written since the owning system's
// previous run.
func (r ResMut[T]) Changed() bool {
	return r.changed
}

func (ResMut[T]) resourceType() reflect.Type { return reflect.TypeFor[T]() }
func (ResMut[T]) resourceMutable() bool      { return true }

// resourceParam is implemented by Res[T] and ResMut[T]; signature analysis
// uses it to recognize resource parameters and their access.
type resourceParam interface {
	resourceType() reflect.Type
	resourceMutable() bool
}

var resourceParamType = reflect.TypeOf((*resourceParam)(nil)).Elem()

// resLayout mirrors the memory layout of Res[T] for handle construction.
type resLayout struct {
	value   unsafe.Pointer
	changed bool
}

// resMutLayout mirrors the memory layout of ResMut[T].
type resMutLayout struct {
	value   unsafe.Pointer
	entry   *resourceEntry
	changed bool
}
