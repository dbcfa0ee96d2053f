package wecs

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

// entitySlot holds the live state of one entity: its generation, its
// component bitmask and a pointer per registered component type.
type entitySlot struct {
	gen   uint32
	alive bool
	mask  Bitmask
	comps [MaxComponents]unsafe.Pointer
}

// World stores entities and their components. Iteration order over entities
// is slot order; no ordering guarantee is made beyond that.
//
// Concurrency:
// Structural mutations (Spawn, Despawn, Insert, RemoveType) must only happen
// while no system is iterating the world - in practice, from the exclusive
// phase of a schedule or from setup code. Component reads during the parallel
// phase need no locking because the scheduler guarantees no structural
// mutation is in flight; the world's own lock only serializes overlapping
// setup-time use.
type World struct {
	mu      sync.Mutex
	slots   []entitySlot
	freeIDs []uint32
	count   int
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{}
}

// Spawn creates a new entity bearing the given components. Each component may
// be passed as a struct value or a pointer to struct; values are copied into
// freshly allocated storage.
func (w *World) Spawn(components ...any) Entity {
	w.mu.Lock()
	defer w.mu.Unlock()

	var id uint32
	if n := len(w.freeIDs); n > 0 {
		id = w.freeIDs[n-1]
		w.freeIDs = w.freeIDs[:n-1]
	} else {
		w.slots = append(w.slots, entitySlot{})
		id = uint32(len(w.slots) - 1)
	}

	slot := &w.slots[id]
	slot.alive = true
	slot.mask = Bitmask{}
	w.count++

	for _, component := range components {
		cid, _, ptr := componentValue(component)
		slot.comps[cid] = ptr
		slot.mask.Set(cid)
	}

	return Entity{ID: id, Gen: slot.gen}
}

// Despawn removes an entity and all its components. Returns false if the
// entity is not alive.
func (w *World) Despawn(e Entity) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	slot := w.slotOf(e)
	if slot == nil {
		return false
	}

	for i := range slot.comps {
		slot.comps[i] = nil
	}
	slot.mask = Bitmask{}
	slot.alive = false
	slot.gen++
	w.count--
	w.freeIDs = append(w.freeIDs, e.ID)
	return true
}

// Insert attaches a component to an entity, replacing any existing component
// of the same type. Returns false if the entity is not alive.
func (w *World) Insert(e Entity, component any) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	slot := w.slotOf(e)
	if slot == nil {
		return false
	}

	cid, _, ptr := componentValue(component)
	slot.comps[cid] = ptr
	slot.mask.Set(cid)
	return true
}

// RemoveType detaches the component of the given type from an entity.
// Returns false if the entity is not alive or lacks the component.
func (w *World) RemoveType(e Entity, t reflect.Type) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	slot := w.slotOf(e)
	if slot == nil {
		return false
	}

	cid := registerComponentType(t)
	if !slot.mask.Has(cid) {
		return false
	}
	slot.comps[cid] = nil
	slot.mask.Clear(cid)
	return true
}

// Alive reports whether the entity exists in the world.
func (w *World) Alive(e Entity) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.slotOf(e) != nil
}

// Len returns the number of live entities.
func (w *World) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// slotOf returns the slot for a live entity, or nil if the handle is stale,
// out of range or despawned. Caller holds w.mu.
func (w *World) slotOf(e Entity) *entitySlot {
	if int(e.ID) >= len(w.slots) {
		return nil
	}
	slot := &w.slots[e.ID]
	if !slot.alive || slot.gen != e.Gen {
		return nil
	}
	return slot
}

// getPtr returns the raw component pointer for a live entity, or nil.
// Safe without the lock during the parallel phase (see type comment).
func (w *World) getPtr(e Entity, cid ComponentID) unsafe.Pointer {
	if int(e.ID) >= len(w.slots) {
		return nil
	}
	slot := &w.slots[e.ID]
	if !slot.alive || slot.gen != e.Gen || !slot.mask.Has(cid) {
		return nil
	}
	return slot.comps[cid]
}

// iterMatch visits every live entity whose mask contains all of require and
// none of exclude. fn returning false stops the iteration. Runs without the
// lock; callers rely on the scheduler's no-structural-mutation guarantee.
func (w *World) iterMatch(require, exclude Bitmask, fn func(Entity, *entitySlot) bool) {
	for i := range w.slots {
		slot := &w.slots[i]
		if !slot.alive {
			continue
		}
		if !slot.mask.ContainsAll(require) || slot.mask.ContainsAny(exclude) {
			continue
		}
		if !fn(Entity{ID: uint32(i), Gen: slot.gen}, slot) {
			return
		}
	}
}

// componentValue normalizes a component argument to its registered id, type
// and backing pointer. Struct values are copied to the heap so the world owns
// stable storage.
func componentValue(component any) (ComponentID, reflect.Type, unsafe.Pointer) {
	if component == nil {
		panic("wecs: nil component")
	}

	rv := reflect.ValueOf(component)
	switch {
	case rv.Kind() == reflect.Pointer && rv.Elem().Kind() == reflect.Struct:
		if rv.IsNil() {
			panic("wecs: nil component pointer")
		}
		t := rv.Type().Elem()
		return registerComponentType(t), t, rv.UnsafePointer()

	case rv.Kind() == reflect.Struct:
		t := rv.Type()
		pv := reflect.New(t)
		pv.Elem().Set(rv)
		return registerComponentType(t), t, pv.UnsafePointer()

	default:
		panic(fmt.Sprintf("wecs: component must be a struct or pointer to struct, got %T", component))
	}
}

// GetComponent retrieves a pointer to entity e's component of type T, or nil
// if the entity is not alive or lacks the component.
func GetComponent[T any](w *World, e Entity) *T {
	return (*T)(w.getPtr(e, componentID[T]()))
}

// HasComponent reports whether entity e bears a component of type T.
func HasComponent[T any](w *World, e Entity) bool {
	return w.getPtr(e, componentID[T]()) != nil
}

// SetComponent attaches a component of type T with the given value to entity
// e, replacing any existing value.
func SetComponent[T any](w *World, e Entity, val T) bool {
	return w.Insert(e, &val)
}

// RemoveComponent detaches the component of type T from entity e.
func RemoveComponent[T any](w *World, e Entity) bool {
	return w.RemoveType(e, reflect.TypeFor[T]())
}
