package wecs

import (
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// commandKind discriminates the recorded edit types.
type commandKind int

const (
	cmdSpawn commandKind = iota
	cmdDespawn
	cmdInsert
	cmdInsertPending
	cmdRemove
	cmdInsertResource
)

// command is one recorded structural edit.
type command struct {
	kind       commandKind
	pending    uuid.UUID
	entity     Entity
	components []any
	component  any
	compType   reflect.Type
	resource   any
}

// commandQueue is the shared buffer behind every clone of a Commands handle.
type commandQueue struct {
	mu  sync.Mutex
	ops []command
}

// push appends one edit in recording order.
func (q *commandQueue) push(c command) {
	q.mu.Lock()
	q.ops = append(q.ops, c)
	q.mu.Unlock()
}

// take empties the queue and returns the recorded edits, leaving a fresh
// buffer behind for the next run.
func (q *commandQueue) take() []command {
	q.mu.Lock()
	ops := q.ops
	q.ops = nil
	q.mu.Unlock()
	return ops
}

// PendingEntity is the handle returned by Commands.Spawn before the entity
// exists. It resolves to a real Entity when the owning buffer is flushed and
// may be targeted by InsertPending within the same buffer.
type PendingEntity struct {
	id uuid.UUID
}

// Commands records structural world edits requested during a parallel run.
// Edits never touch the world directly; they are applied, in recording order,
// at the next exclusive phase.
//
// A Commands value is a cheap shallow handle: copies share one underlying
// buffer, so a system invoked once per entity funnels every edit into the
// same buffer for that run. Handles must not be retained past the invocation
// they were passed to.
type Commands struct {
	queue *commandQueue
}

// newCommands creates a handle over a fresh buffer.
func newCommands() Commands {
	return Commands{queue: &commandQueue{}}
}

// Spawn records the creation of a new entity bearing the given components
// and returns a pending handle to it.
func (c Commands) Spawn(components ...any) PendingEntity {
	p := PendingEntity{id: uuid.New()}
	c.queue.push(command{kind: cmdSpawn, pending: p.id, components: components})
	return p
}

// Despawn records the removal of an entity.
func (c Commands) Despawn(e Entity) {
	c.queue.push(command{kind: cmdDespawn, entity: e})
}

// Insert records attaching a component to an entity.
func (c Commands) Insert(e Entity, component any) {
	c.queue.push(command{kind: cmdInsert, entity: e, component: component})
}

// InsertPending records attaching a component to an entity spawned earlier in
// the same buffer. A pending handle from another buffer never resolves and
// the edit is dropped at flush.
func (c Commands) InsertPending(p PendingEntity, component any) {
	c.queue.push(command{kind: cmdInsertPending, pending: p.id, component: component})
}

// RemoveType records detaching the component of the given type from an entity.
func (c Commands) RemoveType(e Entity, t reflect.Type) {
	c.queue.push(command{kind: cmdRemove, entity: e, compType: t})
}

// InsertResource records inserting or replacing a singleton resource.
func (c Commands) InsertResource(res any) {
	c.queue.push(command{kind: cmdInsertResource, resource: res})
}

// Remove records detaching the component of type T from entity e.
func Remove[T any](c Commands, e Entity) {
	c.RemoveType(e, reflect.TypeFor[T]())
}

// flush takes the buffered edits and applies them to the world and resources
// in recording order. The handle is left backing a fresh empty buffer.
func (c Commands) flush(w *World, res *Resources) {
	ops := c.queue.take()
	if len(ops) == 0 {
		return
	}

	// Pending handles resolve only within the buffer that spawned them.
	spawned := make(map[uuid.UUID]Entity)

	for _, op := range ops {
		switch op.kind {
		case cmdSpawn:
			spawned[op.pending] = w.Spawn(op.components...)

		case cmdDespawn:
			w.Despawn(op.entity)

		case cmdInsert:
			w.Insert(op.entity, op.component)

		case cmdInsertPending:
			if e, ok := spawned[op.pending]; ok {
				w.Insert(e, op.component)
			}

		case cmdRemove:
			w.RemoveType(op.entity, op.compType)

		case cmdInsertResource:
			res.setAny(op.resource)
		}
	}
}

// pendingLen reports the number of buffered edits. Test hook.
func (c Commands) pendingLen() int {
	c.queue.mu.Lock()
	defer c.queue.mu.Unlock()
	return len(c.queue.ops)
}
