package wecs

import "reflect"

// ForEach builds a Parallel system from a function invoked once per matching
// entity. The parameter list is, in order: an optional Commands handle, zero
// or more Res[T]/ResMut[T] handles, then one or more component parameters -
// a struct value for read access, a pointer to struct for write access - and
// optionally an Entity parameter receiving the visited entity's identity.
//
//	func move(pos *Position, vel Velocity) { ... }
//	sched.Add(wecs.Update, wecs.ForEach(move))
//
// Each run fetches the declared resources once, then invokes the function for
// every entity bearing all declared components. Construction panics if any
// parameter is unrecognized or out of order.
func ForEach(fn any) System {
	return newFuncSystem(analyzeFunc(fn, true), true)
}

// ForQuery builds a Parallel system from a function invoked once per run.
// The prefix is the same as ForEach (optional Commands, then resources); the
// suffix is zero or more Query[S] views, which the function iterates itself.
//
//	func collide(q wecs.Query[Movers]) {
//	    for m := range q.Iter() { ... }
//	}
//
// Construction panics if any parameter is unrecognized or out of order.
func ForQuery(fn any) System {
	return newFuncSystem(analyzeFunc(fn, false), false)
}

// newFuncSystem wires a constructed signature into a runnable unit, sharing
// the prefix handling (commands, then resources) between both shapes.
func newFuncSystem(meta *systemMeta, forEach bool) *funcSystem {
	s := &funcSystem{
		meta:     meta,
		id:       newSystemID(),
		commands: newCommands(),
	}
	if forEach {
		s.run = s.runForEach
	} else {
		s.run = s.runQuery
	}
	return s
}

// assemblePrefix fills the commands and resource arguments, shared by both
// shapes. Resource fetches are keyed by (type, SystemID) so the container
// tracks per-system change state.
func (s *funcSystem) assemblePrefix(args []reflect.Value, res *Resources) {
	for i := range s.meta.params {
		p := &s.meta.params[i]
		switch p.kind {
		case paramCommands:
			args[i] = reflect.ValueOf(s.commands)
		case paramResource:
			args[i] = makeResourceArg(res, p, s.id)
		}
	}
}

// runForEach is the per-run body of a for-each system: resources are fetched
// once, then the function is invoked for every entity matching the declared
// component set, in the storage's native order.
func (s *funcSystem) runForEach(w *World, res *Resources) {
	meta := s.meta
	args := make([]reflect.Value, len(meta.params))
	s.assemblePrefix(args, res)

	w.iterMatch(meta.require, Bitmask{}, func(e Entity, slot *entitySlot) bool {
		for i := range meta.params {
			p := &meta.params[i]
			switch p.kind {
			case paramEntity:
				args[i] = reflect.ValueOf(e)
			case paramComponent:
				pv := reflect.NewAt(p.compType, slot.comps[p.compID])
				if p.mutable {
					args[i] = pv
				} else {
					args[i] = pv.Elem()
				}
			}
		}
		meta.fn.Call(args)
		return true
	})
}

// runQuery is the per-run body of a query system: resources are fetched once,
// one Query view is bound per declared shape, and the function is invoked a
// single time.
func (s *funcSystem) runQuery(w *World, res *Resources) {
	meta := s.meta
	args := make([]reflect.Value, len(meta.params))
	s.assemblePrefix(args, res)

	for i := range meta.params {
		p := &meta.params[i]
		if p.kind != paramQuery {
			continue
		}
		qv := reflect.New(p.typ)
		layout := (*queryLayout)(qv.UnsafePointer())
		layout.world = w
		layout.shape = p.shape
		args[i] = qv.Elem()
	}

	meta.fn.Call(args)
}

// makeResourceArg builds a Res[T] or ResMut[T] handle for one declared
// resource. Handles are shallow: they share the container's storage, so
// copying one per invocation costs a few words.
func makeResourceArg(res *Resources, p *paramMeta, id SystemID) reflect.Value {
	ptr, entry, changed := res.fetch(p.compType, id)

	hv := reflect.New(p.typ)
	if p.mutable {
		layout := (*resMutLayout)(hv.UnsafePointer())
		layout.value = ptr
		layout.entry = entry
		layout.changed = changed
	} else {
		layout := (*resLayout)(hv.UnsafePointer())
		layout.value = ptr
		layout.changed = changed
	}
	return hv.Elem()
}
