package wecs

import (
	"fmt"
	"iter"
	"reflect"
	"sync"
	"unsafe"
)

// shapeFieldKind represents the role of one query shape field.
type shapeFieldKind int

const (
	// sfComponent is a component field: value = read, pointer = write.
	sfComponent shapeFieldKind = iota
	// sfEntity receives the matched entity's identity.
	sfEntity
	// sfPhantom is a With[T] / Without[T] filter; nothing is injected.
	sfPhantom
)

// shapeField holds injection metadata for a single shape struct field.
type shapeField struct {
	offset    uintptr
	fieldType reflect.Type
	kind      shapeFieldKind
	compID    ComponentID
	compType  reflect.Type
	mutable   bool
	optional  bool
}

// shapeMeta is the analyzed form of a query shape struct. Computed once per
// shape type and cached.
type shapeMeta struct {
	typ    reflect.Type
	fields []shapeField

	require Bitmask
	exclude Bitmask

	// declared and mutable gate single-entity lookups: a lookup outside the
	// declared shape, or a mutable lookup on a read-only field, is a shape
	// mismatch rather than a storage miss.
	declared Bitmask
	mutable  Bitmask

	reads  []reflect.Type
	writes []reflect.Type
}

// shapeCache caches analyzed shapes by reflect.Type.
var shapeCache sync.Map // map[reflect.Type]*shapeMeta

// analyzeShape analyzes a query shape struct type. Fields are component
// values (read), component pointers (write), Entity, or With[T]/Without[T]
// phantoms; a `wecs:"opt"` tag makes a component field optional. Anything
// else is a construction-time contract violation.
func analyzeShape(t reflect.Type) *shapeMeta {
	if cached, ok := shapeCache.Load(t); ok {
		return cached.(*shapeMeta)
	}

	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("wecs: query shape must be a struct, got %v", t))
	}

	meta := &shapeMeta{typ: t}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := parseTag(field.Tag.Get(tagName))

		sf := shapeField{
			offset:    field.Offset,
			fieldType: field.Type,
			optional:  tag.Optional,
		}

		if field.Type == entityType {
			sf.kind = sfEntity
			meta.fields = append(meta.fields, sf)
			continue
		}

		if compType, isWithout, ok := getPhantomInfo(field.Type); ok {
			cid := registerComponentType(compType)
			sf.kind = sfPhantom
			sf.compID = cid
			sf.compType = compType
			if isWithout {
				meta.exclude.Set(cid)
			} else {
				meta.require.Set(cid)
			}
			meta.fields = append(meta.fields, sf)
			continue
		}

		var compType reflect.Type
		switch {
		case field.Type.Kind() == reflect.Pointer && field.Type.Elem().Kind() == reflect.Struct:
			compType = field.Type.Elem()
			sf.mutable = true
		case field.Type.Kind() == reflect.Struct:
			compType = field.Type
		default:
			panic(fmt.Sprintf("wecs: query shape %v: unrecognized field %s of type %v", t, field.Name, field.Type))
		}

		cid := registerComponentType(compType)
		sf.kind = sfComponent
		sf.compID = cid
		sf.compType = compType

		meta.declared.Set(cid)
		if sf.mutable {
			meta.mutable.Set(cid)
			meta.writes = append(meta.writes, compType)
		} else {
			meta.reads = append(meta.reads, compType)
		}
		if !sf.optional {
			meta.require.Set(cid)
		}

		meta.fields = append(meta.fields, sf)
	}

	actual, _ := shapeCache.LoadOrStore(t, meta)
	return actual.(*shapeMeta)
}

// fillShape populates one shape struct instance at base for the given entity.
// Pointer fields receive the component's storage pointer, value fields a
// copy; optional fields stay zero when the component is missing.
func fillShape(base unsafe.Pointer, shape *shapeMeta, e Entity, slot *entitySlot) {
	for i := range shape.fields {
		sf := &shape.fields[i]
		switch sf.kind {
		case sfEntity:
			*(*Entity)(unsafe.Add(base, sf.offset)) = e

		case sfComponent:
			ptr := slot.comps[sf.compID]
			if ptr == nil {
				// Optional and absent; required fields always resolve
				// because the entity matched the require mask.
				continue
			}
			if sf.mutable {
				*(*unsafe.Pointer)(unsafe.Add(base, sf.offset)) = ptr
			} else {
				dst := reflect.NewAt(sf.compType, unsafe.Add(base, sf.offset)).Elem()
				dst.Set(reflect.NewAt(sf.compType, ptr).Elem())
			}

		case sfPhantom:
			// Filtering only.
		}
	}
}

// Query is a per-invocation view over the world restricted to the declared
// shape S. It does not own world data and must not outlive the invocation it
// was passed to.
type Query[S any] struct {
	world *World
	shape *shapeMeta
}

// queryLayout mirrors the memory layout of Query[S] for construction through
// reflection; Query has no S-dependent fields.
type queryLayout struct {
	world *World
	shape *shapeMeta
}

// queryParam is implemented by Query[S]; signature analysis uses it to
// recognize query parameters.
type queryParam interface {
	shapeType() reflect.Type
}

var queryParamType = reflect.TypeOf((*queryParam)(nil)).Elem()

func (Query[S]) shapeType() reflect.Type { return reflect.TypeFor[S]() }

// QueryView is the shape-erased form of Query[S], accepted by the
// single-entity lookup helpers.
type QueryView interface {
	view() (*World, *shapeMeta)
}

func (q Query[S]) view() (*World, *shapeMeta) { return q.world, q.shape }

// Iter returns a fresh iteration over all entities matching the declared
// shape, reflecting live world state at call time. Safe to call any number
// of times within one invocation.
func (q Query[S]) Iter() iter.Seq[S] {
	return func(yield func(S) bool) {
		q.world.iterMatch(q.shape.require, q.shape.exclude, func(e Entity, slot *entitySlot) bool {
			var s S
			fillShape(unsafe.Pointer(&s), q.shape, e, slot)
			return yield(s)
		})
	}
}

// Count returns the number of entities currently matching the declared shape.
func (q Query[S]) Count() int {
	n := 0
	q.world.iterMatch(q.shape.require, q.shape.exclude, func(Entity, *entitySlot) bool {
		n++
		return true
	})
	return n
}

// QueryGet looks up a copy of entity e's component of type T through a query
// view. Returns ErrShapeMismatch if T is not a component field of the view's
// declared shape, or ErrNotFound if the entity does not exist or lacks the
// component.
func QueryGet[T any](q QueryView, e Entity) (T, error) {
	var zero T
	w, shape := q.view()
	cid := componentID[T]()
	if !shape.declared.Has(cid) {
		return zero, ErrShapeMismatch
	}
	ptr := w.getPtr(e, cid)
	if ptr == nil {
		return zero, ErrNotFound
	}
	return *(*T)(ptr), nil
}

// QueryGetMut looks up a mutable reference to entity e's component of type T
// through a query view. Returns ErrShapeMismatch if the view did not declare
// write access to T, or ErrNotFound if the entity does not exist or lacks the
// component. The caller must not hold two live mutable references to the same
// entity's component.
func QueryGetMut[T any](q QueryView, e Entity) (*T, error) {
	w, shape := q.view()
	cid := componentID[T]()
	if !shape.mutable.Has(cid) {
		return nil, ErrShapeMismatch
	}
	ptr := w.getPtr(e, cid)
	if ptr == nil {
		return nil, ErrNotFound
	}
	return (*T)(ptr), nil
}
