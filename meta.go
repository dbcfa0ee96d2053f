package wecs

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync"
)

// paramKind represents the role of one system function parameter.
type paramKind int

const (
	// paramCommands indicates the deferred-mutation buffer handle.
	paramCommands paramKind = iota
	// paramResource indicates a Res[T] or ResMut[T] handle.
	paramResource
	// paramEntity indicates the visited entity's identity (for-each only).
	paramEntity
	// paramComponent indicates a per-entity component (for-each only).
	paramComponent
	// paramQuery indicates a Query[S] view (query systems only).
	paramQuery
)

// String returns the string representation of paramKind.
func (k paramKind) String() string {
	switch k {
	case paramCommands:
		return "Commands"
	case paramResource:
		return "Resource"
	case paramEntity:
		return "Entity"
	case paramComponent:
		return "Component"
	case paramQuery:
		return "Query"
	default:
		return "Unknown"
	}
}

// paramMeta holds injection metadata for a single function parameter.
type paramMeta struct {
	kind     paramKind
	typ      reflect.Type // declared parameter type
	compID   ComponentID  // component parameters
	compType reflect.Type // component or resource value type
	mutable  bool
	shape    *shapeMeta // query parameters
}

// systemMeta holds pre-computed metadata about a system function. Computed
// once at construction and reused for every run.
type systemMeta struct {
	name        string
	fn          reflect.Value
	params      []paramMeta
	hasCommands bool
	access      Access

	// For-each component requirements.
	require Bitmask
}

// Access describes which component and resource types a system reads or
// writes, as declared by its signature. The core does not check conflicts
// between systems itself; it only reports declarations so a scheduler or
// borrow checker can.
type Access struct {
	Reads     []reflect.Type
	Writes    []reflect.Type
	ResReads  []reflect.Type
	ResWrites []reflect.Type

	// Exclusive marks access that conflicts with everything, used by
	// exclusive systems that take the whole world.
	Exclusive bool

	once      sync.Once
	writesSet map[reflect.Type]struct{}
	allSet    map[reflect.Type]struct{}
}

// prepare builds the lookup sets used by Conflicts.
func (a *Access) prepare() {
	a.once.Do(func() {
		a.writesSet = make(map[reflect.Type]struct{}, len(a.Writes)+len(a.ResWrites))
		a.allSet = make(map[reflect.Type]struct{}, len(a.Reads)+len(a.Writes)+len(a.ResReads)+len(a.ResWrites))
		for _, t := range a.Writes {
			a.writesSet[t] = struct{}{}
			a.allSet[t] = struct{}{}
		}
		for _, t := range a.ResWrites {
			a.writesSet[t] = struct{}{}
			a.allSet[t] = struct{}{}
		}
		for _, t := range a.Reads {
			a.allSet[t] = struct{}{}
		}
		for _, t := range a.ResReads {
			a.allSet[t] = struct{}{}
		}
	})
}

// Conflicts reports whether two access declarations overlap with at least one
// write on the overlap. Component and resource types never collide in
// practice, so a single set per side suffices.
func (a *Access) Conflicts(other *Access) bool {
	if a.Exclusive || other.Exclusive {
		return true
	}
	a.prepare()
	other.prepare()

	for t := range a.writesSet {
		if _, ok := other.allSet[t]; ok {
			return true
		}
	}
	for t := range other.writesSet {
		if _, ok := a.allSet[t]; ok {
			return true
		}
	}
	return false
}

var (
	commandsType = reflect.TypeFor[Commands]()
	entityType   = reflect.TypeFor[Entity]()
)

// analyzeFunc inspects a system function's parameter list and classifies each
// parameter's role. Parameters follow a fixed order: an optional Commands
// handle, then resource handles, then the per-entity suffix (components and
// Entity for a for-each system, Query views for a query system).
//
// Any unrecognized or misordered parameter is a programming error and panics
// with a diagnostic naming the function.
func analyzeFunc(fn any, forEach bool) *systemMeta {
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		panic(fmt.Sprintf("wecs: system must be a function, got %T", fn))
	}
	name := funcName(fn)
	if t.NumOut() != 0 {
		panic(fmt.Sprintf("wecs: system %s must not return values", name))
	}

	meta := &systemMeta{
		name: name,
		fn:   reflect.ValueOf(fn),
	}

	// 0 = commands position, 1 = resources, 2 = suffix.
	phase := 0

	for i := 0; i < t.NumIn(); i++ {
		pt := t.In(i)

		if pt == commandsType {
			if i != 0 {
				panic(fmt.Sprintf("wecs: system %s: Commands must be the first parameter", name))
			}
			meta.hasCommands = true
			meta.params = append(meta.params, paramMeta{kind: paramCommands, typ: pt})
			phase = 1
			continue
		}

		if pt.Implements(resourceParamType) {
			if phase > 1 {
				panic(fmt.Sprintf("wecs: system %s: resource parameter %d after component or query parameters", name, i))
			}
			phase = 1
			rp := reflect.New(pt).Elem().Interface().(resourceParam)
			rt := rp.resourceType()
			mutable := rp.resourceMutable()
			if mutable {
				meta.access.ResWrites = append(meta.access.ResWrites, rt)
			} else {
				meta.access.ResReads = append(meta.access.ResReads, rt)
			}
			meta.params = append(meta.params, paramMeta{
				kind:     paramResource,
				typ:      pt,
				compType: rt,
				mutable:  mutable,
			})
			continue
		}

		phase = 2
		if forEach {
			meta.params = append(meta.params, analyzeForEachParam(name, i, pt, meta))
		} else {
			meta.params = append(meta.params, analyzeQueryParam(name, i, pt, meta))
		}
	}

	if forEach && meta.require.IsZero() {
		panic(fmt.Sprintf("wecs: for-each system %s declares no component parameters", name))
	}

	return meta
}

// analyzeForEachParam classifies one suffix parameter of a for-each system:
// Entity, a read component (struct value) or a write component (pointer to
// struct).
func analyzeForEachParam(name string, i int, pt reflect.Type, meta *systemMeta) paramMeta {
	if pt == entityType {
		return paramMeta{kind: paramEntity, typ: pt}
	}

	if pt.Implements(queryParamType) {
		panic(fmt.Sprintf("wecs: for-each system %s: parameter %d is a Query view; build it with ForQuery", name, i))
	}
	if isPhantomType(pt) {
		panic(fmt.Sprintf("wecs: system %s: parameter %d is a phantom filter; phantoms belong in query shapes", name, i))
	}

	var compType reflect.Type
	var mutable bool
	switch {
	case pt.Kind() == reflect.Pointer && pt.Elem().Kind() == reflect.Struct:
		compType = pt.Elem()
		mutable = true
	case pt.Kind() == reflect.Struct:
		compType = pt
	default:
		panic(fmt.Sprintf("wecs: system %s: unrecognized parameter %d of type %v", name, i, pt))
	}

	cid := registerComponentType(compType)
	meta.require.Set(cid)
	if mutable {
		meta.access.Writes = append(meta.access.Writes, compType)
	} else {
		meta.access.Reads = append(meta.access.Reads, compType)
	}

	return paramMeta{
		kind:     paramComponent,
		typ:      pt,
		compID:   cid,
		compType: compType,
		mutable:  mutable,
	}
}

// analyzeQueryParam classifies one suffix parameter of a query system, which
// must be a Query[S] view, and merges the shape's access into the system's.
func analyzeQueryParam(name string, i int, pt reflect.Type, meta *systemMeta) paramMeta {
	if !pt.Implements(queryParamType) {
		panic(fmt.Sprintf("wecs: query system %s: unrecognized parameter %d of type %v", name, i, pt))
	}

	qp := reflect.New(pt).Elem().Interface().(queryParam)
	shape := analyzeShape(qp.shapeType())

	meta.access.Reads = append(meta.access.Reads, shape.reads...)
	meta.access.Writes = append(meta.access.Writes, shape.writes...)

	return paramMeta{kind: paramQuery, typ: pt, shape: shape}
}

// funcName returns a short diagnostic name for a function value.
func funcName(fn any) string {
	pc := reflect.ValueOf(fn).Pointer()
	f := runtime.FuncForPC(pc)
	if f == nil {
		return "func"
	}
	name := f.Name()
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}
