package wecs

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// ComponentID is a unique identifier for a component type.
// Valid IDs range from 0 to 255.
type ComponentID uint8

// MaxComponents is the maximum number of component types supported.
const MaxComponents = 255

// componentRegistry manages component type registration with lock-free reads.
// Component IDs are assigned sequentially and cached for fast lookup.
// sync.Map provides lock-free reads for the hot path (id lookup during
// iteration and injection) while still allowing safe concurrent registration.
type componentRegistry struct {
	// types maps reflect.Type to ComponentID using sync.Map for lock-free reads.
	types sync.Map // map[reflect.Type]ComponentID

	// names and typesArr store component metadata indexed by ComponentID.
	// Written once during registration and read-only afterward.
	names    [MaxComponents]string
	typesArr [MaxComponents]reflect.Type

	// nextID is the next available component ID.
	nextID atomic.Uint32

	// arrMu protects writes to names and typesArr during registration.
	arrMu sync.RWMutex
}

// globalRegistry is the singleton component registry.
var globalRegistry = &componentRegistry{}

// registerComponentType registers a component type and returns its ID.
// Called automatically when a component type is first seen in a system
// signature, a query shape, or a world mutation.
func registerComponentType(t reflect.Type) ComponentID {
	if id, ok := globalRegistry.types.Load(t); ok {
		return id.(ComponentID)
	}

	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("wecs: component must be a struct type, got %v", t))
	}

	// Atomically allocate an ID before attempting to register, so every
	// registration attempt gets a unique one.
	newID := ComponentID(globalRegistry.nextID.Add(1) - 1)
	if newID >= MaxComponents {
		panic(fmt.Sprintf("wecs: component limit exceeded (max %d types)", MaxComponents))
	}

	// LoadOrStore ensures only one goroutine wins if multiple register the
	// same type simultaneously; the loser's allocated ID is wasted, which is
	// rare and harmless.
	actual, loaded := globalRegistry.types.LoadOrStore(t, newID)
	if loaded {
		return actual.(ComponentID)
	}

	globalRegistry.arrMu.Lock()
	globalRegistry.names[newID] = t.Name()
	globalRegistry.typesArr[newID] = t
	globalRegistry.arrMu.Unlock()

	return newID
}

// componentID returns the ComponentID for type T, registering it if needed.
func componentID[T any]() ComponentID {
	return registerComponentType(reflect.TypeFor[T]())
}

// ComponentName returns the name of the component type with the given ID.
func ComponentName(id ComponentID) string {
	globalRegistry.arrMu.RLock()
	defer globalRegistry.arrMu.RUnlock()
	return globalRegistry.names[id]
}

// ComponentTypeOf returns the reflect.Type of the component with the given ID.
func ComponentTypeOf(id ComponentID) reflect.Type {
	globalRegistry.arrMu.RLock()
	defer globalRegistry.arrMu.RUnlock()
	return globalRegistry.typesArr[id]
}

// RegisteredComponentCount returns the number of registered component types.
func RegisteredComponentCount() int {
	return int(globalRegistry.nextID.Load())
}
