package wecs

import "reflect"

// With is a phantom type for query shapes: the component must exist on an
// entity for it to match, but is not injected into the field.
//
// Usage:
//
//	type Movers struct {
//	    Pos *Position
//	    _   wecs.With[Active] // only match entities bearing Active
//	}
type With[T any] struct{}

// Without is a phantom type for query shapes: entities bearing the component
// are excluded from the match.
//
// Usage:
//
//	type Movers struct {
//	    Pos *Position
//	    _   wecs.Without[Frozen] // skip frozen entities
//	}
type Without[T any] struct{}

// PhantomTypeInfo provides component type information for phantom types.
type PhantomTypeInfo interface {
	ComponentType() reflect.Type
	IsWithout() bool
}

// ComponentType implements PhantomTypeInfo for With[T].
func (With[T]) ComponentType() reflect.Type {
	return reflect.TypeFor[T]()
}

// IsWithout implements PhantomTypeInfo for With[T].
func (With[T]) IsWithout() bool {
	return false
}

// ComponentType implements PhantomTypeInfo for Without[T].
func (Without[T]) ComponentType() reflect.Type {
	return reflect.TypeFor[T]()
}

// IsWithout implements PhantomTypeInfo for Without[T].
func (Without[T]) IsWithout() bool {
	return true
}

// phantomTypeInfoType is the reflect.Type of the PhantomTypeInfo interface.
var phantomTypeInfoType = reflect.TypeOf((*PhantomTypeInfo)(nil)).Elem()

// isPhantomType checks if a type implements PhantomTypeInfo.
func isPhantomType(t reflect.Type) bool {
	return t.Implements(phantomTypeInfoType)
}

// getPhantomInfo extracts component type and kind from a phantom type.
func getPhantomInfo(t reflect.Type) (compType reflect.Type, isWithout bool, ok bool) {
	if !t.Implements(phantomTypeInfoType) {
		return nil, false, false
	}
	v := reflect.New(t).Elem().Interface().(PhantomTypeInfo)
	return v.ComponentType(), v.IsWithout(), true
}
