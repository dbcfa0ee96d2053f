package wecs

import "errors"

// ErrNotFound is returned by single-entity lookups when the entity does not
// exist or lacks the requested component.
var ErrNotFound = errors.New("wecs: entity or component not found")

// ErrShapeMismatch is returned by single-entity lookups when the requested
// component type or access is not part of the query's declared shape.
var ErrShapeMismatch = errors.New("wecs: component not in query shape")
