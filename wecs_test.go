package wecs

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Shared test components and resources.

type Transform struct {
	Pos mgl64.Vec3
}

type Movement struct {
	Vel mgl64.Vec3
}

type Health struct {
	Current, Max int
}

type Frozen struct{}

type Tagged struct{}

// Counter is a test resource.
type Counter struct {
	N int
}

// TickRate is a second test resource.
type TickRate struct {
	PerSecond int
}

// spawnMover creates an entity with a transform and movement.
func spawnMover(w *World, pos, vel mgl64.Vec3) Entity {
	return w.Spawn(Transform{Pos: pos}, Movement{Vel: vel})
}
