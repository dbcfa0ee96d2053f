// Package wecs provides a World Entity Component System built around plain
// function systems.
//
// WECS turns ordinary Go functions into schedulable systems. A function's
// parameter list declares everything the system needs - a command buffer,
// singleton resources, and per-entity components or query views - and WECS
// infers the wiring at registration time. No manual fetch code, no
// registration metadata.
//
// # Quick Start
//
// Define components as plain structs and write a function over them:
//
//	type Position struct{ X, Y float64 }
//	type Velocity struct{ DX, DY float64 }
//
//	func move(pos *Position, vel Velocity) {
//	    pos.X += vel.DX
//	    pos.Y += vel.DY
//	}
//
// Build a system from it and run it through a schedule:
//
//	world := wecs.NewWorld()
//	resources := wecs.NewResources()
//
//	sched := wecs.NewSchedule()
//	sched.Add(wecs.Update, wecs.ForEach(move))
//	sched.Tick(world, resources)
//
// # Parameter Shapes
//
// A system function's parameters follow a fixed order: an optional
// wecs.Commands handle first, then zero or more resource handles, then the
// per-entity suffix.
//
//	func spawner(cmds wecs.Commands, cfg wecs.Res[Config]) { ... }     // resources only
//	func move(pos *Position, vel Velocity) { ... }                     // for-each over entities
//	func collide(q wecs.Query[Pair]) { ... }                           // query view
//
// In the for-each shape a pointer component parameter declares write access
// and a value parameter declares read access. An Entity parameter receives
// the identity of the entity being visited.
//
// # Deferred Mutations
//
// Structural edits requested during a parallel run - spawning, despawning,
// inserting or removing components - are recorded in the system's command
// buffer and applied in order at the next exclusive phase, never while other
// systems may be reading the world.
//
// # Execution Modes
//
// Every system reports Parallel or Exclusive. Parallel systems may run
// concurrently with other parallel systems whose declared access does not
// conflict; Exclusive systems run alone with direct mutable access to the
// world and resources.
package wecs

// Version is the WECS version.
const Version = "1.0.0"
