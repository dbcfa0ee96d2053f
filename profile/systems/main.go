// Profiling:
// go build ./profile/systems
// go tool pprof -http=":8000" -nodefraction=0.001 ./systems cpu.pprof

package main

import (
	"github.com/oriumgames/wecs"
	"github.com/pkg/profile"
)

type position struct {
	X, Y, Z float64
}

type velocity struct {
	X, Y, Z float64
}

type frameCount struct {
	N int
}

func main() {
	ticks := 10000
	entities := 10000
	p := profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	run(ticks, entities)
	p.Stop()
}

func run(ticks, numEntities int) {
	w := wecs.NewWorld()
	res := wecs.NewResources()
	res.Add(&frameCount{})

	for range numEntities {
		w.Spawn(position{}, velocity{X: 1, Y: 2, Z: 3})
	}

	sched := wecs.NewSchedule()
	sched.Add(wecs.Update, wecs.ForEach(func(pos *position, vel velocity) {
		pos.X += vel.X
		pos.Y += vel.Y
		pos.Z += vel.Z
	}))
	sched.Add(wecs.Update, wecs.ForEach(func(fc wecs.ResMut[frameCount], pos position) {
		fc.Value().N++
	}))

	for range ticks {
		sched.Tick(w, res)
	}
}
