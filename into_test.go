package wecs

import (
	"reflect"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func integrate(tf *Transform, mv Movement) {
	tf.Pos = tf.Pos.Add(mv.Vel)
}

func TestForEach_InvokesOncePerMatchingEntity(t *testing.T) {
	w := NewWorld()
	res := NewResources()
	res.Add(&Counter{N: 7})

	a := spawnMover(w, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0})
	b := spawnMover(w, mgl64.Vec3{5, 5, 5}, mgl64.Vec3{0, 2, 0})
	w.Spawn(Transform{Pos: mgl64.Vec3{9, 9, 9}}) // no Movement, must not be visited

	calls := 0
	sys := ForEach(func(cmds Commands, counter Res[Counter], tf Transform, mv *Movement) {
		calls++
		assert.Equal(t, 7, counter.Value().N)
		mv.Vel = mv.Vel.Mul(2)
	})

	sys.Initialize(res)
	sys.Run(w, res)

	assert.Equal(t, 2, calls)
	assert.Equal(t, mgl64.Vec3{2, 0, 0}, GetComponent[Movement](w, a).Vel)
	assert.Equal(t, mgl64.Vec3{0, 4, 0}, GetComponent[Movement](w, b).Vel)
}

func TestForEach_PointerParamsMutateStorage(t *testing.T) {
	w := NewWorld()
	res := NewResources()

	e := spawnMover(w, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 2, 3})

	sys := ForEach(integrate)
	sys.Initialize(res)
	sys.Run(w, res)
	sys.Run(w, res)

	assert.Equal(t, mgl64.Vec3{3, 5, 7}, GetComponent[Transform](w, e).Pos)
}

func TestForEach_ValueParamsAreCopies(t *testing.T) {
	w := NewWorld()
	res := NewResources()

	e := w.Spawn(Health{Current: 10, Max: 10})

	sys := ForEach(func(h Health) {
		h.Current = 0 // mutates the copy only
	})
	sys.Initialize(res)
	sys.Run(w, res)

	assert.Equal(t, 10, GetComponent[Health](w, e).Current)
}

func TestForEach_EntityParam(t *testing.T) {
	w := NewWorld()
	res := NewResources()

	e1 := w.Spawn(Health{Current: 1, Max: 1})
	e2 := w.Spawn(Health{Current: 2, Max: 2})

	var visited []Entity
	sys := ForEach(func(e Entity, h Health) {
		visited = append(visited, e)
	})
	sys.Initialize(res)
	sys.Run(w, res)

	assert.ElementsMatch(t, []Entity{e1, e2}, visited)
}

func TestForEach_ResourceChangeDetection(t *testing.T) {
	w := NewWorld()
	res := NewResources()
	res.Add(&Counter{})

	w.Spawn(Health{Current: 1, Max: 1})

	var observed []bool
	reader := ForEach(func(c Res[Counter], h Health) {
		observed = append(observed, c.Changed())
	})
	writer := ForEach(func(c ResMut[Counter], h Health) {
		c.Value().N++
	})

	reader.Initialize(res)
	writer.Initialize(res)

	reader.Run(w, res) // first run: initial write counts as changed
	reader.Run(w, res) // nothing written since
	writer.Run(w, res)
	reader.Run(w, res) // observes the writer's mutation

	assert.Equal(t, []bool{true, false, true}, observed)
	assert.Equal(t, 1, GetResource[Counter](res).N)
}

func TestForEach_ResourceHandlesShareStorage(t *testing.T) {
	w := NewWorld()
	res := NewResources()
	res.Add(&TickRate{PerSecond: 20})

	w.Spawn(Health{Current: 1, Max: 1})

	sys := ForEach(func(r ResMut[TickRate], h Health) {
		r.Value().PerSecond = 50
	})
	sys.Initialize(res)
	sys.Run(w, res)

	assert.Equal(t, 50, GetResource[TickRate](res).PerSecond)
}

type moverShape struct {
	E  Entity
	Tf *Transform
	Mv Movement
	_  Without[Frozen]
}

func TestForQuery_IteratesDeclaredShape(t *testing.T) {
	w := NewWorld()
	res := NewResources()

	moving := spawnMover(w, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	frozen := w.Spawn(Transform{}, Movement{Vel: mgl64.Vec3{9, 9, 9}}, Frozen{})

	var visited []Entity
	sys := ForQuery(func(q Query[moverShape]) {
		for m := range q.Iter() {
			visited = append(visited, m.E)
			m.Tf.Pos = m.Tf.Pos.Add(m.Mv.Vel)
		}
	})
	sys.Initialize(res)
	sys.Run(w, res)

	assert.Equal(t, []Entity{moving}, visited)
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, GetComponent[Transform](w, moving).Pos)
	assert.Equal(t, mgl64.Vec3{}, GetComponent[Transform](w, frozen).Pos)
}

func TestForQuery_ResourceOnlySystemRunsOnce(t *testing.T) {
	w := NewWorld()
	res := NewResources()
	res.Add(&Counter{})

	sys := ForQuery(func(c ResMut[Counter]) {
		c.Value().N++
	})
	sys.Initialize(res)
	sys.Run(w, res)
	sys.Run(w, res)

	assert.Equal(t, 2, GetResource[Counter](res).N)
}

func TestForQuery_MultipleViews(t *testing.T) {
	w := NewWorld()
	res := NewResources()

	spawnMover(w, mgl64.Vec3{}, mgl64.Vec3{})
	w.Spawn(Health{Current: 1, Max: 1})
	w.Spawn(Health{Current: 2, Max: 2})

	type healthShape struct {
		H *Health
	}

	var movers, healthy int
	sys := ForQuery(func(qm Query[moverShape], qh Query[healthShape]) {
		movers = qm.Count()
		healthy = qh.Count()
	})
	sys.Initialize(res)
	sys.Run(w, res)

	assert.Equal(t, 1, movers)
	assert.Equal(t, 2, healthy)
}

func TestSystem_Metadata(t *testing.T) {
	sys := ForEach(integrate)

	assert.NotZero(t, sys.ID())
	assert.Equal(t, Parallel, sys.Mode())
	assert.True(t, strings.Contains(sys.Name(), "integrate"), "got %q", sys.Name())

	access := sys.Access()
	assert.Contains(t, access.Writes, reflect.TypeFor[Transform]())
	assert.Contains(t, access.Reads, reflect.TypeFor[Movement]())
	assert.False(t, access.Exclusive)
}

func TestSystem_UniqueIDs(t *testing.T) {
	a := ForEach(integrate)
	b := ForEach(integrate)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestSystem_ResourceAccessDeclared(t *testing.T) {
	sys := ForQuery(func(c Res[Counter], r ResMut[TickRate]) {})

	access := sys.Access()
	assert.Contains(t, access.ResReads, reflect.TypeFor[Counter]())
	assert.Contains(t, access.ResWrites, reflect.TypeFor[TickRate]())
}

func TestConstruction_ContractViolationsPanic(t *testing.T) {
	tests := []struct {
		name  string
		build func()
	}{
		{"not a function", func() { ForEach(42) }},
		{"return value", func() { ForEach(func(h Health) int { return 0 }) }},
		{"commands not first", func() { ForEach(func(h Health, cmds Commands) {}) }},
		{"resource after component", func() { ForEach(func(h Health, c Res[Counter]) {}) }},
		{"no components in for-each", func() { ForEach(func(cmds Commands, c Res[Counter]) {}) }},
		{"query view in for-each", func() { ForEach(func(q Query[moverShape]) {}) }},
		{"component in query system", func() { ForQuery(func(h Health) {}) }},
		{"unrecognized parameter", func() { ForEach(func(n int) {}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, tt.build)
		})
	}
}
