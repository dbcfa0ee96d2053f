package wecs

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResources_AddAndGet(t *testing.T) {
	res := NewResources()
	res.Add(&Counter{N: 3})

	c := GetResource[Counter](res)
	require.NotNil(t, c)
	assert.Equal(t, 3, c.N)
	assert.Nil(t, GetResource[TickRate](res))
	assert.True(t, res.Contains(reflect.TypeFor[Counter]()))
}

func TestResources_AddValueIsCopied(t *testing.T) {
	res := NewResources()

	src := Counter{N: 1}
	res.Add(src)
	src.N = 99

	assert.Equal(t, 1, GetResource[Counter](res).N)
}

func TestResources_AddDuplicatePanics(t *testing.T) {
	res := NewResources()
	res.Add(&Counter{})
	assert.Panics(t, func() { res.Add(&Counter{}) })
}

func TestResources_SetAnyReplaces(t *testing.T) {
	res := NewResources()
	res.Add(&Counter{N: 1})

	res.setAny(&Counter{N: 2})
	assert.Equal(t, 2, GetResource[Counter](res).N)

	// setAny also inserts when absent.
	res.setAny(TickRate{PerSecond: 20})
	require.NotNil(t, GetResource[TickRate](res))
}

func TestResources_InitializeAllocatesZeroValue(t *testing.T) {
	res := NewResources()
	id := newSystemID()

	res.initialize(reflect.TypeFor[Counter](), id)

	c := GetResource[Counter](res)
	require.NotNil(t, c, "initialize must lazily allocate default storage")
	assert.Equal(t, 0, c.N)
}

func TestResources_FetchBeforeInitializePanics(t *testing.T) {
	res := NewResources()
	assert.Panics(t, func() {
		res.fetch(reflect.TypeFor[Counter](), newSystemID())
	})
}

func TestResources_ChangeTrackingPerSystem(t *testing.T) {
	res := NewResources()
	res.Add(&Counter{N: 1})

	ct := reflect.TypeFor[Counter]()
	sysA := newSystemID()
	sysB := newSystemID()
	res.initialize(ct, sysA)
	res.initialize(ct, sysB)

	// First fetch observes the initial write.
	_, entry, changed := res.fetch(ct, sysA)
	assert.True(t, changed)

	// Second fetch by the same system sees nothing new.
	_, _, changed = res.fetch(ct, sysA)
	assert.False(t, changed)

	// A different system still has its own first observation pending.
	_, _, changed = res.fetch(ct, sysB)
	assert.True(t, changed)

	// A write flips change state for both systems independently.
	entry.markChanged()
	_, _, changed = res.fetch(ct, sysA)
	assert.True(t, changed)
	_, _, changed = res.fetch(ct, sysB)
	assert.True(t, changed)
	_, _, changed = res.fetch(ct, sysB)
	assert.False(t, changed)
}
