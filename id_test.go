package wecs

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemID_Unique(t *testing.T) {
	a := newSystemID()
	b := newSystemID()
	assert.NotEqual(t, a, b)
	assert.Greater(t, b, a)
	assert.NotZero(t, a, "the zero SystemID must never be issued")
}

func TestSystemID_ConcurrentUnique(t *testing.T) {
	const workers = 8
	const perWorker = 1000

	var wg sync.WaitGroup
	ids := make([][]SystemID, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out := make([]SystemID, 0, perWorker)
			for j := 0; j < perWorker; j++ {
				out = append(out, newSystemID())
			}
			ids[i] = out
		}(i)
	}
	wg.Wait()

	seen := make(map[SystemID]struct{}, workers*perWorker)
	for _, chunk := range ids {
		for _, id := range chunk {
			_, dup := seen[id]
			require.False(t, dup, "duplicate id %d", id)
			seen[id] = struct{}{}
		}
	}
	assert.Len(t, seen, workers*perWorker)
}
