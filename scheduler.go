package wecs

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// Schedule orders systems into stages and runs them tick by tick, honoring
// every system's declared access and execution mode.
//
// Within a stage each tick has two phases. The parallel phase runs the Run
// method of Parallel systems, batch by batch; systems within a batch run
// concurrently and batches are built so no two members' declared access
// conflicts. The exclusive phase then runs every system's RunExclusive in
// registration order with sole access - this is where Parallel systems'
// buffered edits flush and Exclusive systems do their work.
type Schedule struct {
	mu      sync.Mutex
	systems [stageCount][]System
	batches [stageCount][][]System

	// pending holds systems added since the last tick; their Initialize
	// runs exactly once, at the start of the next tick.
	pending []System
}

// NewSchedule creates an empty schedule.
func NewSchedule() *Schedule {
	return &Schedule{}
}

// Add registers systems with a stage. Registration order within a stage is
// the exclusive-phase execution order.
func (s *Schedule) Add(stage Stage, systems ...System) *Schedule {
	if stage < Before || stage >= stageCount {
		panic(fmt.Sprintf("wecs: invalid stage %d", stage))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.systems[stage] = append(s.systems[stage], systems...)
	s.pending = append(s.pending, systems...)
	s.rebuildBatches(stage)
	return s
}

// rebuildBatches recomputes the parallel-phase batches for a stage: a greedy
// pass places each system into the first batch containing no conflicting
// member. Registration order is preserved so batching stays deterministic.
// Caller holds s.mu.
func (s *Schedule) rebuildBatches(stage Stage) {
	systems := s.systems[stage]
	if len(systems) == 0 {
		s.batches[stage] = nil
		return
	}

	var batches [][]System
	remaining := make([]System, len(systems))
	copy(remaining, systems)

	for len(remaining) > 0 {
		var batch []System
		var next []System

		for _, candidate := range remaining {
			conflict := false
			for _, member := range batch {
				if candidate.Access().Conflicts(member.Access()) {
					conflict = true
					break
				}
			}
			if conflict {
				next = append(next, candidate)
			} else {
				batch = append(batch, candidate)
			}
		}

		batches = append(batches, batch)
		remaining = next
	}

	s.batches[stage] = batches
}

// Tick runs one full pass over every stage. The first tick after systems are
// added runs their Initialize exactly once. A panic inside a system body is
// recovered, wrapped with the system's name, and re-raised from Tick after
// the in-flight phase has fully stopped; the exclusive phase of the failing
// stage and all later stages are skipped.
func (s *Schedule) Tick(w *World, res *Resources) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sys := range s.pending {
		sys.Initialize(res)
	}
	s.pending = s.pending[:0]

	for stage := Before; stage < stageCount; stage++ {
		if err := s.runStage(stage, w, res); err != nil {
			panic(err)
		}
	}
}

// runStage executes one stage's parallel phase then its exclusive phase.
// Caller holds s.mu.
func (s *Schedule) runStage(stage Stage, w *World, res *Resources) error {
	var (
		panicMu  sync.Mutex
		panicErr error
	)
	record := func(sys System, r any) {
		panicMu.Lock()
		if panicErr == nil {
			panicErr = fmt.Errorf("wecs: panic in system %s: %v\n%s", sys.Name(), r, debug.Stack())
		}
		panicMu.Unlock()
	}

	for _, batch := range s.batches[stage] {
		var wg sync.WaitGroup
		for _, sys := range batch {
			if sys.Mode() != Parallel {
				// Exclusive systems' Run is a no-op; nothing to do here.
				continue
			}
			wg.Add(1)
			go func(sys System) {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						record(sys, r)
					}
				}()
				sys.Run(w, res)
			}(sys)
		}
		wg.Wait()

		if panicErr != nil {
			return panicErr
		}
	}

	// Exclusive phase: buffered edits flush and Exclusive systems execute,
	// one at a time, in registration order.
	for _, sys := range s.systems[stage] {
		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("wecs: panic in system %s: %v\n%s", sys.Name(), r, debug.Stack())
				}
			}()
			sys.RunExclusive(w, res)
			return nil
		}()
		if err != nil {
			return err
		}
	}

	return nil
}

// Batches returns the parallel-phase batches for a stage, in execution order.
// Intended for diagnostics and tests.
func (s *Schedule) Batches(stage Stage) [][]System {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batches[stage]
}
