package wecs

// ExecutionMode classifies how a system may be scheduled.
type ExecutionMode int

const (
	// Parallel systems may run concurrently with other Parallel systems
	// whose declared access does not conflict. Structural mutations they
	// request are buffered and applied at the next exclusive phase.
	Parallel ExecutionMode = iota

	// Exclusive systems must run alone with direct mutable access to the
	// world and resources; their effects apply immediately, unbuffered.
	Exclusive
)

// String returns the string representation of the execution mode.
func (m ExecutionMode) String() string {
	switch m {
	case Parallel:
		return "Parallel"
	case Exclusive:
		return "Exclusive"
	default:
		return "Unknown"
	}
}

// System is the schedulable unit of work produced by ForEach, ForQuery and
// ExclusiveFn. The scheduler is the sole caller of Initialize, Run and
// RunExclusive and the sole interpreter of Mode.
type System interface {
	// Name returns a diagnostic label, not required to be unique.
	Name() string

	// ID returns the system's unique identity.
	ID() SystemID

	// Mode returns the execution mode, fixed at construction.
	Mode() ExecutionMode

	// Access returns the system's declared component and resource access, so
	// an external scheduler or borrow checker can detect conflicts. The core
	// itself performs no conflict checking.
	Access() *Access

	// Initialize registers the system's declared resource types with the
	// container. Must be called exactly once, before any Run.
	Initialize(res *Resources)

	// Run performs the parallel-safe portion of the system. For Parallel
	// systems this is the full invocation with structural edits buffered;
	// for Exclusive systems it is a no-op.
	Run(w *World, res *Resources)

	// RunExclusive requires sole access to the world and resources. For
	// Parallel systems it takes the current command buffer, leaving a fresh
	// one, and applies every recorded edit in order; for Exclusive systems
	// it performs the entire invocation directly.
	RunExclusive(w *World, res *Resources)
}

// funcSystem is the unit of work behind ForEach and ForQuery.
type funcSystem struct {
	meta     *systemMeta
	id       SystemID
	commands Commands
	run      func(*World, *Resources)
}

func (s *funcSystem) Name() string        { return s.meta.name }
func (s *funcSystem) ID() SystemID        { return s.id }
func (s *funcSystem) Mode() ExecutionMode { return Parallel }
func (s *funcSystem) Access() *Access     { return &s.meta.access }

func (s *funcSystem) Initialize(res *Resources) {
	for i := range s.meta.params {
		p := &s.meta.params[i]
		if p.kind == paramResource {
			res.initialize(p.compType, s.id)
		}
	}
}

func (s *funcSystem) Run(w *World, res *Resources) {
	s.run(w, res)
}

func (s *funcSystem) RunExclusive(w *World, res *Resources) {
	s.commands.flush(w, res)
}
