package wecs

// ExclusiveFn builds an Exclusive system from a function taking the whole
// world and resource container. No signature inference, no command buffering
// and no per-system resource tracking happen; the function runs synchronously
// with sole mutable access and its effects apply immediately.
//
// Use this for structural work too broad for the declared-shape model, such
// as bulk loading or teardown.
func ExclusiveFn(fn func(*World, *Resources)) System {
	if fn == nil {
		panic("wecs: nil exclusive system function")
	}
	return &exclusiveSystem{
		name:   funcName(fn),
		id:     newSystemID(),
		access: Access{Exclusive: true},
		fn:     fn,
	}
}

// exclusiveSystem is the thread-confined unit of work.
type exclusiveSystem struct {
	name   string
	id     SystemID
	access Access
	fn     func(*World, *Resources)
}

func (s *exclusiveSystem) Name() string        { return s.name }
func (s *exclusiveSystem) ID() SystemID        { return s.id }
func (s *exclusiveSystem) Mode() ExecutionMode { return Exclusive }
func (s *exclusiveSystem) Access() *Access     { return &s.access }

// Initialize is identity-only; exclusive systems declare no resources.
func (s *exclusiveSystem) Initialize(*Resources) {}

// Run is a no-op; all work happens in RunExclusive.
func (s *exclusiveSystem) Run(*World, *Resources) {}

func (s *exclusiveSystem) RunExclusive(w *World, res *Resources) {
	s.fn(w, res)
}
