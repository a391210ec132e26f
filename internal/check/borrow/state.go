package borrow

// BindingState tracks one binding's borrow/ownership state along a single
// control-flow path, mirroring the per-path symbolic state pattern of the
// teacher's CFG worklist engine (internal/haruspex/analysis/state.go),
// adapted from "expression satisfiability" to "ownership/aliasing".
type BindingState struct {
	Moved       bool
	Destroyed   bool
	BorrowCount int // number of live non-mutable references
	MutBorrowed bool
}

// State is the full symbolic state for one control-flow path through a
// function: every binding's BindingState, keyed by name.
type State struct {
	Bindings map[string]*BindingState
}

// NewState creates an empty State.
func NewState() *State {
	return &State{Bindings: make(map[string]*BindingState)}
}

// Clone deep-copies the state so two branches of an `if` can diverge
// without aliasing each other's BindingState pointers.
func (s *State) Clone() *State {
	c := NewState()
	for k, v := range s.Bindings {
		cp := *v
		c.Bindings[k] = &cp
	}
	return c
}

// Merge combines two post-branch states conservatively: a binding is
// Moved/Destroyed in the merged state only if it was Moved/Destroyed on
// every incoming path, matching a may/must-style join appropriate for "is
// this binding still usable after the if" (must-destroy to skip RAII,
// may-borrow to reject aliasing eagerly).
func (s *State) Merge(other *State) *State {
	merged := NewState()
	for k, a := range s.Bindings {
		b, ok := other.Bindings[k]
		if !ok {
			merged.Bindings[k] = &BindingState{}
			continue
		}
		merged.Bindings[k] = &BindingState{
			Moved:       a.Moved && b.Moved,
			Destroyed:   a.Destroyed && b.Destroyed,
			BorrowCount: maxInt(a.BorrowCount, b.BorrowCount),
			MutBorrowed: a.MutBorrowed || b.MutBorrowed,
		}
	}
	return merged
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (s *State) get(name string) *BindingState {
	b, ok := s.Bindings[name]
	if !ok {
		b = &BindingState{}
		s.Bindings[name] = b
	}
	return b
}
