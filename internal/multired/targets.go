package multired

// TargetSet tracks which networks are selected for publication. It is never
// empty: toggling the last remaining member is a no-op. Not safe for
// concurrent use; the orchestrator owns it on one goroutine.
type TargetSet struct {
	members map[Target]struct{}
	multi   bool
}

// NewTargetSet builds a set from the given targets. With no arguments the set
// starts with Facebook selected, matching the default selection.
func NewTargetSet(targets ...Target) *TargetSet {
	s := &TargetSet{members: make(map[Target]struct{})}
	if len(targets) == 0 {
		targets = []Target{Facebook}
	}
	for _, t := range targets {
		s.members[t] = struct{}{}
	}
	s.recompute()
	return s
}

// Toggle flips membership for the target. Removing the last member is a
// no-op so the set can never be emptied.
func (s *TargetSet) Toggle(t Target) {
	if _, ok := s.members[t]; ok {
		if len(s.members) == 1 {
			return
		}
		delete(s.members, t)
	} else {
		s.members[t] = struct{}{}
	}
	s.recompute()
}

// Contains reports membership.
func (s *TargetSet) Contains(t Target) bool {
	_, ok := s.members[t]
	return ok
}

// Members returns the selected targets in display order.
func (s *TargetSet) Members() []Target {
	out := make([]Target, 0, len(s.members))
	for _, t := range AllTargets {
		if _, ok := s.members[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Len returns the number of selected targets.
func (s *TargetSet) Len() int { return len(s.members) }

// Multi reports whether more than one target is selected, which switches the
// orchestrator to the batch endpoint.
func (s *TargetSet) Multi() bool { return s.multi }

func (s *TargetSet) recompute() { s.multi = len(s.members) > 1 }
