package solver

// Assignment is a satisfying (or partial) truth assignment, indexed by
// variable number (1-based; index 0 is unused).
type Assignment []int8

// True reports whether l holds under assign.
func (a Assignment) True(l Lit) bool {
	v := l
	if v < 0 {
		v = -v
	}
	val := a[v] == 1
	if l < 0 {
		return !val
	}
	return val
}

const (
	unassigned int8 = 0
	assignedT  int8 = 1
	assignedF  int8 = -1
)

// solverState is a single DPLL search over a fixed Formula. It is not
// safe for concurrent use; Fracture runs one solverState per goroutine
// over shared, read-only Clauses.
type solverState struct {
	clauses [][]Lit
	assign  Assignment
	trail   []int
}

func newSolverState(f *Formula) *solverState {
	return &solverState{
		clauses: f.Clauses,
		assign:  make(Assignment, f.NumVars()+1),
	}
}

func (s *solverState) varOf(l Lit) int {
	if l < 0 {
		return int(-l)
	}
	return int(l)
}

func (s *solverState) set(l Lit) {
	v := s.varOf(l)
	if l > 0 {
		s.assign[v] = assignedT
	} else {
		s.assign[v] = assignedF
	}
	s.trail = append(s.trail, v)
}

func (s *solverState) undoTo(mark int) {
	for len(s.trail) > mark {
		v := s.trail[len(s.trail)-1]
		s.trail = s.trail[:len(s.trail)-1]
		s.assign[v] = unassigned
	}
}

// propagate repeatedly resolves unit and conflicting clauses until a
// fixpoint. It returns false on conflict.
func (s *solverState) propagate() bool {
	changed := true
	for changed {
		changed = false
		for _, clause := range s.clauses {
			satisfied := false
			var unassignedLit Lit
			unassignedCount := 0
			for _, l := range clause {
				v := s.varOf(l)
				switch s.assign[v] {
				case unassigned:
					unassignedCount++
					unassignedLit = l
				case assignedT:
					if l > 0 {
						satisfied = true
					}
				case assignedF:
					if l < 0 {
						satisfied = true
					}
				}
				if satisfied {
					break
				}
			}
			if satisfied {
				continue
			}
			if unassignedCount == 0 {
				return false // conflict: every literal false
			}
			if unassignedCount == 1 {
				s.set(unassignedLit)
				changed = true
			}
		}
	}
	return true
}

func (s *solverState) pickUnassigned() (int, bool) {
	for v := 1; v < len(s.assign); v++ {
		if s.assign[v] == unassigned {
			return v, true
		}
	}
	return 0, false
}

// search performs recursive DPLL: propagate, pick a variable, try both
// polarities, backtrack on failure.
func (s *solverState) search() bool {
	if !s.propagate() {
		return false
	}
	v, ok := s.pickUnassigned()
	if !ok {
		return true
	}
	mark := len(s.trail)
	s.set(Lit(v))
	if s.search() {
		return true
	}
	s.undoTo(mark)
	s.set(Lit(-v))
	if s.search() {
		return true
	}
	s.undoTo(mark)
	return false
}

// Solve attempts to find one satisfying assignment of f under the given
// assumptions (literals forced true before search begins). It reports
// ErrUnsat if none exists.
func Solve(f *Formula, assumptions []Lit) (Assignment, error) {
	s := newSolverState(f)
	for _, a := range assumptions {
		s.set(a)
	}
	if !s.search() {
		return nil, ErrUnsat
	}
	out := make(Assignment, len(s.assign))
	copy(out, s.assign)
	return out, nil
}

// SolveN enumerates up to n distinct satisfying assignments of f under
// assumptions, blocking each found model with a clause that forbids
// repeating it exactly (§4.5 "optionally continue to enumerate more
// models up to a budget"). It stops early, without error, once the
// formula (as blocked so far) is unsatisfiable.
func SolveN(f *Formula, assumptions []Lit, n int) ([]Assignment, error) {
	working := &Formula{nvars: f.nvars, Clauses: append([][]Lit(nil), f.Clauses...), True: f.True}
	var out []Assignment
	for len(out) < n {
		assign, err := Solve(working, assumptions)
		if err != nil {
			break
		}
		out = append(out, assign)
		block := make([]Lit, 0, working.nvars)
		for v := 1; v <= working.nvars; v++ {
			if assign[v] == assignedT {
				block = append(block, Lit(-v))
			} else {
				block = append(block, Lit(v))
			}
		}
		working.AddClause(block...)
	}
	if len(out) == 0 {
		return nil, ErrUnsat
	}
	return out, nil
}
