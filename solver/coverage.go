package solver

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ajhcs/beacon/spec"
)

// representativeValues returns a small finite set of values standing in
// for domain d, used to build all_pairs cells for domains whose native
// range is unbounded-looking (ints). Bool and enum domains already have
// a small finite value set; bounded ints are represented by their two
// extremes, the same simplification the boundary() generator targets
// explicitly by name.
func representativeValues(d *spec.CompiledInputDomain) []string {
	switch d.Kind {
	case spec.DomainBool:
		return []string{"true", "false"}
	case spec.DomainEnum:
		return d.Values
	case spec.DomainInt:
		return []string{fmt.Sprintf("%d", d.Min), fmt.Sprintf("%d", d.Max)}
	default:
		return nil
	}
}

// target tracks hit/total cells for one declared coverage generator.
type target struct {
	decl  spec.GeneratorDecl
	cells map[string]bool
}

func (t *target) total() int { return len(t.cells) }
func (t *target) hit() int {
	n := 0
	for _, ok := range t.cells {
		if ok {
			n++
		}
	}
	return n
}

// Pool is the coverage-directed vector pool (§4.5 "Coverage-directed
// generation"): it tracks, per declared generator target, which cells
// have been hit, and answers which uncovered target to aim generation
// at next.
type Pool struct {
	mu      sync.Mutex
	targets map[string]*target
}

// NewPool builds a Pool from the compiled generators, graphs (for
// each_transition cell enumeration), and input domains (for all_pairs
// cell enumeration).
func NewPool(generators map[string]spec.GeneratorDecl, graphs map[string]*spec.Graph, inputs map[string]*spec.CompiledInputDomain) (*Pool, error) {
	p := &Pool{targets: map[string]*target{}}
	for name, g := range generators {
		t := &target{decl: g, cells: map[string]bool{}}
		switch g.Kind {
		case spec.GeneratorAllPairs:
			for i := 0; i < len(g.Domains); i++ {
				for j := i + 1; j < len(g.Domains); j++ {
					da, ok := inputs[g.Domains[i]]
					if !ok {
						return nil, fmt.Errorf("%w: generator %q domain %q", ErrUnknownDomain, name, g.Domains[i])
					}
					db, ok := inputs[g.Domains[j]]
					if !ok {
						return nil, fmt.Errorf("%w: generator %q domain %q", ErrUnknownDomain, name, g.Domains[j])
					}
					for _, va := range representativeValues(da) {
						for _, vb := range representativeValues(db) {
							t.cells[pairCell(g.Domains[i], va, g.Domains[j], vb)] = false
						}
					}
				}
			}
		case spec.GeneratorEachTransition:
			graph, ok := graphs[g.Protocol]
			if !ok {
				return nil, fmt.Errorf("%w: generator %q protocol %q", ErrUnknownDomain, name, g.Protocol)
			}
			for _, node := range graph.Nodes {
				if node.Kind != spec.KindBranch {
					continue
				}
				for _, e := range node.Edges {
					t.cells[string(node.ID)+"/"+e.ID] = false
				}
			}
		case spec.GeneratorBoundary:
			for _, v := range g.Values {
				t.cells[fmt.Sprintf("%v", v)] = false
			}
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownGenerator, g.Kind)
		}
		p.targets[name] = t
	}
	return p, nil
}

func pairCell(domainA, valA, domainB, valB string) string {
	return domainA + "=" + valA + "," + domainB + "=" + valB
}

// Offer reports which all_pairs/boundary cells v advances, marking them
// hit. each_transition cells are advanced separately by MarkTransition,
// since they are only observable once traversal actually takes the
// edge, not from a vector alone.
func (p *Pool) Offer(v Vector) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var advanced []string
	for name, t := range p.targets {
		switch t.decl.Kind {
		case spec.GeneratorAllPairs:
			for i := 0; i < len(t.decl.Domains); i++ {
				for j := i + 1; j < len(t.decl.Domains); j++ {
					da, db := t.decl.Domains[i], t.decl.Domains[j]
					va, ok1 := v[da]
					vb, ok2 := v[db]
					if !ok1 || !ok2 {
						continue
					}
					key := pairCell(da, va.String(), db, vb.String())
					if hit, declared := t.cells[key]; declared && !hit {
						t.cells[key] = true
						advanced = append(advanced, name)
					}
				}
			}
		case spec.GeneratorBoundary:
			val, ok := v[t.decl.Domain]
			if !ok {
				continue
			}
			key := val.String()
			if hit, declared := t.cells[key]; declared && !hit {
				t.cells[key] = true
				advanced = append(advanced, name)
			}
		}
	}
	return advanced
}

// WouldAdvance reports whether offering v would advance at least one
// uncovered cell of target, without mutating the pool. Traversal uses
// this to screen candidate vectors toward the pending coverage target
// before committing to one, without the Pool having to hand out actual
// generation logic of its own.
func (p *Pool) WouldAdvance(targetName string, v Vector) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.targets[targetName]
	if !ok {
		return false
	}
	switch t.decl.Kind {
	case spec.GeneratorAllPairs:
		for i := 0; i < len(t.decl.Domains); i++ {
			for j := i + 1; j < len(t.decl.Domains); j++ {
				da, db := t.decl.Domains[i], t.decl.Domains[j]
				va, ok1 := v[da]
				vb, ok2 := v[db]
				if !ok1 || !ok2 {
					continue
				}
				if hit, declared := t.cells[pairCell(da, va.String(), db, vb.String())]; declared && !hit {
					return true
				}
			}
		}
	case spec.GeneratorBoundary:
		val, ok := v[t.decl.Domain]
		if !ok {
			return false
		}
		if hit, declared := t.cells[val.String()]; declared && !hit {
			return true
		}
	}
	return false
}

// MarkTransition records that edgeID out of nodeID in protocol was
// taken, advancing any each_transition target declared over it.
func (p *Pool) MarkTransition(protocol, nodeID, edgeID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var advanced []string
	key := nodeID + "/" + edgeID
	for name, t := range p.targets {
		if t.decl.Kind != spec.GeneratorEachTransition || t.decl.Protocol != protocol {
			continue
		}
		if hit, declared := t.cells[key]; declared && !hit {
			t.cells[key] = true
			advanced = append(advanced, name)
		}
	}
	return advanced
}

// reachability approximates how reachable an uncovered target is by its
// already-covered fraction: a target many vectors have already advanced
// is empirically easier to reach than one with almost no hits. The base
// spec names "lowest-reachability uncovered target" without defining
// how reachability is estimated outside of live traversal feedback;
// this is the solver layer's stand-in, using only information the pool
// itself has (declared cells and which vectors have hit them so far).
func (t *target) reachability() float64 {
	if t.total() == 0 {
		return 1
	}
	return float64(t.hit()) / float64(t.total())
}

// Pending returns the uncovered target with the lowest estimated
// reachability, or false if every target is fully covered.
func (p *Pool) Pending() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	best := ""
	bestScore := 2.0
	names := make([]string, 0, len(p.targets))
	for name := range p.targets {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic tie-break
	for _, name := range names {
		t := p.targets[name]
		if t.hit() == t.total() {
			continue
		}
		if score := t.reachability(); score < bestScore {
			bestScore, best = score, name
		}
	}
	return best, best != ""
}

// TargetComplete reports whether every declared cell of target has been
// hit. Unknown target names report false, same as an exhausted target
// would never be returned by Pending.
func (p *Pool) TargetComplete(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.targets[name]
	if !ok {
		return false
	}
	return t.hit() == t.total()
}

// TargetCoverage returns the hit/total ratio for a known target (1 if it
// declares zero cells), or false for an unknown name.
func (p *Pool) TargetCoverage(name string) (float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.targets[name]
	if !ok {
		return 0, false
	}
	if t.total() == 0 {
		return 1, true
	}
	return float64(t.hit()) / float64(t.total()), true
}

// TargetNames returns every declared coverage target name, sorted, for
// callers that need to iterate the full target set (e.g. the
// coordinator's plateau detector).
func (p *Pool) TargetNames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.targets))
	for name := range p.targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CoveragePercent returns the fraction of all declared cells, across
// every target, hit so far.
func (p *Pool) CoveragePercent() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	var hit, total int
	for _, t := range p.targets {
		hit += t.hit()
		total += t.total()
	}
	if total == 0 {
		return 1
	}
	return float64(hit) / float64(total)
}
