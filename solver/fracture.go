package solver

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Subspace is one disjoint partition of the input space, fixed by a set
// of forced literal assumptions (§4.5 "recursively partitions the input
// space along a selected variable, producing disjoint subspaces"). ID is
// a fixed-width binary string over the partitioning variables, in the
// same order they were selected, so subspaces sort and merge
// deterministically regardless of solve order.
type Subspace struct {
	ID          string
	Assumptions []Lit
}

// UnsatProof is the short proof artifact recorded for an UNSAT subspace:
// the assumption set that was shown to have no model, which the Driver's
// UnsatCache records so later Fracture calls skip it (§4.5 step 3).
type UnsatProof struct {
	SubspaceID  string
	Assumptions []Lit
}

// FractureResult is the merged outcome of fracturing and solving every
// subspace: satisfying vectors found, and UNSAT proofs recorded.
type FractureResult struct {
	Vectors []Vector
	Unsat   []UnsatProof
}

// UnsatCache remembers, per compiled content hash, which subspace
// assumption signatures have already been proven unsatisfiable, so later
// Fracture calls through the same Driver skip re-solving them. It is held
// in memory only: it is not part of the coordinator's persisted
// cross-campaign memory, and each campaign build starts from an empty
// cache, so a later campaign against the same compiled spec solves those
// subspaces again.
type UnsatCache struct {
	mu   sync.Mutex
	seen map[[32]byte]map[string]bool
}

// NewUnsatCache returns an empty cache.
func NewUnsatCache() *UnsatCache {
	return &UnsatCache{seen: map[[32]byte]map[string]bool{}}
}

func signature(assumptions []Lit) string {
	sorted := append([]Lit(nil), assumptions...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	parts := make([]string, len(sorted))
	for i, l := range sorted {
		parts[i] = fmt.Sprintf("%d", l)
	}
	return strings.Join(parts, ",")
}

// IsUnsat reports whether assumptions under hash were already proven
// unsatisfiable.
func (c *UnsatCache) IsUnsat(hash [32]byte, assumptions []Lit) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen[hash][signature(assumptions)]
}

// MarkUnsat records assumptions under hash as proven unsatisfiable.
func (c *UnsatCache) MarkUnsat(hash [32]byte, assumptions []Lit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen[hash] == nil {
		c.seen[hash] = map[string]bool{}
	}
	c.seen[hash][signature(assumptions)] = true
}

// Driver runs the fracture/solve/abort pipeline (§4.5).
type Driver struct {
	Cache             *UnsatCache
	SubspaceBudget    int // max concurrent subspace solves
	ModelsPerSubspace int // models enumerated per SAT subspace
}

// NewDriver returns a Driver with sane defaults for any zero fields.
func NewDriver(cache *UnsatCache, subspaceBudget, modelsPerSubspace int) *Driver {
	if subspaceBudget <= 0 {
		subspaceBudget = 1
	}
	if modelsPerSubspace <= 0 {
		modelsPerSubspace = 1
	}
	if cache == nil {
		cache = NewUnsatCache()
	}
	return &Driver{Cache: cache, SubspaceBudget: subspaceBudget, ModelsPerSubspace: modelsPerSubspace}
}

// partition builds the subspace list by forcing each of the first k
// entries of order to true or false, k chosen so 2^k does not exceed
// maxSubspaces. order is expected to list partitioning variables with
// the highest current uncovered coverage mass first (§4.5 "Partitioning
// order is chosen to maximize expected coverage gain").
func partition(order []Lit, maxSubspaces int) []Subspace {
	k := 0
	for (1 << uint(k+1)) <= maxSubspaces && k < len(order) {
		k++
	}
	if k == 0 {
		return []Subspace{{ID: "", Assumptions: nil}}
	}
	n := 1 << uint(k)
	out := make([]Subspace, n)
	for i := 0; i < n; i++ {
		assumptions := make([]Lit, k)
		id := make([]byte, k)
		for bit := 0; bit < k; bit++ {
			if (i>>uint(bit))&1 == 1 {
				assumptions[bit] = order[bit]
				id[bit] = '1'
			} else {
				assumptions[bit] = order[bit].Neg()
				id[bit] = '0'
			}
		}
		out[i] = Subspace{ID: string(id), Assumptions: assumptions}
	}
	return out
}

// Fracture partitions the input space described by f along order (most
// coverage-valuable variables first), solves each subspace up to
// maxSubspaces concurrently (bounded by d.SubspaceBudget), and merges
// results deterministically by subspace ID.
func (d *Driver) Fracture(ctx context.Context, f *Formula, contentHash [32]byte, order []Lit, maxSubspaces int, decode func(Assignment) Vector) (*FractureResult, error) {
	subspaces := partition(order, maxSubspaces)
	sort.Slice(subspaces, func(i, j int) bool { return subspaces[i].ID < subspaces[j].ID })

	type outcome struct {
		vectors []Vector
		unsat   *UnsatProof
	}
	outcomes := make([]outcome, len(subspaces))

	g, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, d.SubspaceBudget)
	for i, sub := range subspaces {
		i, sub := i, sub
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			defer func() { <-sem }()

			if d.Cache.IsUnsat(contentHash, sub.Assumptions) {
				outcomes[i] = outcome{unsat: &UnsatProof{SubspaceID: sub.ID, Assumptions: sub.Assumptions}}
				return nil
			}
			assigns, err := SolveN(f, sub.Assumptions, d.ModelsPerSubspace)
			if err != nil {
				d.Cache.MarkUnsat(contentHash, sub.Assumptions)
				outcomes[i] = outcome{unsat: &UnsatProof{SubspaceID: sub.ID, Assumptions: sub.Assumptions}}
				return nil
			}
			vectors := make([]Vector, len(assigns))
			for j, a := range assigns {
				vectors[j] = decode(a)
			}
			outcomes[i] = outcome{vectors: vectors}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("solver: fracture: %w", err)
	}

	result := &FractureResult{}
	for _, o := range outcomes {
		if o.unsat != nil {
			result.Unsat = append(result.Unsat, *o.unsat)
			continue
		}
		result.Vectors = append(result.Vectors, o.vectors...)
	}
	return result, nil
}
