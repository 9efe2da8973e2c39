package campaign

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ajhcs/beacon/coordinator"
	"github.com/ajhcs/beacon/findings"
	"github.com/ajhcs/beacon/model"
	"github.com/ajhcs/beacon/solver"
	"github.com/ajhcs/beacon/spec"
	"github.com/ajhcs/beacon/traversal"
)

// DecodeDocument parses a compiled-specification document from JSON.
// spec.Document's fields already carry the json struct tags the wire
// format expects, so this is a direct encoding/json.Unmarshal rather
// than anything specific to this package.
func DecodeDocument(data []byte) (*spec.Document, error) {
	var doc spec.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("campaign: decoding document: %w", err)
	}
	return &doc, nil
}

// solverArtifacts bundles everything buildSolverArtifacts produces, for
// a Campaign to hold onto.
type solverArtifacts struct {
	pool    *solver.Pool
	vectors *traversal.VectorSource
	result  *solver.FractureResult
}

// domainOrder returns a deterministic partitioning-variable order for
// Driver.Fracture: domain names sorted lexically, each domain
// contributing its Bool/EnumLits/IntBits literals in turn. The base
// spec calls for ordering by "expected coverage gain" (§4.5); this
// package does not yet track per-literal coverage mass, so it falls
// back to the next best deterministic choice, a stable declaration-name
// order, rather than an arbitrary map-iteration order that would make
// fracture results depend on Go's map randomization.
func domainOrder(encs map[string]*solver.DomainEncoding) []solver.Lit {
	names := make([]string, 0, len(encs))
	for name := range encs {
		names = append(names, name)
	}
	sort.Strings(names)
	var order []solver.Lit
	for _, name := range names {
		enc := encs[name]
		switch enc.Kind {
		case solver.DomainBool:
			order = append(order, enc.Bool)
		case solver.DomainEnum:
			for _, v := range enc.Values {
				order = append(order, enc.EnumLits[v])
			}
		case solver.DomainInt:
			order = append(order, enc.IntBits...)
		}
	}
	return order
}

// clampSubspaceDepth keeps the configured max_subspace_depth from being
// interpreted as a literal subspace-count exponent: at the default
// value of 32 that would ask Fracture to partition into 2^32 subspaces,
// which is not what the field is for. 16 already yields 65536
// subspaces, far past anything a single campaign's SubspaceBudget would
// usefully solve concurrently, so depths beyond it are clamped rather
// than trusted literally.
func clampSubspaceDepth(depth int) int {
	const maxUsefulDepth = 16
	if depth > maxUsefulDepth {
		return maxUsefulDepth
	}
	if depth < 0 {
		return 0
	}
	return depth
}

func buildSolverArtifacts(ctx context.Context, ir *spec.CompiledIR, cfg solverConfig, rootSeed uint64) (*solverArtifacts, error) {
	f := solver.NewFormula()
	encs, err := solver.EncodeDomains(f, ir.Inputs)
	if err != nil {
		return nil, fmt.Errorf("campaign: encoding input domains: %w", err)
	}
	order := domainOrder(encs)

	driver := solver.NewDriver(solver.NewUnsatCache(), cfg.ParallelSubspaces, cfg.ModelsPerSubspace)
	maxSubspaces := 1 << uint(clampSubspaceDepth(cfg.MaxSubspaceDepth))
	decode := func(a solver.Assignment) solver.Vector { return solver.Decode(encs, a) }

	result, err := driver.Fracture(ctx, f, ir.ContentHash, order, maxSubspaces, decode)
	if err != nil {
		return nil, fmt.Errorf("campaign: fracturing input space: %w", err)
	}

	pool, err := solver.NewPool(ir.Generators, ir.Graphs, ir.Inputs)
	if err != nil {
		return nil, fmt.Errorf("campaign: building coverage pool: %w", err)
	}

	return &solverArtifacts{pool: pool, vectors: traversal.NewVectorSource(result.Vectors), result: result}, nil
}

// solverConfig is the subset of config.SolverConfig buildSolverArtifacts
// needs, kept narrow so it can be constructed from tests without
// pulling in the whole config.Host.
type solverConfig struct {
	MaxSubspaceDepth  int
	ModelsPerSubspace int
	ParallelSubspaces int
}

// resolveObservers looks up a live observer function for every
// observer-kind function the compiled IR declares a binding for. The
// Observers map model.Evaluator consults is keyed by binding string,
// not by the function's declared name (see model.Evaluator.evalCall's
// FunctionObserver case), so that is the key used here too.
func resolveObservers(ir *spec.CompiledIR, resolve ObserverResolver) map[string]model.ObserverFunc {
	out := map[string]model.ObserverFunc{}
	if resolve == nil {
		return out
	}
	for _, fn := range ir.Functions {
		if fn.Kind != spec.FunctionObserver || fn.Binding == "" {
			continue
		}
		if impl, ok := resolve(fn.Binding); ok {
			out[fn.Binding] = impl
		}
	}
	return out
}

// signalKindFor maps a findings.Kind back to the coordinator.SignalKind
// it was recorded from, for re-Record-ing a capsule that still
// reproduces at the start of a new campaign (§4.7 "replay capsules for
// regression priority at the next campaign's start"). The two taxonomies
// use different string vocabularies (findings.KindViolation is
// "violation", coordinator.SignalPropertyViolation is
// "property_violation"), so this mapping cannot be a type conversion.
func signalKindFor(k findings.Kind) coordinator.SignalKind {
	switch k {
	case findings.KindViolation:
		return coordinator.SignalPropertyViolation
	case findings.KindDiscrepancy:
		return coordinator.SignalDiscrepancy
	case findings.KindCrash:
		return coordinator.SignalCrash
	case findings.KindTimeout:
		return coordinator.SignalTimeout
	default:
		return coordinator.SignalPropertyViolation
	}
}
