package solver

import "github.com/ajhcs/beacon/model"

// Vector is one concrete satisfying assignment across all input
// domains, ready to pass as action arguments (§4.5 "every satisfying
// assignment decodes to exactly one concrete vector").
type Vector map[string]model.Value

// Args orders v's values according to names, for binding against a
// BindingDecl.Args call order.
func (v Vector) Args(names []string) []model.Value {
	out := make([]model.Value, len(names))
	for i, n := range names {
		out[i] = v[n]
	}
	return out
}
