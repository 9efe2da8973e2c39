package model

// Binding is one variable binding in a runtime Frame: a variable name
// bound to a concrete instance of an entity type.
type Binding struct {
	Entity string
	ID     InstanceID
}

// Frame is the runtime counterpart of spec.Frame: an immutable chain of
// bound variables, populated by quantifier iteration, refinement
// parameters, and effect application (reserved names: "self" inside
// refinements, "actor" for the acting entity, and any `creates`
// assignment name — §4.3).
type Frame struct {
	parent *Frame
	name   string
	bound  Binding
}

// EmptyFrame is the frame with no bound variables.
var EmptyFrame = (*Frame)(nil)

// Lookup resolves name to its binding, searching outward through
// enclosing scopes.
func (f *Frame) Lookup(name string) (Binding, bool) {
	for cur := f; cur != nil; cur = cur.parent {
		if cur.name == name {
			return cur.bound, true
		}
	}
	return Binding{}, false
}

// Child returns a new frame binding name to (entity, id) on top of f.
func (f *Frame) Child(name string, entity string, id InstanceID) *Frame {
	return &Frame{parent: f, name: name, bound: Binding{Entity: entity, ID: id}}
}
