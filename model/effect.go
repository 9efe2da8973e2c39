package model

import (
	"fmt"

	"github.com/ajhcs/beacon/spec"
)

// ApplyEffect applies eff against ev's state, acting as actorID of type
// eff.ActorEntity (§4.3 "Effect application"): it binds the "creates"
// name (if any) to a newly allocated instance, then applies each `sets`
// entry in order, resolving the right-hand side in the frame built so
// far. It returns the id created by the effect's `creates` clause, or
// "" if the effect has none.
func ApplyEffect(ev *Evaluator, eff *spec.CompiledEffect, actorID InstanceID) (InstanceID, error) {
	frame := EmptyFrame.Child("actor", eff.ActorEntity, actorID)

	var createdID InstanceID
	if eff.Creates != nil {
		createdID = ev.State.Create(eff.Creates.Entity)
		frame = frame.Child(eff.Creates.As, eff.Creates.Entity, createdID)
	}

	for _, a := range eff.Sets {
		target, ok := frame.Lookup(a.Target)
		if !ok {
			return createdID, fmt.Errorf("%w: assignment target %q", ErrUnboundVariable, a.Target)
		}
		v, err := ev.Eval(a.Value, frame)
		if err != nil {
			return createdID, fmt.Errorf("model: evaluating assignment to %s.%s: %w", a.Target, a.Field, err)
		}
		if err := ev.State.Set(target.Entity, target.ID, a.Field, v); err != nil {
			return createdID, err
		}
	}
	return createdID, nil
}
