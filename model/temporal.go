package model

import (
	"fmt"
	"sort"

	"github.com/ajhcs/beacon/spec"
)

// TemporalChecker evaluates temporal properties incrementally as trace
// entries are appended (§4.3 "Temporal checking": "checked after each
// appended trace entry; violations emit findings referencing the rule
// and the trace slice").
//
// Aborted trace entries (crashed or timed out) are skipped by every
// rule kind but still advance trace position, per the Open Question
// decision that aborted actions stay in the trace for window
// contiguity without participating in predicate evaluation.
type TemporalChecker struct {
	names          []string // PropertyTemporal names, sorted, fixed at construction
	rules          map[string]*spec.CompiledTemporal
	afterTriggered map[string]bool
}

// NewTemporalChecker builds a checker over every PropertyTemporal entry
// of properties.
func NewTemporalChecker(properties map[string]*spec.CompiledProperty) *TemporalChecker {
	tc := &TemporalChecker{
		rules:          map[string]*spec.CompiledTemporal{},
		afterTriggered: map[string]bool{},
	}
	for name, p := range properties {
		if p.Kind == spec.PropertyTemporal {
			tc.rules[name] = p.Temporal
			tc.names = append(tc.names, name)
		}
	}
	sort.Strings(tc.names)
	return tc
}

func containsTag(tags []string, name string) bool {
	for _, t := range tags {
		if t == name {
			return true
		}
	}
	return false
}

// CheckAppend evaluates every temporal rule against the just-appended
// entry. preEval must be bound to the model state immediately before
// entry's effect was applied (for `before`'s "immediately before it"
// condition); postEval must be bound to the state immediately after.
func (tc *TemporalChecker) CheckAppend(preEval, postEval *Evaluator, entry TraceEntry) ([]Violation, error) {
	var out []Violation
	for _, name := range tc.names {
		rule := tc.rules[name]
		switch rule.Op {
		case spec.TemporalBefore:
			v, err := tc.checkBefore(name, rule, preEval, entry)
			if err != nil {
				return out, err
			}
			if v != nil {
				out = append(out, *v)
			}
		case spec.TemporalAfter:
			v, err := tc.checkAfter(name, rule, postEval, entry)
			if err != nil {
				return out, err
			}
			if v != nil {
				out = append(out, *v)
			}
		case spec.TemporalNever:
			if v := tc.checkNever(name, rule, entry); v != nil {
				out = append(out, *v)
			}
		}
	}
	return out, nil
}

func (tc *TemporalChecker) checkBefore(name string, rule *spec.CompiledTemporal, preEval *Evaluator, entry TraceEntry) (*Violation, error) {
	if entry.Aborted {
		return nil, nil
	}
	if entry.Action != rule.Trigger && !containsTag(entry.Tags, rule.Trigger) {
		return nil, nil
	}
	v, err := preEval.Eval(rule.Condition, EmptyFrame)
	if err != nil {
		return nil, fmt.Errorf("model: evaluating before(%s) condition for %q: %w", rule.Trigger, name, err)
	}
	if v.B {
		return nil, nil
	}
	return &Violation{
		Kind:     ViolationTemporalBefore,
		Property: name,
		Message:  fmt.Sprintf("before(%s): condition was false immediately before step %d", rule.Trigger, entry.Step),
		Step:     entry.Step,
	}, nil
}

func (tc *TemporalChecker) checkAfter(name string, rule *spec.CompiledTemporal, postEval *Evaluator, entry TraceEntry) (*Violation, error) {
	if entry.Aborted {
		return nil, nil
	}
	if entry.Action == rule.Action {
		tc.afterTriggered[name] = true
	}
	if !tc.afterTriggered[name] {
		return nil, nil
	}
	v, err := postEval.Eval(rule.Consequence, EmptyFrame)
	if err != nil {
		return nil, fmt.Errorf("model: evaluating after(%s) consequence for %q: %w", rule.Action, name, err)
	}
	if v.B {
		return nil, nil
	}
	return &Violation{
		Kind:     ViolationTemporalAfter,
		Property: name,
		Message:  fmt.Sprintf("after(%s): consequence false at step %d", rule.Action, entry.Step),
		Step:     entry.Step,
	}, nil
}

func (tc *TemporalChecker) checkNever(name string, rule *spec.CompiledTemporal, entry TraceEntry) *Violation {
	if entry.Aborted || entry.Action != rule.NeverAction {
		return nil
	}
	scope := "global"
	if rule.Scope.Same != "" {
		scope = fmt.Sprintf("same:%s=%s", rule.Scope.Same, entry.Actor)
	}
	return &Violation{
		Kind:     ViolationTemporalNever,
		Property: name,
		Message:  fmt.Sprintf("never(%s): action occurred at step %d (scope %s)", rule.NeverAction, entry.Step, scope),
		Step:     entry.Step,
	}
}
