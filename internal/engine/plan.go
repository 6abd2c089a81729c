package engine

import (
	"fmt"

	"github.com/v2kk/stackctl/internal/graph"
	"github.com/v2kk/stackctl/internal/resource"
	"github.com/v2kk/stackctl/internal/stack"
	"github.com/v2kk/stackctl/internal/state"
)

// Step is one planned operation.
type Step struct {
	// Key is the declaration's "<kind>/<name>" key.
	Key string
	// Kind is the declaration's resource kind.
	Kind resource.Kind
	// Name is the declaration's logical name.
	Name string
	// Action is the operation apply would perform.
	Action Action
}

// Plan previews what Apply would do, in apply order, without any provider
// call. Declarations whose inputs cannot be resolved from stored state (new
// resources, or dependents of changed resources) are planned conservatively:
// a declaration only plans as a no-op when its stored input hash provably
// still matches.
func (e *Engine) Plan(stk *stack.Stack) ([]Step, error) {
	g, err := graph.Build(stk.Declarations())
	if err != nil {
		return nil, err
	}
	order, err := g.Order()
	if err != nil {
		return nil, err
	}

	// Outputs usable for reference resolution at plan time: stored outputs of
	// declarations that plan as no-op or read.
	known := make(map[string]resource.Outputs, len(order))

	steps := make([]Step, 0, len(order))
	for _, d := range order {
		step := Step{Key: d.Key(), Kind: d.Kind, Name: d.Name}
		rec, exists := e.store.Get(stk.Name(), d.Key())

		switch {
		case d.ReadOnly:
			step.Action = ActionRead
			if exists {
				known[d.Key()] = rec.Outputs
			}
		case !exists:
			step.Action = ActionCreate
		default:
			resolved, rerr := resource.ResolveProperties(d.Properties, func(ref resource.Reference) (string, error) {
				outputs, ok := known[ref.SourceKey()]
				if !ok {
					return "", fmt.Errorf("source %s not settled at plan time", ref.SourceKey())
				}
				v, ok := outputs[ref.Attribute]
				if !ok {
					return "", fmt.Errorf("source %s has no stored output %q", ref.SourceKey(), ref.Attribute)
				}
				return v, nil
			})
			if rerr != nil {
				step.Action = ActionReplace
				break
			}
			hash, herr := state.HashInputs(resolved)
			if herr != nil {
				return nil, herr
			}
			if hash == rec.InputHash {
				step.Action = ActionNoop
				known[d.Key()] = rec.Outputs
			} else {
				step.Action = ActionReplace
			}
		}

		steps = append(steps, step)
	}
	return steps, nil
}
