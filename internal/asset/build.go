package asset

import (
	"fmt"

	"github.com/arboric/behave/internal/blackboard"
	"github.com/arboric/behave/internal/condition"
	"github.com/arboric/behave/internal/engine"
	"github.com/arboric/behave/internal/nodes"
	"github.com/arboric/behave/internal/script"
)

// Env carries the collaborators node builders may need. Bridge may be nil
// when the asset uses no script-backed nodes; building an action node
// without a bridge is a build error.
type Env struct {
	Bridge     *script.Bridge
	Blackboard *blackboard.Blackboard
}

// Builder produces the kind and behavior for one node definition.
type Builder func(env *Env, def *NodeDef) (engine.Kind, engine.Behavior, error)

// Registry maps node type names to builders.
type Registry struct {
	builders map[string]Builder
}

// NewRegistry returns a registry pre-populated with the built-in node
// types: sequence, selector, parallel, inverter, conditional-abort,
// condition, succeed, fail, wait, and action.
func NewRegistry() *Registry {
	r := &Registry{builders: make(map[string]Builder)}
	r.Register("sequence", func(*Env, *NodeDef) (engine.Kind, engine.Behavior, error) {
		return engine.KindComposite, nodes.NewSequence(), nil
	})
	r.Register("selector", func(*Env, *NodeDef) (engine.Kind, engine.Behavior, error) {
		return engine.KindComposite, nodes.NewSelector(), nil
	})
	r.Register("parallel", func(_ *Env, def *NodeDef) (engine.Kind, engine.Behavior, error) {
		policy, err := parsePolicy(def.Policy)
		if err != nil {
			return 0, nil, err
		}
		return engine.KindParallel, nodes.NewParallel(policy), nil
	})
	r.Register("inverter", func(*Env, *NodeDef) (engine.Kind, engine.Behavior, error) {
		return engine.KindDecorator, nodes.NewInverter(), nil
	})
	r.Register("conditional-abort", func(_ *Env, def *NodeDef) (engine.Kind, engine.Behavior, error) {
		if def.Condition == "" {
			return 0, nil, fmt.Errorf("conditional-abort requires a condition")
		}
		pred, err := condition.Compile(def.Condition)
		if err != nil {
			return 0, nil, err
		}
		mode, err := parseAbortMode(def.Abort)
		if err != nil {
			return 0, nil, err
		}
		return engine.KindDecorator, nodes.NewConditionalAbort(pred, mode), nil
	})
	r.Register("condition", func(_ *Env, def *NodeDef) (engine.Kind, engine.Behavior, error) {
		if def.Condition == "" {
			return 0, nil, fmt.Errorf("condition requires a condition expression")
		}
		pred, err := condition.Compile(def.Condition)
		if err != nil {
			return 0, nil, err
		}
		return engine.KindLeaf, nodes.NewCondition(pred), nil
	})
	r.Register("succeed", func(*Env, *NodeDef) (engine.Kind, engine.Behavior, error) {
		return engine.KindLeaf, nodes.NewSucceed(), nil
	})
	r.Register("fail", func(*Env, *NodeDef) (engine.Kind, engine.Behavior, error) {
		return engine.KindLeaf, nodes.NewFail(), nil
	})
	r.Register("wait", func(_ *Env, def *NodeDef) (engine.Kind, engine.Behavior, error) {
		if def.Ticks < 0 {
			return 0, nil, fmt.Errorf("wait requires a non-negative tick count")
		}
		return engine.KindLeaf, nodes.NewWait(def.Ticks), nil
	})
	r.Register("action", func(env *Env, def *NodeDef) (engine.Kind, engine.Behavior, error) {
		if def.Func == "" {
			return 0, nil, fmt.Errorf("action requires a func name")
		}
		if env.Bridge == nil {
			return 0, nil, fmt.Errorf("action %q requires a script bridge", def.Func)
		}
		return engine.KindLeaf, script.NewAction(env.Bridge, def.Func), nil
	})
	return r
}

// Register adds or replaces a builder for a node type name.
func (r *Registry) Register(typeName string, b Builder) {
	r.builders[typeName] = b
}

// Build constructs a runtime tree from the definition. The tree gets the
// environment's blackboard (a fresh one when nil). Errors name the failing
// node by its path from the root.
func (r *Registry) Build(def *Definition, env *Env) (*engine.Tree, error) {
	if env == nil {
		env = &Env{}
	}
	bb := env.Blackboard
	if bb == nil {
		bb = blackboard.New()
	}
	buildEnv := &Env{Bridge: env.Bridge, Blackboard: bb}

	t := engine.New(bb)
	root, err := r.buildNode(t, buildEnv, def.Root, "root")
	if err != nil {
		return nil, err
	}
	t.SetRoot(root)
	return t, nil
}

func (r *Registry) buildNode(t *engine.Tree, env *Env, def *NodeDef, path string) (*engine.Node, error) {
	builder, ok := r.builders[def.Type]
	if !ok {
		return nil, fmt.Errorf("asset: %s: unknown node type %q", path, def.Type)
	}
	kind, behavior, err := builder(env, def)
	if err != nil {
		return nil, fmt.Errorf("asset: %s: %w", path, err)
	}

	children := def.Children
	if def.Child != nil {
		if len(children) > 0 {
			return nil, fmt.Errorf("asset: %s: child and children are mutually exclusive", path)
		}
		children = []*NodeDef{def.Child}
	}
	switch kind {
	case engine.KindLeaf:
		if len(children) > 0 {
			return nil, fmt.Errorf("asset: %s: %s nodes take no children", path, def.Type)
		}
	case engine.KindDecorator:
		if len(children) != 1 {
			return nil, fmt.Errorf("asset: %s: %s requires exactly one child", path, def.Type)
		}
	}

	name := def.Name
	if name == "" {
		name = def.Type
	}
	n := t.NewNode(kind, name, behavior)
	for i, childDef := range children {
		child, err := r.buildNode(t, env, childDef, fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return nil, err
		}
		if err := n.AddChild(child); err != nil {
			return nil, fmt.Errorf("asset: %s: %w", path, err)
		}
	}
	return n, nil
}

func parsePolicy(s string) (nodes.Policy, error) {
	switch s {
	case "", "require-all":
		return nodes.RequireAll, nil
	case "require-one":
		return nodes.RequireOne, nil
	default:
		return 0, fmt.Errorf("unknown parallel policy %q", s)
	}
}

func parseAbortMode(s string) (nodes.AbortMode, error) {
	switch s {
	case "", "self":
		return nodes.AbortSelf, nil
	case "none":
		return nodes.AbortNone, nil
	case "lower-priority":
		return nodes.AbortLowerPriority, nil
	case "both":
		return nodes.AbortBoth, nil
	default:
		return 0, fmt.Errorf("unknown abort mode %q", s)
	}
}
