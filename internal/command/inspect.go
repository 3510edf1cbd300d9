package command

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/arboric/behave/internal/asset"
	"github.com/arboric/behave/internal/engine"
)

// InspectCommand prints the computed structure of a tree asset: traversal
// orders, depths, and cursor assignments.
type InspectCommand struct {
	meta
	registry *Registry
}

// NewInspectCommand creates a new inspect command.
func NewInspectCommand(registry *Registry) *InspectCommand {
	return &InspectCommand{
		meta: meta{
			name:     "inspect",
			synopsis: "Print the structure of a tree asset",
			usage:    "inspect <asset>",
		},
		registry: registry,
	}
}

// Execute inspects the asset named by args[0].
func (c *InspectCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	path, err := c.registry.ResolveAsset(args[0])
	if err != nil {
		return err
	}
	def, err := asset.Load(path)
	if err != nil {
		return err
	}

	// Actions need a script bridge to build; stub them so structural
	// inspection works without an event loop.
	reg := asset.NewRegistry()
	reg.Register("action", func(_ *asset.Env, nd *asset.NodeDef) (engine.Kind, engine.Behavior, error) {
		return engine.KindLeaf, &stubBehavior{fn: nd.Func}, nil
	})
	tree, err := reg.Build(def, &asset.Env{})
	if err != nil {
		return err
	}
	tree.SortNodes()

	_, _ = fmt.Fprintf(stdout, "%s: %d nodes, height %d\n\n", def.Name, tree.Len(), tree.Height())

	w := tabwriter.NewWriter(stdout, 0, 8, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PRE\tPOST\tLEVEL\tDEPTH\tKIND\tNAME")
	for i := 0; i < tree.Len(); i++ {
		n := tree.NodeAt(i)
		_, _ = fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%s\t%s%s\n",
			n.PreOrder(), n.PostOrder(), n.LevelOrder(), n.Depth(),
			n.Kind(), indent(n.Depth()), n.Name())
	}
	_ = w.Flush()

	parallels := tree.NodesOfKind(engine.KindParallel)
	if len(parallels) > 0 {
		_, _ = fmt.Fprintln(stdout, "")
		for _, p := range parallels {
			_, _ = fmt.Fprintf(stdout, "parallel %q child cursor ranges:", p.Name())
			for i := 0; i < p.ChildCount(); i++ {
				child := p.Child(i)
				size := 0
				engine.PreOrder(child, func(*engine.Node) { size++ }, nil)
				_, _ = fmt.Fprintf(stdout, " [%d,%d)", child.PreOrder(), child.PreOrder()+size)
			}
			_, _ = fmt.Fprintln(stdout, "")
		}
	}
	return nil
}

func indent(depth int) string {
	const pad = "| "
	s := ""
	for i := 0; i < depth; i++ {
		s += pad
	}
	return s
}

// stubBehavior stands in for script actions during inspection.
type stubBehavior struct {
	engine.Base
	fn string
}

func (s *stubBehavior) Clone() engine.Behavior { return &stubBehavior{fn: s.fn} }

func (s *stubBehavior) OnTick() engine.Status { return engine.StatusFailure }
