package command

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dop251/goja_nodejs/eventloop"
	"github.com/dop251/goja_nodejs/require"

	"github.com/arboric/behave/internal/asset"
	"github.com/arboric/behave/internal/blackboard"
	"github.com/arboric/behave/internal/config"
	"github.com/arboric/behave/internal/engine"
	"github.com/arboric/behave/internal/script"
)

// RunCommand loads a tree asset and ticks it to completion.
type RunCommand struct {
	meta
	cfg      *config.Config
	registry *Registry

	rate     int
	maxTicks int
	scripts  stringList
	sets     stringList
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// NewRunCommand creates a new run command.
func NewRunCommand(cfg *config.Config, registry *Registry) *RunCommand {
	return &RunCommand{
		meta: meta{
			name:     "run",
			synopsis: "Run a tree asset until it resolves",
			usage:    "run [options] <asset>",
		},
		cfg:      cfg,
		registry: registry,
	}
}

// SetupFlags registers run's flags.
func (c *RunCommand) SetupFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.rate, "rate", c.cfg.TickRate, "tree updates per second")
	fs.IntVar(&c.maxTicks, "ticks", c.cfg.MaxTicks, "maximum number of updates, 0 for unbounded")
	fs.Var(&c.scripts, "script", "JavaScript file to load before running (repeatable)")
	fs.Var(&c.sets, "set", "seed a blackboard entry as key=value (repeatable)")
}

// Execute runs the asset named by args[0].
func (c *RunCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s", c.Usage())
	}
	if c.rate <= 0 {
		return fmt.Errorf("rate must be positive, got %d", c.rate)
	}

	path, err := c.registry.ResolveAsset(args[0])
	if err != nil {
		return err
	}
	def, err := asset.Load(path)
	if err != nil {
		return err
	}

	bb := blackboard.New()
	for _, kv := range c.sets {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("malformed -set %q, want key=value", kv)
		}
		bb.Set(key, parseScalar(value))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jsRegistry := require.NewRegistry()
	loop := eventloop.NewEventLoop(
		eventloop.WithRegistry(jsRegistry),
		eventloop.EnableConsole(true),
	)
	loop.Start()
	defer loop.Stop()

	bridge, err := script.NewBridge(ctx, loop, jsRegistry)
	if err != nil {
		return err
	}
	defer bridge.Stop()
	bridge.SetTimeout(c.cfg.ScriptTimeout)

	for _, scriptPath := range c.scripts {
		code, err := os.ReadFile(scriptPath)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		if err := bridge.LoadScript(scriptPath, string(code)); err != nil {
			return err
		}
	}

	tree, err := asset.NewRegistry().Build(def, &asset.Env{Bridge: bridge, Blackboard: bb})
	if err != nil {
		return err
	}
	if err := tree.Start(); err != nil {
		return err
	}

	ticks := 0
	ticker := time.NewTicker(time.Second / time.Duration(c.rate))
	defer ticker.Stop()
	for tree.IsRunning() {
		if c.maxTicks > 0 && ticks >= c.maxTicks {
			tree.Interrupt(nil, true)
			_, _ = fmt.Fprintf(stderr, "tick budget exhausted after %d updates\n", ticks)
			return fmt.Errorf("tree did not resolve within %d ticks", c.maxTicks)
		}
		<-ticker.C
		tree.Update()
		ticks++
	}

	name := def.Name
	if name == "" {
		name = args[0]
	}
	_, _ = fmt.Fprintf(stdout, "%s: %s after %d ticks\n", name, tree.LastStatus(), ticks)
	if tree.LastStatus() != engine.StatusSuccess {
		return fmt.Errorf("tree resolved %s", tree.LastStatus())
	}
	return nil
}

// parseScalar interprets a -set value as a bool or number where it looks
// like one, otherwise a string.
func parseScalar(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	return s
}
