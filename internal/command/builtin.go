package command

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/arboric/behave/internal/config"
)

// HelpCommand displays help information for commands.
type HelpCommand struct {
	meta
	registry *Registry
}

// NewHelpCommand creates a new help command.
func NewHelpCommand(registry *Registry) *HelpCommand {
	return &HelpCommand{
		meta: meta{
			name:     "help",
			synopsis: "Display help information for commands",
			usage:    "help [command]",
		},
		registry: registry,
	}
}

// Execute displays help information.
func (c *HelpCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		_, _ = fmt.Fprintln(stdout, "behave - run and inspect behavior tree assets from your terminal")
		_, _ = fmt.Fprintln(stdout, "")
		_, _ = fmt.Fprintln(stdout, "Usage: behave <command> [options] [args...]")
		_, _ = fmt.Fprintln(stdout, "")
		_, _ = fmt.Fprintln(stdout, "Available commands:")

		w := tabwriter.NewWriter(stdout, 0, 8, 2, ' ', 0)
		for _, name := range c.registry.List() {
			if cmd, err := c.registry.Get(name); err == nil {
				_, _ = fmt.Fprintf(w, "  %s\t%s\n", name, cmd.Synopsis())
			}
		}
		_ = w.Flush()

		_, _ = fmt.Fprintln(stdout, "")
		_, _ = fmt.Fprintln(stdout, "Use 'behave help <command>' for more information about a specific command (includes flags).")
		return nil
	}

	cmdName := args[0]
	cmd, err := c.registry.Get(cmdName)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", cmdName)
		return err
	}

	_, _ = fmt.Fprintf(stdout, "Command: %s\n", cmd.Name())
	_, _ = fmt.Fprintf(stdout, "Description: %s\n", cmd.Synopsis())
	_, _ = fmt.Fprintf(stdout, "Usage: %s\n", cmd.Usage())

	// Render any command-specific flags via a throwaway FlagSet.
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	buf := &bytes.Buffer{}
	fs.SetOutput(buf)
	cmd.SetupFlags(fs)
	fs.PrintDefaults()
	if buf.Len() > 0 {
		_, _ = fmt.Fprintln(stdout, "")
		_, _ = fmt.Fprintln(stdout, "Flags:")
		_, _ = fmt.Fprint(stdout, buf.String())
	}

	return nil
}

// VersionCommand displays version information.
type VersionCommand struct {
	meta
	version string
}

// NewVersionCommand creates a new version command.
func NewVersionCommand(version string) *VersionCommand {
	return &VersionCommand{
		meta: meta{
			name:     "version",
			synopsis: "Display version information",
			usage:    "version",
		},
		version: version,
	}
}

// Execute displays version information.
func (c *VersionCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args)
		return fmt.Errorf("unexpected arguments")
	}
	_, _ = fmt.Fprintf(stdout, "behave version %s\n", c.version)
	return nil
}

// ConfigCommand displays the effective configuration.
type ConfigCommand struct {
	meta
	cfg *config.Config
}

// NewConfigCommand creates a new config command.
func NewConfigCommand(cfg *config.Config) *ConfigCommand {
	return &ConfigCommand{
		meta: meta{
			name:     "config",
			synopsis: "Display the effective configuration",
			usage:    "config",
		},
		cfg: cfg,
	}
}

// Execute prints the resolved settings and any load warnings.
func (c *ConfigCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	w := tabwriter.NewWriter(stdout, 0, 8, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "tick-rate\t%d\n", c.cfg.TickRate)
	_, _ = fmt.Fprintf(w, "max-ticks\t%d\n", c.cfg.MaxTicks)
	_, _ = fmt.Fprintf(w, "log-level\t%s\n", c.cfg.LogLevel)
	_, _ = fmt.Fprintf(w, "script-timeout\t%s\n", c.cfg.ScriptTimeout)
	for _, p := range c.cfg.AssetPaths {
		_, _ = fmt.Fprintf(w, "asset-path\t%s\n", p)
	}
	_ = w.Flush()
	for _, warning := range c.cfg.Warnings {
		_, _ = fmt.Fprintf(stderr, "warning: %s\n", warning)
	}
	return nil
}
