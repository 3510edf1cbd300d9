package command

import (
	"flag"
	"io"
)

// Command is a single behave subcommand.
type Command interface {
	// Name returns the name the command is invoked by.
	Name() string

	// Synopsis returns a one-line description for command listings.
	Synopsis() string

	// Usage returns the argument synopsis, e.g. "run [options] <asset>".
	Usage() string

	// SetupFlags registers the command's flags on fs. The set is parsed
	// before Execute is called.
	SetupFlags(fs *flag.FlagSet)

	// Execute runs the command with the positional arguments remaining
	// after flag parsing.
	Execute(args []string, stdout, stderr io.Writer) error
}

// meta supplies the descriptive half of Command so concrete commands only
// implement SetupFlags and Execute.
type meta struct {
	name     string
	synopsis string
	usage    string
}

func (m meta) Name() string     { return m.name }
func (m meta) Synopsis() string { return m.synopsis }
func (m meta) Usage() string    { return m.usage }

func (m meta) SetupFlags(fs *flag.FlagSet) {}
