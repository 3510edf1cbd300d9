package command

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/arboric/behave/internal/config"
)

// Registry manages the collection of available commands and knows where
// tree asset files live.
type Registry struct {
	commands   map[string]Command
	assetPaths []string
}

// NewRegistry creates a command registry. Asset search paths come from the
// configuration, in order.
func NewRegistry(cfg *config.Config) *Registry {
	r := &Registry{commands: make(map[string]Command)}
	if cfg != nil {
		r.assetPaths = append(r.assetPaths, cfg.AssetPaths...)
	}
	return r
}

// Register adds a command, replacing any existing command of the same name.
func (r *Registry) Register(cmd Command) {
	r.commands[cmd.Name()] = cmd
}

// Get returns a command by name.
func (r *Registry) Get(name string) (Command, error) {
	cmd, ok := r.commands[name]
	if !ok {
		return nil, fmt.Errorf("command not found: %s", name)
	}
	return cmd, nil
}

// List returns all command names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveAsset maps an asset argument to a file path. An argument that
// names an existing file is used as-is; otherwise the configured asset
// paths are searched for the name, with and without a .yaml suffix.
func (r *Registry) ResolveAsset(arg string) (string, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		return arg, nil
	}
	for _, dir := range r.assetPaths {
		for _, name := range []string{arg, arg + ".yaml", arg + ".yml"} {
			p := filepath.Join(dir, name)
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p, nil
			}
		}
	}
	return "", fmt.Errorf("asset not found: %s", arg)
}
