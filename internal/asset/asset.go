// Package asset loads tree definitions from YAML and builds runtime trees
// from them. The format is a narrow authoring contract: a named root node
// definition, each node carrying a type and type-specific fields. Node
// types resolve through a builder registry so hosts can add their own.
package asset

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Definition is a parsed tree asset.
type Definition struct {
	Name string   `yaml:"name"`
	Root *NodeDef `yaml:"root"`
}

// NodeDef is one node in a tree asset. Type selects the builder; the
// remaining fields are interpreted per type and validated at build time.
type NodeDef struct {
	Type      string     `yaml:"type"`
	Name      string     `yaml:"name,omitempty"`
	Condition string     `yaml:"condition,omitempty"`
	Abort     string     `yaml:"abort,omitempty"`
	Policy    string     `yaml:"policy,omitempty"`
	Ticks     int        `yaml:"ticks,omitempty"`
	Func      string     `yaml:"func,omitempty"`
	Child     *NodeDef   `yaml:"child,omitempty"`
	Children  []*NodeDef `yaml:"children,omitempty"`
}

// Load reads and parses a tree asset file. Unknown fields are rejected so
// typos surface at load time rather than as silently-defaulted behavior.
func Load(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("asset: open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f, path)
}

// Decode parses a tree asset from a reader; name is used in errors.
func Decode(r io.Reader, name string) (*Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var def Definition
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("asset: parse %s: %w", name, err)
	}
	if def.Root == nil {
		return nil, fmt.Errorf("asset: %s: %w", name, errNoRoot)
	}
	return &def, nil
}

var errNoRoot = errors.New("definition has no root node")
