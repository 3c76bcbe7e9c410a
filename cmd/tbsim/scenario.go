// Package main implements tbsim, a scenario replayer for the borrow
// tree engine: it loads a YAML file describing one or more allocations
// and a sequence of retags, accesses, protector changes, and GC sweeps,
// drives the engine accordingly, and reports either the final tree shape
// or the first reported Undefined Behavior.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is the top-level shape of a scenario file: one independent
// borrow tree per named allocation.
type Scenario struct {
	Allocations []AllocationSpec `yaml:"allocations"`
}

// AllocationSpec describes one allocation: its root tag's name, its
// size, and the ordered operations to replay against it.
type AllocationSpec struct {
	Name    string   `yaml:"name"`
	RootTag string   `yaml:"root_tag"`
	Size    int      `yaml:"size"`
	Ops     []OpSpec `yaml:"ops"`
}

// OpSpec is one operation in an allocation's op list. Which fields are
// meaningful depends on Op.
type OpSpec struct {
	Op string `yaml:"op"`

	// retag
	Parent      string `yaml:"parent,omitempty"`
	NewTag      string `yaml:"new_tag,omitempty"`
	DefaultPerm string `yaml:"default_perm,omitempty"`

	// access / dealloc
	Tag   string `yaml:"tag,omitempty"`
	Start int    `yaml:"start,omitempty"`
	End   int    `yaml:"end,omitempty"`
	Kind  string `yaml:"kind,omitempty"`

	// protect / release
	Protector string `yaml:"protector,omitempty"`

	// gc
	Live []string `yaml:"live,omitempty"`
}

// LoadScenario reads and parses the scenario file at path. Any relative
// paths a future scenario field might carry would resolve against
// filepath.Dir(path), matching the config-loading convention used
// elsewhere in this ecosystem for resolving paths relative to the config
// file rather than the process's working directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file %q: %w", path, err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario file %q: %w", path, err)
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("scenario file %q: %w", path, err)
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	if len(s.Allocations) == 0 {
		return fmt.Errorf("no allocations defined")
	}
	seen := make(map[string]bool, len(s.Allocations))
	for _, alloc := range s.Allocations {
		if alloc.Name == "" {
			return fmt.Errorf("allocation missing a name")
		}
		if seen[alloc.Name] {
			return fmt.Errorf("duplicate allocation name %q", alloc.Name)
		}
		seen[alloc.Name] = true
		if alloc.RootTag == "" {
			return fmt.Errorf("allocation %q missing root_tag", alloc.Name)
		}
		if alloc.Size <= 0 {
			return fmt.Errorf("allocation %q has non-positive size", alloc.Name)
		}
		for i, op := range alloc.Ops {
			if err := op.validate(); err != nil {
				return fmt.Errorf("allocation %q op %d: %w", alloc.Name, i, err)
			}
		}
	}
	return nil
}

func (op OpSpec) validate() error {
	switch op.Op {
	case "retag":
		if op.Parent == "" || op.NewTag == "" {
			return fmt.Errorf("retag requires parent and new_tag")
		}
	case "access":
		if op.Tag == "" || op.Kind == "" {
			return fmt.Errorf("access requires tag and kind")
		}
	case "dealloc":
		if op.Tag == "" {
			return fmt.Errorf("dealloc requires tag")
		}
	case "protect", "release":
		if op.Tag == "" {
			return fmt.Errorf("%s requires tag", op.Op)
		}
	case "gc":
		// live may legitimately be empty (everything becomes unreachable).
	default:
		return fmt.Errorf("unknown op %q", op.Op)
	}
	return nil
}

// resolvePath resolves p relative to the directory containing base, if p
// is not already absolute.
func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(base), p)
}
