package scenario

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/sprout/internal/errors"
)

// Default tags of the rendered list.
const (
	DefaultContainer = "ul"
	DefaultItem      = "li"
)

// Scenario describes a list and the edits applied to it.
type Scenario struct {
	// Name identifies the scenario in traces and golden files.
	Name string `yaml:"name" json:"name"`

	// Description is free text.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Container and Item are the tags of the list and its rows.
	Container string `yaml:"container,omitempty" json:"container,omitempty"`
	Item      string `yaml:"item,omitempty" json:"item,omitempty"`

	// Initial is the list of keys mounted first.
	Initial []string `yaml:"initial" json:"initial"`

	// Labels overrides the row text of some keys. Rows default to their key.
	Labels map[string]string `yaml:"labels,omitempty" json:"labels,omitempty"`

	// Steps are applied in order, one flush each.
	Steps []Step `yaml:"steps" json:"steps"`
}

// Step is one edit. Exactly one action field must be set.
type Step struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Set replaces the whole list.
	Set []string `yaml:"set,omitempty" json:"set,omitempty"`

	// Append adds keys at the end.
	Append []string `yaml:"append,omitempty" json:"append,omitempty"`

	// Prepend adds keys at the front.
	Prepend []string `yaml:"prepend,omitempty" json:"prepend,omitempty"`

	// Remove drops keys.
	Remove []string `yaml:"remove,omitempty" json:"remove,omitempty"`

	// Rename changes row labels without touching the order.
	Rename map[string]string `yaml:"rename,omitempty" json:"rename,omitempty"`

	// Reverse flips the order.
	Reverse bool `yaml:"reverse,omitempty" json:"reverse,omitempty"`

	// Clear empties the list.
	Clear bool `yaml:"clear,omitempty" json:"clear,omitempty"`

	// Expect is checked against the step's trace when present.
	Expect *Expect `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// Expect constrains the outcome of a step. Nil counts are not checked.
type Expect struct {
	Moves   *int   `yaml:"moves,omitempty" json:"moves,omitempty"`
	Inserts *int   `yaml:"inserts,omitempty" json:"inserts,omitempty"`
	Removes *int   `yaml:"removes,omitempty" json:"removes,omitempty"`
	HTML    string `yaml:"html,omitempty" json:"html,omitempty"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E140").WithDetail("cannot read " + path).Wrap(err)
	}
	return Parse(data)
}

// Parse decodes and validates a scenario. Unknown fields are rejected.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, errors.New("E140").Wrap(err)
	}
	sc.applyDefaults()
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (s *Scenario) applyDefaults() {
	if s.Container == "" {
		s.Container = DefaultContainer
	}
	if s.Item == "" {
		s.Item = DefaultItem
	}
	for i := range s.Steps {
		if s.Steps[i].Name == "" {
			s.Steps[i].Name = fmt.Sprintf("step %d", i+1)
		}
	}
}

// Validate checks the scenario by dry-running its steps over the key list.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return errors.New("E140").WithDetail("name is required")
	}
	if len(s.Steps) == 0 {
		return errors.New("E141").WithDetail("scenario " + s.Name + " has no steps")
	}
	if k, dup := firstDuplicate(s.Initial); dup {
		return errors.New("E142").WithDetail(fmt.Sprintf("initial: key %q appears twice", k))
	}

	order := append([]string(nil), s.Initial...)
	for i, step := range s.Steps {
		if n := step.actions(); n != 1 {
			return errors.New("E140").
				WithDetail(fmt.Sprintf("steps[%d] (%s): want exactly one action, got %d", i, step.Name, n)).
				WithSuggestion("Use one of set, append, prepend, remove, rename, reverse or clear per step")
		}
		next, err := step.apply(order)
		if err != nil {
			return errors.New("E140").WithDetail(fmt.Sprintf("steps[%d] (%s): %v", i, step.Name, err))
		}
		if k, dup := firstDuplicate(next); dup {
			return errors.New("E142").WithDetail(fmt.Sprintf("steps[%d] (%s): key %q appears twice", i, step.Name, k))
		}
		order = next
	}
	return nil
}

func (s Step) actions() int {
	n := 0
	for _, set := range []bool{
		s.Set != nil,
		len(s.Append) > 0,
		len(s.Prepend) > 0,
		len(s.Remove) > 0,
		len(s.Rename) > 0,
		s.Reverse,
		s.Clear,
	} {
		if set {
			n++
		}
	}
	return n
}

// apply returns the key order after the step. order is not modified.
func (s Step) apply(order []string) ([]string, error) {
	switch {
	case s.Set != nil:
		return append([]string{}, s.Set...), nil
	case len(s.Append) > 0:
		return append(append([]string{}, order...), s.Append...), nil
	case len(s.Prepend) > 0:
		return append(append([]string{}, s.Prepend...), order...), nil
	case len(s.Remove) > 0:
		drop := make(map[string]bool, len(s.Remove))
		for _, k := range s.Remove {
			if !contains(order, k) {
				return nil, fmt.Errorf("remove: unknown key %q", k)
			}
			drop[k] = true
		}
		next := make([]string, 0, len(order))
		for _, k := range order {
			if !drop[k] {
				next = append(next, k)
			}
		}
		return next, nil
	case s.Reverse:
		next := make([]string, len(order))
		for i, k := range order {
			next[len(order)-1-i] = k
		}
		return next, nil
	case s.Clear:
		return []string{}, nil
	}
	// Rename keeps the order.
	return append([]string{}, order...), nil
}

func firstDuplicate(keys []string) (string, bool) {
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			return k, true
		}
		seen[k] = true
	}
	return "", false
}

func contains(keys []string, k string) bool {
	for _, x := range keys {
		if x == k {
			return true
		}
	}
	return false
}
