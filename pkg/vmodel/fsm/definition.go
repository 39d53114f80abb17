package fsm

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed definitions/*.yaml
var definitions embed.FS

// StateSpec is the YAML representation of a single state
type StateSpec struct {
	// MaxTime is the time in seconds a node may stay in this state without forward progress before the
	// timer collaborator dispatches the timeout action. Zero disables the timeout.
	MaxTime int `yaml:"max_time,omitempty"`

	// Artifacts is the ordered list of artifacts the boot agent needs for the phase of this state.
	// The first entry is the executable which is run by the agent.
	Artifacts []string `yaml:"artifacts,omitempty"`

	// Transitions are the outgoing edges of this state
	Transitions map[Action]State `yaml:"transitions"`
}

// Definition is a complete, versioned vendor model variant definition
type Definition struct {
	Name         string              `yaml:"name"`
	Version      int                 `yaml:"version"`
	Description  string              `yaml:"description"`
	Vendor       string              `yaml:"vendor"`
	InitialState State               `yaml:"initial_state"`
	FinalState   State               `yaml:"final_state"`
	ErrorState   State               `yaml:"error_state"`
	TimeoutState State               `yaml:"timeout_state"`
	States       map[State]StateSpec `yaml:"states"`

	table *Table
}

// Parse decodes and validates a YAML definition
func Parse(b []byte) (*Definition, error) {
	var d Definition
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("%w: yaml: %w", ErrInvalidDefinition, err)
	}
	if err := d.init(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (d *Definition) init() error {
	if d.Name == "" {
		return invalidDefinitionError("name missing")
	}
	if len(d.States) == 0 {
		return invalidDefinitionError("%s: no states", d.Name)
	}
	edges := make(map[State]map[Action]State, len(d.States))
	for s, spec := range d.States {
		edges[s] = spec.Transitions
	}
	d.table = NewTable(edges)
	for _, s := range []State{d.InitialState, d.FinalState, d.ErrorState, d.TimeoutState} {
		if s == "" {
			return invalidDefinitionError("%s: initial, final, error and timeout states are required", d.Name)
		}
		if !d.table.Has(s) {
			return invalidDefinitionError("%s: state '%s' is not defined", d.Name, s)
		}
	}
	if err := d.table.Validate(); err != nil {
		return fmt.Errorf("%s: %w", d.Name, err)
	}
	return nil
}

// Lookup resolves the next state, see Table.Lookup
func (d *Definition) Lookup(s State, a Action) (State, error) {
	return d.table.Lookup(s, a)
}

// Table returns the transition table of the definition
func (d *Definition) Table() *Table {
	return d.table
}

// MaxTime returns the configured timeout for state `s`, or zero if there is none
func (d *Definition) MaxTime(s State) time.Duration {
	return time.Duration(d.States[s].MaxTime) * time.Second
}

// Artifacts returns a copy of the artifact list for state `s`
func (d *Definition) Artifacts(s State) []string {
	a := d.States[s].Artifacts
	if len(a) == 0 {
		return nil
	}
	ret := make([]string, len(a))
	copy(ret, a)
	return ret
}

// Builtin returns all definitions which are embedded in the binary sorted by name. An embedded
// definition which does not validate is a packaging defect and will make this panic.
func Builtin() []*Definition {
	entries, err := definitions.ReadDir("definitions")
	if err != nil {
		panic(err)
	}
	ret := make([]*Definition, 0, len(entries))
	for _, e := range entries {
		b, err := definitions.ReadFile(path.Join("definitions", e.Name()))
		if err != nil {
			panic(err)
		}
		d, err := Parse(b)
		if err != nil {
			panic(fmt.Errorf("embedded definition %s: %w", e.Name(), err))
		}
		ret = append(ret, d)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Name < ret[j].Name })
	return ret
}

// MustBuiltin returns the embedded definition with name `name`. It panics if it does not exist.
func MustBuiltin(name string) *Definition {
	for _, d := range Builtin() {
		if d.Name == name {
			return d
		}
	}
	panic(fmt.Sprintf("fsm: no embedded definition named '%s'", name))
}
