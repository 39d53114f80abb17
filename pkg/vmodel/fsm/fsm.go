// Copyright 2023 Hedgehog
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fsm holds the transition tables of the vendor model variants. A table maps a (state, action)
// pair to the next state, with an optional per state default edge (`else`). Tables are loaded from YAML
// definitions and resolve transitions with a looplab/fsm machine.
package fsm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	looplab "github.com/looplab/fsm"
)

// State is a symbolic state tag of a transition table
type State string

// Action is the name of an edge in a transition table
type Action string

const (
	// ActionElse is the per state default edge. It is used when there is no exact edge for an action.
	ActionElse Action = "else"

	// ActionError moves a state to the error catching state. It is only ever taken when a caller explicitly
	// dispatches it.
	ActionError Action = "error"

	// ActionTimeout is the timeout action of the initial state. Phase states use `<phase>_timeout`.
	ActionTimeout Action = "timeout"

	// ActionReset is the operator recovery action out of the timeout state
	ActionReset Action = "reset"

	// ActionMkCall is triggered when the boot agent polls for work
	ActionMkCall Action = "mk_call"

	// ActionBootCall is triggered when the node performs a boot handshake
	ActionBootCall Action = "boot_call"
)

var (
	ErrInvalidTransition = errors.New("fsm: invalid transition")
	ErrInvalidDefinition = errors.New("fsm: invalid definition")
)

func invalidTransitionError(s State, a Action) error {
	return fmt.Errorf("%w: no edge for action '%s' and no default edge in state '%s'", ErrInvalidTransition, a, s)
}

func invalidDefinitionError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidDefinition, fmt.Sprintf(format, args...))
}

// Table is a transition table. It is safe for concurrent use.
type Table struct {
	states map[State]struct{}
	events []looplab.EventDesc

	// machine has no state of its own between lookups, it is positioned on the
	// asked state for every lookup
	mu      sync.Mutex
	machine *looplab.FSM
}

// NewTable creates a table from `edges`. The map is copied, so the caller is free to reuse it.
func NewTable(edges map[State]map[Action]State) *Table {
	t := &Table{states: make(map[State]struct{}, len(edges))}

	// one event per action and destination, looplab keys its transitions by
	// event and source state
	type edge struct {
		action Action
		dst    State
	}
	srcs := map[edge][]string{}
	for s, e := range edges {
		t.states[s] = struct{}{}
		for a, next := range e {
			k := edge{action: a, dst: next}
			srcs[k] = append(srcs[k], string(s))
		}
	}
	for k, src := range srcs {
		sort.Strings(src)
		t.events = append(t.events, looplab.EventDesc{Name: string(k.action), Src: src, Dst: string(k.dst)})
	}
	sort.Slice(t.events, func(i, j int) bool {
		if t.events[i].Name != t.events[j].Name {
			return t.events[i].Name < t.events[j].Name
		}
		return t.events[i].Dst < t.events[j].Dst
	})
	t.machine = looplab.NewFSM("", looplab.Events(t.events), looplab.Callbacks{})
	return t
}

// Lookup resolves the next state for `action` in state `s`. An exact edge takes precedence over the
// `else` edge. If neither exists, this is a defect of the table and ErrInvalidTransition is returned.
func (t *Table) Lookup(s State, action Action) (State, error) {
	if !t.Has(s) {
		return "", invalidTransitionError(s, action)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.machine.SetState(string(s))
	event := string(action)
	if !t.machine.Can(event) {
		if !t.machine.Can(string(ActionElse)) {
			return "", invalidTransitionError(s, action)
		}
		event = string(ActionElse)
	}
	// staying in the state is a valid edge
	var noTransition looplab.NoTransitionError
	if err := t.machine.Event(context.Background(), event); err != nil && !errors.As(err, &noTransition) {
		return "", fmt.Errorf("%w: state '%s' action '%s': %w", ErrInvalidTransition, s, action, err)
	}
	return State(t.machine.Current()), nil
}

// Has returns true if `s` is a state of this table
func (t *Table) Has(s State) bool {
	_, ok := t.states[s]
	return ok
}

// States returns all states of the table sorted by name
func (t *Table) States() []State {
	ret := make([]State, 0, len(t.states))
	for s := range t.states {
		ret = append(ret, s)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i] < ret[j] })
	return ret
}

// Validate ensures that every edge of the table points to a state of the table
func (t *Table) Validate() error {
	for _, e := range t.events {
		if !t.Has(State(e.Dst)) {
			return invalidDefinitionError("state '%s' action '%s' points to undefined state '%s'", e.Src[0], e.Name, e.Dst)
		}
	}
	return nil
}
