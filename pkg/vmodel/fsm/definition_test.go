package fsm

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

const validDefinition = `
name: test
version: 1
vendor: acme
initial_state: init
final_state: done
error_state: err
timeout_state: tmo
states:
  init:
    max_time: 60
    artifacts: [a.sh, b.ini]
    transitions:
      mk_call: done
      else: init
  done:
    transitions:
      else: done
  err:
    transitions:
      reset: init
      else: err
  tmo:
    transitions:
      reset: init
      else: tmo
`

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{
			name: "valid",
			in:   validDefinition,
		},
		{
			name:    "not yaml",
			in:      "states: [",
			wantErr: ErrInvalidDefinition,
		},
		{
			name:    "no name",
			in:      "states:\n  a:\n    transitions: {}\n",
			wantErr: ErrInvalidDefinition,
		},
		{
			name:    "no states",
			in:      "name: x\n",
			wantErr: ErrInvalidDefinition,
		},
		{
			name:    "missing required state",
			in:      "name: x\ninitial_state: a\nstates:\n  a:\n    transitions: {}\n",
			wantErr: ErrInvalidDefinition,
		},
		{
			name: "dangling edge",
			in: "name: x\ninitial_state: a\nfinal_state: a\nerror_state: a\ntimeout_state: a\n" +
				"states:\n  a:\n    transitions:\n      reset: baking\n",
			wantErr: ErrInvalidDefinition,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefinition_accessors(t *testing.T) {
	d, err := Parse([]byte(validDefinition))
	if err != nil {
		t.Fatalf("Parse() = %v", err)
	}
	if got := d.MaxTime("init"); got != time.Minute {
		t.Errorf("MaxTime(init) = %v", got)
	}
	if got := d.MaxTime("done"); got != 0 {
		t.Errorf("MaxTime(done) = %v", got)
	}
	a := d.Artifacts("init")
	if !reflect.DeepEqual(a, []string{"a.sh", "b.ini"}) {
		t.Errorf("Artifacts(init) = %v", a)
	}
	a[0] = "changed"
	if d.Artifacts("init")[0] != "a.sh" {
		t.Errorf("Artifacts() must return a copy")
	}
	if d.Artifacts("done") != nil {
		t.Errorf("Artifacts(done) must be nil")
	}
	if next, err := d.Lookup("init", ActionMkCall); err != nil || next != "done" {
		t.Errorf("Lookup() = %v, %v", next, err)
	}
}

func TestBuiltin(t *testing.T) {
	defs := Builtin()
	var names []string
	for _, d := range defs {
		names = append(names, d.Name)
	}
	want := []string{"hp generic", "hp generic v2", "huawei generic"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("Builtin() = %v, want %v", names, want)
	}
}

func TestBuiltin_hpGenericWalk(t *testing.T) {
	d := MustBuiltin("hp generic")
	steps := []struct {
		action Action
		want   State
	}{
		{"firmware_start", "firmware"},
		{"firmware_end", "ilo"},
		{"ilo_start", "ilo"},
		{"ilo_end", "raid"},
		{"raid_start", "raid"},
		{"raid_end", "bios"},
		{"bios_start", "bios"},
		{"bios_end", "vmodel_complete"},
	}
	s := d.InitialState
	for _, step := range steps {
		next, err := d.Lookup(s, step.action)
		if err != nil {
			t.Fatalf("Lookup(%s, %s) = %v", s, step.action, err)
		}
		if next != step.want {
			t.Fatalf("Lookup(%s, %s) = %s, want %s", s, step.action, next, step.want)
		}
		s = next
	}
	if s != d.FinalState {
		t.Errorf("final state = %s, want %s", s, d.FinalState)
	}
}

func TestBuiltin_recoveryEdges(t *testing.T) {
	for _, d := range Builtin() {
		for _, s := range []State{d.TimeoutState, d.ErrorState} {
			next, err := d.Lookup(s, ActionReset)
			if err != nil || next != d.InitialState {
				t.Errorf("%s: Lookup(%s, reset) = %v, %v", d.Name, s, next, err)
			}
		}
		next, err := d.Lookup(d.InitialState, ActionTimeout)
		if err != nil || next != d.TimeoutState {
			t.Errorf("%s: Lookup(init, timeout) = %v, %v", d.Name, next, err)
		}
	}
}

func TestMustBuiltin_panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("MustBuiltin() did not panic")
		}
	}()
	MustBuiltin("does not exist")
}
