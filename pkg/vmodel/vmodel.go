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

// Package vmodel implements the vendor model workflow: a per node state
// machine which walks a bare metal server through its hardware configuration
// phases before the operating system deployment takes over.
package vmodel

import (
	"errors"
	"fmt"
	"strconv"

	"go.githedgehog.com/provisioner/pkg/vmodel/fsm"
	"go.githedgehog.com/provisioner/pkg/vmodel/metadata"
)

var (
	ErrUnknownNamespace = errors.New("vmodel: unknown namespace")
	ErrNoBoundNode      = errors.New("vmodel: no bound node")
	ErrUnknownTemplate  = errors.New("vmodel: unknown template")
)

func unknownNamespaceError(template, namespace string) error {
	return fmt.Errorf("%w: '%s' is not a callback namespace of '%s'", ErrUnknownNamespace, namespace, template)
}

func noBoundNodeError(uuid string) error {
	return fmt.Errorf("%w: vmodel %s", ErrNoBoundNode, uuid)
}

// NodeStateIdle is the last known state of a node whose boot agent is
// polling for work
const NodeStateIdle = "idle"

// Node is the view of a discovered node the workflow needs
type Node struct {
	UUID       string            `json:"uuid" yaml:"uuid"`
	LastState  string            `json:"last_state" yaml:"last_state"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Tags       []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// ProductName is the hardware product identity used for artifact overrides
func (n *Node) ProductName() string {
	if n == nil {
		return ""
	}
	return n.Attributes["productname"]
}

// Call carries everything which is scoped to a single inbound callback.
// It is never stored on a VModel.
type Call struct {
	// Node is the node the call is for. It may be nil, in which case
	// transitions are logged but the state does not change.
	Node *Node

	// PolicyID is the policy the callback was addressed to
	PolicyID string

	// BaseURL is the externally reachable URL of the provisioning server
	BaseURL string
}

func (c Call) nodeID() string {
	if c.Node == nil {
		return ""
	}
	return c.Node.UUID
}

// Config holds the per phase configuration of an instance
type Config struct {
	Firmware *bool         `json:"firmware,omitempty"`
	BMC      map[string]any `json:"bmc,omitempty"`
	RAID     map[string]any `json:"raid,omitempty"`
	BIOS     map[string]any `json:"bios,omitempty"`
}

const (
	KeyFirmware = "firmware"
	KeyBMC      = "bmc"
	KeyRAID     = "raid"
	KeyBIOS     = "bios"
)

// Set applies validated metadata values. Keys which are not in `v` are left untouched.
func (c *Config) Set(v metadata.Values) {
	if f, ok := v[KeyFirmware].(bool); ok {
		c.Firmware = &f
	}
	if m, ok := v[KeyBMC].(map[string]any); ok {
		c.BMC = m
	}
	if m, ok := v[KeyRAID].(map[string]any); ok {
		c.RAID = m
	}
	if m, ok := v[KeyBIOS].(map[string]any); ok {
		c.BIOS = m
	}
}

// Values returns the configuration as metadata values. Unset fields are omitted.
func (c Config) Values() metadata.Values {
	ret := metadata.Values{}
	if c.Firmware != nil {
		ret[KeyFirmware] = *c.Firmware
	}
	if c.BMC != nil {
		ret[KeyBMC] = c.BMC
	}
	if c.RAID != nil {
		ret[KeyRAID] = c.RAID
	}
	if c.BIOS != nil {
		ret[KeyBIOS] = c.BIOS
	}
	return ret
}

// enabled normalizes the `enabled` key of a phase blob. Agents and operators
// use both booleans and strings for it.
func enabled(blob map[string]any) *bool {
	switch v := blob["enabled"].(type) {
	case bool:
		return &v
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil
		}
		return &b
	default:
		return nil
	}
}

// TransitionRecord is one entry of the audit log of an instance
type TransitionRecord struct {
	Seq       uint64     `json:"seq"`
	OldState  fsm.State  `json:"old_state"`
	State     fsm.State  `json:"state"`
	Action    fsm.Action `json:"action"`
	Method    string     `json:"method"`
	NodeUUID  string     `json:"node_uuid,omitempty"`
	Timestamp int64      `json:"timestamp"`
	Result    string     `json:"result"`
}

// VModel is one instance of a vendor model
type VModel struct {
	UUID         string             `json:"uuid"`
	Label        string             `json:"label"`
	Template     string             `json:"template"`
	CurrentState fsm.State          `json:"current_state"`
	FinalState   fsm.State          `json:"final_state"`
	Counter      int                `json:"counter"`
	Created      int64              `json:"created"`
	Config       Config             `json:"config"`
	Log          []TransitionRecord `json:"log"`
}

// Complete returns true once the instance reached its final state
func (vm *VModel) Complete() bool {
	return vm.CurrentState == vm.FinalState
}

// StateEntered returns the unix timestamp of the last record which changed
// the state, or the creation time if the state never changed. Records which
// stay in their state do not count as progress.
func (vm *VModel) StateEntered() int64 {
	for i := len(vm.Log) - 1; i >= 0; i-- {
		if rec := vm.Log[i]; rec.State != rec.OldState {
			return rec.Timestamp
		}
	}
	return vm.Created
}

// Clone returns a deep copy
func (vm *VModel) Clone() *VModel {
	if vm == nil {
		return nil
	}
	ret := *vm
	if vm.Config.Firmware != nil {
		f := *vm.Config.Firmware
		ret.Config.Firmware = &f
	}
	ret.Config.BMC = cloneMap(vm.Config.BMC)
	ret.Config.RAID = cloneMap(vm.Config.RAID)
	ret.Config.BIOS = cloneMap(vm.Config.BIOS)
	if vm.Log != nil {
		ret.Log = make([]TransitionRecord, len(vm.Log))
		copy(ret.Log, vm.Log)
	}
	return &ret
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	ret := make(map[string]any, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case map[string]any:
			ret[k] = cloneMap(t)
		case []any:
			s := make([]any, len(t))
			copy(s, t)
			ret[k] = s
		default:
			ret[k] = v
		}
	}
	return ret
}
