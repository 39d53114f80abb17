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

package vmodel

import (
	"context"
	"time"

	"go.githedgehog.com/provisioner/pkg/vmodel/artifacts"
	"go.githedgehog.com/provisioner/pkg/vmodel/fsm"
	"go.githedgehog.com/provisioner/pkg/vmodel/metadata"
)

// ArtifactResolver resolves an unrendered artifact for a vendor and product
type ArtifactResolver interface {
	Resolve(vendor, product, name string) (*artifacts.Artifact, error)
}

// BootOrchestrator computes the next boot action of a node
type BootOrchestrator interface {
	NextBoot(ctx context.Context, node *Node, policyID string) (string, error)
}

// Services are the collaborators of all templates
type Services struct {
	Artifacts ArtifactResolver
	Boot      BootOrchestrator

	// Clock defaults to time.Now
	Clock func() time.Time
}

// Template is a vendor model variant. Implementations are stateless and
// safe for concurrent use. Every call carries the instance it operates on,
// and callers must serialize calls for the same instance.
type Template interface {
	Name() string
	Description() string
	Vendor() string
	Definition() *fsm.Definition
	Metadata() metadata.Spec

	// New creates an instance at the initial state
	New(uuid, label string, cfg Config) *VModel

	// Handles returns true if `namespace` is a callback namespace of the template
	Handles(namespace string) bool

	// Dispatch handles a callback of the boot agent. `args` starts with the
	// sub action. A non-nil error is a fault, the returned string is the
	// reply to the agent otherwise.
	Dispatch(ctx context.Context, vm *VModel, call Call, namespace string, args []string) (string, error)

	// MkCall tells an idle node what to do next
	MkCall(ctx context.Context, vm *VModel, call Call) (*MkCallReply, error)

	// BootCall returns the next boot action of the node
	BootCall(ctx context.Context, vm *VModel, call Call) (string, error)

	// Trigger runs a single transition for an administrative action
	Trigger(vm *VModel, call Call, action fsm.Action, method, result string) error

	// TimeoutAction returns the action which is dispatched when state `s`
	// exceeded its maximum time. It returns false for states without timeout.
	TimeoutAction(s fsm.State) (fsm.Action, bool)
}

// ActionAcknowledged is the mk_call reply which tells the agent there is nothing to do
const ActionAcknowledged = "acknowledged"

// MkCallReply tells the boot agent which phase to run
type MkCallReply struct {
	Action string         `json:"action"`
	Params map[string]any `json:"params"`
}

// Acknowledged is the heartbeat reply
func Acknowledged() *MkCallReply {
	return &MkCallReply{Action: ActionAcknowledged, Params: map[string]any{}}
}
