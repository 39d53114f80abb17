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

// Package policy binds discovered nodes to the workflows which provision
// them and decides which workflow owns a callback.
package policy

import (
	"context"
	"errors"
	"fmt"

	"go.githedgehog.com/provisioner/pkg/vmodel"
)

// Templates of a policy
const (
	TemplateDiscoverOnly = "discover_only"
	TemplateLinuxDeploy  = "linux_deploy"
)

var ErrInvalidPolicy = errors.New("policy: invalid")

// Policy binds a node to an OS deployment model and/or a vendor model
// instance. Both are referenced by identifier only.
type Policy struct {
	UUID       string `json:"uuid" yaml:"uuid"`
	Label      string `json:"label,omitempty" yaml:"label,omitempty"`
	Template   string `json:"template" yaml:"template"`
	NodeUUID   string `json:"node_uuid,omitempty" yaml:"node_uuid,omitempty"`
	ModelUUID  string `json:"model_uuid,omitempty" yaml:"model_uuid,omitempty"`
	VModelUUID string `json:"vmodel_uuid,omitempty" yaml:"vmodel_uuid,omitempty"`
}

// Validate checks the template and references of the policy
func (p *Policy) Validate() error {
	if p.UUID == "" {
		return fmt.Errorf("%w: uuid missing", ErrInvalidPolicy)
	}
	switch p.Template {
	case TemplateDiscoverOnly:
		if p.ModelUUID != "" {
			return fmt.Errorf("%w: %s: template '%s' does not deploy a model", ErrInvalidPolicy, p.UUID, p.Template)
		}
	case TemplateLinuxDeploy:
		if p.ModelUUID == "" {
			return fmt.Errorf("%w: %s: template '%s' requires a model", ErrInvalidPolicy, p.UUID, p.Template)
		}
	default:
		return fmt.Errorf("%w: %s: unknown template '%s'", ErrInvalidPolicy, p.UUID, p.Template)
	}
	return nil
}

// Route is the owner of a callback
type Route int

const (
	// RouteNone means nothing handles the call. The agent is acknowledged.
	RouteNone Route = iota
	RouteVModel
	RouteModel
)

func (r Route) String() string {
	switch r {
	case RouteVModel:
		return "vmodel"
	case RouteModel:
		return "model"
	default:
		return "none"
	}
}

// Bind decides who receives a mk_call or boot_call for policy `p`. As long as
// the bound vendor model instance has not reached its final state it owns
// every call. Only then the model sees any call at all. `vm` is the instance
// referenced by the policy, or nil.
func Bind(p *Policy, vm *vmodel.VModel) Route {
	if p.VModelUUID != "" && vm != nil && !vm.Complete() {
		return RouteVModel
	}
	if p.ModelUUID != "" {
		return RouteModel
	}
	return RouteNone
}

// BindCallback decides who receives an agent callback. Until the bound
// vendor model instance completes it owns every namespace, so a foreign
// namespace fails there instead of reaching the model. A callback in a
// namespace of the vendor model stays with the instance even after it
// completed, so that late phase reports are still audited.
func BindCallback(p *Policy, vm *vmodel.VModel, vmodelNamespace bool) Route {
	if p.VModelUUID != "" && vm != nil && (vmodelNamespace || !vm.Complete()) {
		return RouteVModel
	}
	if p.ModelUUID != "" {
		return RouteModel
	}
	return RouteNone
}

// Model is an OS deployment workflow. It honors the same callback contract
// as a vendor model.
type Model interface {
	UUID() string
	Callback(ctx context.Context, node *vmodel.Node, policyID, namespace string, args []string) (string, error)
	MkCall(ctx context.Context, node *vmodel.Node, policyID string) (*vmodel.MkCallReply, error)
	BootCall(ctx context.Context, node *vmodel.Node, policyID string) (string, error)
}
