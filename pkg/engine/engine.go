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

// Package engine serializes all callbacks and administrative operations on
// vendor model instances and wires them to their stores.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.githedgehog.com/provisioner/pkg/log"
	"go.githedgehog.com/provisioner/pkg/policy"
	"go.githedgehog.com/provisioner/pkg/store"
	"go.githedgehog.com/provisioner/pkg/vmodel"
	"go.uber.org/zap"
)

var (
	ErrNotFound        = store.ErrNotFound
	ErrInvalidTemplate = errors.New("engine: invalid template")
	ErrInvalidAction   = errors.New("engine: invalid action")
	ErrCouldNotCreate  = errors.New("engine: could not create vmodel")
	ErrCouldNotUpdate  = errors.New("engine: could not update vmodel")
	ErrCouldNotRemove  = errors.New("engine: could not remove vmodel")
	ErrVModelInUse     = errors.New("engine: vmodel in use")
)

func invalidTemplateError(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
}

func couldNotCreateError(err error) error {
	return fmt.Errorf("%w: %w", ErrCouldNotCreate, err)
}

func couldNotUpdateError(err error) error {
	return fmt.Errorf("%w: %w", ErrCouldNotUpdate, err)
}

func couldNotRemoveError(err error) error {
	return fmt.Errorf("%w: %w", ErrCouldNotRemove, err)
}

// Notifier is told about every transition after it was saved
type Notifier interface {
	Notify(ctx context.Context, vm *vmodel.VModel, rec vmodel.TransitionRecord) error
}

// Dependencies are the collaborators of the engine. Notifier is optional.
type Dependencies struct {
	Nodes    store.NodeStore
	Policies store.PolicyStore
	VModels  store.VModelStore
	Models   store.ModelStore
	Boot     vmodel.BootOrchestrator
	Catalog  *vmodel.Catalog
	Notifier Notifier
}

// Option configures an engine
type Option func(*Engine)

// WithBaseURL sets the URL the boot agents call back to
func WithBaseURL(u string) Option {
	return func(e *Engine) {
		e.baseURL = u
	}
}

// WithUUIDGenerator replaces the generator of instance identifiers
func WithUUIDGenerator(f func() string) Option {
	return func(e *Engine) {
		e.newUUID = f
	}
}

// Engine is safe for concurrent use. Operations on distinct instances run in
// parallel, operations on the same instance are serialized.
type Engine struct {
	nodes    store.NodeStore
	policies store.PolicyStore
	vmodels  store.VModelStore
	models   store.ModelStore
	boot     vmodel.BootOrchestrator
	catalog  *vmodel.Catalog
	notifier Notifier

	baseURL string
	newUUID func() string

	locksLock sync.Mutex
	locks     map[string]*instanceLock
}

// instanceLock is dropped from the engine once nobody holds or waits for it
type instanceLock struct {
	sync.Mutex
	refs int
}

// New creates an engine
func New(deps Dependencies, opts ...Option) (*Engine, error) {
	if deps.Nodes == nil || deps.Policies == nil || deps.VModels == nil || deps.Models == nil || deps.Boot == nil || deps.Catalog == nil {
		return nil, errors.New("engine: nodes, policies, vmodels, models, boot and catalog are required")
	}
	e := &Engine{
		nodes:    deps.Nodes,
		policies: deps.Policies,
		vmodels:  deps.VModels,
		models:   deps.Models,
		boot:     deps.Boot,
		catalog:  deps.Catalog,
		notifier: deps.Notifier,
		newUUID:  uuid.NewString,
		locks:    make(map[string]*instanceLock),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// lock acquires the mutex of instance `id` and returns its release function
func (e *Engine) lock(id string) func() {
	e.locksLock.Lock()
	l, ok := e.locks[id]
	if !ok {
		l = &instanceLock{}
		e.locks[id] = l
	}
	l.refs++
	e.locksLock.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		e.locksLock.Lock()
		l.refs--
		if l.refs == 0 {
			delete(e.locks, id)
		}
		e.locksLock.Unlock()
	}
}

// binding is everything a policy callback needs
type binding struct {
	policy *policy.Policy
	node   *vmodel.Node
	call   vmodel.Call
}

func (e *Engine) bind(ctx context.Context, policyID string) (*binding, error) {
	p, err := e.policies.GetPolicy(ctx, policyID)
	if err != nil {
		return nil, err
	}
	b := &binding{policy: p, call: vmodel.Call{PolicyID: p.UUID, BaseURL: e.baseURL}}
	if p.NodeUUID != "" {
		b.node, err = e.nodes.GetNode(ctx, p.NodeUUID)
		if err != nil {
			return nil, err
		}
		b.call.Node = b.node
	}
	return b, nil
}

// instance loads instance `id` and its template. The caller
// must hold the lock of the instance. A dangling reference yields nil.
func (e *Engine) instance(ctx context.Context, id string) (*vmodel.VModel, vmodel.Template, error) {
	vm, err := e.vmodels.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.L().Warn("policy references a missing vmodel", zap.String("vmodel", id))
			return nil, nil, nil
		}
		return nil, nil, err
	}
	tmpl, err := e.catalog.Get(vm.Template)
	if err != nil {
		return nil, nil, err
	}
	return vm, tmpl, nil
}

// commit saves `vm` if records were appended since `before` and publishes them
func (e *Engine) commit(ctx context.Context, vm *vmodel.VModel, tmpl vmodel.Template, before int) error {
	if len(vm.Log) == before {
		return nil
	}
	if err := e.vmodels.Save(ctx, vm); err != nil {
		return fmt.Errorf("engine: saving vmodel %s: %w", vm.UUID, err)
	}
	l := log.L().With(zap.String("vmodel", vm.UUID), zap.String("template", tmpl.Name()))
	for _, rec := range vm.Log[before:] {
		transitionsTotal.WithLabelValues(tmpl.Name(), string(rec.Action)).Inc()
		l.Debug("transition saved", zap.Uint64("seq", rec.Seq), zap.String("state", string(rec.State)))
		if e.notifier == nil {
			continue
		}
		if err := e.notifier.Notify(ctx, vm, rec); err != nil {
			l.Warn("notify failed", zap.Uint64("seq", rec.Seq), zap.Error(err))
		}
	}
	return nil
}

func (e *Engine) withInstance(ctx context.Context, b *binding, f func(vm *vmodel.VModel, tmpl vmodel.Template) error) error {
	if b.policy.VModelUUID == "" {
		return f(nil, nil)
	}
	unlock := e.lock(b.policy.VModelUUID)
	defer unlock()
	vm, tmpl, err := e.instance(ctx, b.policy.VModelUUID)
	if err != nil {
		return err
	}
	return f(vm, tmpl)
}

// Callback dispatches a boot agent callback for policy `policyID`
func (e *Engine) Callback(ctx context.Context, policyID, namespace string, args []string) (string, error) {
	b, err := e.bind(ctx, policyID)
	if err != nil {
		return "", err
	}
	var ret string
	err = e.withInstance(ctx, b, func(vm *vmodel.VModel, tmpl vmodel.Template) error {
		handles := tmpl != nil && tmpl.Handles(namespace)
		switch policy.BindCallback(b.policy, vm, handles) {
		case policy.RouteVModel:
			callbacksTotal.WithLabelValues("callback", policy.RouteVModel.String()).Inc()
			before := len(vm.Log)
			ret, err = tmpl.Dispatch(ctx, vm, b.call, namespace, args)
			if err != nil {
				return err
			}
			return e.commit(ctx, vm, tmpl, before)
		case policy.RouteModel:
			callbacksTotal.WithLabelValues("callback", policy.RouteModel.String()).Inc()
			m, err := e.models.GetModel(ctx, b.policy.ModelUUID)
			if err != nil {
				return err
			}
			ret, err = m.Callback(ctx, b.node, b.policy.UUID, namespace, args)
			return err
		default:
			callbacksTotal.WithLabelValues("callback", policy.RouteNone.String()).Inc()
			return fmt.Errorf("%w: '%s' for policy %s", vmodel.ErrUnknownNamespace, namespace, b.policy.UUID)
		}
	})
	if err != nil {
		return "", err
	}
	return ret, nil
}

// MkCall answers the poll of an idle boot agent for policy `policyID`
func (e *Engine) MkCall(ctx context.Context, policyID string) (*vmodel.MkCallReply, error) {
	b, err := e.bind(ctx, policyID)
	if err != nil {
		return nil, err
	}
	var ret *vmodel.MkCallReply
	err = e.withInstance(ctx, b, func(vm *vmodel.VModel, tmpl vmodel.Template) error {
		route := policy.Bind(b.policy, vm)
		callbacksTotal.WithLabelValues("mk_call", route.String()).Inc()
		switch route {
		case policy.RouteVModel:
			before := len(vm.Log)
			ret, err = tmpl.MkCall(ctx, vm, b.call)
			if err != nil {
				return err
			}
			return e.commit(ctx, vm, tmpl, before)
		case policy.RouteModel:
			m, err := e.models.GetModel(ctx, b.policy.ModelUUID)
			if err != nil {
				return err
			}
			ret, err = m.MkCall(ctx, b.node, b.policy.UUID)
			return err
		default:
			ret = vmodel.Acknowledged()
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// BootCall returns the boot script of the node bound to policy `policyID`.
// Without an owner the node boots the boot agent.
func (e *Engine) BootCall(ctx context.Context, policyID string) (string, error) {
	b, err := e.bind(ctx, policyID)
	if err != nil {
		return "", err
	}
	var ret string
	err = e.withInstance(ctx, b, func(vm *vmodel.VModel, tmpl vmodel.Template) error {
		route := policy.Bind(b.policy, vm)
		callbacksTotal.WithLabelValues("boot_call", route.String()).Inc()
		switch route {
		case policy.RouteVModel:
			before := len(vm.Log)
			ret, err = tmpl.BootCall(ctx, vm, b.call)
			if err != nil {
				return err
			}
			return e.commit(ctx, vm, tmpl, before)
		case policy.RouteModel:
			m, err := e.models.GetModel(ctx, b.policy.ModelUUID)
			if err != nil {
				return err
			}
			ret, err = m.BootCall(ctx, b.node, b.policy.UUID)
			return err
		default:
			ret, err = e.boot.NextBoot(ctx, b.node, b.policy.UUID)
			return err
		}
	})
	if err != nil {
		return "", err
	}
	return ret, nil
}
