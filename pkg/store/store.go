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

// Package store declares the persistence collaborators of the engine.
// Implementations live in the sub packages.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.githedgehog.com/provisioner/pkg/policy"
	"go.githedgehog.com/provisioner/pkg/vmodel"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// NotFoundError wraps ErrNotFound for object `kind` with id `id`
func NotFoundError(kind, id string) error {
	return fmt.Errorf("%w: %s '%s'", ErrNotFound, kind, id)
}

// AlreadyExistsError wraps ErrAlreadyExists for object `kind` with id `id`
func AlreadyExistsError(kind, id string) error {
	return fmt.Errorf("%w: %s '%s'", ErrAlreadyExists, kind, id)
}

// NodeStore gives access to discovered nodes
type NodeStore interface {
	GetNode(ctx context.Context, uuid string) (*vmodel.Node, error)
}

// PolicyStore gives access to active policies
type PolicyStore interface {
	GetPolicy(ctx context.Context, uuid string) (*policy.Policy, error)
	ListPolicies(ctx context.Context) ([]*policy.Policy, error)
}

// ModelStore gives access to OS deployment models
type ModelStore interface {
	GetModel(ctx context.Context, uuid string) (policy.Model, error)
}

// PersistenceSink durably saves an instance after a transition
type PersistenceSink interface {
	Save(ctx context.Context, vm *vmodel.VModel) error
}

// VModelStore holds vendor model instances. Implementations return copies,
// callers own what they get.
type VModelStore interface {
	PersistenceSink
	Create(ctx context.Context, vm *vmodel.VModel) error
	Get(ctx context.Context, uuid string) (*vmodel.VModel, error)
	List(ctx context.Context) ([]*vmodel.VModel, error)
	Delete(ctx context.Context, uuid string) error
}
