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

// Package kube keeps vendor model instances as VModel custom resources
package kube

import (
	"context"
	"encoding/json"
	"fmt"

	"go.githedgehog.com/provisioner/pkg/store"
	"go.githedgehog.com/provisioner/pkg/vmodel"
	"go.githedgehog.com/provisioner/pkg/vmodel/fsm"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	provisionerv1alpha1 "go.githedgehog.com/provisioner/pkg/k8s/api/v1alpha1"
)

// Store implements store.VModelStore with a controller-runtime client
type Store struct {
	client    client.Client
	reader    client.Reader
	namespace string
}

var _ store.VModelStore = &Store{}

// Option configures a store
type Option func(*Store)

// WithReader reads objects through `r` instead of the client, e.g. the
// uncached API reader of a manager
func WithReader(r client.Reader) Option {
	return func(s *Store) {
		s.reader = r
	}
}

// New creates a store for objects in `namespace`
func New(c client.Client, namespace string, opts ...Option) *Store {
	s := &Store{client: c, reader: c, namespace: namespace}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(id string) types.NamespacedName {
	return types.NamespacedName{Namespace: s.namespace, Name: id}
}

func (s *Store) Create(ctx context.Context, vm *vmodel.VModel) error {
	obj, err := ToObject(vm)
	if err != nil {
		return err
	}
	obj.Namespace = s.namespace
	if err := s.client.Create(ctx, obj); err != nil {
		if apierrors.IsAlreadyExists(err) {
			return store.AlreadyExistsError("vmodel", vm.UUID)
		}
		return fmt.Errorf("kube: create vmodel %s: %w", vm.UUID, err)
	}
	return nil
}

// Save replaces spec and status of an existing object. The caller holds the
// lock of the instance, so a conflict means somebody else edited the object.
func (s *Store) Save(ctx context.Context, vm *vmodel.VModel) error {
	cur := &provisionerv1alpha1.VModel{}
	if err := s.reader.Get(ctx, s.key(vm.UUID), cur); err != nil {
		return s.mapError(err, vm.UUID)
	}
	obj, err := ToObject(vm)
	if err != nil {
		return err
	}
	cur.Spec = obj.Spec
	cur.Status = obj.Status
	if err := s.client.Update(ctx, cur); err != nil {
		return s.mapError(err, vm.UUID)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*vmodel.VModel, error) {
	obj := &provisionerv1alpha1.VModel{}
	if err := s.reader.Get(ctx, s.key(id), obj); err != nil {
		return nil, s.mapError(err, id)
	}
	return FromObject(obj)
}

func (s *Store) List(ctx context.Context) ([]*vmodel.VModel, error) {
	list := &provisionerv1alpha1.VModelList{}
	if err := s.reader.List(ctx, list, client.InNamespace(s.namespace)); err != nil {
		return nil, fmt.Errorf("kube: list vmodels: %w", err)
	}
	ret := make([]*vmodel.VModel, 0, len(list.Items))
	for i := range list.Items {
		vm, err := FromObject(&list.Items[i])
		if err != nil {
			return nil, err
		}
		ret = append(ret, vm)
	}
	return ret, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	obj := &provisionerv1alpha1.VModel{
		ObjectMeta: metav1.ObjectMeta{Namespace: s.namespace, Name: id},
	}
	if err := s.client.Delete(ctx, obj); err != nil {
		return s.mapError(err, id)
	}
	return nil
}

func (s *Store) mapError(err error, id string) error {
	if apierrors.IsNotFound(err) {
		return store.NotFoundError("vmodel", id)
	}
	return fmt.Errorf("kube: vmodel %s: %w", id, err)
}

func toRaw(m map[string]any) (runtime.RawExtension, error) {
	if m == nil {
		return runtime.RawExtension{}, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return runtime.RawExtension{}, err
	}
	return runtime.RawExtension{Raw: b}, nil
}

func fromRaw(r runtime.RawExtension) (map[string]any, error) {
	if len(r.Raw) == 0 || string(r.Raw) == "null" {
		return nil, nil
	}
	var ret map[string]any
	if err := json.Unmarshal(r.Raw, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// ToObject converts an instance into its custom resource. The instance UUID is the object name.
func ToObject(vm *vmodel.VModel) (*provisionerv1alpha1.VModel, error) {
	obj := &provisionerv1alpha1.VModel{
		TypeMeta: metav1.TypeMeta{
			APIVersion: provisionerv1alpha1.GroupVersion.String(),
			Kind:       provisionerv1alpha1.KindVModel,
		},
		ObjectMeta: metav1.ObjectMeta{Name: vm.UUID},
		Spec: provisionerv1alpha1.VModelSpec{
			Template: vm.Template,
			Label:    vm.Label,
		},
		Status: provisionerv1alpha1.VModelStatus{
			CurrentState: string(vm.CurrentState),
			FinalState:   string(vm.FinalState),
			Counter:      vm.Counter,
			Created:      vm.Created,
		},
	}
	if vm.Config.Firmware != nil {
		f := *vm.Config.Firmware
		obj.Spec.Config.Firmware = &f
	}
	var err error
	if obj.Spec.Config.BMC, err = toRaw(vm.Config.BMC); err != nil {
		return nil, fmt.Errorf("kube: vmodel %s bmc: %w", vm.UUID, err)
	}
	if obj.Spec.Config.RAID, err = toRaw(vm.Config.RAID); err != nil {
		return nil, fmt.Errorf("kube: vmodel %s raid: %w", vm.UUID, err)
	}
	if obj.Spec.Config.BIOS, err = toRaw(vm.Config.BIOS); err != nil {
		return nil, fmt.Errorf("kube: vmodel %s bios: %w", vm.UUID, err)
	}
	for _, rec := range vm.Log {
		obj.Status.Log = append(obj.Status.Log, provisionerv1alpha1.VModelTransition{
			Seq:       rec.Seq,
			OldState:  string(rec.OldState),
			State:     string(rec.State),
			Action:    string(rec.Action),
			Method:    rec.Method,
			NodeUUID:  rec.NodeUUID,
			Timestamp: rec.Timestamp,
			Result:    rec.Result,
		})
	}
	return obj, nil
}

// FromObject converts a custom resource into an instance
func FromObject(obj *provisionerv1alpha1.VModel) (*vmodel.VModel, error) {
	vm := &vmodel.VModel{
		UUID:         obj.Name,
		Label:        obj.Spec.Label,
		Template:     obj.Spec.Template,
		CurrentState: fsm.State(obj.Status.CurrentState),
		FinalState:   fsm.State(obj.Status.FinalState),
		Counter:      obj.Status.Counter,
		Created:      obj.Status.Created,
	}
	if obj.Spec.Config.Firmware != nil {
		f := *obj.Spec.Config.Firmware
		vm.Config.Firmware = &f
	}
	var err error
	if vm.Config.BMC, err = fromRaw(obj.Spec.Config.BMC); err != nil {
		return nil, fmt.Errorf("kube: vmodel %s bmc: %w", obj.Name, err)
	}
	if vm.Config.RAID, err = fromRaw(obj.Spec.Config.RAID); err != nil {
		return nil, fmt.Errorf("kube: vmodel %s raid: %w", obj.Name, err)
	}
	if vm.Config.BIOS, err = fromRaw(obj.Spec.Config.BIOS); err != nil {
		return nil, fmt.Errorf("kube: vmodel %s bios: %w", obj.Name, err)
	}
	for _, rec := range obj.Status.Log {
		vm.Log = append(vm.Log, vmodel.TransitionRecord{
			Seq:       rec.Seq,
			OldState:  fsm.State(rec.OldState),
			State:     fsm.State(rec.State),
			Action:    fsm.Action(rec.Action),
			Method:    rec.Method,
			NodeUUID:  rec.NodeUUID,
			Timestamp: rec.Timestamp,
			Result:    rec.Result,
		})
	}
	return vm, nil
}
