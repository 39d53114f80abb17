package kube

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.githedgehog.com/provisioner/pkg/store"
	"go.githedgehog.com/provisioner/pkg/vmodel"
	"go.githedgehog.com/provisioner/pkg/vmodel/fsm"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	provisionerv1alpha1 "go.githedgehog.com/provisioner/pkg/k8s/api/v1alpha1"
)

func newScheme() *runtime.Scheme {
	scheme := runtime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(provisionerv1alpha1.AddToScheme(scheme))
	return scheme
}

func newStore(t *testing.T) *Store {
	t.Helper()
	return New(fake.NewClientBuilder().WithScheme(newScheme()).Build(), "default")
}

func testInstance() *vmodel.VModel {
	f := false
	return &vmodel.VModel{
		UUID:         "3f1b0d6e-1c2a-4c7e-9a57-0b1f1c2d3e4f",
		Label:        "rack 1",
		Template:     "huawei generic",
		CurrentState: "bmc",
		FinalState:   "vmodel_complete",
		Counter:      2,
		Created:      1700000000,
		Config: vmodel.Config{
			Firmware: &f,
			BMC:      map[string]any{"enabled": true, "user": "admin"},
			BIOS:     map[string]any{"enabled": "false"},
		},
		Log: []vmodel.TransitionRecord{
			{Seq: 1, OldState: "vmodel_init", State: "firmware", Action: "mk_call", Method: "mk_call", NodeUUID: "node1", Timestamp: 1700000001, Result: "Started with firmware"},
			{Seq: 2, OldState: "firmware", State: "bmc", Action: "firmware_skip", Method: "firmware", NodeUUID: "node1", Timestamp: 1700000002, Result: "n/a"},
		},
	}
}

func TestConversion(t *testing.T) {
	tests := []struct {
		name string
		vm   *vmodel.VModel
	}{
		{
			name: "full instance",
			vm:   testInstance(),
		},
		{
			name: "fresh instance",
			vm:   &vmodel.VModel{UUID: "vm1", Label: "x", Template: "hp generic", CurrentState: "vmodel_init", FinalState: "vmodel_complete"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := ToObject(tt.vm)
			if err != nil {
				t.Fatalf("ToObject() error = %v", err)
			}
			if obj.Name != tt.vm.UUID || obj.Kind != provisionerv1alpha1.KindVModel {
				t.Errorf("ToObject() meta = %v/%v", obj.Kind, obj.Name)
			}
			got, err := FromObject(obj)
			if err != nil {
				t.Fatalf("FromObject() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.vm) {
				t.Errorf("FromObject() = %+v, want %+v", got, tt.vm)
			}
		})
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	vm := testInstance()

	if err := s.Create(ctx, vm); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := s.Create(ctx, vm); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("Create() twice error = %v, want %v", err, store.ErrAlreadyExists)
	}

	got, err := s.Get(ctx, vm.UUID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !reflect.DeepEqual(got, vm) {
		t.Errorf("Get() = %+v, want %+v", got, vm)
	}

	got.CurrentState = "raid"
	got.Label = "rack 2"
	if err := s.Save(ctx, got); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 || list[0].CurrentState != "raid" || list[0].Label != "rack 2" {
		t.Errorf("List() = %+v", list)
	}
	if err := s.Save(ctx, &vmodel.VModel{UUID: "missing"}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Save() unknown error = %v, want %v", err, store.ErrNotFound)
	}

	if err := s.Delete(ctx, vm.UUID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, vm.UUID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get() after Delete() error = %v, want %v", err, store.ErrNotFound)
	}
	if err := s.Delete(ctx, vm.UUID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want %v", err, store.ErrNotFound)
	}
}

func TestStore_WithReader(t *testing.T) {
	ctx := context.Background()
	object := func(state string) *provisionerv1alpha1.VModel {
		vm := testInstance()
		vm.CurrentState = fsm.State(state)
		obj, err := ToObject(vm)
		if err != nil {
			t.Fatal(err)
		}
		obj.Namespace = "default"
		return obj
	}
	stale := fake.NewClientBuilder().WithScheme(newScheme()).WithObjects(object("firmware")).Build()
	live := fake.NewClientBuilder().WithScheme(newScheme()).WithObjects(object("bmc")).Build()
	s := New(stale, "default", WithReader(live))

	got, err := s.Get(ctx, testInstance().UUID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.CurrentState != "bmc" {
		t.Errorf("Get() state = %s, want bmc from the reader", got.CurrentState)
	}
	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 || list[0].CurrentState != "bmc" {
		t.Errorf("List() = %+v, want one instance in bmc", list)
	}
}
