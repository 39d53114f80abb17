package memory

import (
	"context"
	"errors"
	"testing"

	"go.githedgehog.com/provisioner/pkg/policy"
	"go.githedgehog.com/provisioner/pkg/store"
	"go.githedgehog.com/provisioner/pkg/vmodel"
)

func TestStore_VModels(t *testing.T) {
	ctx := context.Background()
	s := New()

	vm := &vmodel.VModel{UUID: "vm1", Label: "rack 1", CurrentState: "vmodel_init"}
	if err := s.Create(ctx, vm); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := s.Create(ctx, vm); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("Create() twice error = %v, want %v", err, store.ErrAlreadyExists)
	}

	// callers own what they pass in and what they get back
	vm.Label = "changed"
	got, err := s.Get(ctx, "vm1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Label != "rack 1" {
		t.Errorf("Get() label = %s, want rack 1", got.Label)
	}
	got.CurrentState = "firmware"
	again, _ := s.Get(ctx, "vm1")
	if again.CurrentState != "vmodel_init" {
		t.Errorf("Get() returned a shared instance")
	}

	if err := s.Save(ctx, got); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	list, err := s.List(ctx)
	if err != nil || len(list) != 1 || list[0].CurrentState != "firmware" {
		t.Errorf("List() = %v, %v", list, err)
	}

	if err := s.Save(ctx, &vmodel.VModel{UUID: "vm2"}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Save() unknown error = %v, want %v", err, store.ErrNotFound)
	}
	if err := s.Delete(ctx, "vm1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, "vm1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get() after Delete() error = %v, want %v", err, store.ErrNotFound)
	}
	if err := s.Delete(ctx, "vm1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want %v", err, store.ErrNotFound)
	}
}

func TestStore_Inventory(t *testing.T) {
	ctx := context.Background()
	m := policy.NewOSModel(policy.OSModelSpec{UUID: "m1", Label: "ubuntu"}, nil)
	s := New(
		WithNodes(&vmodel.Node{UUID: "node1", Attributes: map[string]string{"productname": "ProLiant"}}),
		WithPolicies(&policy.Policy{UUID: "p2", NodeUUID: "node1"}, &policy.Policy{UUID: "p1"}),
		WithModels(m),
	)

	n, err := s.GetNode(ctx, "node1")
	if err != nil {
		t.Fatalf("GetNode() error = %v", err)
	}
	n.Attributes["productname"] = "changed"
	if again, _ := s.GetNode(ctx, "node1"); again.ProductName() != "ProLiant" {
		t.Errorf("GetNode() returned shared attributes")
	}
	s.SetNode(&vmodel.Node{UUID: "node1", LastState: vmodel.NodeStateIdle})
	if again, _ := s.GetNode(ctx, "node1"); again.LastState != vmodel.NodeStateIdle {
		t.Errorf("SetNode() did not replace the node")
	}
	if _, err := s.GetNode(ctx, "node2"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetNode() error = %v, want %v", err, store.ErrNotFound)
	}

	list, err := s.ListPolicies(ctx)
	if err != nil || len(list) != 2 || list[0].UUID != "p1" {
		t.Errorf("ListPolicies() = %v, %v", list, err)
	}
	if _, err := s.GetPolicy(ctx, "p3"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetPolicy() error = %v, want %v", err, store.ErrNotFound)
	}

	got, err := s.GetModel(ctx, "m1")
	if err != nil || got.UUID() != "m1" {
		t.Errorf("GetModel() = %v, %v", got, err)
	}
	if _, err := s.GetModel(ctx, "m2"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetModel() error = %v, want %v", err, store.ErrNotFound)
	}
}
