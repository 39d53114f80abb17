package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"go.githedgehog.com/provisioner/pkg/engine"
	"go.githedgehog.com/provisioner/pkg/policy"
	"go.githedgehog.com/provisioner/pkg/store/memory"
	"go.githedgehog.com/provisioner/pkg/vmodel"
	"go.githedgehog.com/provisioner/test/mock/mockpolicy"
	"go.githedgehog.com/provisioner/test/mock/mockvmodel"
)

type workflow struct {
	engine *engine.Engine
	store  *memory.Store
	now    time.Time
}

// newWorkflow runs the engine on the memory store with a linux deploy policy
// binding node1 to model m1 and the hp generic instance vm1
func newWorkflow(t *testing.T, ctrl *gomock.Controller) *workflow {
	t.Helper()
	w := &workflow{now: time.Unix(created, 0)}

	model := mockpolicy.NewMockModel(ctrl)
	model.EXPECT().UUID().Return("m1").AnyTimes()
	bootOrchestrator := mockvmodel.NewMockBootOrchestrator(ctrl)
	bootOrchestrator.EXPECT().NextBoot(gomock.Any(), gomock.Any(), "p1").Return("#!ipxe\nchain microkernel", nil).AnyTimes()

	w.store = memory.New(
		memory.WithNodes(idleNode()),
		memory.WithModels(model),
		memory.WithPolicies(&policy.Policy{UUID: "p1", Template: policy.TemplateLinuxDeploy, NodeUUID: "node1", ModelUUID: "m1", VModelUUID: "vm1"}),
	)
	if err := w.store.Create(context.Background(), hpInstance("vmodel_init")); err != nil {
		t.Fatal(err)
	}

	e, err := engine.New(engine.Dependencies{
		Nodes:    w.store,
		Policies: w.store,
		VModels:  w.store,
		Models:   w.store,
		Boot:     bootOrchestrator,
		Catalog: vmodel.NewCatalog(vmodel.Services{
			Artifacts: mockvmodel.NewMockArtifactResolver(ctrl),
			Boot:      bootOrchestrator,
			Clock:     func() time.Time { return w.now },
		}),
	}, engine.WithBaseURL("http://provisioner:8080"))
	if err != nil {
		t.Fatal(err)
	}
	w.engine = e
	return w
}

func (w *workflow) instance(t *testing.T) *vmodel.VModel {
	t.Helper()
	vm, err := w.store.Get(context.Background(), "vm1")
	if err != nil {
		t.Fatal(err)
	}
	return vm
}

func TestWorkflow_modelSeesNoCallbackDuringHardwareConfiguration(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := newWorkflow(t, ctrl)
	ctx := context.Background()

	if _, err := w.engine.Callback(ctx, "p1", "firmware", []string{"start"}); err != nil {
		t.Fatalf("Callback(firmware) error = %v", err)
	}
	// the model mock fails the test if its Callback is called
	if _, err := w.engine.Callback(ctx, "p1", "os", []string{"start"}); !errors.Is(err, vmodel.ErrUnknownNamespace) {
		t.Fatalf("Callback(os) error = %v, want %v", err, vmodel.ErrUnknownNamespace)
	}

	vm := w.instance(t)
	if vm.CurrentState != "firmware" || len(vm.Log) != 1 {
		t.Errorf("instance in state %s with %d records, want firmware with 1", vm.CurrentState, len(vm.Log))
	}
}

func TestWorkflow_bootCallsDoNotDeferTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := newWorkflow(t, ctrl)
	ctx := context.Background()
	start := w.now

	if _, err := w.engine.Callback(ctx, "p1", "firmware", []string{"start"}); err != nil {
		t.Fatalf("Callback(firmware) error = %v", err)
	}
	for i := 1; i <= 3; i++ {
		w.now = start.Add(time.Duration(i) * 50 * time.Minute)
		if _, err := w.engine.BootCall(ctx, "p1"); err != nil {
			t.Fatalf("BootCall() error = %v", err)
		}
	}
	if vm := w.instance(t); vm.CurrentState != "firmware" || len(vm.Log) != 4 {
		t.Fatalf("instance in state %s with %d records, want firmware with 4", vm.CurrentState, len(vm.Log))
	}

	_, fired, err := w.engine.Expire(ctx, "vm1", start.Add(151*time.Minute))
	if err != nil {
		t.Fatalf("Expire() error = %v", err)
	}
	if !fired {
		t.Fatalf("Expire() did not fire after 151 minutes in firmware")
	}
	if vm := w.instance(t); vm.CurrentState != "timeout_error" {
		t.Errorf("instance in state %s, want timeout_error", vm.CurrentState)
	}
}
