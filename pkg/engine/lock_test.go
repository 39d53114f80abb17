package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.githedgehog.com/provisioner/pkg/store/memory"
	"go.githedgehog.com/provisioner/pkg/vmodel"
)

func TestEngine_lock(t *testing.T) {
	e := &Engine{locks: make(map[string]*instanceLock)}

	var wg sync.WaitGroup
	var mu sync.Mutex
	inside := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := e.lock("vm1")
			defer unlock()
			mu.Lock()
			inside++
			if inside != 1 {
				t.Errorf("%d holders of the same instance lock", inside)
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(e.locks) != 0 {
		t.Errorf("%d locks left after release, want 0", len(e.locks))
	}
}

func TestEngine_locksOfUnknownInstances(t *testing.T) {
	st := memory.New()
	e, err := New(Dependencies{
		Nodes:    st,
		Policies: st,
		VModels:  st,
		Models:   st,
		Boot:     noBoot{},
		Catalog:  vmodel.NewCatalog(vmodel.Services{}),
	})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	tests := []struct {
		name string
		call func(id string) error
	}{
		{
			name: "expire",
			call: func(id string) error {
				_, _, err := e.Expire(ctx, id, time.Now())
				return err
			},
		},
		{
			name: "update",
			call: func(id string) error {
				_, err := e.UpdateVModel(ctx, id, nil, nil)
				return err
			},
		},
		{
			name: "delete",
			call: func(id string) error {
				return e.DeleteVModel(ctx, id)
			},
		},
		{
			name: "act",
			call: func(id string) error {
				_, err := e.Act(ctx, id, "reset", "")
				return err
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, id := range []string{"a", "b", "c"} {
				if err := tt.call(id); !errors.Is(err, ErrNotFound) {
					t.Errorf("error = %v, want %v", err, ErrNotFound)
				}
			}
			if len(e.locks) != 0 {
				t.Errorf("%d locks left for unknown instances, want 0", len(e.locks))
			}
		})
	}
}

type noBoot struct{}

func (noBoot) NextBoot(context.Context, *vmodel.Node, string) (string, error) {
	return "", nil
}
