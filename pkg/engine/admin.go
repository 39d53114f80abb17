package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.githedgehog.com/provisioner/pkg/log"
	"go.githedgehog.com/provisioner/pkg/vmodel"
	"go.githedgehog.com/provisioner/pkg/vmodel/fsm"
	"go.githedgehog.com/provisioner/pkg/vmodel/metadata"
	"go.uber.org/zap"
)

const (
	methodAdmin = "admin"
	methodTimer = "timer"

	// unboundRecheck is how long an expired timeout is deferred while no node is bound
	unboundRecheck = time.Minute
)

// TemplateInfo describes a vendor model template
type TemplateInfo struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Vendor      string        `json:"vendor"`
	Version     int           `json:"version"`
	Metadata    metadata.Spec `json:"metadata"`
}

// NewTemplateInfo describes template `t`
func NewTemplateInfo(t vmodel.Template) TemplateInfo {
	return TemplateInfo{
		Name:        t.Name(),
		Description: t.Description(),
		Vendor:      t.Vendor(),
		Version:     t.Definition().Version,
		Metadata:    t.Metadata(),
	}
}

// Templates lists all vendor model templates sorted by name
func (e *Engine) Templates() []TemplateInfo {
	list := e.catalog.List()
	ret := make([]TemplateInfo, 0, len(list))
	for _, t := range list {
		ret = append(ret, NewTemplateInfo(t))
	}
	return ret
}

// Template returns a single vendor model template
func (e *Engine) Template(name string) (*TemplateInfo, error) {
	t, err := e.catalog.Get(name)
	if err != nil {
		return nil, invalidTemplateError(err)
	}
	ret := NewTemplateInfo(t)
	return &ret, nil
}

// GetVModel returns a copy of instance `id`
func (e *Engine) GetVModel(ctx context.Context, id string) (*vmodel.VModel, error) {
	return e.vmodels.Get(ctx, id)
}

// ListVModels returns copies of all instances sorted by creation time
func (e *Engine) ListVModels(ctx context.Context) ([]*vmodel.VModel, error) {
	ret, err := e.vmodels.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(ret, func(i, j int) bool {
		if ret[i].Created == ret[j].Created {
			return ret[i].UUID < ret[j].UUID
		}
		return ret[i].Created < ret[j].Created
	})
	return ret, nil
}

// CreateVModel validates `md` against the metadata of template `name` and stores a new instance
func (e *Engine) CreateVModel(ctx context.Context, name, label string, md map[string]any) (*vmodel.VModel, error) {
	tmpl, err := e.catalog.Get(name)
	if err != nil {
		return nil, invalidTemplateError(err)
	}
	if label == "" {
		return nil, fmt.Errorf("%w: 'label'", metadata.ErrMissingMetadata)
	}
	values, err := tmpl.Metadata().Apply(md)
	if err != nil {
		return nil, err
	}
	var cfg vmodel.Config
	cfg.Set(values)
	vm := tmpl.New(e.newUUID(), label, cfg)
	if err := e.vmodels.Create(ctx, vm); err != nil {
		return nil, couldNotCreateError(err)
	}
	log.L().Info("vmodel created", zap.String("vmodel", vm.UUID), zap.String("template", vm.Template), zap.String("label", label))
	return vm.Clone(), nil
}

// UpdateVModel changes the label and/or the metadata of instance `id`. Only
// supplied metadata keys are validated and changed.
func (e *Engine) UpdateVModel(ctx context.Context, id string, label *string, md map[string]any) (*vmodel.VModel, error) {
	unlock := e.lock(id)
	defer unlock()

	vm, err := e.vmodels.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	tmpl, err := e.catalog.Get(vm.Template)
	if err != nil {
		return nil, couldNotUpdateError(err)
	}
	if label != nil {
		if *label == "" {
			return nil, fmt.Errorf("%w: 'label'", metadata.ErrMissingMetadata)
		}
		vm.Label = *label
	}
	if len(md) > 0 {
		values, err := tmpl.Metadata().Update(md)
		if err != nil {
			return nil, err
		}
		vm.Config.Set(values)
	}
	if err := e.vmodels.Save(ctx, vm); err != nil {
		return nil, couldNotUpdateError(err)
	}
	return vm.Clone(), nil
}

// DeleteVModel removes instance `id` unless an active policy still drives it
func (e *Engine) DeleteVModel(ctx context.Context, id string) error {
	unlock := e.lock(id)
	defer unlock()

	vm, err := e.vmodels.Get(ctx, id)
	if err != nil {
		return err
	}
	policies, err := e.policies.ListPolicies(ctx)
	if err != nil {
		return couldNotRemoveError(err)
	}
	if !vm.Complete() {
		for _, p := range policies {
			if p.VModelUUID == id {
				return fmt.Errorf("%w: vmodel %s is bound to policy %s", ErrVModelInUse, id, p.UUID)
			}
		}
	}
	if err := e.vmodels.Delete(ctx, id); err != nil {
		return couldNotRemoveError(err)
	}
	log.L().Info("vmodel removed", zap.String("vmodel", id))
	return nil
}

// boundNode finds the node of instance `id`. An explicit `nodeID` wins over
// the node of a policy referencing the instance.
func (e *Engine) boundNode(ctx context.Context, id, nodeID string) (*vmodel.Node, string, error) {
	if nodeID != "" {
		n, err := e.nodes.GetNode(ctx, nodeID)
		return n, "", err
	}
	policies, err := e.policies.ListPolicies(ctx)
	if err != nil {
		return nil, "", err
	}
	for _, p := range policies {
		if p.VModelUUID != id || p.NodeUUID == "" {
			continue
		}
		n, err := e.nodes.GetNode(ctx, p.NodeUUID)
		if err != nil {
			return nil, "", err
		}
		return n, p.UUID, nil
	}
	return nil, "", nil
}

// Act dispatches an operator action on instance `id`. Only `error`, `reset`
// and the timeout action of the current state are accepted.
func (e *Engine) Act(ctx context.Context, id string, action fsm.Action, nodeID string) (*vmodel.VModel, error) {
	unlock := e.lock(id)
	defer unlock()

	vm, err := e.vmodels.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	tmpl, err := e.catalog.Get(vm.Template)
	if err != nil {
		return nil, err
	}
	switch action {
	case fsm.ActionError, fsm.ActionReset:
	default:
		if a, ok := tmpl.TimeoutAction(vm.CurrentState); !ok || a != action {
			return nil, fmt.Errorf("%w: '%s' in state '%s'", ErrInvalidAction, action, vm.CurrentState)
		}
	}
	node, policyID, err := e.boundNode(ctx, id, nodeID)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("%w: vmodel %s", vmodel.ErrNoBoundNode, id)
	}

	before := len(vm.Log)
	call := vmodel.Call{Node: node, PolicyID: policyID, BaseURL: e.baseURL}
	if err := tmpl.Trigger(vm, call, action, methodAdmin, ""); err != nil {
		return nil, err
	}
	if err := e.commit(ctx, vm, tmpl, before); err != nil {
		return nil, err
	}
	return vm.Clone(), nil
}

// Expire dispatches the timeout action of instance `id` if its current state
// exceeded its maximum time at `now`. The time counts from entering the
// state, so records which stay in it do not restart it. It returns whether
// the action fired and the time until the instance must be checked again. A
// zero duration means there is nothing to wait for. Without a bound node the
// timeout is deferred.
func (e *Engine) Expire(ctx context.Context, id string, now time.Time) (time.Duration, bool, error) {
	unlock := e.lock(id)
	defer unlock()

	vm, err := e.vmodels.Get(ctx, id)
	if err != nil {
		return 0, false, err
	}
	tmpl, err := e.catalog.Get(vm.Template)
	if err != nil {
		return 0, false, err
	}
	action, ok := tmpl.TimeoutAction(vm.CurrentState)
	if !ok {
		return 0, false, nil
	}
	deadline := time.Unix(vm.StateEntered(), 0).Add(tmpl.Definition().MaxTime(vm.CurrentState))
	if now.Before(deadline) {
		return deadline.Sub(now), false, nil
	}

	node, policyID, err := e.boundNode(ctx, id, "")
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.L().Warn("timeout deferred, node not found", zap.String("vmodel", id), zap.Error(err))
			return unboundRecheck, false, nil
		}
		return 0, false, err
	}
	if node == nil {
		log.L().Debug("timeout deferred, no bound node", zap.String("vmodel", id), zap.String("state", string(vm.CurrentState)))
		return unboundRecheck, false, nil
	}

	before := len(vm.Log)
	call := vmodel.Call{Node: node, PolicyID: policyID, BaseURL: e.baseURL}
	result := fmt.Sprintf("exceeded %s in state %s", tmpl.Definition().MaxTime(vm.CurrentState), vm.CurrentState)
	if err := tmpl.Trigger(vm, call, action, methodTimer, result); err != nil {
		return 0, false, err
	}
	if err := e.commit(ctx, vm, tmpl, before); err != nil {
		return 0, false, err
	}
	expiredTotal.WithLabelValues(tmpl.Name()).Inc()
	log.L().Info("vmodel state timed out", zap.String("vmodel", id), zap.String("action", string(action)), zap.String("state", string(vm.CurrentState)))

	if _, ok := tmpl.TimeoutAction(vm.CurrentState); ok {
		return tmpl.Definition().MaxTime(vm.CurrentState), true, nil
	}
	return 0, true, nil
}
