package vmodel

import (
	"context"
	"fmt"
	"time"

	"go.githedgehog.com/provisioner/pkg/log"
	"go.githedgehog.com/provisioner/pkg/vmodel/fsm"
	"go.githedgehog.com/provisioner/pkg/vmodel/metadata"
	"go.uber.org/zap"
)

// Phase is a hardware configuration phase
type Phase int

const (
	PhaseFirmware Phase = iota
	PhaseBMC
	PhaseRAID
	PhaseBIOS
)

func (p Phase) String() string {
	switch p {
	case PhaseFirmware:
		return "firmware"
	case PhaseBMC:
		return "bmc"
	case PhaseRAID:
		return "raid"
	case PhaseBIOS:
		return "bios"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Sub actions of a callback
const (
	SubActionStart  = "start"
	SubActionEnd    = "end"
	SubActionSkip   = "skip"
	SubActionScript = "script"
	SubActionFile   = "file"
)

// phaseSpec binds a phase to the states and actions of a variant
type phaseSpec struct {
	phase  Phase
	state  fsm.State
	prefix string
	label  string
}

func (s phaseSpec) action(sub string) fsm.Action {
	return fsm.Action(s.prefix + "_" + sub)
}

// phasedFSM implements everything the vendor variants have in common.
// Variants differ in their definition, their callback namespaces, the
// artifact sub action and the phase order.
type phasedFSM struct {
	def       *fsm.Definition
	verb      string
	callbacks map[string]Phase
	phases    map[Phase]phaseSpec
	order     []Phase
	spec      metadata.Spec
	svc       Services
}

func newPhasedFSM(def *fsm.Definition, verb string, callbacks map[string]Phase, order []phaseSpec, svc Services) phasedFSM {
	if svc.Clock == nil {
		svc.Clock = time.Now
	}
	p := phasedFSM{
		def:       def,
		verb:      verb,
		callbacks: callbacks,
		phases:    make(map[Phase]phaseSpec, len(order)),
		spec:      hardwareSpec(order),
		svc:       svc,
	}
	for _, s := range order {
		p.phases[s.phase] = s
		p.order = append(p.order, s.phase)
	}
	return p
}

func (p *phasedFSM) Name() string                { return p.def.Name }
func (p *phasedFSM) Description() string         { return p.def.Description }
func (p *phasedFSM) Vendor() string              { return p.def.Vendor }
func (p *phasedFSM) Definition() *fsm.Definition { return p.def }
func (p *phasedFSM) Metadata() metadata.Spec     { return p.spec }

func (p *phasedFSM) New(uuid, label string, cfg Config) *VModel {
	return &VModel{
		UUID:         uuid,
		Label:        label,
		Template:     p.def.Name,
		CurrentState: p.def.InitialState,
		FinalState:   p.def.FinalState,
		Created:      p.svc.Clock().Unix(),
		Config:       cfg,
	}
}

func (p *phasedFSM) Trigger(vm *VModel, call Call, action fsm.Action, method, result string) error {
	return transition(vm, p.def, call, action, method, result, p.svc.Clock())
}

func (p *phasedFSM) TimeoutAction(s fsm.State) (fsm.Action, bool) {
	if p.def.MaxTime(s) <= 0 {
		return "", false
	}
	if s == p.def.InitialState {
		return fsm.ActionTimeout, true
	}
	if spec, ok := p.phaseByState(s); ok {
		return spec.action("timeout"), true
	}
	return "", false
}

func (p *phasedFSM) phaseByState(s fsm.State) (phaseSpec, bool) {
	for _, ph := range p.order {
		if p.phases[ph].state == s {
			return p.phases[ph], true
		}
	}
	return phaseSpec{}, false
}

func (p *phasedFSM) Handles(namespace string) bool {
	_, ok := p.callbacks[namespace]
	return ok
}

func (p *phasedFSM) Dispatch(ctx context.Context, vm *VModel, call Call, namespace string, args []string) (string, error) {
	ph, ok := p.callbacks[namespace]
	if !ok {
		return "", unknownNamespaceError(p.def.Name, namespace)
	}
	spec := p.phases[ph]
	if len(args) == 0 {
		return "error", nil
	}
	sub, rest := args[0], args[1:]

	var result string
	switch sub {
	case SubActionStart:
		result = fmt.Sprintf("Acknowledged start of %s", spec.label)
	case SubActionEnd:
		result = fmt.Sprintf("Acknowledged %s complete", spec.label)
	case SubActionSkip:
		result = fmt.Sprintf("Acknowledged skip of %s", spec.label)
	case p.verb:
		if len(rest) == 0 {
			log.L().Error("artifact requested without a name", zap.String("vmodel", vm.UUID), zap.String("namespace", namespace))
			return fmt.Sprintf("error: request %s without file name", p.verb), nil
		}
		name := rest[len(rest)-1]
		content, err := p.render(vm, call, spec, name)
		if err != nil {
			return "", err
		}
		result = fmt.Sprintf("Replied with %s for %s: %s", p.verb, spec.label, name)
		if err := p.Trigger(vm, call, spec.action(sub), spec.prefix, result); err != nil {
			return "", err
		}
		return content, nil
	default:
		return "error", nil
	}

	if err := p.Trigger(vm, call, spec.action(sub), spec.prefix, result); err != nil {
		return "", err
	}
	return "ok", nil
}

func (p *phasedFSM) MkCall(_ context.Context, vm *VModel, call Call) (*MkCallReply, error) {
	if call.Node == nil {
		return nil, noBoundNodeError(vm.UUID)
	}
	if call.Node.LastState != NodeStateIdle {
		return Acknowledged(), nil
	}

	if vm.CurrentState == p.def.InitialState {
		first := p.phases[p.order[0]]
		ret := p.reply(vm, first)
		if err := p.Trigger(vm, call, fsm.ActionMkCall, string(fsm.ActionMkCall), fmt.Sprintf("Started with %s", first.label)); err != nil {
			return nil, err
		}
		vm.Counter++
		return ret, nil
	}
	if spec, ok := p.phaseByState(vm.CurrentState); ok {
		return p.reply(vm, spec), nil
	}
	return Acknowledged(), nil
}

func (p *phasedFSM) reply(vm *VModel, spec phaseSpec) *MkCallReply {
	var flag *bool
	switch spec.phase {
	case PhaseFirmware:
		flag = vm.Config.Firmware
	case PhaseBMC:
		flag = enabled(vm.Config.BMC)
	case PhaseRAID:
		flag = enabled(vm.Config.RAID)
	case PhaseBIOS:
		flag = enabled(vm.Config.BIOS)
	}
	var e any
	if flag != nil {
		e = *flag
	}
	return &MkCallReply{
		Action: spec.prefix,
		Params: map[string]any{
			"enabled": e,
			p.verb:    p.def.Artifacts(spec.state),
		},
	}
}

func (p *phasedFSM) BootCall(ctx context.Context, vm *VModel, call Call) (string, error) {
	if call.Node == nil {
		return "", noBoundNodeError(vm.UUID)
	}
	ret, err := p.svc.Boot.NextBoot(ctx, call.Node, call.PolicyID)
	if err != nil {
		return "", err
	}
	if err := p.Trigger(vm, call, fsm.ActionBootCall, string(fsm.ActionBootCall), ""); err != nil {
		return "", err
	}
	return ret, nil
}

func (p *phasedFSM) config(vm *VModel, ph Phase) map[string]any {
	switch ph {
	case PhaseBMC:
		return vm.Config.BMC
	case PhaseRAID:
		return vm.Config.RAID
	case PhaseBIOS:
		return vm.Config.BIOS
	default:
		return nil
	}
}
