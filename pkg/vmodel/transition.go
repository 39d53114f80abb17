package vmodel

import (
	"time"

	"go.githedgehog.com/provisioner/pkg/log"
	"go.githedgehog.com/provisioner/pkg/vmodel/fsm"
	"go.uber.org/zap"
)

const noResult = "n/a"

// transition is the only place where the state of an instance changes. With a
// node bound, the next state is looked up and applied. Without a node the
// state is left alone. In both cases one record is appended to the log. A
// lookup failure leaves the instance untouched and is returned.
func transition(vm *VModel, def *fsm.Definition, call Call, action fsm.Action, method, result string, now time.Time) error {
	old := vm.CurrentState
	if call.Node != nil {
		next, err := def.Lookup(old, action)
		if err != nil {
			log.L().Error("fsm error",
				zap.String("vmodel", vm.UUID),
				zap.String("state", string(old)),
				zap.String("action", string(action)),
				zap.String("node", call.Node.UUID),
				zap.Error(err),
			)
			return err
		}
		vm.CurrentState = next
	} else {
		log.L().Debug("action called without a bound node",
			zap.String("vmodel", vm.UUID),
			zap.String("state", string(old)),
			zap.String("action", string(action)),
		)
	}

	rec := TransitionRecord{
		Seq:       1,
		OldState:  old,
		State:     vm.CurrentState,
		Action:    action,
		Method:    method,
		NodeUUID:  call.nodeID(),
		Timestamp: now.Unix(),
		Result:    result,
	}
	if rec.Result == "" {
		rec.Result = noResult
	}
	if n := len(vm.Log); n > 0 {
		last := vm.Log[n-1]
		rec.Seq = last.Seq + 1
		if rec.Timestamp < last.Timestamp {
			rec.Timestamp = last.Timestamp
		}
	}
	vm.Log = append(vm.Log, rec)

	log.L().Debug("state update",
		zap.String("vmodel", vm.UUID),
		zap.String("old_state", string(rec.OldState)),
		zap.String("state", string(rec.State)),
		zap.String("action", string(action)),
		zap.String("node", rec.NodeUUID),
	)
	return nil
}
