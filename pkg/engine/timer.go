package engine

import (
	"context"
	"time"

	"go.githedgehog.com/provisioner/pkg/log"
	"go.uber.org/zap"
)

// Sweep runs Expire for every instance and returns how many timeouts fired
func (e *Engine) Sweep(ctx context.Context, now time.Time) (int, error) {
	list, err := e.vmodels.List(ctx)
	if err != nil {
		return 0, err
	}
	var fired int
	for _, vm := range list {
		if vm.Complete() {
			continue
		}
		_, ok, err := e.Expire(ctx, vm.UUID, now)
		if err != nil {
			log.L().Warn("timeout check failed", zap.String("vmodel", vm.UUID), zap.Error(err))
			continue
		}
		if ok {
			fired++
		}
	}
	return fired, nil
}

// RunTimer sweeps all instances every `interval` until `ctx` is done. It is
// the timer for storage backends without a controller.
func (e *Engine) RunTimer(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if _, err := e.Sweep(ctx, now); err != nil {
				log.L().Error("timeout sweep failed", zap.Error(err))
			}
		}
	}
}
