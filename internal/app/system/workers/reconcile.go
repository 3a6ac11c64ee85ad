// internal/app/system/workers/reconcile.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/taskhub/internal/app/store/membership"
	"go.uber.org/zap"
)

// MembershipReconcile is a background worker that periodically re-derives
// user team references from team member lists. Membership writes span two
// collections without a transaction, so a crash between the writes can
// leave the pair out of sync until this worker runs.
type MembershipReconcile struct {
	coordinator *membership.Coordinator
	log         *zap.Logger
	interval    time.Duration
	stopCh      chan struct{}
	wg          sync.WaitGroup
}

// NewMembershipReconcile creates the worker. interval controls how often
// the repair pass runs.
func NewMembershipReconcile(coordinator *membership.Coordinator, logger *zap.Logger, interval time.Duration) *MembershipReconcile {
	return &MembershipReconcile{
		coordinator: coordinator,
		log:         logger,
		interval:    interval,
		stopCh:      make(chan struct{}),
	}
}

// Start begins the background loop.
func (w *MembershipReconcile) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("membership reconcile worker started",
		zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *MembershipReconcile) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("membership reconcile worker stopped")
}

func (w *MembershipReconcile) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.reconcile()
		}
	}
}

func (w *MembershipReconcile) reconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fixed, err := w.coordinator.Reconcile(ctx)
	if err != nil {
		w.log.Error("membership reconcile failed", zap.Error(err))
		return
	}
	if fixed > 0 {
		w.log.Info("membership reconcile repaired drift", zap.Int64("fixed", fixed))
	}
}
