package worker

import (
	"context"
	"sync"
	"time"

	"github.com/runclub/paceline/pkg/usecase"
	"github.com/runclub/paceline/pkg/utils/logging"
)

// PelotonPoller periodically sweeps stored Peloton connections for new
// workouts.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - For future horizontal scaling, implement distributed locking or leader election
type PelotonPoller struct {
	uc           *usecase.UseCases
	interval     time.Duration
	workoutLimit int
	cycleMu      sync.Mutex
	stopCh       chan struct{}
	doneCh       chan struct{}
}

// NewPelotonPoller creates a poller. workoutLimit caps how many recent
// workouts are inspected per member per cycle.
func NewPelotonPoller(uc *usecase.UseCases, interval time.Duration, workoutLimit int) *PelotonPoller {
	return &PelotonPoller{
		uc:           uc,
		interval:     interval,
		workoutLimit: workoutLimit,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
}

// Start begins the polling loop. The first cycle runs immediately in the
// background goroutine; startup is not blocked.
func (w *PelotonPoller) Start(ctx context.Context) error {
	logging.Default().Info("Peloton poller starting",
		"interval", w.interval.String(), "workout_limit", w.workoutLimit)

	go w.run(ctx)

	return nil
}

// Stop signals the poller to stop and waits for completion
func (w *PelotonPoller) Stop() {
	logging.Default().Info("Peloton poller stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Peloton poller stopped")
}

func (w *PelotonPoller) run(ctx context.Context) {
	defer close(w.doneCh)

	w.poll(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.poll(ctx)

		case <-w.stopCh:
			logging.Default().Info("Peloton poller received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("Peloton poller context cancelled")
			return
		}
	}
}

// poll runs one cycle. A cycle that outlasts the interval makes the next
// tick a no-op instead of stacking concurrent sweeps.
func (w *PelotonPoller) poll(ctx context.Context) {
	if !w.cycleMu.TryLock() {
		logging.Default().Warn("previous poll cycle still running, skipping")
		return
	}
	defer w.cycleMu.Unlock()

	if _, err := w.uc.PollPeloton(ctx, w.workoutLimit); err != nil {
		logging.Default().Error("Peloton poll cycle failed (will retry next interval)",
			"error", err.Error())
	}
}
