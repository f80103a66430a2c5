package layout

import (
	"context"
	"time"

	"go.uber.org/zap"

	"brainstormer/backend/pkg/logger"
)

// Runner ticks the simulation on a background goroutine so request
// handling is never blocked by layout work. The engine reads snapshots
// and writes positions back through the store; nothing else is shared.
type Runner struct {
	engine    *Engine
	interval  time.Duration
	positions chan map[string][2]float64
	logger    *zap.Logger
}

// NewRunner wraps an engine with a tick loop. A zero interval gets the
// default 33ms (~30 ticks/s).
func NewRunner(engine *Engine, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = 33 * time.Millisecond
	}
	return &Runner{
		engine:    engine,
		interval:  interval,
		positions: make(chan map[string][2]float64, 1),
		logger:    logger.Get(),
	}
}

// Positions emits the position batch of each tick while the simulation
// is active. A slow consumer misses intermediate batches instead of
// slowing the simulation down.
func (r *Runner) Positions() <-chan map[string][2]float64 {
	return r.positions
}

// Start runs the tick loop until the context is cancelled
func (r *Runner) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("Layout runner started", zap.Duration("interval", r.interval))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Layout runner stopped")
			return
		case <-ticker.C:
			batch := r.engine.Step()
			if batch == nil {
				continue
			}
			select {
			case r.positions <- batch:
			default:
				// stale batch still queued; replace it
				select {
				case <-r.positions:
				default:
				}
				select {
				case r.positions <- batch:
				default:
				}
			}
		}
	}
}
