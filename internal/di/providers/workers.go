package providers

import (
	"context"
	"sync"
	"time"

	"github.com/samber/do/v2"

	"github.com/readtrack/readtrack-server/internal/config"
	"github.com/readtrack/readtrack-server/internal/logger"
	"github.com/readtrack/readtrack-server/internal/service"
)

// RollingWindowJob periodically recomputes every user's 7 and 30 day
// reading time.
type RollingWindowJob struct {
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Shutdown implements do.Shutdownable. It waits for an in-flight run to
// observe the cancellation.
func (j *RollingWindowJob) Shutdown() error {
	j.cancel()
	j.wg.Wait()
	return nil
}

// ProvideRollingWindowJob starts the periodic recompute.
func ProvideRollingWindowJob(i do.Injector) (*RollingWindowJob, error) {
	cfg := do.MustInvoke[*config.Config](i)
	statsService := do.MustInvoke[*service.StatsService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())
	job := &RollingWindowJob{cancel: cancel}

	run := func() {
		report, err := statsService.RecomputeRollingWindows(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Warn("Rolling window recompute failed", "error", err)
			}
			return
		}
		if report.Failed > 0 {
			log.Warn("Rolling window recompute finished with failures",
				"run_id", report.RunID,
				"processed", report.Processed,
				"failed", report.Failed,
			)
		}
	}

	job.wg.Add(1)
	go func() {
		defer job.wg.Done()

		ticker := time.NewTicker(cfg.Stats.RecomputeInterval)
		defer ticker.Stop()

		if cfg.Stats.RecomputeOnStart {
			run()
		}

		for {
			select {
			case <-ticker.C:
				run()
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Rolling window job started",
		"interval", cfg.Stats.RecomputeInterval,
		"run_on_start", cfg.Stats.RecomputeOnStart,
	)

	return job, nil
}
