package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// RunScheduler déclenche le pipeline à intervalle fixe (mode serveur).
// Best-effort: un tick pendant un run en cours est simplement ignoré.
type RunScheduler struct {
	logger   zerolog.Logger
	pipeline *Pipeline

	Interval time.Duration
}

func NewRunScheduler(logger zerolog.Logger, pipeline *Pipeline, interval time.Duration) *RunScheduler {
	return &RunScheduler{logger: logger, pipeline: pipeline, Interval: interval}
}

func (sch *RunScheduler) Run(ctx context.Context) {
	if sch.Interval <= 0 {
		return
	}
	ticker := time.NewTicker(sch.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sch.logger.Info().Msg("run scheduler stopped")
			return
		case <-ticker.C:
			if _, err := sch.pipeline.Run(ctx); err != nil {
				if errors.Is(err, ErrRunInProgress) {
					sch.logger.Warn().Msg("scheduled run skipped, previous run still going")
					continue
				}
				sch.logger.Error().Err(err).Msg("scheduled run failed")
			}
		}
	}
}
