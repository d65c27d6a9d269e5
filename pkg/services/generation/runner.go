package generation

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fortuna-labs/report-funnel/pkg/generator"
	"github.com/fortuna-labs/report-funnel/pkg/models/domain"
	reportsvc "github.com/fortuna-labs/report-funnel/pkg/services/report"
)

type RunnerConfig struct {
	PollInterval time.Duration
	MaxDuration  time.Duration
	// ProgressRate is estimate points per elapsed second. The estimate is
	// capped at 90 until the backend confirms completion.
	ProgressRate float64
}

// Runner drives one generation job: a best-effort trigger followed by a
// fixed-interval polling loop against the backend's status endpoint. The
// runner owns no UI concern; it reports through Snapshot and stops on
// context cancellation without applying late results.
type Runner struct {
	token     string
	generator generator.Client
	reports   reportsvc.Service
	config    RunnerConfig
	startedAt time.Time
	done      chan struct{}

	mu    sync.Mutex
	state domain.GenerationState
	err   error
}

func NewRunner(
	token string,
	gen generator.Client,
	reports reportsvc.Service,
	config RunnerConfig,
) *Runner {
	return &Runner{
		token:     token,
		generator: gen,
		reports:   reports,
		config:    config,
		startedAt: time.Now(),
		done:      make(chan struct{}),
		state:     domain.GenerationTriggered,
	}
}

func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Snapshot returns the observable job state. Progress climbs with elapsed
// time and only reaches 100 on confirmed completion.
func (r *Runner) Snapshot() domain.GenerationStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	elapsed := time.Since(r.startedAt)
	status := domain.GenerationStatus{
		State:   r.state,
		Elapsed: elapsed,
	}
	if r.err != nil {
		status.Error = r.err.Error()
	}

	switch r.state {
	case domain.GenerationCompleted:
		status.Progress = 100
	default:
		status.Progress = int(math.Min(90, elapsed.Seconds()*r.config.ProgressRate))
	}
	return status
}

func (r *Runner) Run(ctx context.Context) {
	logger := zerolog.Ctx(ctx)
	defer close(r.done)

	// Fire-and-forget: the trigger ack is not the source of truth, so a
	// failed request only gets logged and the status loop decides.
	if err := r.generator.Trigger(ctx, r.token); err != nil {
		logger.Warn().Err(err).Msg("generation trigger request failed; polling anyway")
	}
	r.setState(ctx, domain.GenerationPolling, nil)

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("generation polling cancelled")
			return
		case <-ticker.C:
			elapsed := time.Since(r.startedAt)
			if elapsed > r.config.MaxDuration {
				// Only client-side observation stops; the backend job
				// is left untouched.
				r.setState(ctx, domain.GenerationFailed, &domain.TimeoutError{Elapsed: elapsed})
				return
			}

			completed, err := r.generator.Status(ctx, r.token)
			if err != nil {
				// A failed poll is not a failed job, and never a failed
				// payment.
				logger.Warn().Err(err).Msg("generation status poll failed")
				continue
			}
			if !completed {
				continue
			}

			sections, err := r.generator.Fetch(ctx, r.token)
			if err != nil {
				logger.Warn().Err(err).Msg("failed to fetch generated report")
				continue
			}
			if ctx.Err() != nil {
				// Cancelled while the fetch was in flight; drop the
				// result instead of writing after teardown.
				return
			}
			if err := r.reports.MergeGenerated(ctx, r.token, sections); err != nil {
				logger.Error().Err(err).Msg("failed to merge generated report")
				continue
			}

			r.setState(ctx, domain.GenerationCompleted, nil)
			logger.Info().Dur("elapsed", time.Since(r.startedAt)).Msg("generation completed")
			return
		}
	}
}

// setState applies a transition unless the job was cancelled or already
// reached a terminal state. This is the guard that keeps late poll results
// from mutating state after the consumer stopped caring.
func (r *Runner) setState(ctx context.Context, state domain.GenerationState, err error) {
	if ctx.Err() != nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == domain.GenerationCompleted || r.state == domain.GenerationFailed {
		return
	}
	r.state = state
	r.err = err
}
