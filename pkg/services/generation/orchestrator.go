// Package generation orchestrates the slow, asynchronous production of
// premium report content. Payment must be verified before anything is
// triggered, and the backend's status endpoint, not client-side state, is
// the authority on whether a job already ran.
package generation

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fortuna-labs/report-funnel/pkg/generator"
	"github.com/fortuna-labs/report-funnel/pkg/models/domain"
	reportsvc "github.com/fortuna-labs/report-funnel/pkg/services/report"
	paymentstore "github.com/fortuna-labs/report-funnel/pkg/store/duckdb/payment"
)

type Orchestrator interface {
	// Trigger starts generation for a paid session. Re-triggering a
	// completed job is a no-op that reports completion instead of queuing
	// a second run.
	Trigger(ctx context.Context, sess *domain.Session) (domain.GenerationStatus, error)
	Status(ctx context.Context, accessToken string) (domain.GenerationStatus, error)
	// Cancel stops client-side observation of a running job. The backend
	// job itself is left running.
	Cancel(ctx context.Context, accessToken string) error
	Shutdown()
}

type jobDescriptor struct {
	cancelFunc context.CancelFunc
	runner     *Runner
}

type DefaultOrchestrator struct {
	generator generator.Client
	reports   reportsvc.Service
	intents   paymentstore.Store
	config    RunnerConfig
	logger    zerolog.Logger

	mu   sync.Mutex
	jobs map[string]*jobDescriptor
}

func NewOrchestrator(
	gen generator.Client,
	reports reportsvc.Service,
	intents paymentstore.Store,
	config RunnerConfig,
	logger zerolog.Logger,
) *DefaultOrchestrator {
	return &DefaultOrchestrator{
		generator: gen,
		reports:   reports,
		intents:   intents,
		config:    config,
		logger:    logger,
		jobs:      make(map[string]*jobDescriptor),
	}
}

func (o *DefaultOrchestrator) Trigger(ctx context.Context, sess *domain.Session) (domain.GenerationStatus, error) {
	var none domain.GenerationStatus

	// Payment strictly precedes generation. This is checked here, not
	// assumed from the caller having gotten this far.
	paid, err := o.intents.HasVerified(ctx, sess.AccessToken, string(domain.TierBasic))
	if err != nil {
		return none, fmt.Errorf("failed to check payment: %w", err)
	}
	if !paid {
		return none, &domain.PaymentError{Reason: "payment must be verified before generation"}
	}

	// The report row must exist before the runner merges into it.
	if _, err := o.reports.EnsureBasic(ctx, sess); err != nil {
		return none, err
	}

	// The backend, not our job table, decides whether this already ran.
	completed, err := o.generator.Status(ctx, sess.AccessToken)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("pre-trigger status check failed; proceeding")
	}
	if completed {
		if err := o.adoptCompleted(ctx, sess.AccessToken); err != nil {
			return none, err
		}
		return domain.GenerationStatus{State: domain.GenerationCompleted, Progress: 100}, nil
	}

	o.mu.Lock()
	if job, ok := o.jobs[sess.AccessToken]; ok {
		snapshot := job.runner.Snapshot()
		if !terminal(snapshot.State) {
			o.mu.Unlock()
			return snapshot, nil
		}
		// A finished descriptor is replaced on re-trigger.
		job.cancelFunc()
	}

	runner := NewRunner(sess.AccessToken, o.generator, o.reports, o.config)
	runCtx, cancel := context.WithCancel(o.logger.WithContext(context.Background()))
	o.jobs[sess.AccessToken] = &jobDescriptor{cancelFunc: cancel, runner: runner}
	o.mu.Unlock()

	go runner.Run(runCtx)

	zerolog.Ctx(ctx).Info().
		Str("profile_id", sess.ProfileID).
		Msg("generation triggered")

	return runner.Snapshot(), nil
}

func (o *DefaultOrchestrator) Status(ctx context.Context, accessToken string) (domain.GenerationStatus, error) {
	o.mu.Lock()
	job, ok := o.jobs[accessToken]
	o.mu.Unlock()

	if ok {
		return job.runner.Snapshot(), nil
	}

	completed, err := o.reports.Completed(ctx, accessToken)
	if err != nil {
		return domain.GenerationStatus{}, err
	}
	if completed {
		return domain.GenerationStatus{State: domain.GenerationCompleted, Progress: 100}, nil
	}
	return domain.GenerationStatus{State: domain.GenerationIdle}, nil
}

func (o *DefaultOrchestrator) Cancel(_ context.Context, accessToken string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	job, ok := o.jobs[accessToken]
	if !ok {
		return nil
	}
	job.cancelFunc()
	delete(o.jobs, accessToken)
	return nil
}

// Shutdown cancels observation of every running job. Backend jobs keep
// running and are adopted by the status check on the next trigger.
func (o *DefaultOrchestrator) Shutdown() {
	o.mu.Lock()
	defer o.mu.Unlock()

	for token, job := range o.jobs {
		job.cancelFunc()
		delete(o.jobs, token)
	}
}

// adoptCompleted pulls an already-generated report into the store, covering
// jobs that finished while nobody was polling.
func (o *DefaultOrchestrator) adoptCompleted(ctx context.Context, accessToken string) error {
	merged, err := o.reports.Completed(ctx, accessToken)
	if err != nil {
		return err
	}
	if merged {
		return nil
	}

	sections, err := o.generator.Fetch(ctx, accessToken)
	if err != nil {
		return err
	}
	return o.reports.MergeGenerated(ctx, accessToken, sections)
}

func terminal(state domain.GenerationState) bool {
	return state == domain.GenerationCompleted || state == domain.GenerationFailed
}
