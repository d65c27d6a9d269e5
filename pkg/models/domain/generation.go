package domain

import "time"

type GenerationState string

const (
	GenerationIdle      GenerationState = "idle"
	GenerationTriggered GenerationState = "triggered"
	GenerationPolling   GenerationState = "polling"
	GenerationCompleted GenerationState = "completed"
	GenerationFailed    GenerationState = "failed"
)

// GenerationStatus is the observable state of a report generation job.
// Progress is an elapsed-time estimate capped below 100 until completion is
// confirmed by the backend, never a claim about real backend progress.
type GenerationStatus struct {
	State    GenerationState
	Progress int
	Elapsed  time.Duration
	Error    string
}

func (s GenerationStatus) Completed() bool {
	return s.State == GenerationCompleted
}
