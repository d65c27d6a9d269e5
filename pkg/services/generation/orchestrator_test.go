package generation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna-labs/report-funnel/pkg/models/domain"
	"github.com/fortuna-labs/report-funnel/pkg/models/store"
)

// fakeGenerator scripts the backend's completion flag per status call. Once
// the script runs out the last answer repeats. blockAfter > 0 makes every
// later status call wait on the gate, to simulate a poll in flight.
type fakeGenerator struct {
	mu           sync.Mutex
	script       []bool
	sections     map[string]string
	blockAfter   int
	gate         chan struct{}
	triggerCalls int
	statusCalls  int
	fetchCalls   int
}

func (f *fakeGenerator) Trigger(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggerCalls++
	return nil
}

func (f *fakeGenerator) Status(_ context.Context, _ string) (bool, error) {
	f.mu.Lock()
	f.statusCalls++
	call := f.statusCalls
	var answer bool
	if len(f.script) == 0 {
		answer = false
	} else if call <= len(f.script) {
		answer = f.script[call-1]
	} else {
		answer = f.script[len(f.script)-1]
	}
	gate := f.gate
	blocked := f.blockAfter > 0 && call > f.blockAfter
	f.mu.Unlock()

	if blocked {
		<-gate
	}
	return answer, nil
}

func (f *fakeGenerator) Fetch(_ context.Context, _ string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	return f.sections, nil
}

func (f *fakeGenerator) counts() (trigger, status, fetch int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.triggerCalls, f.statusCalls, f.fetchCalls
}

// fakeReports is an in-memory stand-in for the report service.
type fakeReports struct {
	mu         sync.Mutex
	merged     map[string]map[string]string
	mergeCalls int
}

func newFakeReports() *fakeReports {
	return &fakeReports{merged: make(map[string]map[string]string)}
}

func (f *fakeReports) EnsureBasic(_ context.Context, sess *domain.Session) (*domain.Report, error) {
	return &domain.Report{AccessToken: sess.AccessToken}, nil
}

func (f *fakeReports) View(_ context.Context, sess *domain.Session) (*domain.Report, domain.Reveal, error) {
	return &domain.Report{AccessToken: sess.AccessToken}, domain.Reveal{}, nil
}

func (f *fakeReports) MergeGenerated(_ context.Context, accessToken string, sections map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mergeCalls++
	f.merged[accessToken] = sections
	return nil
}

func (f *fakeReports) Completed(_ context.Context, accessToken string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.merged[accessToken]) > 0, nil
}

func (f *fakeReports) merges() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mergeCalls
}

// fakeIntents only answers HasVerified and records any mutation attempt.
type fakeIntents struct {
	mu        sync.Mutex
	verified  bool
	mutations int
}

func (f *fakeIntents) Create(_ context.Context, _ *store.PaymentIntent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations++
	return nil
}

func (f *fakeIntents) GetByReference(_ context.Context, _ string) (*store.PaymentIntent, error) {
	return nil, nil
}

func (f *fakeIntents) FindPending(_ context.Context, _, _ string) (*store.PaymentIntent, error) {
	return nil, nil
}

func (f *fakeIntents) HasVerified(_ context.Context, _, _ string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verified, nil
}

func (f *fakeIntents) MarkVerified(_ context.Context, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations++
	return nil
}

func (f *fakeIntents) MarkFailed(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations++
	return nil
}

func (f *fakeIntents) mutationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mutations
}

func fastConfig() RunnerConfig {
	return RunnerConfig{
		PollInterval: 2 * time.Millisecond,
		MaxDuration:  time.Second,
		ProgressRate: 1.5,
	}
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testCtx() context.Context {
	logger := testLogger()
	return logger.WithContext(context.Background())
}

func sessionFixture() *domain.Session {
	return &domain.Session{AccessToken: "tok-1", ProfileID: "profile-1"}
}

func TestTrigger_RequiresVerifiedPayment(t *testing.T) {
	gen := &fakeGenerator{}
	o := NewOrchestrator(gen, newFakeReports(), &fakeIntents{verified: false}, fastConfig(), testLogger())
	defer o.Shutdown()

	_, err := o.Trigger(testCtx(), sessionFixture())

	var payErr *domain.PaymentError
	require.ErrorAs(t, err, &payErr)

	// A failed payment never starts polling.
	trigger, status, _ := gen.counts()
	assert.Zero(t, trigger)
	assert.Zero(t, status)
}

func TestTrigger_PollsUntilCompleted(t *testing.T) {
	// One pre-trigger check plus three unfinished polls, then done.
	gen := &fakeGenerator{
		script:   []bool{false, false, false, false, true},
		sections: map[string]string{"destiny": "text"},
	}
	reports := newFakeReports()
	o := NewOrchestrator(gen, reports, &fakeIntents{verified: true}, fastConfig(), testLogger())
	defer o.Shutdown()

	status, err := o.Trigger(testCtx(), sessionFixture())
	require.NoError(t, err)
	assert.NotEqual(t, domain.GenerationCompleted, status.State)

	require.Eventually(t, func() bool {
		s, err := o.Status(testCtx(), "tok-1")
		return err == nil && s.State == domain.GenerationCompleted
	}, time.Second, time.Millisecond)

	s, err := o.Status(testCtx(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, 100, s.Progress)

	// The completed transition happened exactly once.
	assert.Equal(t, 1, reports.merges())
	trigger, _, _ := gen.counts()
	assert.Equal(t, 1, trigger)
}

func TestTrigger_IdempotentOnCompletedJob(t *testing.T) {
	gen := &fakeGenerator{
		script:   []bool{false, true},
		sections: map[string]string{"destiny": "text"},
	}
	reports := newFakeReports()
	o := NewOrchestrator(gen, reports, &fakeIntents{verified: true}, fastConfig(), testLogger())
	defer o.Shutdown()

	_, err := o.Trigger(testCtx(), sessionFixture())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		s, err := o.Status(testCtx(), "tok-1")
		return err == nil && s.State == domain.GenerationCompleted
	}, time.Second, time.Millisecond)

	triggerBefore, _, _ := gen.counts()

	status, err := o.Trigger(testCtx(), sessionFixture())
	require.NoError(t, err)
	assert.Equal(t, domain.GenerationCompleted, status.State)
	assert.Equal(t, 100, status.Progress)

	// No second generation request reached the backend.
	triggerAfter, _, _ := gen.counts()
	assert.Equal(t, triggerBefore, triggerAfter)
	assert.Equal(t, 1, reports.merges())
}

func TestCancel_LatePollResultIsDropped(t *testing.T) {
	gen := &fakeGenerator{
		script:     []bool{false, true},
		sections:   map[string]string{"destiny": "text"},
		blockAfter: 1,
		gate:       make(chan struct{}),
	}
	reports := newFakeReports()
	o := NewOrchestrator(gen, reports, &fakeIntents{verified: true}, fastConfig(), testLogger())
	defer o.Shutdown()

	_, err := o.Trigger(testCtx(), sessionFixture())
	require.NoError(t, err)

	// Wait until the first real poll is parked in flight.
	require.Eventually(t, func() bool {
		_, status, _ := gen.counts()
		return status >= 2
	}, time.Second, time.Millisecond)

	require.NoError(t, o.Cancel(testCtx(), "tok-1"))

	// Release the in-flight poll, which reports completion too late.
	close(gen.gate)
	time.Sleep(20 * time.Millisecond)

	assert.Zero(t, reports.merges(), "late poll result must not be applied")

	s, err := o.Status(testCtx(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, domain.GenerationIdle, s.State)
}

func TestRunner_TimesOutWithoutCompletion(t *testing.T) {
	gen := &fakeGenerator{script: []bool{false}}
	intents := &fakeIntents{verified: true}
	config := fastConfig()
	config.MaxDuration = 15 * time.Millisecond

	o := NewOrchestrator(gen, newFakeReports(), intents, config, testLogger())
	defer o.Shutdown()

	_, err := o.Trigger(testCtx(), sessionFixture())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		s, err := o.Status(testCtx(), "tok-1")
		return err == nil && s.State == domain.GenerationFailed
	}, time.Second, time.Millisecond)

	s, err := o.Status(testCtx(), "tok-1")
	require.NoError(t, err)
	assert.Contains(t, s.Error, "not completed")
	assert.Less(t, s.Progress, 100)

	// The payment record is untouched by the timeout.
	assert.Zero(t, intents.mutationCount())
}

func TestStatus_FallsBackToStoreWhenNoJobIsLive(t *testing.T) {
	reports := newFakeReports()
	o := NewOrchestrator(&fakeGenerator{}, reports, &fakeIntents{}, fastConfig(), testLogger())
	defer o.Shutdown()

	s, err := o.Status(testCtx(), "tok-unknown")
	require.NoError(t, err)
	assert.Equal(t, domain.GenerationIdle, s.State)

	require.NoError(t, reports.MergeGenerated(testCtx(), "tok-done", map[string]string{"destiny": "text"}))

	s, err = o.Status(testCtx(), "tok-done")
	require.NoError(t, err)
	assert.Equal(t, domain.GenerationCompleted, s.State)
	assert.Equal(t, 100, s.Progress)
}

func TestRunner_ProgressIsCappedBeforeCompletion(t *testing.T) {
	runner := NewRunner("tok-1", &fakeGenerator{}, newFakeReports(), RunnerConfig{
		PollInterval: time.Millisecond,
		MaxDuration:  time.Second,
		ProgressRate: 100000,
	})

	// Even with an absurd rate the estimate must not claim completion.
	time.Sleep(5 * time.Millisecond)
	s := runner.Snapshot()
	assert.LessOrEqual(t, s.Progress, 90)
	assert.NotEqual(t, domain.GenerationCompleted, s.State)
}
