package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andersoncassiani/chatsuite/internal/domain"
)

// fakeRunner is a simple test double for batchRunner.
type fakeRunner struct {
	resultToReturn *domain.BatchResult
	errToReturn    error

	calls []runCall
}

type runCall struct {
	Consume bool
	DryRun  bool
}

func (f *fakeRunner) RunBatch(ctx context.Context, consume, dryRun bool) (*domain.BatchResult, error) {
	f.calls = append(f.calls, runCall{Consume: consume, DryRun: dryRun})
	if f.errToReturn != nil {
		return nil, f.errToReturn
	}
	return f.resultToReturn, nil
}

func TestScheduler_CheckTasks_MixedResults(t *testing.T) {
	ctx := context.Background()

	runner := &fakeRunner{
		resultToReturn: &domain.BatchResult{Processed: 3, Sent: 2, Failed: 1},
	}
	s := &Scheduler{
		notifications: runner,
		interval:      time.Minute,
	}

	// Set some alert config but keep alertWebhook empty so no HTTP calls
	s.alertThreshold = 3
	s.alertWebhook = ""

	s.checkTasks(ctx)

	status := s.GetStatus()
	if status.NotificationsSent != 2 {
		t.Errorf("expected NotificationsSent=2, got %d", status.NotificationsSent)
	}
	if status.RunsCount != 1 {
		t.Errorf("expected RunsCount=1, got %d", status.RunsCount)
	}
	if status.ConsecutiveAllFailCount != 0 {
		t.Errorf("expected ConsecutiveAllFailCount=0, got %d", status.ConsecutiveAllFailCount)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected 1 call to RunBatch, got %d", len(runner.calls))
	}
	if !runner.calls[0].Consume {
		t.Errorf("expected scheduler to consume tasks")
	}
	if runner.calls[0].DryRun {
		t.Errorf("expected scheduler not to dry-run")
	}
}

func TestScheduler_CheckTasks_AllFailIncrementsCounter(t *testing.T) {
	ctx := context.Background()

	runner := &fakeRunner{
		resultToReturn: &domain.BatchResult{Processed: 2, Sent: 0, Failed: 2},
	}
	s := &Scheduler{
		notifications:  runner,
		interval:       time.Minute,
		alertThreshold: 5,
	}

	s.checkTasks(ctx)
	s.checkTasks(ctx)

	status := s.GetStatus()
	if status.ConsecutiveAllFailCount != 2 {
		t.Errorf("expected ConsecutiveAllFailCount=2, got %d", status.ConsecutiveAllFailCount)
	}
	if status.NotificationsSent != 0 {
		t.Errorf("expected NotificationsSent=0, got %d", status.NotificationsSent)
	}
	if status.RunsCount != 2 {
		t.Errorf("expected RunsCount=2, got %d", status.RunsCount)
	}
}

func TestScheduler_CheckTasks_SuccessResetsCounter(t *testing.T) {
	ctx := context.Background()

	runner := &fakeRunner{
		resultToReturn: &domain.BatchResult{Processed: 1, Sent: 0, Failed: 1},
	}
	s := &Scheduler{
		notifications:  runner,
		interval:       time.Minute,
		alertThreshold: 5,
	}

	s.checkTasks(ctx)
	if got := s.GetStatus().ConsecutiveAllFailCount; got != 1 {
		t.Fatalf("expected ConsecutiveAllFailCount=1, got %d", got)
	}

	runner.resultToReturn = &domain.BatchResult{Processed: 1, Sent: 1, Failed: 0}
	s.checkTasks(ctx)

	if got := s.GetStatus().ConsecutiveAllFailCount; got != 0 {
		t.Errorf("expected ConsecutiveAllFailCount reset to 0, got %d", got)
	}
}

func TestScheduler_CheckTasks_EmptyBatchDoesNotTouchCounter(t *testing.T) {
	ctx := context.Background()

	runner := &fakeRunner{
		resultToReturn: &domain.BatchResult{Processed: 0},
	}
	s := &Scheduler{
		notifications:           runner,
		interval:                time.Minute,
		consecutiveAllFailCount: 2,
	}

	s.checkTasks(ctx)

	if got := s.GetStatus().ConsecutiveAllFailCount; got != 2 {
		t.Errorf("expected ConsecutiveAllFailCount to stay at 2, got %d", got)
	}
}

func TestScheduler_CheckTasks_RunError(t *testing.T) {
	ctx := context.Background()

	runner := &fakeRunner{errToReturn: errors.New("source unavailable")}
	s := &Scheduler{
		notifications: runner,
		interval:      time.Minute,
	}

	s.checkTasks(ctx)

	status := s.GetStatus()
	if status.RunsCount != 1 {
		t.Errorf("expected RunsCount=1 even when run fails, got %d", status.RunsCount)
	}
	if status.NotificationsSent != 0 {
		t.Errorf("expected NotificationsSent=0, got %d", status.NotificationsSent)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	ctx := context.Background()

	runner := &fakeRunner{resultToReturn: &domain.BatchResult{}}
	s := NewScheduler(runner, time.Hour, "", 0)

	if s.IsRunning() {
		t.Fatalf("scheduler should not be running before Start")
	}

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if !s.IsRunning() {
		t.Fatalf("scheduler should be running after Start")
	}

	// Starting again is a no-op.
	if err := s.Start(ctx); err != nil {
		t.Fatalf("second Start returned error: %v", err)
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	if s.IsRunning() {
		t.Fatalf("scheduler should not be running after Stop")
	}

	// Stopping again is a no-op.
	if err := s.Stop(); err != nil {
		t.Fatalf("second Stop returned error: %v", err)
	}

	// The immediate run on Start should have called the runner at least once.
	if len(runner.calls) == 0 {
		t.Errorf("expected at least one RunBatch call from the startup run")
	}
}

func TestScheduler_StartWithInterval(t *testing.T) {
	ctx := context.Background()

	runner := &fakeRunner{resultToReturn: &domain.BatchResult{}}
	s := NewScheduler(runner, time.Hour, "", 0)

	if err := s.StartWithInterval(ctx, 30); err != nil {
		t.Fatalf("StartWithInterval returned error: %v", err)
	}
	defer func() {
		if err := s.Stop(); err != nil {
			t.Fatalf("Stop returned error: %v", err)
		}
	}()

	if got := s.GetStatus().Interval; got != 30*time.Minute {
		t.Errorf("expected interval 30m, got %v", got)
	}
}
