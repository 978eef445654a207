package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/andersoncassiani/chatsuite/internal/domain"
	"github.com/andersoncassiani/chatsuite/pkg/logger"
)

// batchRunner is a minimal internal interface for the scheduler. It matches
// the RunBatch method of NotificationService and lets us unit test the
// scheduler with a small fake implementation.
type batchRunner interface {
	RunBatch(ctx context.Context, consume, dryRun bool) (*domain.BatchResult, error)
}

// Scheduler periodically consumes the task queue and notifies assignees,
// the always-on counterpart of the operator-triggered batch run.
type Scheduler struct {
	notifications  batchRunner
	interval       time.Duration
	alertWebhook   string
	alertThreshold int // consecutive all-fail runs before alerting

	lastAlertSentAt time.Time

	// Internal state
	running  bool
	stopChan chan struct{}
	doneChan chan struct{}
	mu       sync.RWMutex

	// Statistics
	lastRunAt         time.Time
	notificationsSent int64
	runsCount         int64

	consecutiveAllFailCount int
}

func NewScheduler(notifications batchRunner, interval time.Duration, alertWebhook string, alertThreshold int) *Scheduler {
	return &Scheduler{
		notifications:  notifications,
		interval:       interval,
		alertWebhook:   alertWebhook,
		alertThreshold: alertThreshold,
		running:        false,
	}
}

func (s *Scheduler) StartWithInterval(ctx context.Context, intervalMinutes int) error {
	if intervalMinutes <= 0 {
		intervalMinutes = 15
	}

	s.mu.Lock()
	s.interval = time.Duration(intervalMinutes) * time.Minute
	s.consecutiveAllFailCount = 0
	s.mu.Unlock()

	return s.Start(ctx)
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()

	if s.running {
		s.mu.Unlock()
		logger.Warnf("Scheduler is already running")
		return nil
	}

	s.running = true
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	s.mu.Unlock()

	logger.Infof("Starting task-check scheduler with interval: %v", s.interval)

	go s.run(ctx)

	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneChan)

	s.checkTasks(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Infof("Scheduler running. Next task check in %v", s.interval)

	for {
		select {
		case <-ticker.C:
			s.checkTasks(ctx)
			logger.Debugf("Next task check in %v", s.interval)

		case <-s.stopChan:
			logger.Warnf("Scheduler received stop signal")
			return

		case <-ctx.Done():
			logger.Warnf("Scheduler context cancelled")
			return
		}
	}
}

func (s *Scheduler) checkTasks(ctx context.Context) {
	s.mu.Lock()
	s.lastRunAt = time.Now()
	s.runsCount++
	runNumber := s.runsCount
	alertWebhook := s.alertWebhook
	alertThreshold := s.alertThreshold
	s.mu.Unlock()

	logger.Infof("[Run #%d] Checking high-priority tasks at %s", runNumber, s.lastRunAt.Format(time.RFC3339))

	result, err := s.notifications.RunBatch(ctx, true, false)
	if err != nil {
		logger.Errorf("[Run #%d] Error running notification batch: %v", runNumber, err)
		return
	}

	if result.Processed == 0 {
		logger.Debugf("[Run #%d] No pending tasks", runNumber)
		return
	}

	allFailed := result.Failed > 0 && result.Sent == 0

	s.mu.Lock()
	s.notificationsSent += int64(result.Sent)

	if allFailed {
		s.consecutiveAllFailCount++
		logger.Warnf("[Run #%d] All %d sends failed (consecutive count: %d/%d)",
			runNumber, result.Failed, s.consecutiveAllFailCount, alertThreshold)

		if s.consecutiveAllFailCount >= alertThreshold && alertThreshold > 0 && alertWebhook != "" {
			go s.sendAlert(alertWebhook, runNumber, s.consecutiveAllFailCount, result.Failed)
		}
	} else {
		if s.consecutiveAllFailCount > 0 {
			logger.Debugf(
				"[Run #%d] Resetting consecutive failure count (was: %d)",
				runNumber,
				s.consecutiveAllFailCount,
			)
		}
		s.consecutiveAllFailCount = 0
	}
	s.mu.Unlock()

	logger.Infof("[Run #%d] Processed %d tasks: %d sent, %d failed, %d skipped",
		runNumber, result.Processed, result.Sent, result.Failed, result.Skipped)
}

func (s *Scheduler) Stop() error {
	s.mu.Lock()

	if !s.running {
		s.mu.Unlock()
		logger.Warnf("Scheduler is not running")
		return nil
	}

	s.running = false
	stopChan := s.stopChan
	doneChan := s.doneChan
	s.mu.Unlock()

	close(stopChan)

	// Wait for goroutine to finish
	<-doneChan

	logger.Infof("Scheduler stopped")
	return nil
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Scheduler) GetStatus() SchedulerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := SchedulerStatus{
		Running:                 s.running,
		LastRunAt:               s.lastRunAt,
		NotificationsSent:       s.notificationsSent,
		RunsCount:               s.runsCount,
		Interval:                s.interval,
		ConsecutiveAllFailCount: s.consecutiveAllFailCount,
		LastAlertSentAt:         s.lastAlertSentAt,
	}

	if s.running && !s.lastRunAt.IsZero() {
		status.NextRunAt = s.lastRunAt.Add(s.interval)
	}

	return status
}

func (s *Scheduler) sendAlert(webhookURL string, runNumber int64, consecutiveFailures int, failedInBatch int) {
	alertPayload := map[string]any{
		"alert":               "consecutive_all_fail",
		"runNumber":           runNumber,
		"consecutiveFailures": consecutiveFailures,
		"failedInBatch":       failedInBatch,
		"timestamp":           time.Now().Format(time.RFC3339),
		"message": fmt.Sprintf(
			"All %d task notifications failed for %d consecutive runs",
			failedInBatch,
			consecutiveFailures,
		),
	}

	jsonData, err := json.Marshal(alertPayload)
	if err != nil {
		logger.Errorf("Failed to marshal alert payload: %v", err)
		return
	}

	resp, err := http.Post(webhookURL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		logger.Errorf("Failed to send alert to webhook: %v", err)
		return
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warnf("Failed to close alert webhook response body: %v", err)
		}
	}()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent {
		s.mu.Lock()
		s.lastAlertSentAt = time.Now()
		s.mu.Unlock()
		logger.Infof("Alert sent successfully to %s (consecutive failures: %d)", webhookURL, consecutiveFailures)
	} else {
		logger.Warnf("Alert webhook returned status %d", resp.StatusCode)
	}
}

type SchedulerStatus struct {
	Running                 bool          `json:"running"`
	LastRunAt               time.Time     `json:"lastRunAt,omitempty"`
	NextRunAt               time.Time     `json:"nextRunAt,omitempty"`
	NotificationsSent       int64         `json:"notificationsSent"`
	RunsCount               int64         `json:"runsCount"`
	Interval                time.Duration `json:"interval"`
	ConsecutiveAllFailCount int           `json:"consecutiveAllFailCount"`
	LastAlertSentAt         time.Time     `json:"lastAlertSentAt,omitempty"`
}
