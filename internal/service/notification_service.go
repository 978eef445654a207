package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andersoncassiani/chatsuite/internal/directory"
	"github.com/andersoncassiani/chatsuite/internal/domain"
	"github.com/andersoncassiani/chatsuite/pkg/logger"
	"github.com/andersoncassiani/chatsuite/pkg/redis"
)

// ErrBatchInProgress is returned when a batch run is requested while another
// one holds the run lock.
var ErrBatchInProgress = errors.New("a notification batch is already running")

// ErrAssigneeNotFound is returned by manual sends when the assignee has no
// directory entry. In batch runs the task is silently counted as skipped.
var ErrAssigneeNotFound = errors.New("assignee has no phone number configured")

// ErrNotificationNotFound is returned when a record id does not exist.
var ErrNotificationNotFound = errors.New("notification not found")

// ErrNotResendable is returned when resending a record that is neither
// failed nor stuck in pending.
var ErrNotResendable = errors.New("only failed or pending notifications can be resent")

// Small internal interfaces so we can test without touching real DB/Redis/Twilio.
type notificationRepository interface {
	Create(ctx context.Context, n *domain.TaskNotification) (int64, error)
	MarkSent(ctx context.Context, id int64, twilioSID string, sentAt time.Time) error
	MarkFailed(ctx context.Context, id int64, errorMessage string) error
	GetByID(ctx context.Context, id int64) (*domain.TaskNotification, error)
	GetAll(ctx context.Context, status *domain.NotificationStatus, asignado string, page, pageSize int) ([]domain.TaskNotification, int64, error)
	GetStats(ctx context.Context) (*domain.NotificationStats, error)
	Delete(ctx context.Context, id int64) error
	AcquireBatchLock(ctx context.Context) (release func() error, ok bool, err error)
}

type templateSender interface {
	SendTemplate(ctx context.Context, to string, variables map[string]string) (string, error)
}

type taskFetcher interface {
	FetchTasks(ctx context.Context, consume bool) (*domain.TaskBatch, error)
}

type sentCache interface {
	CacheSentNotification(ctx context.Context, dbID int64, twilioSID string, sentAt time.Time) error
	GetAllCachedNotifications(ctx context.Context) (map[int64]*domain.SentNotificationCache, error)
}

// NotificationService drives the pending-task -> persisted-record ->
// outbound-send -> status-update pipeline.
type NotificationService struct {
	repo      notificationRepository
	sender    templateSender
	tasks     taskFetcher
	cache     sentCache
	directory *directory.Directory
	sendDelay time.Duration
}

func NewNotificationService(
	repo notificationRepository,
	sender templateSender,
	tasks taskFetcher,
	cache sentCache,
	dir *directory.Directory,
	sendDelay time.Duration,
) *NotificationService {
	return &NotificationService{
		repo:      repo,
		sender:    sender,
		tasks:     tasks,
		cache:     cache,
		directory: dir,
		sendDelay: sendDelay,
	}
}

// ManualTaskInput is an operator-entered notification with no upstream task.
type ManualTaskInput struct {
	Titulo      string
	Descripcion string
	Asignado    string
	Creador     string
	Proyecto    string
}

// RunBatch fetches pending tasks and notifies each assignee. A fetch error
// aborts with zero side effects; a single task's send failure is recorded
// on its row and never stops the rest of the batch. With dryRun the tasks
// are resolved and counted but nothing is persisted or sent.
func (s *NotificationService) RunBatch(ctx context.Context, consume, dryRun bool) (*domain.BatchResult, error) {
	if !dryRun {
		release, ok, err := s.repo.AcquireBatchLock(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrBatchInProgress
		}
		defer func() {
			if err := release(); err != nil {
				logger.Warnf("Failed to release batch lock: %v", err)
			}
		}()
	}

	batch, err := s.tasks.FetchTasks(ctx, consume && !dryRun)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	result := &domain.BatchResult{DryRun: dryRun, Details: []string{}}

	if batch.Count == 0 || len(batch.Tasks) == 0 {
		logger.Infof("No pending high-priority tasks")
		return result, nil
	}

	logger.Infof("Processing %d high-priority tasks (consume=%v, dryRun=%v)", len(batch.Tasks), consume, dryRun)

	for i, task := range batch.Tasks {
		result.Processed++

		asignado := task.Asignado
		if asignado == "" {
			asignado = "Sin asignar"
		}

		phone, found := s.directory.Lookup(asignado)
		if !found {
			result.Skipped++
			result.Details = append(result.Details,
				fmt.Sprintf("⚠ %s → '%s' no tiene número configurado", task.Titulo, asignado))
			continue
		}

		if dryRun {
			result.Sent++
			result.Details = append(result.Details,
				fmt.Sprintf("[dry-run] %s → %s (%s)", task.Titulo, asignado, phone))
			continue
		}

		outcome := s.deliverTask(ctx, &task, asignado, phone)
		if outcome.sent {
			result.Sent++
			result.Details = append(result.Details,
				fmt.Sprintf("✓ %s → %s", task.Titulo, asignado))
		} else {
			result.Failed++
			result.Details = append(result.Details,
				fmt.Sprintf("✗ %s → %s: %s", task.Titulo, asignado, outcome.errMsg))
		}

		// Deliberate throttle between sends, for the provider's rate limits.
		if i < len(batch.Tasks)-1 {
			if err := sleepCtx(ctx, s.sendDelay); err != nil {
				return result, err
			}
		}
	}

	logger.Infof("Batch completed: %d sent, %d failed, %d skipped",
		result.Sent, result.Failed, result.Skipped)

	return result, nil
}

type deliverOutcome struct {
	sent   bool
	errMsg string
	id     int64
}

// deliverTask persists a pending record, attempts the send, and updates the
// record from the outcome. Send errors are captured on the record, never
// returned.
func (s *NotificationService) deliverTask(ctx context.Context, task *domain.Task, asignado, phone string) deliverOutcome {
	record := notificationFromTask(task, asignado, phone)

	id, err := s.repo.Create(ctx, record)
	if err != nil {
		logger.Errorf("Failed to create notification record for task %q: %v", task.Titulo, err)
		return deliverOutcome{errMsg: err.Error()}
	}

	sid, sendErr := s.sender.SendTemplate(ctx, phone, templateVars(task))
	if sendErr != nil {
		logger.Errorf("Failed to send notification %d: %v", id, sendErr)
		if markErr := s.repo.MarkFailed(ctx, id, sendErr.Error()); markErr != nil {
			logger.Errorf("Failed to mark notification %d as failed: %v", id, markErr)
		}
		return deliverOutcome{errMsg: sendErr.Error(), id: id}
	}

	sentAt := time.Now()
	if err := s.repo.MarkSent(ctx, id, sid, sentAt); err != nil {
		logger.Errorf("Failed to mark notification %d as sent: %v", id, err)
		return deliverOutcome{errMsg: err.Error(), id: id}
	}

	if s.cache != nil {
		if err := s.cache.CacheSentNotification(ctx, id, sid, sentAt); err != nil && !errors.Is(err, redis.ErrCacheDisabled) {
			logger.Warnf("Failed to cache notification %d to Redis: %v", id, err)
		}
	}

	logger.Infof("Notification %d sent to %s (sid: %s)", id, phone, sid)

	return deliverOutcome{sent: true, id: id}
}

// Peek previews the upstream queue without consuming it, annotating each
// task with the number a real run would target.
func (s *NotificationService) Peek(ctx context.Context) ([]domain.TaskPreview, int, error) {
	batch, err := s.tasks.FetchTasks(ctx, false)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	previews := make([]domain.TaskPreview, 0, len(batch.Tasks))
	for _, task := range batch.Tasks {
		phone, _ := s.directory.Lookup(task.Asignado)
		previews = append(previews, domain.TaskPreview{Task: task, Phone: phone})
	}

	return previews, batch.Count, nil
}

// SendManual persists and sends an operator-entered notification through
// the same persist -> send -> update path as a batch task, without the
// batch delay logic.
func (s *NotificationService) SendManual(ctx context.Context, input ManualTaskInput) (*domain.TaskNotification, error) {
	phone, found := s.directory.Lookup(input.Asignado)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrAssigneeNotFound, input.Asignado)
	}

	task := domain.Task{
		Titulo:      input.Titulo,
		Descripcion: input.Descripcion,
		Prioridad:   "Alta",
		Asignado:    input.Asignado,
		Creador:     input.Creador,
		Proyecto:    input.Proyecto,
	}

	outcome := s.deliverTask(ctx, &task, input.Asignado, phone)
	if outcome.id == 0 {
		return nil, fmt.Errorf("failed to persist notification: %s", outcome.errMsg)
	}

	return s.repo.GetByID(ctx, outcome.id)
}

// Resend re-attempts delivery of an existing failed record (or one left
// pending by a crash) using its stored fields and previously resolved
// number. The same row is updated; no second record is created, and the
// assignee is not re-resolved.
func (s *NotificationService) Resend(ctx context.Context, id int64) (*domain.TaskNotification, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNotificationNotFound
	}
	if record.Status != domain.StatusFailed && record.Status != domain.StatusPending {
		return nil, ErrNotResendable
	}

	task := taskFromNotification(record)

	sid, sendErr := s.sender.SendTemplate(ctx, record.EnviadoA, templateVars(&task))
	if sendErr != nil {
		logger.Errorf("Failed to resend notification %d: %v", id, sendErr)
		if markErr := s.repo.MarkFailed(ctx, id, sendErr.Error()); markErr != nil {
			logger.Errorf("Failed to mark notification %d as failed: %v", id, markErr)
		}
		return s.repo.GetByID(ctx, id)
	}

	sentAt := time.Now()
	if err := s.repo.MarkSent(ctx, id, sid, sentAt); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheSentNotification(ctx, id, sid, sentAt); err != nil && !errors.Is(err, redis.ErrCacheDisabled) {
			logger.Warnf("Failed to cache notification %d to Redis: %v", id, err)
		}
	}

	logger.Infof("Notification %d resent to %s (sid: %s)", id, record.EnviadoA, sid)

	return s.repo.GetByID(ctx, id)
}

func (s *NotificationService) GetAll(
	ctx context.Context,
	status *domain.NotificationStatus,
	asignado string,
	page, pageSize int,
) ([]domain.TaskNotification, int64, error) {
	return s.repo.GetAll(ctx, status, asignado, page, pageSize)
}

func (s *NotificationService) GetStats(ctx context.Context) (*domain.NotificationStats, error) {
	return s.repo.GetStats(ctx)
}

func (s *NotificationService) Delete(ctx context.Context, id int64) error {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrNotificationNotFound
	}
	return s.repo.Delete(ctx, id)
}

func (s *NotificationService) GetCachedNotifications(ctx context.Context) (map[int64]*domain.SentNotificationCache, error) {
	if s.cache == nil {
		return nil, fmt.Errorf("redis client not configured")
	}
	return s.cache.GetAllCachedNotifications(ctx)
}

// templateVars maps task fields to the content template's numbered slots.
func templateVars(task *domain.Task) map[string]string {
	return map[string]string{
		"1": orDefault(task.Asignado, "Sin asignar"),
		"2": orDefault(task.Creador, "Sistema"),
		"3": orDefault(task.Prioridad, "Alta"),
		"4": orDefault(task.Titulo, "Sin título"),
		"5": orDefault(task.Descripcion, "Sin descripción"),
	}
}

func notificationFromTask(task *domain.Task, asignado, phone string) *domain.TaskNotification {
	n := &domain.TaskNotification{
		Titulo:    orDefault(task.Titulo, "Sin título"),
		Prioridad: orDefault(task.Prioridad, "Alta"),
		Asignado:  asignado,
		Creador:   orDefault(task.Creador, "Sistema"),
		EnviadoA:  phone,
		Status:    domain.StatusPending,
	}

	if task.ID != "" {
		n.TaskID = &task.ID
	}
	if task.Descripcion != "" {
		n.Descripcion = &task.Descripcion
	}
	if task.Proyecto != "" {
		n.Proyecto = &task.Proyecto
	}
	if task.FechaLimite != "" {
		if due, err := time.Parse("2006-01-02", task.FechaLimite); err == nil {
			n.FechaLimite = &due
		} else {
			logger.Warnf("Ignoring unparseable fechaLimite %q for task %q", task.FechaLimite, task.Titulo)
		}
	}

	return n
}

func taskFromNotification(record *domain.TaskNotification) domain.Task {
	task := domain.Task{
		Titulo:    record.Titulo,
		Prioridad: record.Prioridad,
		Asignado:  record.Asignado,
		Creador:   record.Creador,
	}
	if record.Descripcion != nil {
		task.Descripcion = *record.Descripcion
	}
	if record.Proyecto != nil {
		task.Proyecto = *record.Proyecto
	}
	return task
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// sleepCtx pauses for d unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
