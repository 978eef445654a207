package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/andersoncassiani/chatsuite/internal/domain"
)

// batchLockName keys the advisory lock that serializes notification batch
// runs. Two concurrent runs would otherwise duplicate records and sends.
const batchLockName = "chatsuite:task-batch"

// NotificationRepository handles database operations for task notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `id, task_id, titulo, descripcion, prioridad, asignado, creador,
		proyecto, fecha_limite, enviado_a, twilio_sid, status, error_message,
		sent_at, created_at, updated_at`

// Create inserts a new pending notification and returns its id.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.TaskNotification) (int64, error) {
	query := `
		INSERT INTO task_notifications
			(task_id, titulo, descripcion, prioridad, asignado, creador, proyecto,
			 fecha_limite, enviado_a, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`

	result, err := r.db.ExecContext(ctx, query,
		n.TaskID, n.Titulo, n.Descripcion, n.Prioridad, n.Asignado,
		n.Creador, n.Proyecto, n.FechaLimite, n.EnviadoA,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return id, nil
}

// MarkSent transitions a record to sent, recording the provider message id
// and clearing any previous failure reason (resends reuse the row).
func (r *NotificationRepository) MarkSent(ctx context.Context, id int64, twilioSID string, sentAt time.Time) error {
	query := `
		UPDATE task_notifications
		SET status = 'sent', twilio_sid = ?, sent_at = ?, error_message = NULL,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, twilioSID, sentAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification as sent: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("no notification found with id %d", id)
	}

	return nil
}

// MarkFailed transitions a record to failed with the verbatim upstream error.
func (r *NotificationRepository) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	query := `
		UPDATE task_notifications
		SET status = 'failed', error_message = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	if _, err := r.db.ExecContext(ctx, query, errorMessage, id); err != nil {
		return fmt.Errorf("failed to mark notification as failed: %w", err)
	}

	return nil
}

// GetByID returns one notification, or nil when it does not exist.
func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*domain.TaskNotification, error) {
	query := fmt.Sprintf("SELECT %s FROM task_notifications WHERE id = ?", notificationColumns)

	var n domain.TaskNotification
	if err := r.db.GetContext(ctx, &n, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return &n, nil
}

// GetAll returns notifications newest first with optional status and
// assignee filters.
func (r *NotificationRepository) GetAll(
	ctx context.Context,
	status *domain.NotificationStatus,
	asignado string,
	page, pageSize int,
) ([]domain.TaskNotification, int64, error) {
	offset := (page - 1) * pageSize

	where := "WHERE 1=1"
	args := []any{}

	if status != nil {
		where += " AND status = ?"
		args = append(args, *status)
	}
	if asignado != "" {
		where += " AND asignado LIKE ?"
		args = append(args, "%"+asignado+"%")
	}

	var totalCount int64
	countQuery := "SELECT COUNT(*) FROM task_notifications " + where
	if err := r.db.GetContext(ctx, &totalCount, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM task_notifications %s
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, notificationColumns, where)

	var notifications []domain.TaskNotification
	if err := r.db.SelectContext(ctx, &notifications, query, append(args, pageSize, offset)...); err != nil {
		return nil, 0, fmt.Errorf("failed to get notifications: %w", err)
	}

	return notifications, totalCount, nil
}

// GetStats returns record counts per status.
func (r *NotificationRepository) GetStats(ctx context.Context) (*domain.NotificationStats, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0)   AS pending,
			COALESCE(SUM(CASE WHEN status = 'sent' THEN 1 ELSE 0 END), 0)      AS sent,
			COALESCE(SUM(CASE WHEN status = 'delivered' THEN 1 ELSE 0 END), 0) AS delivered,
			COALESCE(SUM(CASE WHEN status = 'read' THEN 1 ELSE 0 END), 0)      AS ` + "`read`" + `,
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0)    AS failed
		FROM task_notifications
	`

	var stats domain.NotificationStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to get notification stats: %w", err)
	}

	return &stats, nil
}

// Delete removes a notification. Records are only ever deleted by explicit
// operator action.
func (r *NotificationRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM task_notifications WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("no notification found with id %d", id)
	}

	return nil
}

// AcquireBatchLock takes the batch advisory lock without waiting. MySQL
// advisory locks are connection-scoped, so the lock pins one pooled
// connection until the returned release func runs. ok is false when another
// batch currently holds the lock.
func (r *NotificationRepository) AcquireBatchLock(ctx context.Context) (release func() error, ok bool, err error) {
	conn, err := r.db.Connx(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get connection for batch lock: %w", err)
	}

	var got sql.NullInt64
	if err := conn.GetContext(ctx, &got, "SELECT GET_LOCK(?, 0)", batchLockName); err != nil {
		conn.Close()
		return nil, false, fmt.Errorf("failed to acquire batch lock: %w", err)
	}

	if !got.Valid || got.Int64 != 1 {
		conn.Close()
		return nil, false, nil
	}

	release = func() error {
		defer conn.Close()

		var released sql.NullInt64
		if err := conn.GetContext(context.Background(), &released, "SELECT RELEASE_LOCK(?)", batchLockName); err != nil {
			return fmt.Errorf("failed to release batch lock: %w", err)
		}
		return nil
	}

	return release, true, nil
}
