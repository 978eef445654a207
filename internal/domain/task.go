package domain

import "time"

// NotificationStatus is the delivery state of a TaskNotification.
// delivered and read are reserved for provider status callbacks and are
// never produced by this service.
type NotificationStatus string

const (
	StatusPending   NotificationStatus = "pending"
	StatusSent      NotificationStatus = "sent"
	StatusDelivered NotificationStatus = "delivered"
	StatusRead      NotificationStatus = "read"
	StatusFailed    NotificationStatus = "failed"
)

// Task is one high-priority task as returned by the DT-OS webhook API.
type Task struct {
	ID          string `json:"id"`
	Titulo      string `json:"titulo"`
	Descripcion string `json:"descripcion"`
	Prioridad   string `json:"prioridad"`
	Asignado    string `json:"asignado"`
	Creador     string `json:"creador"`
	Proyecto    string `json:"proyecto"`
	FechaLimite string `json:"fechaLimite"`
}

// TaskBatch is the task-source API response envelope.
type TaskBatch struct {
	Count int    `json:"count"`
	Tasks []Task `json:"tasks"`
}

// TaskNotification is one attempted WhatsApp delivery of a task alert.
// Resends mutate the existing row rather than create a new one.
type TaskNotification struct {
	ID           int64              `db:"id" json:"id"`
	TaskID       *string            `db:"task_id" json:"taskId,omitempty"`
	Titulo       string             `db:"titulo" json:"titulo"`
	Descripcion  *string            `db:"descripcion" json:"descripcion,omitempty"`
	Prioridad    string             `db:"prioridad" json:"prioridad"`
	Asignado     string             `db:"asignado" json:"asignado"`
	Creador      string             `db:"creador" json:"creador"`
	Proyecto     *string            `db:"proyecto" json:"proyecto,omitempty"`
	FechaLimite  *time.Time         `db:"fecha_limite" json:"fechaLimite,omitempty"`
	EnviadoA     string             `db:"enviado_a" json:"enviadoA"`
	TwilioSID    *string            `db:"twilio_sid" json:"twilioSid,omitempty"`
	Status       NotificationStatus `db:"status" json:"status"`
	ErrorMessage *string            `db:"error_message" json:"errorMessage,omitempty"`
	SentAt       *time.Time         `db:"sent_at" json:"sentAt,omitempty"`
	CreatedAt    time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `db:"updated_at" json:"updatedAt"`
}

// NotificationStats is the per-status record count.
type NotificationStats struct {
	Pending   int64 `db:"pending" json:"pending"`
	Sent      int64 `db:"sent" json:"sent"`
	Delivered int64 `db:"delivered" json:"delivered"`
	Read      int64 `db:"read" json:"read"`
	Failed    int64 `db:"failed" json:"failed"`
}

// Total sums all statuses.
func (s NotificationStats) Total() int64 {
	return s.Pending + s.Sent + s.Delivered + s.Read + s.Failed
}

// BatchResult summarizes one notification batch run for operator display.
type BatchResult struct {
	Processed int      `json:"processed"`
	Sent      int      `json:"sent"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped"`
	DryRun    bool     `json:"dryRun,omitempty"`
	Details   []string `json:"details"`
}

// TaskPreview is one queued task annotated with the number a batch run
// would target, without consuming the queue.
type TaskPreview struct {
	Task  Task   `json:"task"`
	Phone string `json:"phone,omitempty"`
}

// BroadcastOutcome is the per-number result of a template broadcast.
type BroadcastOutcome struct {
	Input   string `json:"input"`
	Number  string `json:"number,omitempty"`
	Success bool   `json:"success"`
	SID     string `json:"sid,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BroadcastResult is the tally of a template broadcast over a raw number list.
type BroadcastResult struct {
	Total      int                `json:"total"`
	Sent       int                `json:"sent"`
	Failed     int                `json:"failed"`
	Invalid    []string           `json:"invalid,omitempty"`
	Duplicates int                `json:"duplicates,omitempty"`
	Outcomes   []BroadcastOutcome `json:"outcomes"`
}

// SentNotificationCache is the value cached for recently sent notifications.
type SentNotificationCache struct {
	TwilioSID string    `json:"twilioSid"`
	SentAt    time.Time `json:"sentAt"`
}
