package database

import (
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/andersoncassiani/chatsuite/environments"
	"github.com/andersoncassiani/chatsuite/pkg/logger"
)

// NewMySQLDB opens a pooled connection to one of the two databases (bot
// messages mirror or the app's own schema).
func NewMySQLDB(cfg environments.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&collation=utf8mb4_unicode_ci",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
	)

	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %s: %w", cfg.DBName, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database %s: %w", cfg.DBName, err)
	}

	logger.Infof("Connected to MySQL database %s", cfg.DBName)
	return db, nil
}

// RunMigrations creates the app-owned task_notifications table. The bot's
// messages table is never migrated here; that schema belongs to the bot
// process.
func RunMigrations(db *sqlx.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS task_notifications (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		task_id VARCHAR(100),
		titulo VARCHAR(255) NOT NULL,
		descripcion TEXT,
		prioridad VARCHAR(50) NOT NULL DEFAULT 'Alta',
		asignado VARCHAR(255) NOT NULL,
		creador VARCHAR(255) NOT NULL,
		proyecto VARCHAR(255),
		fecha_limite DATE,
		enviado_a VARCHAR(50) NOT NULL,
		twilio_sid VARCHAR(100),
		status ENUM('pending', 'sent', 'delivered', 'read', 'failed') NOT NULL DEFAULT 'pending',
		error_message TEXT,
		sent_at DATETIME,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_task_notifications_task_id (task_id),
		INDEX idx_task_notifications_status (status),
		INDEX idx_task_notifications_enviado_a (enviado_a)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Infof("Database migrations completed")

	return nil
}

// SeedBotData creates a local stand-in for the bot's messages table and
// fills it with a small two-way conversation. Development only; in any real
// deployment the bot process owns this table.
func SeedBotData(db *sqlx.DB, senderAddr string) error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		` + "`from`" + ` VARCHAR(64) NOT NULL,
		` + "`to`" + ` VARCHAR(64),
		message TEXT NOT NULL,
		response TEXT,
		timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		messageType VARCHAR(32),
		numMedia INT,
		mediaJson TEXT,
		transcript TEXT,
		transcriptStatus VARCHAR(20),
		INDEX idx_messages_from (` + "`from`" + `),
		INDEX idx_messages_to (` + "`to`" + `),
		INDEX idx_messages_timestamp (timestamp)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create messages table: %w", err)
	}

	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM messages"); err != nil {
		return err
	}
	if count > 0 {
		logger.Infof("Messages table already has %d rows, skipping seed", count)
		return nil
	}

	rows := []struct {
		from, to, message, response string
	}{
		{"whatsapp:+573026444564", senderAddr, "Hola, quiero información del servicio", "¡Hola! Claro, con gusto te cuento."},
		{"whatsapp:+573026444564", senderAddr, "¿Cuánto cuesta el plan mensual?", "El plan mensual cuesta $120.000."},
		{senderAddr, "whatsapp:+573026444564", "Te escribo del equipo, ¿pudiste revisar la propuesta?", ""},
		{"whatsapp:+573007189383", senderAddr, "Buenas tardes, necesito agendar una cita", "Por supuesto, ¿qué día te sirve?"},
		{"whatsapp:+573116123189", senderAddr, "Gracias por la información", ""},
	}

	for _, r := range rows {
		var response any
		if r.response != "" {
			response = r.response
		}
		_, err := db.Exec(
			"INSERT INTO messages (`from`, `to`, message, response) VALUES (?, ?, ?, ?)",
			r.from, r.to, r.message, response,
		)
		if err != nil {
			return fmt.Errorf("failed to seed messages: %w", err)
		}
	}

	logger.Infof("Seeded %d bot messages", len(rows))
	return nil
}
