package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/andersoncassiani/chatsuite/internal/domain"
)

// MessageRepository reads the bot's shared messages table. The table is
// owned by the bot process; this service never writes to it.
type MessageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

const messageColumns = "m.id, m.`from`, m.`to`, m.message, m.response, m.timestamp, " +
	"m.messageType, m.numMedia, m.mediaJson, m.transcript, m.transcriptStatus"

// ListConversations returns the latest row per contact, newest first, with
// the thread size per contact. The contact of a row is whichever side is
// not the provider's sender address; rows are grouped on that derived value
// so bot-authored and contact-authored rows land in the same thread.
func (r *MessageRepository) ListConversations(
	ctx context.Context,
	senderAddr string,
	search string,
	page, pageSize int,
) ([]domain.ConversationSummary, int64, error) {
	offset := (page - 1) * pageSize

	contactExpr := "CASE WHEN `from` = ? AND `to` IS NOT NULL AND `to` <> '' THEN `to` ELSE `from` END"

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*) FROM (
			SELECT %s AS contact
			FROM messages
			GROUP BY contact
		) c
		WHERE c.contact LIKE ?
	`, contactExpr)

	like := "%" + search + "%"

	var totalCount int64
	if err := r.db.GetContext(ctx, &totalCount, countQuery, senderAddr, like); err != nil {
		return nil, 0, fmt.Errorf("failed to count conversations: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s, latest.contact, latest.total
		FROM messages m
		JOIN (
			SELECT %s AS contact, MAX(id) AS last_id, COUNT(*) AS total
			FROM messages
			GROUP BY contact
		) latest ON m.id = latest.last_id
		WHERE latest.contact LIKE ?
		ORDER BY m.timestamp DESC, m.id DESC
		LIMIT ? OFFSET ?
	`, messageColumns, contactExpr)

	var conversations []domain.ConversationSummary
	if err := r.db.SelectContext(ctx, &conversations, query, senderAddr, like, pageSize, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list conversations: %w", err)
	}

	return conversations, totalCount, nil
}

// GetThread returns every row of one contact's conversation in stable
// chronological order (timestamp ascending, insertion order on ties).
func (r *MessageRepository) GetThread(ctx context.Context, contact string) ([]domain.Message, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM messages m
		WHERE m.`+"`from`"+` = ? OR m.`+"`to`"+` = ?
		ORDER BY m.timestamp ASC, m.id ASC
	`, messageColumns)

	var messages []domain.Message
	if err := r.db.SelectContext(ctx, &messages, query, contact, contact); err != nil {
		return nil, fmt.Errorf("failed to get thread for %s: %w", contact, err)
	}

	return messages, nil
}

// GetByID returns one message row, or nil when it does not exist.
func (r *MessageRepository) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	query := fmt.Sprintf("SELECT %s FROM messages m WHERE m.id = ?", messageColumns)

	var message domain.Message
	if err := r.db.GetContext(ctx, &message, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	return &message, nil
}
