package service

import (
	"context"
	"fmt"

	"github.com/andersoncassiani/chatsuite/internal/domain"
	"github.com/andersoncassiani/chatsuite/pkg/phone"
)

type messageRepository interface {
	ListConversations(ctx context.Context, senderAddr, search string, page, pageSize int) ([]domain.ConversationSummary, int64, error)
	GetThread(ctx context.Context, contact string) ([]domain.Message, error)
	GetByID(ctx context.Context, id int64) (*domain.Message, error)
}

// ThreadService reconstructs per-contact conversation threads from the
// bot's two-way messages table.
type ThreadService struct {
	repo       messageRepository
	senderAddr string
}

// NewThreadService builds a thread service. senderAddr is the provider's
// own WhatsApp sender address, used to tell which side of a row is the
// external contact.
func NewThreadService(repo messageRepository, senderAddr string) *ThreadService {
	return &ThreadService{
		repo:       repo,
		senderAddr: phone.Canonical(senderAddr),
	}
}

// ResolveContact determines which endpoint of a message row is the external
// contact, as opposed to the provider's own sender address. Both sides are
// normalized before comparison, so the result does not depend on which side
// happens to appear in `from` on any particular row.
func ResolveContact(msg *domain.Message, senderAddr string) string {
	sender := phone.Canonical(senderAddr)
	from := phone.Canonical(msg.From)

	if from == sender && msg.To != nil && *msg.To != "" {
		return phone.Canonical(*msg.To)
	}
	return from
}

// ClassifyAuthor derives the author role of a row within a contact's
// thread. The role is not stored anywhere; it is recomputed on every read
// from the row's normalized addresses:
//
//   - from == contact: written by the external contact.
//   - from == sender, to == contact, no bot response: a human operator's
//     manual reply sent through the relay.
//   - anything else: anomalous or legacy data, kept visible as unknown.
func ClassifyAuthor(msg *domain.Message, senderAddr, contact string) domain.AuthorRole {
	sender := phone.Canonical(senderAddr)
	contact = phone.Canonical(contact)
	from := phone.Canonical(msg.From)

	if from == contact {
		return domain.AuthorContact
	}

	to := ""
	if msg.To != nil {
		to = phone.Canonical(*msg.To)
	}

	if from == sender && to == contact && (msg.Response == nil || *msg.Response == "") {
		return domain.AuthorOperator
	}

	return domain.AuthorUnknown
}

// BuildThread turns raw message rows into display entries. Each row yields
// one entry with its derived author role, and rows carrying a bot response
// yield an additional bot-authored entry regardless of the row's own
// classification. Rows are never dropped.
func BuildThread(rows []domain.Message, senderAddr, contact string) []domain.ThreadEntry {
	entries := make([]domain.ThreadEntry, 0, len(rows))

	for i := range rows {
		msg := &rows[i]

		entries = append(entries, domain.ThreadEntry{
			MessageID: msg.ID,
			Role:      ClassifyAuthor(msg, senderAddr, contact),
			Text:      msg.Body,
			Timestamp: msg.Timestamp,
		})

		if msg.Response != nil && *msg.Response != "" {
			entries = append(entries, domain.ThreadEntry{
				MessageID: msg.ID,
				Role:      domain.AuthorBot,
				Text:      *msg.Response,
				Timestamp: msg.Timestamp,
			})
		}
	}

	return entries
}

// ListConversations returns the latest message per contact with thread
// sizes, newest first.
func (s *ThreadService) ListConversations(
	ctx context.Context,
	search string,
	page, pageSize int,
) ([]domain.ConversationSummary, int64, error) {
	return s.repo.ListConversations(ctx, s.senderAddr, search, page, pageSize)
}

// GetThread fetches and classifies the full bidirectional thread of one
// contact.
func (s *ThreadService) GetThread(ctx context.Context, contact string) ([]domain.ThreadEntry, error) {
	if contact == "" {
		return nil, fmt.Errorf("contact is required")
	}

	rows, err := s.repo.GetThread(ctx, contact)
	if err != nil {
		return nil, fmt.Errorf("failed to load thread: %w", err)
	}

	return BuildThread(rows, s.senderAddr, contact), nil
}
