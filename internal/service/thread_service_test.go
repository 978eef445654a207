package service

import (
	"context"
	"testing"
	"time"

	"github.com/andersoncassiani/chatsuite/internal/domain"
)

//
// Test fakes – only for this file.
//

type fakeMessageRepo struct {
	thread        []domain.Message
	conversations []domain.ConversationSummary

	lastContact string
	lastSender  string
}

func (r *fakeMessageRepo) ListConversations(
	ctx context.Context,
	senderAddr, search string,
	page, pageSize int,
) ([]domain.ConversationSummary, int64, error) {
	r.lastSender = senderAddr
	return r.conversations, int64(len(r.conversations)), nil
}

func (r *fakeMessageRepo) GetThread(ctx context.Context, contact string) ([]domain.Message, error) {
	r.lastContact = contact
	return r.thread, nil
}

func (r *fakeMessageRepo) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	return nil, nil
}

func strptr(s string) *string { return &s }

func TestResolveContact(t *testing.T) {
	sender := "whatsapp:+1000"

	cases := []struct {
		name string
		msg  domain.Message
		want string
	}{
		{
			name: "bot authored row, contact is to",
			msg:  domain.Message{From: "whatsapp:+1000", To: strptr("whatsapp:+2000")},
			want: "whatsapp:+2000",
		},
		{
			name: "contact authored row, contact is from",
			msg:  domain.Message{From: "whatsapp:+2000", To: strptr("whatsapp:+1000")},
			want: "whatsapp:+2000",
		},
		{
			name: "bot authored row with empty to falls back to from",
			msg:  domain.Message{From: "whatsapp:+1000", To: strptr("")},
			want: "whatsapp:+1000",
		},
		{
			name: "addresses normalized before comparison",
			msg:  domain.Message{From: "+1000", To: strptr("3116123189")},
			want: "whatsapp:+573116123189",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveContact(&tc.msg, sender)
			if got != tc.want {
				t.Fatalf("ResolveContact = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClassifyAuthor(t *testing.T) {
	sender := "whatsapp:+1000"
	contact := "whatsapp:+2000"

	cases := []struct {
		name string
		msg  domain.Message
		want domain.AuthorRole
	}{
		{
			name: "row from contact",
			msg:  domain.Message{From: "whatsapp:+2000", To: strptr("whatsapp:+1000"), Response: strptr("hi")},
			want: domain.AuthorContact,
		},
		{
			name: "manual operator reply",
			msg:  domain.Message{From: "whatsapp:+1000", To: strptr("whatsapp:+2000")},
			want: domain.AuthorOperator,
		},
		{
			name: "provider row with bot response is not an operator reply",
			msg:  domain.Message{From: "whatsapp:+1000", To: strptr("whatsapp:+2000"), Response: strptr("auto")},
			want: domain.AuthorUnknown,
		},
		{
			name: "row from a third number",
			msg:  domain.Message{From: "whatsapp:+3000", To: strptr("whatsapp:+2000")},
			want: domain.AuthorUnknown,
		},
		{
			name: "provider row without to",
			msg:  domain.Message{From: "whatsapp:+1000"},
			want: domain.AuthorUnknown,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyAuthor(&tc.msg, sender, contact)
			if got != tc.want {
				t.Fatalf("ClassifyAuthor = %q, want %q", got, tc.want)
			}

			// Derived roles must be stable under re-computation.
			if again := ClassifyAuthor(&tc.msg, sender, contact); again != got {
				t.Fatalf("classification not stable: %q then %q", got, again)
			}
		})
	}
}

func TestBuildThread(t *testing.T) {
	sender := "whatsapp:+1000"
	contact := "whatsapp:+2000"
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	rows := []domain.Message{
		// Operator reply: from provider, to contact, no bot response.
		{ID: 1, From: "whatsapp:+1000", To: strptr("whatsapp:+2000"), Body: "¿Pudiste revisar?", Timestamp: base},
		// Contact message with an attached bot reply.
		{ID: 2, From: "whatsapp:+2000", To: strptr("whatsapp:+1000"), Body: "Hola", Response: strptr("hi"), Timestamp: base.Add(time.Minute)},
		// Anomalous legacy row: must render as unknown, never be dropped.
		{ID: 3, From: "whatsapp:+3000", To: strptr("whatsapp:+2000"), Body: "???", Timestamp: base.Add(2 * time.Minute)},
	}

	entries := BuildThread(rows, sender, contact)

	if len(entries) != 4 {
		t.Fatalf("expected 4 entries (3 rows + 1 bot reply), got %d", len(entries))
	}

	if entries[0].Role != domain.AuthorOperator {
		t.Errorf("entry 0 role = %q, want operator", entries[0].Role)
	}
	if entries[1].Role != domain.AuthorContact {
		t.Errorf("entry 1 role = %q, want contact", entries[1].Role)
	}
	if entries[2].Role != domain.AuthorBot || entries[2].Text != "hi" {
		t.Errorf("entry 2 = %q/%q, want bot/hi", entries[2].Role, entries[2].Text)
	}
	if entries[2].MessageID != 2 {
		t.Errorf("bot entry should stay attached to row 2, got message id %d", entries[2].MessageID)
	}
	if entries[3].Role != domain.AuthorUnknown {
		t.Errorf("entry 3 role = %q, want unknown", entries[3].Role)
	}
}

func TestGetThread_RequiresContact(t *testing.T) {
	s := NewThreadService(&fakeMessageRepo{}, "whatsapp:+1000")

	if _, err := s.GetThread(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty contact")
	}
}

func TestListConversations_UsesNormalizedSender(t *testing.T) {
	repo := &fakeMessageRepo{}
	s := NewThreadService(repo, "+1000")

	if _, _, err := s.ListConversations(context.Background(), "", 1, 20); err != nil {
		t.Fatalf("ListConversations returned error: %v", err)
	}

	if repo.lastSender != "whatsapp:+1000" {
		t.Fatalf("sender passed to repo = %q, want normalized form", repo.lastSender)
	}
}
