package service

import (
	"context"
	"errors"
	"testing"
)

type fakeRelay struct {
	err   error
	calls []handoffCall
}

type handoffCall struct {
	from, to, text string
	pauseMinutes   int
}

func (r *fakeRelay) SendHandoff(ctx context.Context, from, to, text string, pauseMinutes int) error {
	r.calls = append(r.calls, handoffCall{from: from, to: to, text: text, pauseMinutes: pauseMinutes})
	return r.err
}

func TestSendReply(t *testing.T) {
	relay := &fakeRelay{}
	s := NewReplyService(relay, "573116123189", 30)

	if err := s.SendReply(context.Background(), "3026444564", "Hola, te escribo del equipo", nil); err != nil {
		t.Fatalf("SendReply returned error: %v", err)
	}

	if len(relay.calls) != 1 {
		t.Fatalf("expected 1 relay call, got %d", len(relay.calls))
	}

	call := relay.calls[0]
	if call.from != "whatsapp:+573116123189" {
		t.Errorf("from = %q, want normalized sender", call.from)
	}
	if call.to != "whatsapp:+573026444564" {
		t.Errorf("to = %q, want normalized contact", call.to)
	}
	if call.pauseMinutes != 30 {
		t.Errorf("pauseMinutes = %d, want default 30", call.pauseMinutes)
	}
}

func TestSendReply_ExplicitPause(t *testing.T) {
	relay := &fakeRelay{}
	s := NewReplyService(relay, "whatsapp:+573116123189", 30)

	pause := 120
	if err := s.SendReply(context.Background(), "whatsapp:+573026444564", "hola", &pause); err != nil {
		t.Fatalf("SendReply returned error: %v", err)
	}
	if relay.calls[0].pauseMinutes != 120 {
		t.Errorf("pauseMinutes = %d, want 120", relay.calls[0].pauseMinutes)
	}
}

func TestSendReply_Validation(t *testing.T) {
	relay := &fakeRelay{}
	s := NewReplyService(relay, "573116123189", 30)

	if err := s.SendReply(context.Background(), "3026444564", "   ", nil); err == nil {
		t.Fatalf("expected error for empty text")
	}
	if err := s.SendReply(context.Background(), "not-a-number", "hola", nil); err == nil {
		t.Fatalf("expected error for invalid contact")
	}
	if len(relay.calls) != 0 {
		t.Fatalf("validation failures must not reach the relay")
	}
}

func TestSendReply_RelayErrorSurfaced(t *testing.T) {
	relayErr := errors.New("relay responded with status 401: invalid token")
	s := NewReplyService(&fakeRelay{err: relayErr}, "573116123189", 30)

	err := s.SendReply(context.Background(), "3026444564", "hola", nil)
	if err == nil || !errors.Is(err, relayErr) {
		t.Fatalf("expected wrapped relay error, got %v", err)
	}
}
