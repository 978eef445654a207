package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/andersoncassiani/chatsuite/pkg/phone"
)

type handoffClient interface {
	SendHandoff(ctx context.Context, from, to, text string, pauseMinutes int) error
}

// ReplyService forwards manual operator replies to the handoff relay, which
// persists the outbound message row and pauses the bot for that contact.
type ReplyService struct {
	relay        handoffClient
	senderAddr   string
	defaultPause int
}

func NewReplyService(relay handoffClient, senderAddr string, defaultPauseMinutes int) *ReplyService {
	return &ReplyService{
		relay:        relay,
		senderAddr:   phone.Canonical(senderAddr),
		defaultPause: defaultPauseMinutes,
	}
}

// SendReply validates and forwards one manual reply. Empty text and
// unnormalizable contacts are rejected before any network call.
func (s *ReplyService) SendReply(ctx context.Context, contact, text string, pauseMinutes *int) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("reply text must not be empty")
	}

	to, err := phone.Normalize(contact)
	if err != nil {
		return fmt.Errorf("contact %q: %w", contact, err)
	}

	pause := s.defaultPause
	if pauseMinutes != nil {
		pause = *pauseMinutes
	}

	if err := s.relay.SendHandoff(ctx, s.senderAddr, to, text, pause); err != nil {
		return fmt.Errorf("failed to deliver reply: %w", err)
	}

	return nil
}
