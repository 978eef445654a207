package service

import (
	"context"
	"strings"
	"time"

	"github.com/andersoncassiani/chatsuite/internal/domain"
	"github.com/andersoncassiani/chatsuite/pkg/logger"
	"github.com/andersoncassiani/chatsuite/pkg/phone"
)

// BroadcastService sends one template to a raw operator-pasted list of
// numbers and reports a per-number tally.
type BroadcastService struct {
	sender    templateSender
	sendDelay time.Duration
}

func NewBroadcastService(sender templateSender, sendDelay time.Duration) *BroadcastService {
	return &BroadcastService{
		sender:    sender,
		sendDelay: sendDelay,
	}
}

// ParseNumberList splits a newline/comma/semicolon-delimited list of raw
// numbers, normalizes each, and de-duplicates on the normalized form.
// Inputs that fail normalization are returned separately; they are reported,
// not silently dropped.
func ParseNumberList(raw string) (numbers []string, invalid []string, duplicates int) {
	seen := make(map[string]bool)

	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ',' || r == ';'
	})

	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		normalized, err := phone.Normalize(field)
		if err != nil {
			invalid = append(invalid, field)
			continue
		}

		if seen[normalized] {
			duplicates++
			continue
		}
		seen[normalized] = true
		numbers = append(numbers, normalized)
	}

	return numbers, invalid, duplicates
}

// Run sends the template with the given variables to every number in the
// raw list. One number's failure never stops the rest; each send outcome is
// tallied for the operator.
func (s *BroadcastService) Run(ctx context.Context, rawList string, variables map[string]string) (*domain.BroadcastResult, error) {
	numbers, invalid, duplicates := ParseNumberList(rawList)

	result := &domain.BroadcastResult{
		Total:      len(numbers),
		Invalid:    invalid,
		Duplicates: duplicates,
		Outcomes:   make([]domain.BroadcastOutcome, 0, len(numbers)),
	}

	if len(numbers) == 0 {
		return result, nil
	}

	logger.Infof("Broadcasting template to %d numbers (%d invalid, %d duplicates)",
		len(numbers), len(invalid), duplicates)

	for i, number := range numbers {
		outcome := domain.BroadcastOutcome{Input: number, Number: number}

		sid, err := s.sender.SendTemplate(ctx, number, variables)
		if err != nil {
			logger.Errorf("Broadcast to %s failed: %v", number, err)
			outcome.Error = err.Error()
			result.Failed++
		} else {
			outcome.Success = true
			outcome.SID = sid
			result.Sent++
		}
		result.Outcomes = append(result.Outcomes, outcome)

		if i < len(numbers)-1 {
			if err := sleepCtx(ctx, s.sendDelay); err != nil {
				return result, err
			}
		}
	}

	logger.Infof("Broadcast completed: %d sent, %d failed", result.Sent, result.Failed)

	return result, nil
}
