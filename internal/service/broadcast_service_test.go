package service

import (
	"context"
	"testing"
)

func TestParseNumberList(t *testing.T) {
	raw := "3116123189\n573007189383, +573026444564;3116123189\nno-es-numero\n\n"

	numbers, invalid, duplicates := ParseNumberList(raw)

	want := []string{
		"whatsapp:+573116123189",
		"whatsapp:+573007189383",
		"whatsapp:+573026444564",
	}

	if len(numbers) != len(want) {
		t.Fatalf("numbers = %v, want %v", numbers, want)
	}
	for i := range want {
		if numbers[i] != want[i] {
			t.Errorf("numbers[%d] = %q, want %q", i, numbers[i], want[i])
		}
	}

	// 3116123189 and 573116123189 would normalize to the same number; here
	// the literal repeat counts as one duplicate.
	if duplicates != 1 {
		t.Errorf("duplicates = %d, want 1", duplicates)
	}
	if len(invalid) != 1 || invalid[0] != "no-es-numero" {
		t.Errorf("invalid = %v, want [no-es-numero]", invalid)
	}
}

func TestBroadcast_Tally(t *testing.T) {
	sender := &fakeSender{failFor: map[string]string{
		"whatsapp:+573007189383": "blocked by carrier",
	}}

	s := NewBroadcastService(sender, 0)

	result, err := s.Run(context.Background(), "3116123189,3007189383", map[string]string{"1": "Hola"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if result.Total != 2 || result.Sent != 1 || result.Failed != 1 {
		t.Fatalf("tally = total %d, sent %d, failed %d", result.Total, result.Sent, result.Failed)
	}

	if len(result.Outcomes) != 2 {
		t.Fatalf("expected per-number outcomes, got %d", len(result.Outcomes))
	}
	if result.Outcomes[0].SID == "" || !result.Outcomes[0].Success {
		t.Errorf("outcome 0 = %+v, want success with sid", result.Outcomes[0])
	}
	if result.Outcomes[1].Success || result.Outcomes[1].Error != "blocked by carrier" {
		t.Errorf("outcome 1 = %+v, want verbatim failure", result.Outcomes[1])
	}

	// One number's failure never stops the rest.
	if len(sender.calls) != 2 {
		t.Fatalf("expected 2 send attempts, got %d", len(sender.calls))
	}
}

func TestBroadcast_EmptyList(t *testing.T) {
	s := NewBroadcastService(&fakeSender{}, 0)

	result, err := s.Run(context.Background(), "  \n ; , ", nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Total != 0 || len(result.Outcomes) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}
