package testutil

import (
	"testing"
	"time"
)

func TestHooksRecorder_CapturesSignals(t *testing.T) {
	h := &HooksRecorder{}
	h.ObserveOperation("Graphs.Moderation.Approve", "success", 10*time.Millisecond)
	h.IncConflict("Graphs.Moderation.Approve")
	h.IncRetry("Graphs.Moderation.Approve")

	if len(h.Operations) != 1 {
		t.Fatalf("expected 1 op event, got %d", len(h.Operations))
	}
	if h.Operations[0].Name != "Graphs.Moderation.Approve" || h.Operations[0].Status != "success" {
		t.Fatalf("unexpected op event: %+v", h.Operations[0])
	}
	if len(h.Conflicts) != 1 || h.Conflicts[0] != "Graphs.Moderation.Approve" {
		t.Fatalf("unexpected conflicts: %+v", h.Conflicts)
	}
	if len(h.Retries) != 1 || h.Retries[0] != "Graphs.Moderation.Approve" {
		t.Fatalf("unexpected retries: %+v", h.Retries)
	}
	if status, ok := h.StatusOf("Graphs.Moderation.Approve"); !ok || status != "success" {
		t.Fatalf("StatusOf: got %q ok=%v", status, ok)
	}
	if h.ConflictCount("Graphs.Moderation.Approve") != 1 || h.ConflictCount("other") != 0 {
		t.Fatalf("ConflictCount mismatch")
	}
}
