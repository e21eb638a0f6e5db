package aggregates

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/graphledger-backend/internal/pkg/dbctx"
)

func TestRequireStatusAllowed(t *testing.T) {
	if err := RequireStatusAllowed("pending", "pending"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := RequireStatusAllowed("approved", "pending"); err == nil {
		t.Fatalf("expected conflict error")
	}
	if err := RequireStatusAllowed("pending"); err == nil {
		t.Fatalf("expected validation error for empty allow list")
	}
}

func TestRequireCASSuccess(t *testing.T) {
	if err := RequireCASSuccess(true, "ok"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := RequireCASSuccess(false, "stale"); err == nil {
		t.Fatalf("expected conflict error")
	}
}

func TestCASGuardRejectsMissingArguments(t *testing.T) {
	g := NewCASGuard(nil)
	dbc := dbctx.Context{Ctx: context.Background()}
	if _, err := g.UpdateByVersion(dbc, "models", uuid.New(), "current_version", 1, nil); err == nil {
		t.Fatalf("expected error without db")
	}
	if _, err := g.UpdateByStatus(dbc, "weight_change_requests", uuid.New(), []string{"pending"}, nil); err == nil {
		t.Fatalf("expected error without db")
	}
}
