package aggregates

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/graphledger-backend/internal/domain/aggregates"
	"github.com/yungbote/graphledger-backend/internal/pkg/dbctx"
)

func TestExecuteWriteObservesSuccessStatus(t *testing.T) {
	hooks := &spyHooks{}
	runner := spyTxRunner{}

	err := executeWrite(context.Background(), BaseDeps{
		Runner: runner,
		Hooks:  hooks,
	}, "Graphs.Test.Success", func(_ dbctx.Context) error { return nil })
	if err != nil {
		t.Fatalf("executeWrite success: %v", err)
	}
	if len(hooks.Operations) != 1 {
		t.Fatalf("operations count: want=1 got=%d", len(hooks.Operations))
	}
	if hooks.Operations[0].Status != "success" {
		t.Fatalf("operation status: want=success got=%s", hooks.Operations[0].Status)
	}
}

func TestExecuteWriteObservesInvariantViolationStatus(t *testing.T) {
	hooks := &spyHooks{}
	runner := spyTxRunner{}

	err := executeWrite(context.Background(), BaseDeps{
		Runner: runner,
		Hooks:  hooks,
	}, "Graphs.Test.Invariant", func(_ dbctx.Context) error {
		return InvariantError("ledger row missing")
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domainagg.IsCode(err, domainagg.CodeInvariantViolation) {
		t.Fatalf("expected invariant violation code, got=%v", err)
	}
	if len(hooks.Operations) != 1 {
		t.Fatalf("operations count: want=1 got=%d", len(hooks.Operations))
	}
	if hooks.Operations[0].Status != string(domainagg.CodeInvariantViolation) {
		t.Fatalf("operation status: want=%s got=%s", domainagg.CodeInvariantViolation, hooks.Operations[0].Status)
	}
}

func TestExecuteWriteTracksConflictAndRetryCounters(t *testing.T) {
	t.Run("conflict", func(t *testing.T) {
		hooks := &spyHooks{}
		runner := spyTxRunner{}
		err := executeWrite(context.Background(), BaseDeps{
			Runner: runner,
			Hooks:  hooks,
		}, "Graphs.Test.Conflict", func(_ dbctx.Context) error {
			return ConflictError("current_version moved")
		})
		if err == nil {
			t.Fatalf("expected error")
		}
		if !domainagg.IsCode(err, domainagg.CodeConflict) {
			t.Fatalf("expected conflict code, got=%v", err)
		}
		if len(hooks.Conflicts) != 1 || hooks.Conflicts[0] != "Graphs.Test.Conflict" {
			t.Fatalf("conflict hooks: %+v", hooks.Conflicts)
		}
		if len(hooks.Retries) != 0 {
			t.Fatalf("retry hooks should be empty, got=%+v", hooks.Retries)
		}
		if len(hooks.Operations) != 1 || hooks.Operations[0].Status != string(domainagg.CodeConflict) {
			t.Fatalf("unexpected op status: %+v", hooks.Operations)
		}
	})

	t.Run("retryable", func(t *testing.T) {
		hooks := &spyHooks{}
		runner := spyTxRunner{}
		err := executeWrite(context.Background(), BaseDeps{
			Runner: runner,
			Hooks:  hooks,
		}, "Graphs.Test.Retry", func(_ dbctx.Context) error {
			return RetryableError("database is locked")
		})
		if err == nil {
			t.Fatalf("expected error")
		}
		if !domainagg.IsCode(err, domainagg.CodeRetryable) {
			t.Fatalf("expected retryable code, got=%v", err)
		}
		if len(hooks.Retries) != 1 || hooks.Retries[0] != "Graphs.Test.Retry" {
			t.Fatalf("retry hooks: %+v", hooks.Retries)
		}
		if len(hooks.Conflicts) != 0 {
			t.Fatalf("conflict hooks should be empty, got=%+v", hooks.Conflicts)
		}
		if len(hooks.Operations) != 1 || hooks.Operations[0].Status != string(domainagg.CodeRetryable) {
			t.Fatalf("unexpected op status: %+v", hooks.Operations)
		}
	})
}

func TestAggregateErrorStatus(t *testing.T) {
	if got := aggregateErrorStatus(nil); got != "success" {
		t.Fatalf("nil status: want=success got=%s", got)
	}
	if got := aggregateErrorStatus(InvariantError("x")); got != string(domainagg.CodeInvariantViolation) {
		t.Fatalf("invariant status: got=%s", got)
	}
	if got := aggregateErrorStatus(ConflictError("x")); got != string(domainagg.CodeConflict) {
		t.Fatalf("conflict status: got=%s", got)
	}
	if got := aggregateErrorStatus(RetryableError("x")); got != string(domainagg.CodeRetryable) {
		t.Fatalf("retry status: got=%s", got)
	}
	if got := aggregateErrorStatus(context.DeadlineExceeded); got != string(domainagg.CodeRetryable) {
		t.Fatalf("deadline status: got=%s", got)
	}
}

func TestExecuteWriteSkipsBodyWhenRunnerFailsToBegin(t *testing.T) {
	hooks := &spyHooks{}
	ran := false
	err := executeWrite(context.Background(), BaseDeps{
		Runner: failingRunner{err: errors.New("connection refused")},
		Hooks:  hooks,
	}, "Graphs.Test.Begin", func(_ dbctx.Context) error {
		ran = true
		return nil
	})
	if ran {
		t.Fatalf("body must not run when the transaction never began")
	}
	if !domainagg.IsCode(err, domainagg.CodeInternal) {
		t.Fatalf("expected internal code, got=%v", err)
	}
	if len(hooks.Operations) != 1 || hooks.Operations[0].Status != string(domainagg.CodeInternal) {
		t.Fatalf("unexpected op status: %+v", hooks.Operations)
	}
}

func TestExecuteWritePassesTypedErrorsThrough(t *testing.T) {
	hooks := &spyHooks{}
	err := executeWrite(context.Background(), BaseDeps{
		Runner: spyTxRunner{},
		Hooks:  hooks,
	}, "Graphs.Test.Typed", func(_ dbctx.Context) error {
		return domainagg.NewError(domainagg.CodeInsufficientTokens, "Graphs.Test.Typed", "balance too low", nil)
	})
	if !domainagg.IsCode(err, domainagg.CodeInsufficientTokens) {
		t.Fatalf("expected insufficient_tokens, got=%v", err)
	}
	if hooks.Operations[0].Status != string(domainagg.CodeInsufficientTokens) {
		t.Fatalf("op status: got=%s", hooks.Operations[0].Status)
	}
}

func TestRequireTx(t *testing.T) {
	ctx := context.Background()
	ledger := domainagg.LedgerAggregateContract

	if err := requireTx(ledger, "op", dbctx.Context{Ctx: ctx}); !domainagg.IsCode(err, domainagg.CodeInternal) {
		t.Fatalf("expected internal error without tx, got=%v", err)
	}
	if err := requireTx(ledger, "op", dbctx.Context{Ctx: ctx, Tx: &gorm.DB{}}); err != nil {
		t.Fatalf("ledger should join a caller tx, got=%v", err)
	}
	for _, c := range []domainagg.Contract{
		domainagg.ModelAggregateContract,
		domainagg.ModerationAggregateContract,
		domainagg.SimulationAggregateContract,
	} {
		if err := requireTx(c, "op", dbctx.Context{Ctx: ctx, Tx: &gorm.DB{}}); !domainagg.IsCode(err, domainagg.CodeInternal) {
			t.Fatalf("%s must refuse caller tx, got=%v", c.Name, err)
		}
	}
}

type failingRunner struct{ err error }

func (r failingRunner) InTx(_ context.Context, _ func(dbc dbctx.Context) error) error {
	return r.err
}

type spyTxRunner struct{}

func (spyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(dbctx.Context{Ctx: ctx})
}

type spyHooks struct {
	Operations []spyOperation
	Conflicts  []string
	Retries    []string
}

type spyOperation struct {
	Name   string
	Status string
}

func (h *spyHooks) ObserveOperation(name, status string, _ time.Duration) {
	h.Operations = append(h.Operations, spyOperation{Name: name, Status: status})
}

func (h *spyHooks) IncConflict(name string) {
	h.Conflicts = append(h.Conflicts, name)
}

func (h *spyHooks) IncRetry(name string) {
	h.Retries = append(h.Retries, name)
}
