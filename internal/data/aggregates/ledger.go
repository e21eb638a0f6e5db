package aggregates

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/graphledger-backend/internal/data/repos"
	types "github.com/yungbote/graphledger-backend/internal/domain"
	domainagg "github.com/yungbote/graphledger-backend/internal/domain/aggregates"
	"github.com/yungbote/graphledger-backend/internal/pkg/dbctx"
	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
)

type LedgerAggregateDeps struct {
	Base   BaseDeps
	Users  repos.UserRepo
	Ledger repos.TokenTransactionRepo
}

type ledgerAggregate struct {
	deps LedgerAggregateDeps
	log  *logger.Logger
}

func NewLedgerAggregate(deps LedgerAggregateDeps) domainagg.LedgerAggregate {
	deps.Base = deps.Base.withDefaults()
	return &ledgerAggregate{deps: deps, log: deps.Base.Log.With("aggregate", "LedgerAggregate")}
}

func (a *ledgerAggregate) Contract() domainagg.Contract {
	return domainagg.LedgerAggregateContract
}

func (a *ledgerAggregate) Recharge(ctx context.Context, in domainagg.RechargeInput) (domainagg.BalanceChange, error) {
	const op = "Tokens.Ledger.Recharge"
	var out domainagg.BalanceChange
	in, err := normalizeRecharge(op, in)
	if err != nil {
		return out, err
	}
	err = executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		res, err := a.recharge(op, dbc, in)
		out = res
		return err
	})
	if err != nil {
		return domainagg.BalanceChange{}, err
	}
	a.logChange(out, in.PerformedBy)
	return out, nil
}

func (a *ledgerAggregate) SetAbsolute(ctx context.Context, in domainagg.SetAbsoluteInput) (domainagg.BalanceChange, error) {
	const op = "Tokens.Ledger.SetAbsolute"
	var out domainagg.BalanceChange
	in, err := normalizeSetAbsolute(op, in)
	if err != nil {
		return out, err
	}
	err = executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		res, err := a.setAbsolute(op, dbc, in)
		out = res
		return err
	})
	if err != nil {
		return domainagg.BalanceChange{}, err
	}
	a.logChange(out, in.PerformedBy)
	return out, nil
}

func (a *ledgerAggregate) RechargeInTx(dbc dbctx.Context, in domainagg.RechargeInput) (domainagg.BalanceChange, error) {
	const op = "Tokens.Ledger.RechargeInTx"
	if err := requireTx(a.Contract(), op, dbc); err != nil {
		return domainagg.BalanceChange{}, err
	}
	in, err := normalizeRecharge(op, in)
	if err != nil {
		return domainagg.BalanceChange{}, err
	}
	out, err := a.recharge(op, dbc, in)
	if err != nil {
		return domainagg.BalanceChange{}, MapError(op, err)
	}
	return out, nil
}

func (a *ledgerAggregate) SetAbsoluteInTx(dbc dbctx.Context, in domainagg.SetAbsoluteInput) (domainagg.BalanceChange, error) {
	const op = "Tokens.Ledger.SetAbsoluteInTx"
	if err := requireTx(a.Contract(), op, dbc); err != nil {
		return domainagg.BalanceChange{}, err
	}
	in, err := normalizeSetAbsolute(op, in)
	if err != nil {
		return domainagg.BalanceChange{}, err
	}
	out, err := a.setAbsolute(op, dbc, in)
	if err != nil {
		return domainagg.BalanceChange{}, MapError(op, err)
	}
	return out, nil
}

func normalizeRecharge(op string, in domainagg.RechargeInput) (domainagg.RechargeInput, error) {
	if in.UserID == uuid.Nil {
		return in, validation(op, "missing user id")
	}
	in.Amount = in.Amount.Round(2)
	if !in.Amount.IsPositive() {
		return in, domainagg.NewError(domainagg.CodeInvalidAmount, op, "recharge amount must be greater than zero", nil)
	}
	in.Reason = strings.TrimSpace(in.Reason)
	if in.Reason == "" {
		in.Reason = types.ReasonAdminRecharge
	}
	return in, nil
}

func normalizeSetAbsolute(op string, in domainagg.SetAbsoluteInput) (domainagg.SetAbsoluteInput, error) {
	if in.UserID == uuid.Nil {
		return in, validation(op, "missing user id")
	}
	in.NewBalance = in.NewBalance.Round(2)
	if in.NewBalance.IsNegative() {
		return in, domainagg.NewError(domainagg.CodeInvalidAmount, op, "balance cannot be negative", nil)
	}
	in.Reason = strings.TrimSpace(in.Reason)
	if in.Reason == "" {
		in.Reason = types.ReasonBalanceSet
	}
	return in, nil
}

func (a *ledgerAggregate) recharge(op string, dbc dbctx.Context, in domainagg.RechargeInput) (domainagg.BalanceChange, error) {
	return a.apply(op, dbc, in.UserID, in.PerformedBy, in.Reason, func(prev decimal.Decimal) decimal.Decimal {
		return prev.Add(in.Amount)
	})
}

func (a *ledgerAggregate) setAbsolute(op string, dbc dbctx.Context, in domainagg.SetAbsoluteInput) (domainagg.BalanceChange, error) {
	return a.apply(op, dbc, in.UserID, in.PerformedBy, in.Reason, func(decimal.Decimal) decimal.Decimal {
		return in.NewBalance
	})
}

// apply locks the user row, writes the next balance and appends the matching ledger row.
func (a *ledgerAggregate) apply(
	op string,
	dbc dbctx.Context,
	userID uuid.UUID,
	performedBy *uuid.UUID,
	reason string,
	next func(prev decimal.Decimal) decimal.Decimal,
) (domainagg.BalanceChange, error) {
	var out domainagg.BalanceChange

	u, err := a.deps.Users.LockByID(dbc, userID)
	if err != nil {
		return out, err
	}
	if u == nil {
		return out, notFound(op, "user %s not found", userID)
	}

	prev := u.Tokens.Round(2)
	nextBal := next(prev).Round(2)
	if nextBal.IsNegative() {
		return out, domainagg.NewError(domainagg.CodeInvalidAmount, op, "balance cannot become negative", nil)
	}
	diff := nextBal.Sub(prev)

	now := time.Now().UTC()
	affected, err := a.deps.Users.UpdateTokens(dbc, userID, nextBal, now)
	if err != nil {
		return out, err
	}
	if affected != 1 {
		return out, conflict(op, "balance update affected %d rows", affected)
	}

	row := &types.TokenTransaction{
		UserID:         userID,
		PerformedByID:  performedBy,
		PreviousTokens: prev,
		Diff:           diff,
		NewTokens:      nextBal,
		Reason:         reason,
		CreatedAt:      now,
	}
	if _, err := a.deps.Ledger.Create(dbc, []*types.TokenTransaction{row}); err != nil {
		return out, err
	}

	a.log.Debug("Balance change staged", "user_id", userID, "reason", reason, "diff", diff.StringFixed(2))
	return domainagg.BalanceChange{
		UserID:              userID,
		TransactionID:       row.ID,
		PreviousTokens:      prev,
		RechargeTokens:      diff,
		TotalRechargeTokens: nextBal,
		Reason:              reason,
		UpdatedAt:           now,
	}, nil
}

func (a *ledgerAggregate) logChange(c domainagg.BalanceChange, performedBy *uuid.UUID) {
	kv := []interface{}{
		"user_id", c.UserID,
		"transaction_id", c.TransactionID,
		"previous", c.PreviousTokens.StringFixed(2),
		"diff", c.RechargeTokens.StringFixed(2),
		"new", c.TotalRechargeTokens.StringFixed(2),
		"reason", c.Reason,
	}
	if performedBy != nil {
		kv = append(kv, "performed_by", *performedBy)
	}
	a.log.Info("Balance changed", kv...)
}
