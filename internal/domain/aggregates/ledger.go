package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/graphledger-backend/internal/pkg/dbctx"
)

var LedgerAggregateContract = Contract{
	Name:        "Tokens.LedgerAggregate",
	TxOwnership: TxJoinable,
	Notes: "Owns locked read-modify-write of users.tokens together with the append-only " +
		"token_transactions row. The InTx variants join a caller-owned transaction.",
}

// LedgerAggregate owns balance mutation invariants.
//
// Write method failures should return *aggregates.Error with codes:
// CodeInvalidAmount, CodeNotFound, CodeConflict, CodeRetryable, CodeInternal.
type LedgerAggregate interface {
	Aggregate

	// Recharge adds a strictly positive amount to the user's balance in its own transaction.
	Recharge(ctx context.Context, in RechargeInput) (BalanceChange, error)

	// SetAbsolute writes an explicit non-negative balance in its own transaction.
	SetAbsolute(ctx context.Context, in SetAbsoluteInput) (BalanceChange, error)

	// RechargeInTx is Recharge inside dbc.Tx. The caller commits or rolls back.
	RechargeInTx(dbc dbctx.Context, in RechargeInput) (BalanceChange, error)

	// SetAbsoluteInTx is SetAbsolute inside dbc.Tx. The caller commits or rolls back.
	SetAbsoluteInTx(dbc dbctx.Context, in SetAbsoluteInput) (BalanceChange, error)
}

type RechargeInput struct {
	UserID      uuid.UUID
	Amount      decimal.Decimal
	PerformedBy *uuid.UUID
	Reason      string
}

type SetAbsoluteInput struct {
	UserID      uuid.UUID
	NewBalance  decimal.Decimal
	PerformedBy *uuid.UUID
	Reason      string
}

// BalanceChange describes one committed ledger movement.
type BalanceChange struct {
	UserID              uuid.UUID       `json:"user_id"`
	TransactionID       uuid.UUID       `json:"transaction_id"`
	PreviousTokens      decimal.Decimal `json:"previous_tokens"`
	RechargeTokens      decimal.Decimal `json:"recharge_tokens"`
	TotalRechargeTokens decimal.Decimal `json:"total_recharge_tokens"`
	Reason              string          `json:"reason"`
	UpdatedAt           time.Time       `json:"updated_at"`
}
