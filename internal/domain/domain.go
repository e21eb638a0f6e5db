package domain

import (
	"github.com/yungbote/graphledger-backend/internal/domain/ledger"
	"github.com/yungbote/graphledger-backend/internal/domain/modeling"
	"github.com/yungbote/graphledger-backend/internal/domain/moderation"
	"github.com/yungbote/graphledger-backend/internal/domain/simulation"
	"github.com/yungbote/graphledger-backend/internal/domain/user"
)

const (
	RoleUser  = user.RoleUser
	RoleAdmin = user.RoleAdmin

	WeightChangePending  = moderation.StatusPending
	WeightChangeApproved = moderation.StatusApproved
	WeightChangeRejected = moderation.StatusRejected

	ReasonInitialGrant  = ledger.ReasonInitialGrant
	ReasonAdminRecharge = ledger.ReasonAdminRecharge
	ReasonModelCreate   = ledger.ReasonModelCreate
	ReasonModelExecute  = ledger.ReasonModelExecute
	ReasonBalanceSet    = ledger.ReasonBalanceSet
)

type (
	User = user.User

	Model   = modeling.Model
	Version = modeling.Version

	WeightChangeRequest = moderation.WeightChangeRequest

	Simulation       = simulation.Simulation
	SimulationResult = simulation.Result

	TokenTransaction = ledger.TokenTransaction
)

// AllModels lists every persisted entity in migration order.
func AllModels() []any {
	return []any{
		&User{},
		&TokenTransaction{},
		&Model{},
		&Version{},
		&WeightChangeRequest{},
		&Simulation{},
		&SimulationResult{},
	}
}
