package app

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/graphledger-backend/internal/data/repos"
	"github.com/yungbote/graphledger-backend/internal/observability"
	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
	"github.com/yungbote/graphledger-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	User       services.UserService
	Model      services.ModelService
	Moderation services.ModerationService
	Simulation services.SimulationService
}

func wireServices(
	db *gorm.DB,
	log *logger.Logger,
	cfg Config,
	set repos.Set,
	aggs Aggregates,
	clients Clients,
	metrics *observability.Metrics,
) (Services, error) {
	log.Info("Wiring services...")

	hasher, err := services.NewPasswordHasher(cfg.Auth.PasswordHasher, cfg.Auth.BcryptCost)
	if err != nil {
		return Services{}, fmt.Errorf("init password hasher: %w", err)
	}
	signer, err := services.NewTokenSigner(cfg.signerConfig())
	if err != nil {
		return Services{}, fmt.Errorf("init token signer: %w", err)
	}
	initTokens := decimal.NewFromFloat(cfg.InitUserTokens)

	return Services{
		Auth:       services.NewAuthService(db, log, set.Users, aggs.Ledger, hasher, signer, initTokens, metrics),
		User:       services.NewUserService(db, log, set.Users, set.TokenTransactions, aggs.Ledger, hasher, metrics),
		Model:      services.NewModelService(log, aggs.Models, set.Models, set.Versions, clients.VersionCache, metrics),
		Moderation: services.NewModerationService(log, aggs.Moderation, set.Models, set.WeightChanges),
		Simulation: services.NewSimulationService(log, aggs.Simulation, set.Simulations, set.SimulationResults, set.Models, metrics),
	}, nil
}
