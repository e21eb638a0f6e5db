package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/graphledger-backend/internal/data/aggregates"
	"github.com/yungbote/graphledger-backend/internal/data/repos"
	types "github.com/yungbote/graphledger-backend/internal/domain"
	domainagg "github.com/yungbote/graphledger-backend/internal/domain/aggregates"
	"github.com/yungbote/graphledger-backend/internal/observability"
	"github.com/yungbote/graphledger-backend/internal/pkg/dbctx"
	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
)

const (
	defaultLedgerPage = 50
	maxLedgerPage     = 500
)

type AdminRechargeInput struct {
	Email  string
	Amount float64
	Reason string
}

type TransactionPage struct {
	Items  []*types.TokenTransaction `json:"items"`
	Total  int64                     `json:"total"`
	Limit  int                       `json:"limit"`
	Offset int                       `json:"offset"`
}

type UserService interface {
	GetMe(dbc dbctx.Context) (*types.User, error)
	ListTransactions(dbc dbctx.Context, limit, offset int) (TransactionPage, error)
	AdminRecharge(ctx context.Context, in AdminRechargeInput) (domainagg.BalanceChange, error)
	SeedAdmin(ctx context.Context, email, password string) (*types.User, bool, error)
}

type userService struct {
	runner   aggregates.TxRunner
	log      *logger.Logger
	userRepo repos.UserRepo
	ledger   domainagg.LedgerAggregate
	txRepo   repos.TokenTransactionRepo
	hasher   PasswordHasher
	metrics  *observability.Metrics
}

func NewUserService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	txRepo repos.TokenTransactionRepo,
	ledger domainagg.LedgerAggregate,
	hasher PasswordHasher,
	metrics *observability.Metrics,
) UserService {
	return &userService{
		runner:   aggregates.NewGormTxRunner(db),
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
		ledger:   ledger,
		txRepo:   txRepo,
		hasher:   hasher,
		metrics:  metrics,
	}
}

func (us *userService) GetMe(dbc dbctx.Context) (*types.User, error) {
	const op = "Users.GetMe"
	rd, err := caller(dbc.Ctx, op)
	if err != nil {
		return nil, err
	}
	u, err := us.userRepo.GetByID(dbc, rd.UserID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if u == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "user not found", nil)
	}
	return u, nil
}

func (us *userService) ListTransactions(dbc dbctx.Context, limit, offset int) (TransactionPage, error) {
	const op = "Users.ListTransactions"
	rd, err := caller(dbc.Ctx, op)
	if err != nil {
		return TransactionPage{}, err
	}
	if limit <= 0 {
		limit = defaultLedgerPage
	}
	if limit > maxLedgerPage {
		limit = maxLedgerPage
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := us.txRepo.ListByUser(dbc, rd.UserID, limit, offset)
	if err != nil {
		return TransactionPage{}, aggregates.MapError(op, err)
	}
	total, err := us.txRepo.CountByUser(dbc, rd.UserID)
	if err != nil {
		return TransactionPage{}, aggregates.MapError(op, err)
	}
	return TransactionPage{Items: rows, Total: total, Limit: limit, Offset: offset}, nil
}

// AdminRecharge credits the user named by email. The caller must be an admin.
func (us *userService) AdminRecharge(ctx context.Context, in AdminRechargeInput) (domainagg.BalanceChange, error) {
	const op = "Users.AdminRecharge"
	rd, err := caller(ctx, op)
	if err != nil {
		return domainagg.BalanceChange{}, err
	}
	if rd.Role != types.RoleAdmin {
		return domainagg.BalanceChange{}, domainagg.NewError(domainagg.CodeForbidden, op, "admin role required", nil)
	}
	amount, err := aggregates.AmountFromFloat(op, in.Amount)
	if err != nil {
		return domainagg.BalanceChange{}, err
	}
	email := normalizeEmail(in.Email)
	if email == "" {
		return domainagg.BalanceChange{}, domainagg.NewError(domainagg.CodeValidation, op, "target email is required", nil)
	}
	target, err := us.userRepo.GetByEmail(dbctx.Context{Ctx: ctx}, email)
	if err != nil {
		return domainagg.BalanceChange{}, aggregates.MapError(op, err)
	}
	if target == nil {
		return domainagg.BalanceChange{}, domainagg.NewError(domainagg.CodeNotFound, op, "no user with email "+email, nil)
	}

	performer := rd.UserID
	change, err := us.ledger.Recharge(ctx, domainagg.RechargeInput{
		UserID:      target.ID,
		Amount:      amount,
		PerformedBy: &performer,
		Reason:      strings.TrimSpace(in.Reason),
	})
	if err != nil {
		return domainagg.BalanceChange{}, err
	}
	us.metrics.ObserveTokens(change.Reason, change.RechargeTokens.InexactFloat64())
	return change, nil
}

// SeedAdmin creates the admin account if missing and promotes an existing account otherwise.
// created reports whether a new row was inserted.
func (us *userService) SeedAdmin(ctx context.Context, email, password string) (*types.User, bool, error) {
	const op = "Users.SeedAdmin"
	email = normalizeEmail(email)
	if err := validateCredentials(op, email, password); err != nil {
		return nil, false, err
	}

	var out *types.User
	created := false
	err := us.runner.InTx(ctx, func(dbc dbctx.Context) error {
		existing, err := us.userRepo.GetByEmail(dbc, email)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.Role != types.RoleAdmin {
				if err := us.userRepo.UpdateRole(dbc, existing.ID, types.RoleAdmin); err != nil {
					return err
				}
				existing.Role = types.RoleAdmin
			}
			out = existing
			return nil
		}
		hash, err := us.hasher.Hash(password)
		if err != nil {
			return err
		}
		u := &types.User{
			ID:       uuid.New(),
			Email:    email,
			Password: hash,
			Role:     types.RoleAdmin,
			Tokens:   decimal.Zero,
		}
		if _, err := us.userRepo.Create(dbc, []*types.User{u}); err != nil {
			return err
		}
		out = u
		created = true
		return nil
	})
	if err != nil {
		return nil, false, aggregates.MapError(op, err)
	}
	us.log.Info("Admin seeded", "user_id", out.ID, "email", email, "created", created)
	return out, created, nil
}
