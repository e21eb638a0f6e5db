package services

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yungbote/graphledger-backend/internal/data/aggregates"
	"github.com/yungbote/graphledger-backend/internal/data/repos"
	types "github.com/yungbote/graphledger-backend/internal/domain"
	domainagg "github.com/yungbote/graphledger-backend/internal/domain/aggregates"
	"github.com/yungbote/graphledger-backend/internal/observability"
	"github.com/yungbote/graphledger-backend/internal/pkg/ctxutil"
	"github.com/yungbote/graphledger-backend/internal/pkg/dbctx"
	"github.com/yungbote/graphledger-backend/internal/pkg/logger"
)

const minPasswordLen = 8

type LoginResult struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        *types.User `json:"user"`
}

type AuthService interface {
	RegisterUser(ctx context.Context, email, password string) (*types.User, error)
	LoginUser(ctx context.Context, email, password string) (LoginResult, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	runner     aggregates.TxRunner
	log        *logger.Logger
	userRepo   repos.UserRepo
	ledger     domainagg.LedgerAggregate
	hasher     PasswordHasher
	signer     TokenSigner
	initTokens decimal.Decimal
	metrics    *observability.Metrics
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	ledger domainagg.LedgerAggregate,
	hasher PasswordHasher,
	signer TokenSigner,
	initTokens decimal.Decimal,
	metrics *observability.Metrics,
) AuthService {
	return &authService{
		runner:     aggregates.NewGormTxRunner(db),
		log:        log.With("service", "AuthService"),
		userRepo:   userRepo,
		ledger:     ledger,
		hasher:     hasher,
		signer:     signer,
		initTokens: initTokens.Round(2),
		metrics:    metrics,
	}
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func validateCredentials(op, email, password string) error {
	if email == "" || password == "" {
		return domainagg.NewError(domainagg.CodeValidation, op, "email and password are required", nil)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "invalid email address", nil)
	}
	return nil
}

func (as *authService) RegisterUser(ctx context.Context, email, password string) (*types.User, error) {
	const op = "Auth.Register"
	email = normalizeEmail(email)
	if err := validateCredentials(op, email, password); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLen {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "password must be at least 8 characters", nil)
	}
	hash, err := as.hasher.Hash(password)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}

	user := &types.User{
		ID:       uuid.New(),
		Email:    email,
		Password: hash,
		Role:     types.RoleUser,
		Tokens:   decimal.Zero,
	}
	var grant *domainagg.BalanceChange
	err = as.runner.InTx(ctx, func(dbc dbctx.Context) error {
		exists, err := as.userRepo.EmailExists(dbc, email)
		if err != nil {
			return err
		}
		if exists {
			return domainagg.NewError(domainagg.CodeConflict, op, "email already registered", nil)
		}
		if _, err := as.userRepo.Create(dbc, []*types.User{user}); err != nil {
			return err
		}
		if !as.initTokens.IsPositive() {
			return nil
		}
		change, err := as.ledger.RechargeInTx(dbc, domainagg.RechargeInput{
			UserID: user.ID,
			Amount: as.initTokens,
			Reason: types.ReasonInitialGrant,
		})
		if err != nil {
			return err
		}
		user.Tokens = change.TotalRechargeTokens
		grant = &change
		return nil
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if grant != nil {
		as.metrics.ObserveTokens(grant.Reason, grant.RechargeTokens.InexactFloat64())
	}
	as.log.Info("User registered", "user_id", user.ID, "initial_tokens", user.Tokens.StringFixed(2))
	return user, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (LoginResult, error) {
	const op = "Auth.Login"
	email = normalizeEmail(email)
	if err := validateCredentials(op, email, password); err != nil {
		return LoginResult{}, err
	}
	user, err := as.userRepo.GetByEmail(dbctx.Context{Ctx: ctx}, email)
	if err != nil {
		return LoginResult{}, aggregates.MapError(op, err)
	}
	if user == nil || !as.hasher.Compare(user.Password, password) {
		as.log.Warn("Login rejected", "email", email)
		return LoginResult{}, domainagg.NewError(domainagg.CodeUnauthorized, op, "invalid email or password", nil)
	}
	tok, exp, err := as.signer.Sign(user.ID, user.Role)
	if err != nil {
		return LoginResult{}, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	as.log.Info("User logged in", "user_id", user.ID)
	return LoginResult{AccessToken: tok, TokenType: "Bearer", ExpiresAt: exp, User: user}, nil
}

// SetContextFromToken verifies tokenString and attaches the caller identity to ctx.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	const op = "Auth.VerifyToken"
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return ctx, domainagg.NewError(domainagg.CodeUnauthorized, op, "missing bearer token", nil)
	}
	claims, err := as.signer.Verify(tokenString)
	if err != nil {
		return ctx, domainagg.NewError(domainagg.CodeUnauthorized, op, "invalid or expired token", err)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, domainagg.NewError(domainagg.CodeUnauthorized, op, "invalid subject in token", err)
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Role:        claims.Role,
	}), nil
}

// caller returns the identity the auth middleware attached to ctx.
func caller(ctx context.Context, op string) (*ctxutil.RequestData, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeUnauthorized, op, "request is not authenticated", nil)
	}
	return rd, nil
}
