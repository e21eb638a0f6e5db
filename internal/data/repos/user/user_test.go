package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/graphledger-backend/internal/data/repos/testutil"
	types "github.com/yungbote/graphledger-backend/internal/domain"
	"github.com/yungbote/graphledger-backend/internal/pkg/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	email := testutil.UniqueEmail("userrepo")

	created, err := repo.Create(dbc, []*types.User{
		{Email: "  " + email + " ", Password: "pw"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 || created[0].ID == uuid.Nil {
		t.Fatalf("Create: unexpected result: %+v", created)
	}
	if created[0].Role != types.RoleUser {
		t.Fatalf("Create: want role=%s got=%s", types.RoleUser, created[0].Role)
	}

	got, err := repo.GetByID(dbc, created[0].ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if !got.Tokens.IsZero() {
		t.Fatalf("GetByID: new user should start at zero tokens, got=%s", got.Tokens)
	}

	byEmail, err := repo.GetByEmail(dbc, email)
	if err != nil || byEmail == nil || byEmail.ID != created[0].ID {
		t.Fatalf("GetByEmail: got=%v err=%v", byEmail, err)
	}

	exists, err := repo.EmailExists(dbc, email)
	if err != nil || !exists {
		t.Fatalf("EmailExists: want true got=%v err=%v", exists, err)
	}
	exists, err = repo.EmailExists(dbc, "does-not-exist@example.com")
	if err != nil || exists {
		t.Fatalf("EmailExists (missing): want false got=%v err=%v", exists, err)
	}

	missing, err := repo.GetByID(dbc, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("GetByID (missing): want nil got=%v err=%v", missing, err)
	}
}

func TestUserRepoLockAndUpdateTokens(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	u := testutil.SeedUser(t, ctx, tx, testutil.UniqueEmail("lock"), "10.00")

	locked, err := repo.LockByID(dbc, u.ID)
	if err != nil || locked == nil {
		t.Fatalf("LockByID: got=%v err=%v", locked, err)
	}
	if !locked.Tokens.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("LockByID: want tokens=10 got=%s", locked.Tokens)
	}

	n, err := repo.UpdateTokens(dbc, u.ID, decimal.RequireFromString("12.345"), time.Now().UTC())
	if err != nil {
		t.Fatalf("UpdateTokens: %v", err)
	}
	if n != 1 {
		t.Fatalf("UpdateTokens: want affected=1 got=%d", n)
	}
	got, _ := repo.GetByID(dbc, u.ID)
	if !got.Tokens.Equal(decimal.RequireFromString("12.35")) {
		t.Fatalf("UpdateTokens: want 12.35 got=%s", got.Tokens)
	}

	n, err = repo.UpdateTokens(dbc, uuid.New(), decimal.NewFromInt(1), time.Time{})
	if err != nil {
		t.Fatalf("UpdateTokens (missing): %v", err)
	}
	if n != 0 {
		t.Fatalf("UpdateTokens (missing): want affected=0 got=%d", n)
	}

	if err := repo.UpdateRole(dbc, u.ID, types.RoleAdmin); err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	got, _ = repo.GetByID(dbc, u.ID)
	if !got.IsAdmin() {
		t.Fatalf("UpdateRole: expected admin")
	}
}
