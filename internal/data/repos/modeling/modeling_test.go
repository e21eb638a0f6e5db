package modeling

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/graphledger-backend/internal/data/repos/testutil"
	types "github.com/yungbote/graphledger-backend/internal/domain"
	"github.com/yungbote/graphledger-backend/internal/domain/modeling"
	"github.com/yungbote/graphledger-backend/internal/pkg/dbctx"
)

func TestModelRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	models := NewModelRepo(db, log)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	owner := testutil.SeedUser(t, ctx, tx, testutil.UniqueEmail("modelrepo"), "0")

	created, err := models.Create(dbc, []*types.Model{{OwnerID: owner.ID, Name: "roads", CurrentVersion: 1}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	m := created[0]

	got, err := models.GetByOwnerAndName(dbc, owner.ID, "roads")
	if err != nil || got == nil || got.ID != m.ID {
		t.Fatalf("GetByOwnerAndName: got=%v err=%v", got, err)
	}

	byID, err := models.GetByID(dbc, m.ID)
	if err != nil || byID == nil || byID.CurrentVersion != 1 {
		t.Fatalf("GetByID: got=%v err=%v", byID, err)
	}

	list, err := models.ListByOwner(dbc, owner.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByOwner: want=1 got=%d err=%v", len(list), err)
	}
}

func TestVersionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	versions := NewVersionRepo(db, log)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	owner := testutil.SeedUser(t, ctx, tx, testutil.UniqueEmail("versionrepo"), "0")
	m, v1 := testutil.SeedModel(t, ctx, tx, owner.ID, "grid", testutil.SampleGraph())

	if v1.NodeCount != 4 || v1.EdgeCount != 8 {
		t.Fatalf("NewVersion counts: want=4/8 got=%d/%d", v1.NodeCount, v1.EdgeCount)
	}

	g := testutil.SampleGraph().WithEdge("A", "B", 5.4)
	g["E"] = map[string]float64{"A": 1}
	v2, err := modeling.NewVersion(m.ID, 2, g, nil)
	if err != nil {
		t.Fatalf("NewVersion: %v", err)
	}
	if _, err := versions.Create(dbc, []*types.Version{v2}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	maxN, err := versions.MaxVersionNumber(dbc, m.ID)
	if err != nil || maxN != 2 {
		t.Fatalf("MaxVersionNumber: want=2 got=%d err=%v", maxN, err)
	}
	maxN, err = versions.MaxVersionNumber(dbc, uuid.New())
	if err != nil || maxN != 0 {
		t.Fatalf("MaxVersionNumber (none): want=0 got=%d err=%v", maxN, err)
	}

	latest, err := versions.GetLatestByModel(dbc, m.ID)
	if err != nil || latest == nil || latest.VersionNumber != 2 {
		t.Fatalf("GetLatestByModel: got=%v err=%v", latest, err)
	}
	decoded, err := latest.DecodeGraph()
	if err != nil {
		t.Fatalf("DecodeGraph: %v", err)
	}
	if w, _ := decoded.Edge("A", "B"); w != 5.4 {
		t.Fatalf("DecodeGraph: want A->B=5.4 got=%v", w)
	}

	first, err := versions.GetByModelAndNumber(dbc, m.ID, 1)
	if err != nil || first == nil || first.ID != v1.ID {
		t.Fatalf("GetByModelAndNumber: got=%v err=%v", first, err)
	}

	all, err := versions.List(dbc, m.ID, VersionFilter{})
	if err != nil || len(all) != 2 || all[0].VersionNumber != 2 {
		t.Fatalf("List: want [2,1] got=%d rows err=%v", len(all), err)
	}
	byNodes, err := versions.List(dbc, m.ID, VersionFilter{NodeCount: testutil.PtrInt(5)})
	if err != nil || len(byNodes) != 1 || byNodes[0].VersionNumber != 2 {
		t.Fatalf("List nodeCount=5: got=%d rows err=%v", len(byNodes), err)
	}
	both, err := versions.List(dbc, m.ID, VersionFilter{NodeCount: testutil.PtrInt(4), EdgeCount: testutil.PtrInt(8)})
	if err != nil || len(both) != 1 || both[0].VersionNumber != 1 {
		t.Fatalf("List nodeCount=4 edgeCount=8: want=[1] got=%d rows err=%v", len(both), err)
	}
	none, err := versions.List(dbc, m.ID, VersionFilter{NodeCount: testutil.PtrInt(4), EdgeCount: testutil.PtrInt(9)})
	if err != nil || len(none) != 0 {
		t.Fatalf("List nodeCount=4 edgeCount=9: want=0 got=%d err=%v", len(none), err)
	}
}

func TestVersionRepoRejectsDuplicateNumber(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	versions := NewVersionRepo(db, testutil.Logger(t))
	owner := testutil.SeedUser(t, ctx, tx, testutil.UniqueEmail("dupversion"), "0")
	m, _ := testutil.SeedModel(t, ctx, tx, owner.ID, "dup", testutil.SampleGraph())

	dup, err := modeling.NewVersion(m.ID, 1, testutil.SampleGraph(), nil)
	if err != nil {
		t.Fatalf("NewVersion: %v", err)
	}
	if _, err := versions.Create(dbctx.Context{Ctx: ctx, Tx: tx}, []*types.Version{dup}); err == nil {
		t.Fatalf("Create: expected unique violation for version 1")
	}
}
