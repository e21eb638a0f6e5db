package aggregates_test

import (
	"encoding/json"
	"testing"

	"github.com/yungbote/graphledger-backend/internal/data/aggregates"
	repotest "github.com/yungbote/graphledger-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/graphledger-backend/internal/domain/aggregates"
	"github.com/yungbote/graphledger-backend/internal/graph"
	"github.com/yungbote/graphledger-backend/internal/pkg/dbctx"
)

func TestSimulateSweepsEdge(t *testing.T) {
	f := txFixture(t)
	u := repotest.SeedUser(t, f.ctx, f.db, repotest.UniqueEmail("sim"), "1.00")
	m, v := repotest.SeedModel(t, f.ctx, f.db, u.ID, "roads", repotest.SampleGraph())

	res, err := f.sims.Simulate(f.ctx, domainagg.SimulateInput{
		ModelID: m.ID,
		UserID:  u.ID,
		From:    "A",
		To:      "B",
		Start:   1,
		Stop:    3,
		Step:    1,
		Origin:  "A",
		Goal:    "D",
	})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if res.Simulation.VersionID != v.ID || res.Simulation.VersionNumber != 1 {
		t.Fatalf("simulation header: %+v", res.Simulation)
	}
	if len(res.Results) != 3 {
		t.Fatalf("results: want 3 got %d", len(res.Results))
	}
	wantWeights := []string{"1.00", "2.00", "3.00"}
	wantCosts := []string{"2", "3", "4"}
	for i, r := range res.Results {
		if r.StepIndex != i || r.TestedWeight.StringFixed(2) != wantWeights[i] {
			t.Fatalf("result %d: %+v", i, r)
		}
		if !r.Reachable || !r.Cost.Valid || r.Cost.Decimal.String() != wantCosts[i] {
			t.Fatalf("result %d cost: reachable=%v cost=%v", i, r.Reachable, r.Cost)
		}
	}
	var path []string
	if err := json.Unmarshal(res.Best.Path, &path); err != nil {
		t.Fatalf("best path: %v", err)
	}
	if res.Best.StepIndex != 0 || len(path) != 3 || path[1] != "B" {
		t.Fatalf("best: step=%d path=%v", res.Best.StepIndex, path)
	}

	stored, err := f.repos.SimulationResults.ListBySimulation(f.dbc(), res.Simulation.ID)
	if err != nil || len(stored) != 3 {
		t.Fatalf("stored results: n=%d err=%v", len(stored), err)
	}
	if got := f.user(t, u.ID).Tokens.StringFixed(2); got != "1.00" {
		t.Fatalf("simulations must not charge, balance=%s", got)
	}
	latest, _ := f.repos.Versions.MaxVersionNumber(f.dbc(), m.ID)
	if latest != 1 {
		t.Fatalf("simulations must not create versions, max=%d", latest)
	}
}

func TestSimulateUnreachableSamples(t *testing.T) {
	f := txFixture(t)
	u := repotest.SeedUser(t, f.ctx, f.db, repotest.UniqueEmail("sim"), "0")
	g := graph.Graph{"A": {"B": 1}, "C": {"D": 1}}
	m, _ := repotest.SeedModel(t, f.ctx, f.db, u.ID, "islands", g)

	res, err := f.sims.Simulate(f.ctx, domainagg.SimulateInput{
		ModelID: m.ID, UserID: u.ID,
		From: "A", To: "B",
		Start: 0.5, Stop: 1.5, Step: 0.5,
		Origin: "A", Goal: "D",
	})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(res.Results) != 3 {
		t.Fatalf("results: want 3 got %d", len(res.Results))
	}
	for _, r := range res.Results {
		if r.Reachable || r.Cost.Valid || string(r.Path) != "[]" {
			t.Fatalf("unreachable sample: %+v", r)
		}
	}
	if res.Best != res.Results[0] {
		t.Fatalf("best must fall back to the first sample")
	}
}

func TestSimulateValidation(t *testing.T) {
	f := txFixture(t)
	u := repotest.SeedUser(t, f.ctx, f.db, repotest.UniqueEmail("sim"), "0")
	m, _ := repotest.SeedModel(t, f.ctx, f.db, u.ID, "roads", repotest.SampleGraph())

	base := domainagg.SimulateInput{ModelID: m.ID, UserID: u.ID, From: "A", To: "B", Start: 1, Stop: 3, Step: 1, Origin: "A", Goal: "D"}

	bad := []func(in *domainagg.SimulateInput){
		func(in *domainagg.SimulateInput) { in.Step = 0 },
		func(in *domainagg.SimulateInput) { in.Stop = in.Start },
		func(in *domainagg.SimulateInput) { in.To = "D" },
		func(in *domainagg.SimulateInput) { in.Stop = 1000; in.Step = 0.5 },
		func(in *domainagg.SimulateInput) { in.Start = 0; in.Stop = 1e12; in.Step = 1e-9 },
		func(in *domainagg.SimulateInput) { in.Start = 0; in.Stop = 1; in.Step = 1e-11 },
		func(in *domainagg.SimulateInput) { in.Origin = "" },
	}
	for i, mutate := range bad {
		in := base
		mutate(&in)
		_, err := f.sims.Simulate(f.ctx, in)
		if !domainagg.IsCode(err, domainagg.CodeValidation) {
			t.Fatalf("case %d: want validation, got %v", i, err)
		}
	}
}

func TestSimulateUncappedStillRejectsRunawaySweeps(t *testing.T) {
	f := txFixture(t)
	u := repotest.SeedUser(t, f.ctx, f.db, repotest.UniqueEmail("sim"), "0")
	m, _ := repotest.SeedModel(t, f.ctx, f.db, u.ID, "roads", repotest.SampleGraph())

	sims := aggregates.NewSimulationAggregate(aggregates.SimulationAggregateDeps{
		Base: aggregates.BaseDeps{
			DB:       f.db,
			Log:      repotest.Logger(t),
			Runner:   aggregates.NewGormTxRunner(f.db),
			CASGuard: aggregates.NewCASGuard(f.db),
		},
		Models:      f.repos.Models,
		Versions:    f.repos.Versions,
		Simulations: f.repos.Simulations,
		Results:     f.repos.SimulationResults,
	})

	for _, in := range []domainagg.SimulateInput{
		{Start: 0, Stop: 1e12, Step: 1e-9},
		{Start: 0, Stop: 1, Step: 1e-11},
		{Start: 0, Stop: graph.MaxSweepLen, Step: 1},
	} {
		in.ModelID, in.UserID = m.ID, u.ID
		in.From, in.To, in.Origin, in.Goal = "A", "B", "A", "D"
		if _, err := sims.Simulate(f.ctx, in); !domainagg.IsCode(err, domainagg.CodeValidation) {
			t.Fatalf("stop=%v step=%v: want validation, got %v", in.Stop, in.Step, err)
		}
	}

	rows, err := f.repos.Simulations.ListByModel(dbctx.Context{Ctx: f.ctx}, m.ID, 10)
	if err != nil {
		t.Fatalf("ListByModel: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rejected sweeps must not write headers, got %d", len(rows))
	}
}
