package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/graphledger-backend/internal/data/db"
	repotest "github.com/yungbote/graphledger-backend/internal/data/repos/testutil"
)

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := repotest.Logger(t)
	a, err := Build(context.Background(), log, validConfig(), db.Wrap(repotest.DB(t), log))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return a
}

func (c *apiClient) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.engine.ServeHTTP(rec, req)
	out := map[string]any{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			c.t.Fatalf("decode %s %s: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec.Code, out
}

func (c *apiClient) must(method, path string, body any, want int) map[string]any {
	c.t.Helper()
	code, out := c.do(method, path, body)
	if code != want {
		c.t.Fatalf("%s %s: want status %d got %d (%v)", method, path, want, code, out)
	}
	return out
}

func errorCode(out map[string]any) string {
	e, _ := out["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

// signup registers and logs in a fresh user, returning a client holding its token.
func signup(t *testing.T, a *App, prefix string) *apiClient {
	t.Helper()
	c := &apiClient{t: t, engine: a.Server.Engine}
	email := repotest.UniqueEmail(prefix)
	creds := map[string]string{"email": email, "password": "correct-horse"}
	c.must(http.MethodPost, "/api/auth/register", creds, http.StatusCreated)
	out := c.must(http.MethodPost, "/api/auth/login", creds, http.StatusOK)
	c.token, _ = out["access_token"].(string)
	if c.token == "" {
		t.Fatalf("login returned no token: %v", out)
	}
	return c
}

func TestHTTPModelLifecycle(t *testing.T) {
	a := newTestApp(t)
	owner := signup(t, a, "owner")

	me := owner.must(http.MethodGet, "/api/users/me", nil, http.StatusOK)
	if tokens := me["me"].(map[string]any)["tokens"]; tokens != 10.0 {
		t.Fatalf("initial tokens: want 10 got %v", tokens)
	}

	created := owner.must(http.MethodPost, "/api/models", map[string]any{
		"name": "roads-" + repotest.UniqueEmail("m"),
		"graph": map[string]map[string]float64{
			"A": {"B": 2, "C": 4},
			"B": {"A": 2, "D": 1},
			"C": {"A": 4, "D": 3},
			"D": {"B": 1, "C": 3},
		},
	}, http.StatusCreated)
	modelID := created["model"].(map[string]any)["id"].(string)
	base := "/api/models/" + modelID

	exec := owner.must(http.MethodPost, base+"/execute", map[string]string{"start": "A", "goal": "D"}, http.StatusOK)
	if exec["path_cost"] != 3.0 {
		t.Fatalf("path cost: %v", exec["path_cost"])
	}
	path, _ := exec["path"].([]any)
	if len(path) != 3 || path[0] != "A" || path[2] != "D" {
		t.Fatalf("path: %v", exec["path"])
	}

	code, out := owner.do(http.MethodPost, base+"/execute", map[string]string{"start": "A", "goal": "Z"})
	if code != http.StatusBadRequest || errorCode(out) != "validation" {
		t.Fatalf("unknown goal: status=%d body=%v", code, out)
	}

	req := owner.must(http.MethodPost, base+"/weight-changes", map[string]any{"from": "A", "to": "B", "weight": 6}, http.StatusCreated)
	reqID := req["id"].(string)
	list := owner.must(http.MethodGet, base+"/weight-changes?status=pending", nil, http.StatusOK)
	if list["pending"] != 1.0 {
		t.Fatalf("pending count: %v", list["pending"])
	}

	outsider := signup(t, a, "outsider")
	code, out = outsider.do(http.MethodPost, base+"/weight-changes/"+reqID+"/approve", nil)
	if code != http.StatusForbidden || errorCode(out) != "forbidden" {
		t.Fatalf("outsider approve: status=%d body=%v", code, out)
	}

	approved := owner.must(http.MethodPost, base+"/weight-changes/"+reqID+"/approve", nil, http.StatusOK)
	if approved["version_number"] != 2.0 || approved["new_weight"] != 2.4 {
		t.Fatalf("approve result: %v", approved)
	}
	code, out = owner.do(http.MethodPost, base+"/weight-changes/"+reqID+"/reject", map[string]string{"reason": "late"})
	if code != http.StatusConflict || errorCode(out) != "conflict" {
		t.Fatalf("second decision: status=%d body=%v", code, out)
	}

	v2 := owner.must(http.MethodGet, base+"/versions/2", nil, http.StatusOK)
	if v2["version_number"] != 2.0 {
		t.Fatalf("version 2: %v", v2)
	}
	versions := owner.must(http.MethodGet, base+"/versions?node_count=4", nil, http.StatusOK)
	if rows, _ := versions["versions"].([]any); len(rows) != 2 {
		t.Fatalf("versions: %v", versions)
	}
	owner.must(http.MethodGet, base+"/versions/9", nil, http.StatusNotFound)
	owner.must(http.MethodGet, base+"/versions?from=yesterday", nil, http.StatusBadRequest)

	sim := owner.must(http.MethodPost, base+"/simulations", map[string]any{
		"from": "A", "to": "B", "start": 1, "stop": 3, "step": 1, "origin": "A", "goal": "D",
	}, http.StatusCreated)
	simID := sim["simulation"].(map[string]any)["id"].(string)
	got := owner.must(http.MethodGet, "/api/simulations/"+simID, nil, http.StatusOK)
	if rows, _ := got["results"].([]any); len(rows) != 3 {
		t.Fatalf("simulation results: %v", got["results"])
	}
	sims := owner.must(http.MethodGet, base+"/simulations", nil, http.StatusOK)
	if rows, _ := sims["simulations"].([]any); len(rows) != 1 {
		t.Fatalf("simulations: %v", sims)
	}

	ledger := owner.must(http.MethodGet, "/api/users/me/transactions?limit=10", nil, http.StatusOK)
	// initial grant, model create, one execution
	if ledger["total"] != 3.0 {
		t.Fatalf("ledger total: %v", ledger["total"])
	}
}

func TestHTTPAuthAndErrors(t *testing.T) {
	a := newTestApp(t)
	anon := &apiClient{t: t, engine: a.Server.Engine}

	code, out := anon.do(http.MethodGet, "/api/users/me", nil)
	if code != http.StatusUnauthorized || errorCode(out) != "unauthorized" {
		t.Fatalf("anonymous me: status=%d body=%v", code, out)
	}
	anon.token = "not-a-jwt"
	code, _ = anon.do(http.MethodGet, "/api/users/me", nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status=%d", code)
	}
	anon.token = ""

	code, out = anon.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "nobody@example.com", "password": "whatever1"})
	if code != http.StatusUnauthorized || errorCode(out) != "unauthorized" {
		t.Fatalf("bad login: status=%d body=%v", code, out)
	}

	user := signup(t, a, "plain")
	code, out = user.do(http.MethodPost, "/api/users/recharge", map[string]any{"email": "x@example.com", "amount": 5})
	if code != http.StatusForbidden {
		t.Fatalf("non-admin recharge: status=%d body=%v", code, out)
	}
	user.must(http.MethodGet, "/api/models/not-a-uuid", nil, http.StatusBadRequest)
	user.must(http.MethodPost, "/api/models", map[string]any{"name": "bad", "graph": map[string]any{}}, http.StatusBadRequest)

	code, out = anon.do(http.MethodGet, "/api/nope", nil)
	if code != http.StatusNotFound || errorCode(out) != "route_not_found" {
		t.Fatalf("unknown route: status=%d body=%v", code, out)
	}
}

func TestHTTPAdminRecharge(t *testing.T) {
	a := newTestApp(t)
	target := signup(t, a, "target")
	me := target.must(http.MethodGet, "/api/users/me", nil, http.StatusOK)
	email := me["me"].(map[string]any)["email"].(string)

	adminEmail := repotest.UniqueEmail("admin")
	if _, _, err := a.Services.User.SeedAdmin(context.Background(), adminEmail, "admin-password"); err != nil {
		t.Fatalf("SeedAdmin: %v", err)
	}
	admin := &apiClient{t: t, engine: a.Server.Engine}
	out := admin.must(http.MethodPost, "/api/auth/login", map[string]string{"email": adminEmail, "password": "admin-password"}, http.StatusOK)
	admin.token = out["access_token"].(string)

	change := admin.must(http.MethodPost, "/api/users/recharge", map[string]any{"email": email, "amount": 2.5}, http.StatusOK)
	if change["total_recharge_tokens"] != 12.5 {
		t.Fatalf("recharge result: %v", change)
	}
	code, body := admin.do(http.MethodPost, "/api/users/recharge", map[string]any{"email": email, "amount": -1})
	if code != http.StatusUnprocessableEntity || errorCode(body) != "invalid_amount" {
		t.Fatalf("negative recharge: status=%d body=%v", code, body)
	}
	admin.must(http.MethodPost, "/api/users/recharge", map[string]any{"email": email}, http.StatusBadRequest)
}

func TestHTTPHealthAndMetrics(t *testing.T) {
	a := newTestApp(t)
	rec := httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("missing request id header")
	}

	rec = httptest.NewRecorder()
	a.Server.Engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "graphledger_api_requests_total") {
		t.Fatalf("metrics body missing api counter")
	}
}
