package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bossops/opsdeck/internal/auth"
	"github.com/bossops/opsdeck/internal/credit"
	"github.com/bossops/opsdeck/internal/storage"
	"github.com/bossops/opsdeck/internal/storage/memory"
)

type testEnv struct {
	store  *memory.Store
	server *Server
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	mem := memory.New()
	users := auth.NewUsers(mem)
	if err := users.EnsureDefaultAdmin(context.Background()); err != nil {
		t.Fatalf("ensure default admin: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(mem, credit.New(mem), users, auth.NewJWT("test-secret"), []string{"*"}, logger)
	return &testEnv{store: mem, server: srv}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"username": "admin", "password": "admin123",
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		AccessToken string `json:"accessToken"`
		TokenType   string `json:"tokenType"`
	}
	decodeResp(t, rec, &resp)
	if resp.TokenType != "bearer" || resp.AccessToken == "" {
		t.Fatalf("unexpected login response %+v", resp)
	}
	return resp.AccessToken
}

func decodeResp(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, http.MethodGet, "/api/health", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp healthResponse
	decodeResp(t, rec, &resp)
	if resp.Status != "ok" || resp.Storage != "memory" {
		t.Fatalf("unexpected health response %+v", resp)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"username": "admin", "password": "wrong",
	}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var resp errorResponse
	decodeResp(t, rec, &resp)
	if resp.Error != "invalid username or password" {
		t.Fatalf("unexpected error %q", resp.Error)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]any{"username": "admin"}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthMe(t *testing.T) {
	env := newEnv(t)

	if rec := env.do(t, http.MethodGet, "/api/auth/me", nil, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	token := env.login(t)
	rec := env.do(t, http.MethodGet, "/api/auth/me", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp userResponse
	decodeResp(t, rec, &resp)
	if resp.Username != "admin" || resp.DisplayName != "Administrator" {
		t.Fatalf("unexpected account %+v", resp)
	}
}

func TestRegister(t *testing.T) {
	env := newEnv(t)
	token := env.login(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"username": "summer", "password": "pw123456", "displayName": "Summer",
	}, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"username": "summer", "password": "other",
	}, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate, got %d", rec.Code)
	}
	var resp errorResponse
	decodeResp(t, rec, &resp)
	if resp.Error != "username already exists" {
		t.Fatalf("unexpected error %q", resp.Error)
	}
}

func TestChangePassword(t *testing.T) {
	env := newEnv(t)
	token := env.login(t)

	rec := env.do(t, http.MethodPut, "/api/auth/password", map[string]any{
		"oldPassword": "nope", "newPassword": "fresh-pass",
	}, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for wrong old password, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPut, "/api/auth/password", map[string]any{
		"oldPassword": "admin123", "newPassword": "fresh-pass",
	}, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"username": "admin", "password": "fresh-pass",
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login with new password failed: %d", rec.Code)
	}
}

func TestMembers_CRUD(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, http.MethodPost, "/api/members", map[string]any{
		"name": "Summer Zhang", "role": "Gold Operator", "contact": "13800138001",
	}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created memberResponse
	decodeResp(t, rec, &created)
	if len(created.ID) != 8 {
		t.Fatalf("expected generated 8-char id, got %q", created.ID)
	}
	if created.CreditScore != 100 {
		t.Fatalf("expected default score 100, got %d", created.CreditScore)
	}
	if created.CreditHistory == nil || len(created.CreditHistory) != 0 {
		t.Fatalf("expected empty creditHistory, got %v", created.CreditHistory)
	}

	rec = env.do(t, http.MethodGet, "/api/members", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d", rec.Code)
	}
	var list []memberResponse
	decodeResp(t, rec, &list)
	if len(list) != 1 || list[0].Name != "Summer Zhang" {
		t.Fatalf("unexpected list %+v", list)
	}

	rec = env.do(t, http.MethodPut, "/api/members/"+created.ID, map[string]any{"name": "S. Zhang"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}
	var updated memberResponse
	decodeResp(t, rec, &updated)
	if updated.Name != "S. Zhang" || updated.CreditScore != 100 {
		t.Fatalf("unexpected update result %+v", updated)
	}

	rec = env.do(t, http.MethodPut, "/api/members/"+created.ID, map[string]any{}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty patch must 400, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPut, "/api/members/ghost", map[string]any{"name": "X"}, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodDelete, "/api/members/"+created.ID, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	var ok okResponse
	decodeResp(t, rec, &ok)
	if !ok.OK {
		t.Fatal("expected ok:true")
	}

	// Deleting again still reports ok.
	rec = env.do(t, http.MethodDelete, "/api/members/"+created.ID, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat delete: %d", rec.Code)
	}
}

func TestCreateMember_Validation(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, http.MethodPost, "/api/members", map[string]any{"name": "NoContact"}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateMember_WithLinkedAccount(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, http.MethodPost, "/api/members", map[string]any{
		"name": "Leo Li", "role": "Store Manager", "contact": "13800138002",
		"username": "leo", "password": "pw123456",
	}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"username": "leo", "password": "pw123456",
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("linked account login failed: %d", rec.Code)
	}
}

func TestProducts_Lifecycle(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, http.MethodPost, "/api/products", map[string]any{
		"name": "Ceramic Mug", "productId": "SKU-100", "operatorId": "m1",
	}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	var created map[string]any
	decodeResp(t, rec, &created)
	if created["status"] != "Pending" {
		t.Fatalf("expected default status Pending, got %v", created["status"])
	}
	if created["workspace"] != "Tmall" {
		t.Fatalf("expected default workspace, got %v", created["workspace"])
	}
	id, _ := created["id"].(string)

	rec = env.do(t, http.MethodGet, "/api/products/"+id, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: %d", rec.Code)
	}

	rec = env.do(t, http.MethodPut, "/api/products/"+id, map[string]any{"status": "Active", "dayCount": 3}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}
	var updated map[string]any
	decodeResp(t, rec, &updated)
	if updated["status"] != "Active" {
		t.Fatalf("expected Active, got %v", updated["status"])
	}

	// Delete is a soft transition to Trashed; the row survives.
	rec = env.do(t, http.MethodDelete, "/api/products/"+id, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/api/products/"+id, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("trashed product must remain fetchable, got %d", rec.Code)
	}
	var trashed map[string]any
	decodeResp(t, rec, &trashed)
	if trashed["status"] != "Trashed" {
		t.Fatalf("expected Trashed, got %v", trashed["status"])
	}
}

func TestProducts_InvalidStatus(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, http.MethodPost, "/api/products", map[string]any{
		"name": "X", "productId": "SKU-1", "operatorId": "m1", "status": "Exploded",
	}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestProducts_WorkspaceFilter(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, http.MethodPost, "/api/products", map[string]any{
		"name": "Factory Item", "productId": "SKU-200", "operatorId": "m1", "workspace": "TaoFactory",
	}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/products", nil, "")
	var tmall []map[string]any
	decodeResp(t, rec, &tmall)
	if len(tmall) != 0 {
		t.Fatalf("default workspace list must not include TaoFactory rows, got %d", len(tmall))
	}

	rec = env.do(t, http.MethodGet, "/api/products?workspace=TaoFactory", nil, "")
	var factory []map[string]any
	decodeResp(t, rec, &factory)
	if len(factory) != 1 {
		t.Fatalf("expected 1 TaoFactory row, got %d", len(factory))
	}
}

func TestTargets_CRUD(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, http.MethodPost, "/api/targets", map[string]any{
		"title": "Hit weekly sales", "type": "weekly", "deadline": "2026-09-05", "operatorId": "m1",
	}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	var created map[string]any
	decodeResp(t, rec, &created)
	if created["priority"] != "Medium" {
		t.Fatalf("expected default priority Medium, got %v", created["priority"])
	}
	id, _ := created["id"].(string)

	rec = env.do(t, http.MethodPut, "/api/targets/"+id, map[string]any{
		"completedAt": "2026-09-01T10:00:00Z", "completionNote": "done early",
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}
	var updated map[string]any
	decodeResp(t, rec, &updated)
	if updated["completedAt"] != "2026-09-01T10:00:00Z" {
		t.Fatalf("expected completedAt set, got %v", updated["completedAt"])
	}

	rec = env.do(t, http.MethodDelete, "/api/targets/"+id, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	rec = env.do(t, http.MethodGet, "/api/targets", nil, "")
	var list []map[string]any
	decodeResp(t, rec, &list)
	if len(list) != 0 {
		t.Fatalf("target delete is physical, expected empty list, got %d", len(list))
	}
}

func TestTargets_Validation(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, http.MethodPost, "/api/targets", map[string]any{"title": "incomplete"}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreditTrigger(t *testing.T) {
	env := newEnv(t)
	env.store.Seed(storage.CollectionMembers, storage.Row{
		"id": "m1", "name": "Summer Zhang", "role": "Gold Operator", "contact": "1", "creditScore": 10,
	})

	rec := env.do(t, http.MethodPost, "/api/credits/trigger", map[string]any{
		"userId": "m1", "eventType": "TASK_COMPLETE", "relatedId": "p1", "cycleKey": "cycle-1",
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("trigger: %d %s", rec.Code, rec.Body.String())
	}
	var record map[string]any
	decodeResp(t, rec, &record)
	if record["change"] != float64(2) {
		t.Fatalf("expected +2 record, got %v", record["change"])
	}

	// Replay is a skip, still 200.
	rec = env.do(t, http.MethodPost, "/api/credits/trigger", map[string]any{
		"userId": "m1", "eventType": "TASK_COMPLETE", "relatedId": "p1", "cycleKey": "cycle-1",
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("replay: %d", rec.Code)
	}
	var skipped skippedResponse
	decodeResp(t, rec, &skipped)
	if !skipped.Skipped || skipped.Reason != "Duplicate event" {
		t.Fatalf("expected duplicate skip, got %+v", skipped)
	}

	// The member list reflects the new score and carries the history.
	rec = env.do(t, http.MethodGet, "/api/members", nil, "")
	var members []memberResponse
	decodeResp(t, rec, &members)
	if len(members) != 1 || members[0].CreditScore != 12 {
		t.Fatalf("expected score 12, got %+v", members)
	}
	if len(members[0].CreditHistory) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(members[0].CreditHistory))
	}
}

func TestCreditTrigger_Validation(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, http.MethodPost, "/api/credits/trigger", map[string]any{"eventType": "TASK_COMPLETE"}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/credits/trigger", map[string]any{
		"userId": "m1", "eventType": "NOT_A_THING",
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unknown event is a skip, got %d", rec.Code)
	}
	var skipped skippedResponse
	decodeResp(t, rec, &skipped)
	if !skipped.Skipped || skipped.Reason != "Unknown event type: NOT_A_THING" {
		t.Fatalf("unexpected skip %+v", skipped)
	}
}

func TestCreditEventsCatalog(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, http.MethodGet, "/api/credits/events", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var events []creditEventResponse
	decodeResp(t, rec, &events)
	if len(events) != 13 {
		t.Fatalf("expected 13 catalog events, got %d", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i-1].EventType > events[i].EventType {
			t.Fatalf("catalog not sorted at %d: %s > %s", i, events[i-1].EventType, events[i].EventType)
		}
	}
	var dayComplete *creditEventResponse
	for i := range events {
		if events[i].EventType == "DAY_COMPLETE" {
			dayComplete = &events[i]
		}
	}
	if dayComplete == nil || dayComplete.ReasonTemplate == "" || dayComplete.Change != 5 {
		t.Fatalf("unexpected DAY_COMPLETE entry %+v", dayComplete)
	}
}

func TestAdminStats(t *testing.T) {
	env := newEnv(t)

	if rec := env.do(t, http.MethodGet, "/api/admin/stats", nil, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	env.store.Seed(storage.CollectionMembers,
		storage.Row{"id": "m1", "name": "A", "role": "Operator", "creditScore": 40},
		storage.Row{"id": "m2", "name": "B", "role": "Operator", "creditScore": 120},
		storage.Row{"id": "m3", "name": "C", "role": "Operator", "creditScore": 200},
	)
	env.store.Seed(storage.CollectionProducts,
		storage.Row{"id": "p1", "workspace": "Tmall", "status": "Active"},
		storage.Row{"id": "p2", "workspace": "TaoFactory", "status": "Pending"},
	)
	env.store.Seed(storage.CollectionTargets,
		storage.Row{"id": "t1", "workspace": "Tmall", "completedAt": "2026-08-01"},
		storage.Row{"id": "t2", "workspace": "Tmall"},
	)

	token := env.login(t)
	rec := env.do(t, http.MethodGet, "/api/admin/stats", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: %d %s", rec.Code, rec.Body.String())
	}
	var resp statsResponse
	decodeResp(t, rec, &resp)

	if resp.Overview.TotalMembers != 3 || resp.Overview.TotalProducts != 2 || resp.Overview.TotalTargets != 2 {
		t.Fatalf("unexpected overview %+v", resp.Overview)
	}
	if resp.Overview.CompletedTargets != 1 || resp.Overview.TargetCompletionRate != 50 {
		t.Fatalf("unexpected completion stats %+v", resp.Overview)
	}
	if resp.Overview.AvgCredit != 120 || resp.Overview.MaxCredit != 200 || resp.Overview.MinCredit != 40 {
		t.Fatalf("unexpected credit stats %+v", resp.Overview)
	}
	if resp.CreditDistribution.Danger != 1 || resp.CreditDistribution.Good != 1 || resp.CreditDistribution.Legendary != 1 {
		t.Fatalf("unexpected distribution %+v", resp.CreditDistribution)
	}
	if _, ok := resp.WorkspaceComparison["tmall"]; !ok {
		t.Fatalf("missing tmall comparison: %v", resp.WorkspaceComparison)
	}
	if ws, ok := resp.WorkspaceComparison["taoFactory"]; !ok || ws.Products != 1 {
		t.Fatalf("unexpected taoFactory comparison %+v", resp.WorkspaceComparison)
	}
	if resp.ProductStatusDistribution["Active"] != 1 || resp.ProductStatusDistribution["Pending"] != 1 {
		t.Fatalf("unexpected status distribution %v", resp.ProductStatusDistribution)
	}
	if len(resp.MemberRanking) != 3 || resp.MemberRanking[0].CreditScore != 200 {
		t.Fatalf("expected ranking by score desc, got %+v", resp.MemberRanking)
	}
}

func TestAdminUsers(t *testing.T) {
	env := newEnv(t)
	token := env.login(t)

	rec := env.do(t, http.MethodGet, "/api/admin/users", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d", rec.Code)
	}
	var users []userResponse
	decodeResp(t, rec, &users)
	if len(users) != 1 || users[0].Username != "admin" {
		t.Fatalf("unexpected users %+v", users)
	}
	adminID := users[0].ID

	rec = env.do(t, http.MethodDelete, "/api/admin/users/"+adminID, nil, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("self-delete must 400, got %d", rec.Code)
	}
	var resp errorResponse
	decodeResp(t, rec, &resp)
	if resp.Error != "cannot delete the current account" {
		t.Fatalf("unexpected error %q", resp.Error)
	}

	rec = env.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"username": "temp", "password": "pw",
	}, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d", rec.Code)
	}
	var created userResponse
	decodeResp(t, rec, &created)

	rec = env.do(t, http.MethodPut, "/api/admin/users/"+created.ID+"/reset-password", map[string]any{
		"newPassword": "reset-pass",
	}, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset password: %d %s", rec.Code, rec.Body.String())
	}
	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"username": "temp", "password": "reset-pass",
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login after reset failed: %d", rec.Code)
	}

	rec = env.do(t, http.MethodDelete, "/api/admin/users/"+created.ID, nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	rec = env.do(t, http.MethodDelete, "/api/admin/users/"+created.ID, nil, token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing user, got %d", rec.Code)
	}
}

func TestAdminAdjustCredit(t *testing.T) {
	env := newEnv(t)
	env.store.Seed(storage.CollectionMembers, storage.Row{
		"id": "m1", "name": "A", "role": "Operator", "creditScore": 3,
	})
	token := env.login(t)

	rec := env.do(t, http.MethodPut, "/api/admin/members/m1/credit", map[string]any{
		"change": -10,
	}, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing reason must 400, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPut, "/api/admin/members/m1/credit", map[string]any{
		"change": -10, "reason": "penalty after review",
	}, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("adjust: %d %s", rec.Code, rec.Body.String())
	}
	var resp adjustCreditResponse
	decodeResp(t, rec, &resp)
	if !resp.OK || resp.NewScore != 0 {
		t.Fatalf("expected clamped score 0, got %+v", resp)
	}

	rec = env.do(t, http.MethodPut, "/api/admin/members/ghost/credit", map[string]any{
		"change": 1, "reason": "r",
	}, token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newEnv(t)
	env.do(t, http.MethodGet, "/api/health", nil, "")
	rec := env.do(t, http.MethodGet, "/metrics", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("opsdeck_http_requests_total")) {
		t.Fatal("expected request counter in metrics output")
	}
}
