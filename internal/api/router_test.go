package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/panelhive/panelhive/internal/middleware"
	"github.com/panelhive/panelhive/internal/services"
)

func setupRouter(t *testing.T) (http.Handler, *Router) {
	t.Helper()
	store := newMemoryStore()
	rt := NewRouter(store, nil)
	mux := http.NewServeMux()
	rt.Register(mux)
	return middleware.WithAuth(mux), rt
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	out := map[string]any{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec.Code, out
}

func doJSONList(t *testing.T, h http.Handler, method, path, token string) (int, []map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	out := []map[string]any{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec.Code, out
}

func registerPanelist(t *testing.T, h http.Handler, email string) (token, panelistID string) {
	t.Helper()
	code, out := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "password": "secret123",
	})
	if code != http.StatusOK {
		t.Fatalf("register %s: status %d", email, code)
	}
	return out["token"].(string), out["panelist_id"].(string)
}

func adminToken(t *testing.T, rt *Router, email string) string {
	t.Helper()
	res, err := rt.AuthService().RegisterAdmin(email, "adminpass", services.RoleSystemAdmin)
	if err != nil {
		t.Fatalf("register admin: %v", err)
	}
	return res.Token
}

func TestRegisterAndProfileAccess(t *testing.T) {
	h, _ := setupRouter(t)
	token, pid := registerPanelist(t, h, "alice@example.com")

	code, out := doJSON(t, h, http.MethodGet, "/api/panelists/"+pid, token, nil)
	if code != http.StatusOK {
		t.Fatalf("get own profile: status %d", code)
	}
	if out["points_balance"].(float64) != 0 {
		t.Fatalf("fresh panelist balance = %v", out["points_balance"])
	}

	code, _ = doJSON(t, h, http.MethodGet, "/api/panelists/"+pid, "", nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated profile read: status %d, want 401", code)
	}

	other, _ := registerPanelist(t, h, "bob@example.com")
	code, _ = doJSON(t, h, http.MethodGet, "/api/panelists/"+pid, other, nil)
	if code != http.StatusForbidden {
		t.Fatalf("cross-panelist profile read: status %d, want 403", code)
	}
}

func TestSurveyCreateRequiresPermission(t *testing.T) {
	h, _ := setupRouter(t)
	token, _ := registerPanelist(t, h, "alice@example.com")

	code, _ := doJSON(t, h, http.MethodPost, "/api/surveys", token, map[string]any{"title": "Habits", "points": 50})
	if code != http.StatusForbidden {
		t.Fatalf("panelist survey create: status %d, want 403", code)
	}
	code, _ = doJSON(t, h, http.MethodPost, "/api/surveys", "", map[string]any{"title": "Habits", "points": 50})
	if code != http.StatusUnauthorized {
		t.Fatalf("anonymous survey create: status %d, want 401", code)
	}
}

func TestSurveyCompleteFlow(t *testing.T) {
	h, rt := setupRouter(t)
	admin := adminToken(t, rt, "admin@example.com")
	token, pid := registerPanelist(t, h, "alice@example.com")

	code, sv := doJSON(t, h, http.MethodPost, "/api/surveys", admin, map[string]any{"title": "Habits", "points": 50})
	if code != http.StatusOK {
		t.Fatalf("create survey: status %d", code)
	}
	surveyID := sv["id"].(string)

	code, _ = doJSON(t, h, http.MethodPost, "/api/surveys/"+surveyID+"/complete", token, nil)
	if code != http.StatusConflict {
		t.Fatalf("complete draft survey: status %d, want 409", code)
	}

	if code, _ = doJSON(t, h, http.MethodPost, "/api/surveys/"+surveyID+"/activate", admin, nil); code != http.StatusOK {
		t.Fatalf("activate: status %d", code)
	}

	code, out := doJSON(t, h, http.MethodPost, "/api/surveys/"+surveyID+"/complete", token, nil)
	if code != http.StatusOK {
		t.Fatalf("complete: status %d", code)
	}
	if out["points_awarded"].(float64) != 50 {
		t.Fatalf("points_awarded = %v, want 50", out["points_awarded"])
	}

	code, _ = doJSON(t, h, http.MethodPost, "/api/surveys/"+surveyID+"/complete", token, nil)
	if code != http.StatusConflict {
		t.Fatalf("second complete: status %d, want 409", code)
	}

	code, profile := doJSON(t, h, http.MethodGet, "/api/panelists/"+pid, token, nil)
	if code != http.StatusOK || profile["points_balance"].(float64) != 50 {
		t.Fatalf("balance after complete = %v (status %d), want 50", profile["points_balance"], code)
	}
}

func TestAudienceAssignGatesCompletion(t *testing.T) {
	h, rt := setupRouter(t)
	admin := adminToken(t, rt, "admin@example.com")
	aliceTok, alicePID := registerPanelist(t, h, "alice@example.com")
	bobTok, bobPID := registerPanelist(t, h, "bob@example.com")

	if code, _ := doJSON(t, h, http.MethodPut, "/api/panelists/"+alicePID, aliceTok, map[string]any{"gender": "female", "age": 30}); code != http.StatusOK {
		t.Fatalf("update alice: status %d", code)
	}
	if code, _ := doJSON(t, h, http.MethodPut, "/api/panelists/"+bobPID, bobTok, map[string]any{"gender": "male", "age": 40}); code != http.StatusOK {
		t.Fatalf("update bob: status %d", code)
	}

	filters := map[string]any{"gender": "female", "age_min": 25, "age_max": 34}
	code, count := doJSON(t, h, http.MethodPost, "/api/audiences/filter", admin, filters)
	if code != http.StatusOK || count["audience_count"].(float64) != 1 {
		t.Fatalf("audience_count = %v (status %d), want 1", count["audience_count"], code)
	}

	code, sv := doJSON(t, h, http.MethodPost, "/api/surveys", admin, map[string]any{
		"title": "Targeted", "points": 25, "filters": filters,
	})
	if code != http.StatusOK {
		t.Fatalf("create survey: status %d", code)
	}
	surveyID := sv["id"].(string)

	body := map[string]any{"gender": "female", "age_min": 25, "age_max": 34, "reason": "pilot wave"}
	code, res := doJSON(t, h, http.MethodPost, "/api/surveys/"+surveyID+"/assign-temporary-audience", admin, body)
	if code != http.StatusOK || res["panelist_count"].(float64) != 1 {
		t.Fatalf("panelist_count = %v (status %d), want 1", res["panelist_count"], code)
	}

	if code, _ := doJSON(t, h, http.MethodPost, "/api/surveys/"+surveyID+"/activate", admin, nil); code != http.StatusOK {
		t.Fatalf("activate: status %d", code)
	}

	if code, _ := doJSON(t, h, http.MethodPost, "/api/surveys/"+surveyID+"/complete", bobTok, nil); code != http.StatusForbidden {
		t.Fatalf("unqualified complete: status %d, want 403", code)
	}
	if code, _ := doJSON(t, h, http.MethodPost, "/api/surveys/"+surveyID+"/complete", aliceTok, nil); code != http.StatusOK {
		t.Fatalf("qualified complete: status %d, want 200", code)
	}
}

func TestContestPrizeFlow(t *testing.T) {
	h, rt := setupRouter(t)
	admin := adminToken(t, rt, "admin@example.com")
	aliceTok, alicePID := registerPanelist(t, h, "alice@example.com")

	now := time.Now().UTC()
	code, c := doJSON(t, h, http.MethodPost, "/api/contests", admin, map[string]any{
		"title":        "Summer Sprint",
		"start_date":   now.Add(-time.Hour).Format(time.RFC3339),
		"end_date":     now.Add(24 * time.Hour).Format(time.RFC3339),
		"prize_points": 500,
	})
	if code != http.StatusOK {
		t.Fatalf("create contest: status %d", code)
	}
	contestID := c["id"].(string)

	if code, _ := doJSON(t, h, http.MethodPost, "/api/contests/"+contestID+"/join", aliceTok, nil); code != http.StatusConflict {
		t.Fatalf("join draft contest: status %d, want 409", code)
	}
	if code, _ := doJSON(t, h, http.MethodPost, "/api/contests/"+contestID+"/activate", admin, nil); code != http.StatusOK {
		t.Fatalf("activate: status %d", code)
	}
	if code, _ := doJSON(t, h, http.MethodPost, "/api/contests/"+contestID+"/join", aliceTok, nil); code != http.StatusOK {
		t.Fatalf("join: status %d", code)
	}

	// earn points inside the window through a survey
	code, sv := doJSON(t, h, http.MethodPost, "/api/surveys", admin, map[string]any{"title": "Habits", "points": 120})
	if code != http.StatusOK {
		t.Fatalf("create survey: status %d", code)
	}
	surveyID := sv["id"].(string)
	doJSON(t, h, http.MethodPost, "/api/surveys/"+surveyID+"/activate", admin, nil)
	if code, _ := doJSON(t, h, http.MethodPost, "/api/surveys/"+surveyID+"/complete", aliceTok, nil); code != http.StatusOK {
		t.Fatalf("complete: status %d", code)
	}

	code, rows := doJSONList(t, h, http.MethodPost, "/api/contests/"+contestID+"/update-leaderboard", admin)
	if code != http.StatusOK {
		t.Fatalf("update-leaderboard: status %d", code)
	}
	if len(rows) != 1 || rows[0]["points_earned"].(float64) != 120 || rows[0]["rank"].(float64) != 1 {
		t.Fatalf("leaderboard rows = %+v", rows)
	}

	awardBody := map[string]string{"panelist_id": alicePID}
	if code, _ = doJSON(t, h, http.MethodPost, "/api/contests/"+contestID+"/award-prize", admin, awardBody); code != http.StatusBadRequest {
		t.Fatalf("award before end: status %d, want 400", code)
	}
	if code, _ = doJSON(t, h, http.MethodPost, "/api/contests/"+contestID+"/end", admin, nil); code != http.StatusOK {
		t.Fatalf("end: status %d", code)
	}
	if code, _ = doJSON(t, h, http.MethodPost, "/api/contests/"+contestID+"/award-prize", admin, awardBody); code != http.StatusOK {
		t.Fatalf("award: status %d", code)
	}
	if code, _ = doJSON(t, h, http.MethodPost, "/api/contests/"+contestID+"/award-prize", admin, awardBody); code != http.StatusConflict {
		t.Fatalf("second award: status %d, want 409", code)
	}

	code, profile := doJSON(t, h, http.MethodGet, "/api/panelists/"+alicePID, aliceTok, nil)
	if code != http.StatusOK || profile["points_balance"].(float64) != 620 {
		t.Fatalf("balance after prize = %v, want 620", profile["points_balance"])
	}
}

func TestRedeemFlow(t *testing.T) {
	h, rt := setupRouter(t)
	admin := adminToken(t, rt, "admin@example.com")
	aliceTok, alicePID := registerPanelist(t, h, "alice@example.com")

	code, offer := doJSON(t, h, http.MethodPost, "/api/offers", admin, map[string]any{
		"merchant": "Coffee Hut", "title": "$5 voucher", "points_cost": 100, "is_active": true,
	})
	if code != http.StatusOK {
		t.Fatalf("create offer: status %d", code)
	}
	offerID := offer["id"].(string)

	if code, _ := doJSON(t, h, http.MethodPost, "/api/offers/"+offerID+"/redeem", aliceTok, nil); code != http.StatusConflict {
		t.Fatalf("overdraft redeem: status %d, want 409", code)
	}
	if code, _ := doJSON(t, h, http.MethodPost, "/api/offers/missing/redeem", aliceTok, nil); code != http.StatusNotFound {
		t.Fatalf("unknown offer redeem: status %d, want 404", code)
	}

	code, sv := doJSON(t, h, http.MethodPost, "/api/surveys", admin, map[string]any{"title": "Habits", "points": 150})
	if code != http.StatusOK {
		t.Fatalf("create survey: status %d", code)
	}
	surveyID := sv["id"].(string)
	doJSON(t, h, http.MethodPost, "/api/surveys/"+surveyID+"/activate", admin, nil)
	doJSON(t, h, http.MethodPost, "/api/surveys/"+surveyID+"/complete", aliceTok, nil)

	code, red := doJSON(t, h, http.MethodPost, "/api/offers/"+offerID+"/redeem", aliceTok, nil)
	if code != http.StatusOK || red["points_spent"].(float64) != 100 {
		t.Fatalf("redeem = %+v (status %d)", red, code)
	}

	code, profile := doJSON(t, h, http.MethodGet, "/api/panelists/"+alicePID, aliceTok, nil)
	if code != http.StatusOK || profile["points_balance"].(float64) != 50 {
		t.Fatalf("balance after redeem = %v, want 50", profile["points_balance"])
	}
}

func TestScanSubmitAndReview(t *testing.T) {
	h, rt := setupRouter(t)
	admin := adminToken(t, rt, "admin@example.com")
	aliceTok, alicePID := registerPanelist(t, h, "alice@example.com")

	code, task := doJSON(t, h, http.MethodPost, "/api/scans", aliceTok, map[string]string{"image_key": "mail/receipt-1.jpg"})
	if code != http.StatusOK {
		t.Fatalf("submit scan: status %d", code)
	}
	taskID := task["id"].(string)

	if code, _ := doJSON(t, h, http.MethodGet, "/api/scans", aliceTok, nil); code != http.StatusForbidden {
		t.Fatalf("panelist reading review queue: status %d, want 403", code)
	}

	code, reviewed := doJSON(t, h, http.MethodPost, "/api/scans/"+taskID+"/review", admin, map[string]any{"approve": true, "points": 30})
	if code != http.StatusOK || reviewed["status"].(string) != "approved" {
		t.Fatalf("review = %+v (status %d)", reviewed, code)
	}
	if code, _ := doJSON(t, h, http.MethodPost, "/api/scans/"+taskID+"/review", admin, map[string]any{"approve": true, "points": 30}); code != http.StatusConflict {
		t.Fatalf("second review: status %d, want 409", code)
	}

	code, profile := doJSON(t, h, http.MethodGet, "/api/panelists/"+alicePID, aliceTok, nil)
	if code != http.StatusOK || profile["points_balance"].(float64) != 30 {
		t.Fatalf("balance after approval = %v, want 30", profile["points_balance"])
	}
}

func TestActivityRequiresPermission(t *testing.T) {
	h, rt := setupRouter(t)
	admin := adminToken(t, rt, "admin@example.com")
	aliceTok, _ := registerPanelist(t, h, "alice@example.com")

	if code, _ := doJSON(t, h, http.MethodGet, "/api/activity", aliceTok, nil); code != http.StatusForbidden {
		t.Fatalf("panelist activity read: status %d, want 403", code)
	}
	if code, _ := doJSONList(t, h, http.MethodGet, "/api/activity", admin); code != http.StatusOK {
		t.Fatalf("admin activity read: status %d", code)
	}
}
