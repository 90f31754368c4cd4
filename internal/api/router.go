package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/panelhive/panelhive/internal/middleware"
	"github.com/panelhive/panelhive/internal/services"
)

// Router wires the HTTP surface to the services. Every service sees the
// shared Store through its own narrow adapter.
type Router struct {
	store     Store
	auth      *services.AuthService
	panelists *services.PanelistService
	surveys   *services.SurveyService
	audiences *services.AudienceService
	contests  *services.ContestService
	offers    *services.RedemptionService
	scans     *services.ScanService
}

func NewRouter(store Store, objects services.ObjectStore) *Router {
	return &Router{
		store:     store,
		auth:      services.NewAuthService(newAuthStoreAdapter(store), middleware.SignToken),
		panelists: services.NewPanelistService(newPanelistStoreAdapter(store)),
		surveys:   services.NewSurveyService(newSurveyStoreAdapter(store)),
		audiences: services.NewAudienceService(newAudienceStoreAdapter(store)),
		contests:  services.NewContestService(newContestStoreAdapter(store)),
		offers:    services.NewRedemptionService(newRedemptionStoreAdapter(store)),
		scans:     services.NewScanService(newScanStoreAdapter(store), objects),
	}
}

// AuthService exposes the auth service for out-of-band admin seeding.
func (rt *Router) AuthService() *services.AuthService { return rt.auth }

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth/register", rt.handleRegister) // POST
	mux.HandleFunc("/api/auth/login", rt.handleLogin)       // POST
	mux.HandleFunc("/api/panelists", rt.handlePanelists)    // GET, POST
	mux.HandleFunc("/api/panelists/", rt.handlePanelistScoped)
	mux.HandleFunc("/api/surveys", rt.handleSurveys) // GET, POST
	mux.HandleFunc("/api/surveys/", rt.handleSurveyScoped)
	mux.HandleFunc("/api/audiences/filter", rt.handleAudienceFilter) // POST
	mux.HandleFunc("/api/contests", rt.handleContests)               // GET, POST
	mux.HandleFunc("/api/contests/", rt.handleContestScoped)
	mux.HandleFunc("/api/offers", rt.handleOffers) // GET, POST
	mux.HandleFunc("/api/offers/", rt.handleOfferScoped)
	mux.HandleFunc("/api/scans", rt.handleScans)          // GET, POST
	mux.HandleFunc("/api/scans/image", rt.handleScanImage) // GET
	mux.HandleFunc("/api/scans/", rt.handleScanScoped)
	mux.HandleFunc("/api/activity", rt.handleActivity) // GET
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeServiceError(w http.ResponseWriter, err error) {
	if se, ok := services.AsServiceError(err); ok {
		status := http.StatusInternalServerError
		switch se.Code {
		case services.ErrorInvalid:
			status = http.StatusBadRequest
		case services.ErrorUnauthorized:
			status = http.StatusUnauthorized
		case services.ErrorForbidden:
			status = http.StatusForbidden
		case services.ErrorNotFound:
			status = http.StatusNotFound
		case services.ErrorConflict:
			status = http.StatusConflict
		}
		writeJSON(w, status, map[string]string{"error": string(se.Code), "message": se.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal", "message": err.Error()})
}

// claims returns the caller's token claims or writes 401.
func (rt *Router) claims(w http.ResponseWriter, r *http.Request) (*middleware.Claims, bool) {
	c, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized", "message": "authentication required"})
		return nil, false
	}
	return c, true
}

// requirePermission returns the caller's claims only when the role holds the
// given action.
func (rt *Router) requirePermission(w http.ResponseWriter, r *http.Request, action string) (*middleware.Claims, bool) {
	c, ok := rt.claims(w, r)
	if !ok {
		return nil, false
	}
	if !services.HasPermission(c.Role, action) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden", "message": "insufficient permissions"})
		return nil, false
	}
	return c, true
}

// callerPanelistID resolves the panelist profile linked to the caller's user
// account. Empty for admin accounts.
func (rt *Router) callerPanelistID(c *middleware.Claims) string {
	u := rt.store.FindUserByEmail(c.Email)
	if u == nil {
		return ""
	}
	return u.PanelistID
}

// --- Auth ---

// POST /api/auth/register
func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := rt.auth.Register(req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"token": res.Token, "user_id": res.UserID, "panelist_id": res.PanelistID, "role": res.Role,
	})
}

// POST /api/auth/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := rt.auth.Login(req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"token": res.Token, "user_id": res.UserID, "panelist_id": res.PanelistID, "role": res.Role,
	})
}

// --- Panelists ---

// GET /api/panelists (admin), POST /api/panelists (admin)
func (rt *Router) handlePanelists(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := rt.requirePermission(w, r, services.PermManagePanelists); !ok {
			return
		}
		writeJSON(w, http.StatusOK, rt.store.ListActivePanelists())
	case http.MethodPost:
		if _, ok := rt.requirePermission(w, r, services.PermManagePanelists); !ok {
			return
		}
		var p Panelist
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		created, err := rt.panelists.Create(toServicePanelist(&p))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, fromServicePanelist(created))
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET/PUT/DELETE /api/panelists/{id}, GET /api/panelists/{id}/ledger
func (rt *Router) handlePanelistScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/panelists/")
	parts := strings.Split(rest, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	id := parts[0]
	c, ok := rt.claims(w, r)
	if !ok {
		return
	}
	self := rt.callerPanelistID(c) == id
	if !self && !services.HasPermission(c.Role, services.PermManagePanelists) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden", "message": "insufficient permissions"})
		return
	}

	if len(parts) == 2 && parts[1] == "ledger" {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		entries, err := rt.panelists.Ledger(id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		out := make([]*PointsEntry, 0, len(entries))
		for _, e := range entries {
			out = append(out, fromServicePointsEntry(e))
		}
		writeJSON(w, http.StatusOK, out)
		return
	}
	if len(parts) != 1 {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := rt.panelists.Get(id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, fromServicePanelist(p))
	case http.MethodPut:
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p, err := rt.panelists.Update(id, raw, c.UID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, fromServicePanelist(p))
	case http.MethodDelete:
		if err := rt.panelists.Deactivate(id, c.UID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// --- Surveys ---

// GET /api/surveys, POST /api/surveys (admin)
func (rt *Router) handleSurveys(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		c, ok := rt.claims(w, r)
		if !ok {
			return
		}
		surveys, err := rt.surveys.List()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if services.HasPermission(c.Role, services.PermCreateSurveys) {
			out := make([]*Survey, 0, len(surveys))
			for _, sv := range surveys {
				out = append(out, fromServiceSurvey(sv))
			}
			writeJSON(w, http.StatusOK, out)
			return
		}
		// panelists see active surveys they qualify for
		pid := rt.callerPanelistID(c)
		out := []*Survey{}
		for _, sv := range surveys {
			if sv.Status != services.SurveyStatusActive {
				continue
			}
			if sv.Filters != nil {
				q := rt.store.GetQualification(sv.ID, pid)
				if q == nil || !q.IsQualified {
					continue
				}
			}
			out = append(out, fromServiceSurvey(sv))
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodPost:
		c, ok := rt.requirePermission(w, r, services.PermCreateSurveys)
		if !ok {
			return
		}
		var sv Survey
		if err := json.NewDecoder(r.Body).Decode(&sv); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		created, err := rt.surveys.Create(c.UID, toServiceSurvey(&sv))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, fromServiceSurvey(created))
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET/PUT /api/surveys/{id} plus POST activate, deactivate, complete and
// assign-temporary-audience subroutes.
func (rt *Router) handleSurveyScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/surveys/")
	parts := strings.Split(rest, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	id := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			if _, ok := rt.claims(w, r); !ok {
				return
			}
			sv, err := rt.surveys.Get(id)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, fromServiceSurvey(sv))
		case http.MethodPut:
			c, ok := rt.requirePermission(w, r, services.PermCreateSurveys)
			if !ok {
				return
			}
			var raw map[string]any
			if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			sv, err := rt.surveys.Update(id, raw, c.UID)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, fromServiceSurvey(sv))
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if len(parts) != 2 || r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	switch parts[1] {
	case "activate":
		c, ok := rt.requirePermission(w, r, services.PermCreateSurveys)
		if !ok {
			return
		}
		if err := rt.surveys.Activate(id, c.UID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	case "deactivate":
		c, ok := rt.requirePermission(w, r, services.PermCreateSurveys)
		if !ok {
			return
		}
		if err := rt.surveys.Deactivate(id, c.UID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	case "complete":
		c, ok := rt.claims(w, r)
		if !ok {
			return
		}
		pid := rt.callerPanelistID(c)
		if pid == "" {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden", "message": "no panelist profile"})
			return
		}
		points, err := rt.surveys.Complete(id, pid)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "points_awarded": points})
	case "assign-temporary-audience":
		c, ok := rt.requirePermission(w, r, services.PermManageQualifications)
		if !ok {
			return
		}
		var req struct {
			AudienceFilters
			Reason string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		count, err := rt.audiences.Assign(id, toServiceFilters(&req.AudienceFilters), req.Reason, c.UID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"panelist_count": count})
	default:
		http.NotFound(w, r)
	}
}

// --- Audiences ---

// POST /api/audiences/filter
func (rt *Router) handleAudienceFilter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := rt.requirePermission(w, r, services.PermManageQualifications); !ok {
		return
	}
	var f AudienceFilters
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	count, err := rt.audiences.Count(toServiceFilters(&f))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"audience_count": count})
}

// --- Contests ---

// GET /api/contests, POST /api/contests (admin)
func (rt *Router) handleContests(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := rt.claims(w, r); !ok {
			return
		}
		contests, err := rt.contests.List()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		out := make([]*Contest, 0, len(contests))
		for _, c := range contests {
			out = append(out, fromServiceContest(c))
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodPost:
		c, ok := rt.requirePermission(w, r, services.PermManageContests)
		if !ok {
			return
		}
		var req Contest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		created, err := rt.contests.Create(c.UID, toServiceContest(&req))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, fromServiceContest(created))
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET /api/contests/{id}, GET .../leaderboard, POST activate, end, cancel,
// join, update-leaderboard, award-prize.
func (rt *Router) handleContestScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/contests/")
	parts := strings.Split(rest, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	id := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if _, ok := rt.claims(w, r); !ok {
			return
		}
		c, err := rt.contests.Get(id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, fromServiceContest(c))
		return
	}
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}

	if parts[1] == "leaderboard" {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if _, ok := rt.claims(w, r); !ok {
			return
		}
		rows, err := rt.contests.Leaderboard(id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		out := make([]*ContestParticipation, 0, len(rows))
		for _, p := range rows {
			out = append(out, fromServiceParticipation(p))
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	switch parts[1] {
	case "activate", "end", "cancel":
		c, ok := rt.requirePermission(w, r, services.PermManageContests)
		if !ok {
			return
		}
		var err error
		switch parts[1] {
		case "activate":
			err = rt.contests.Activate(id, c.UID)
		case "end":
			err = rt.contests.End(id, c.UID)
		case "cancel":
			err = rt.contests.Cancel(id, c.UID)
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	case "join":
		c, ok := rt.claims(w, r)
		if !ok {
			return
		}
		pid := rt.callerPanelistID(c)
		if pid == "" {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden", "message": "no panelist profile"})
			return
		}
		p, err := rt.contests.Join(id, pid)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, fromServiceParticipation(p))
	case "update-leaderboard":
		c, ok := rt.requirePermission(w, r, services.PermManageContests)
		if !ok {
			return
		}
		rows, err := rt.contests.UpdateLeaderboard(id, c.UID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		out := make([]*ContestParticipation, 0, len(rows))
		for _, p := range rows {
			out = append(out, fromServiceParticipation(p))
		}
		writeJSON(w, http.StatusOK, out)
	case "award-prize":
		c, ok := rt.requirePermission(w, r, services.PermManageContests)
		if !ok {
			return
		}
		var req struct {
			PanelistID string `json:"panelist_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p, err := rt.contests.AwardPrize(id, req.PanelistID, c.UID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, fromServiceParticipation(p))
	default:
		http.NotFound(w, r)
	}
}

// --- Offers & redemptions ---

// GET /api/offers, POST /api/offers (admin)
func (rt *Router) handleOffers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		c, ok := rt.claims(w, r)
		if !ok {
			return
		}
		activeOnly := !services.HasPermission(c.Role, services.PermManageOffers)
		offers, err := rt.offers.ListOffers(activeOnly)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		out := make([]*MerchantOffer, 0, len(offers))
		for _, o := range offers {
			out = append(out, fromServiceOffer(o))
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodPost:
		c, ok := rt.requirePermission(w, r, services.PermManageOffers)
		if !ok {
			return
		}
		var o MerchantOffer
		if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		created, err := rt.offers.CreateOffer(c.UID, toServiceOffer(&o))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, fromServiceOffer(created))
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// PUT /api/offers/{id}, POST /api/offers/{id}/redeem
func (rt *Router) handleOfferScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/offers/")
	parts := strings.Split(rest, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	id := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodPut {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		c, ok := rt.requirePermission(w, r, services.PermManageOffers)
		if !ok {
			return
		}
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		o, err := rt.offers.UpdateOffer(id, raw, c.UID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, fromServiceOffer(o))
		return
	}

	if len(parts) != 2 || parts[1] != "redeem" || r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	c, ok := rt.claims(w, r)
	if !ok {
		return
	}
	pid := rt.callerPanelistID(c)
	if pid == "" {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden", "message": "no panelist profile"})
		return
	}
	red, err := rt.offers.Redeem(pid, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &Redemption{
		ID:          red.ID,
		PanelistID:  red.PanelistID,
		OfferID:     red.OfferID,
		PointsSpent: red.PointsSpent,
		RedeemedAt:  red.RedeemedAt,
	})
}

// --- Scan tasks ---

// GET /api/scans (reviewer queue), POST /api/scans (panelist submit)
func (rt *Router) handleScans(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := rt.requirePermission(w, r, services.PermReviewScans); !ok {
			return
		}
		tasks, err := rt.scans.ListPending()
		if err != nil {
			writeServiceError(w, err)
			return
		}
		out := make([]*ScanTask, 0, len(tasks))
		for _, t := range tasks {
			out = append(out, fromServiceScanTask(t))
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodPost:
		c, ok := rt.claims(w, r)
		if !ok {
			return
		}
		pid := rt.callerPanelistID(c)
		if pid == "" {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden", "message": "no panelist profile"})
			return
		}
		var req struct {
			ImageKey string `json:"image_key"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		t, err := rt.scans.Submit(pid, req.ImageKey)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, fromServiceScanTask(t))
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET /api/scans/image?key=
func (rt *Router) handleScanImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := rt.requirePermission(w, r, services.PermReviewScans); !ok {
		return
	}
	key := r.URL.Query().Get("key")
	b, err := rt.scans.Image(key)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(b)
}

// GET /api/scans/{id}, POST /api/scans/{id}/review
func (rt *Router) handleScanScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/scans/")
	parts := strings.Split(rest, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	id := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		c, ok := rt.claims(w, r)
		if !ok {
			return
		}
		t, err := rt.scans.Get(id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if t.PanelistID != rt.callerPanelistID(c) && !services.HasPermission(c.Role, services.PermReviewScans) {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden", "message": "insufficient permissions"})
			return
		}
		writeJSON(w, http.StatusOK, fromServiceScanTask(t))
		return
	}

	if len(parts) != 2 || parts[1] != "review" || r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	c, ok := rt.requirePermission(w, r, services.PermReviewScans)
	if !ok {
		return
	}
	var req struct {
		Approve bool `json:"approve"`
		Points  int  `json:"points"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	t, err := rt.scans.Review(id, req.Approve, req.Points, c.UID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fromServiceScanTask(t))
}

// --- Activity ---

// GET /api/activity
func (rt *Router) handleActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := rt.requirePermission(w, r, services.PermViewActivity); !ok {
		return
	}
	writeJSON(w, http.StatusOK, rt.store.ListActivity())
}
