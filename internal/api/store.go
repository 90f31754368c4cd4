package api

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Panelist struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id,omitempty"`
	Age                 *int      `json:"age,omitempty"`
	Gender              string    `json:"gender,omitempty"`
	Location            string    `json:"location,omitempty"`
	Income              *int      `json:"income,omitempty"`
	Education           string    `json:"education,omitempty"`
	Employment          string    `json:"employment,omitempty"`
	Interests           []string  `json:"interests,omitempty"`
	IsActive            bool      `json:"is_active"`
	PointsBalance       int       `json:"points_balance"`
	TotalPointsEarned   int       `json:"total_points_earned"`
	TotalPointsRedeemed int       `json:"total_points_redeemed"`
	CreatedAt           time.Time `json:"created_at"`
}

type AudienceFilters struct {
	Gender     string `json:"gender,omitempty"`
	Location   string `json:"location,omitempty"`
	Education  string `json:"education,omitempty"`
	Employment string `json:"employment,omitempty"`
	AgeMin     *int   `json:"age_min,omitempty"`
	AgeMax     *int   `json:"age_max,omitempty"`
	IncomeMin  *int   `json:"income_min,omitempty"`
	IncomeMax  *int   `json:"income_max,omitempty"`
}

type Survey struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description,omitempty"`
	Points           int              `json:"points"`
	EstimatedMinutes int              `json:"estimated_minutes,omitempty"`
	Status           string           `json:"status"`
	Filters          *AudienceFilters `json:"filters,omitempty"`
	CreatedBy        string           `json:"created_by,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

type SurveyQualification struct {
	SurveyID    string    `json:"survey_id"`
	PanelistID  string    `json:"panelist_id"`
	IsQualified bool      `json:"is_qualified"`
	Reason      string    `json:"qualification_reason,omitempty"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

type Contest struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	PrizePoints int       `json:"prize_points"`
	Status      string    `json:"status"`
	InviteType  string    `json:"invite_type"`
	InvitedIDs  []string  `json:"invited_ids,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type ContestParticipation struct {
	ContestID    string    `json:"contest_id"`
	PanelistID   string    `json:"panelist_id"`
	Rank         *int      `json:"rank,omitempty"`
	PointsEarned int       `json:"points_earned"`
	PrizeAwarded bool      `json:"prize_awarded"`
	JoinedAt     time.Time `json:"joined_at"`
}

// RankAssignment is one row of a wholesale leaderboard write.
type RankAssignment struct {
	PanelistID   string
	PointsEarned int
	Rank         int
}

type MerchantOffer struct {
	ID         string    `json:"id"`
	Merchant   string    `json:"merchant,omitempty"`
	Title      string    `json:"title"`
	PointsCost int       `json:"points_cost"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

type Redemption struct {
	ID          string    `json:"id"`
	PanelistID  string    `json:"panelist_id"`
	OfferID     string    `json:"offer_id"`
	PointsSpent int       `json:"points_spent"`
	RedeemedAt  time.Time `json:"redeemed_at"`
}

type PointsEntry struct {
	ID         string    `json:"id"`
	PanelistID string    `json:"panelist_id"`
	Points     int       `json:"points"`
	Kind       string    `json:"kind"`
	RefID      string    `json:"ref_id,omitempty"`
	EarnedAt   time.Time `json:"earned_at"`
}

type ScanTask struct {
	ID          string     `json:"id"`
	PanelistID  string     `json:"panelist_id"`
	ImageKey    string     `json:"image_key"`
	Points      int        `json:"points,omitempty"`
	Status      string     `json:"status"`
	SubmittedAt time.Time  `json:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy  string     `json:"reviewed_by,omitempty"`
}

type User struct {
	ID         string
	Email      string
	PassHash   []byte
	Role       string
	PanelistID string
	CreatedAt  time.Time
}

type ActivityEntry struct {
	Time   time.Time `json:"time"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Target string    `json:"target,omitempty"`
	Note   string    `json:"note,omitempty"`
}

type memoryStore struct {
	mu             sync.RWMutex
	panelists      map[string]*Panelist
	surveys        map[string]*Survey
	quals          map[string]*SurveyQualification
	contests       map[string]*Contest
	participations map[string]*ContestParticipation
	offers         map[string]*MerchantOffer
	redemptions    []*Redemption
	entries        []*PointsEntry
	scans          map[string]*ScanTask
	usersByEmail   map[string]*User
	activity       []ActivityEntry
}

// NewMemoryStore returns an in-memory Store, used when no sqlite path is
// configured and throughout the handler tests.
func NewMemoryStore() Store {
	return newMemoryStore()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		panelists:      map[string]*Panelist{},
		surveys:        map[string]*Survey{},
		quals:          map[string]*SurveyQualification{},
		contests:       map[string]*Contest{},
		participations: map[string]*ContestParticipation{},
		offers:         map[string]*MerchantOffer{},
		scans:          map[string]*ScanTask{},
		usersByEmail:   map[string]*User{},
	}
}

func qualKey(surveyID, panelistID string) string  { return surveyID + "/" + panelistID }
func partKey(contestID, panelistID string) string { return contestID + "/" + panelistID }

// --- Panelists & points ---

func (s *memoryStore) AddPanelist(p *Panelist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *p
	s.panelists[p.ID] = &copy
}

func (s *memoryStore) GetPanelist(id string) *Panelist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.panelists[id]; ok {
		copy := *p
		return &copy
	}
	return nil
}

func (s *memoryStore) ListActivePanelists() []*Panelist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*Panelist{}
	for _, p := range s.panelists {
		if p.IsActive {
			copy := *p
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memoryStore) UpdatePanelist(p *Panelist) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.panelists[p.ID]
	if !ok {
		return false
	}
	copy := *p
	// balances move only through the points primitives
	copy.PointsBalance = old.PointsBalance
	copy.TotalPointsEarned = old.TotalPointsEarned
	copy.TotalPointsRedeemed = old.TotalPointsRedeemed
	s.panelists[p.ID] = &copy
	return true
}

func (s *memoryStore) DeactivatePanelist(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.panelists[id]
	if !ok {
		return false
	}
	p.IsActive = false
	return true
}

func (s *memoryStore) CreditPoints(panelistID string, points int, kind, refID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.panelists[panelistID]
	if !ok {
		return false
	}
	p.PointsBalance += points
	p.TotalPointsEarned += points
	s.entries = append(s.entries, &PointsEntry{
		ID:         entryID(),
		PanelistID: panelistID,
		Points:     points,
		Kind:       kind,
		RefID:      refID,
		EarnedAt:   time.Now().UTC(),
	})
	return true
}

func (s *memoryStore) DebitPoints(panelistID string, points int, refID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.panelists[panelistID]
	if !ok || p.PointsBalance < points {
		return false
	}
	p.PointsBalance -= points
	p.TotalPointsRedeemed += points
	s.entries = append(s.entries, &PointsEntry{
		ID:         entryID(),
		PanelistID: panelistID,
		Points:     -points,
		Kind:       "redemption",
		RefID:      refID,
		EarnedAt:   time.Now().UTC(),
	})
	return true
}

func (s *memoryStore) SumPointsInWindow(panelistID string, from, to time.Time) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, e := range s.entries {
		if e.PanelistID != panelistID || e.Points <= 0 {
			continue
		}
		if e.EarnedAt.Before(from) || e.EarnedAt.After(to) {
			continue
		}
		total += e.Points
	}
	return total
}

func (s *memoryStore) HasPointsEntry(panelistID, kind, refID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.PanelistID == panelistID && e.Kind == kind && e.RefID == refID {
			return true
		}
	}
	return false
}

func (s *memoryStore) ListPointsEntries(panelistID string) []*PointsEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*PointsEntry{}
	for _, e := range s.entries {
		if e.PanelistID == panelistID {
			copy := *e
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EarnedAt.After(out[j].EarnedAt) })
	return out
}

// --- Surveys & qualifications ---

func (s *memoryStore) AddSurvey(sv *Survey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *sv
	s.surveys[sv.ID] = &copy
}

func (s *memoryStore) GetSurvey(id string) *Survey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sv, ok := s.surveys[id]; ok {
		copy := *sv
		return &copy
	}
	return nil
}

func (s *memoryStore) UpdateSurvey(sv *Survey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.surveys[sv.ID]; !ok {
		return false
	}
	copy := *sv
	s.surveys[sv.ID] = &copy
	return true
}

func (s *memoryStore) ListSurveys() []*Survey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*Survey{}
	for _, sv := range s.surveys {
		copy := *sv
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memoryStore) UpsertQualifications(qs []*SurveyQualification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range qs {
		copy := *q
		s.quals[qualKey(q.SurveyID, q.PanelistID)] = &copy
	}
	return nil
}

func (s *memoryStore) GetQualification(surveyID, panelistID string) *SurveyQualification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if q, ok := s.quals[qualKey(surveyID, panelistID)]; ok {
		copy := *q
		return &copy
	}
	return nil
}

func (s *memoryStore) ListQualificationsBySurvey(surveyID string) []*SurveyQualification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*SurveyQualification{}
	for _, q := range s.quals {
		if q.SurveyID == surveyID {
			copy := *q
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PanelistID < out[j].PanelistID })
	return out
}

// --- Contests & participations ---

func (s *memoryStore) AddContest(c *Contest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *c
	s.contests[c.ID] = &copy
}

func (s *memoryStore) GetContest(id string) *Contest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.contests[id]; ok {
		copy := *c
		return &copy
	}
	return nil
}

func (s *memoryStore) ListContests() []*Contest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*Contest{}
	for _, c := range s.contests {
		copy := *c
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memoryStore) UpdateContestStatus(id, status string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contests[id]
	if !ok {
		return false
	}
	c.Status = status
	return true
}

func (s *memoryStore) AddParticipation(p *ContestParticipation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := partKey(p.ContestID, p.PanelistID)
	if _, ok := s.participations[key]; ok {
		return ErrDuplicate
	}
	copy := *p
	s.participations[key] = &copy
	return nil
}

func (s *memoryStore) GetParticipation(contestID, panelistID string) *ContestParticipation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.participations[partKey(contestID, panelistID)]; ok {
		copy := *p
		return &copy
	}
	return nil
}

func (s *memoryStore) ListParticipations(contestID string) []*ContestParticipation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*ContestParticipation{}
	for _, p := range s.participations {
		if p.ContestID == contestID {
			copy := *p
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PanelistID < out[j].PanelistID })
	return out
}

func (s *memoryStore) SetRanks(contestID string, ranks []RankAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// validate first so the batch is all-or-nothing
	for _, r := range ranks {
		if _, ok := s.participations[partKey(contestID, r.PanelistID)]; !ok {
			return ErrNotFound
		}
	}
	for _, r := range ranks {
		p := s.participations[partKey(contestID, r.PanelistID)]
		rank := r.Rank
		p.Rank = &rank
		p.PointsEarned = r.PointsEarned
	}
	return nil
}

func (s *memoryStore) MarkPrizeAwarded(contestID, panelistID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participations[partKey(contestID, panelistID)]
	if !ok || p.PrizeAwarded {
		return false
	}
	p.PrizeAwarded = true
	return true
}

// --- Offers & redemptions ---

func (s *memoryStore) AddOffer(o *MerchantOffer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *o
	s.offers[o.ID] = &copy
}

func (s *memoryStore) GetOffer(id string) *MerchantOffer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if o, ok := s.offers[id]; ok {
		copy := *o
		return &copy
	}
	return nil
}

func (s *memoryStore) UpdateOffer(o *MerchantOffer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.offers[o.ID]; !ok {
		return false
	}
	copy := *o
	s.offers[o.ID] = &copy
	return true
}

func (s *memoryStore) ListOffers(activeOnly bool) []*MerchantOffer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*MerchantOffer{}
	for _, o := range s.offers {
		if activeOnly && !o.IsActive {
			continue
		}
		copy := *o
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memoryStore) AddRedemption(r *Redemption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *r
	s.redemptions = append(s.redemptions, &copy)
}

func (s *memoryStore) ListRedemptionsByPanelist(panelistID string) []*Redemption {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*Redemption{}
	for _, r := range s.redemptions {
		if r.PanelistID == panelistID {
			copy := *r
			out = append(out, &copy)
		}
	}
	return out
}

// --- Scan tasks ---

func (s *memoryStore) AddScanTask(t *ScanTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *t
	s.scans[t.ID] = &copy
}

func (s *memoryStore) GetScanTask(id string) *ScanTask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.scans[id]; ok {
		copy := *t
		return &copy
	}
	return nil
}

func (s *memoryStore) UpdateScanTask(t *ScanTask) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.scans[t.ID]; !ok {
		return false
	}
	copy := *t
	s.scans[t.ID] = &copy
	return true
}

func (s *memoryStore) ListScanTasks(status string) []*ScanTask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*ScanTask{}
	for _, t := range s.scans {
		if status != "" && t.Status != status {
			continue
		}
		copy := *t
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out
}

// --- Users & activity ---

func (s *memoryStore) AddUser(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *u
	s.usersByEmail[strings.ToLower(u.Email)] = &copy
}

func (s *memoryStore) FindUserByEmail(email string) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.usersByEmail[strings.ToLower(email)]; ok {
		copy := *u
		return &copy
	}
	return nil
}

func (s *memoryStore) AddActivity(e ActivityEntry) {
	s.mu.Lock()
	s.activity = append(s.activity, e)
	s.mu.Unlock()
}

func (s *memoryStore) ListActivity() []ActivityEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ActivityEntry, len(s.activity))
	copy(out, s.activity)
	return out
}

func entryID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
