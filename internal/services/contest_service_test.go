package services

import (
	"testing"
	"time"
)

type stubContestStore struct {
	contests       map[string]*Contest
	participations map[string]*ContestParticipation
	panelists      map[string]*PanelistProfile
	ledger         []*PointsEntry
	audits         []ActivityEntry

	credits int
}

func newStubContestStore() *stubContestStore {
	return &stubContestStore{
		contests:       map[string]*Contest{},
		participations: map[string]*ContestParticipation{},
		panelists:      map[string]*PanelistProfile{},
	}
}

func (s *stubContestStore) InsertContest(c *Contest) (*Contest, error) {
	copy := *c
	s.contests[c.ID] = &copy
	return &copy, nil
}

func (s *stubContestStore) GetContest(id string) (*Contest, error) {
	if c, ok := s.contests[id]; ok {
		copy := *c
		return &copy, nil
	}
	return nil, nil
}

func (s *stubContestStore) ListContests() ([]*Contest, error) {
	out := []*Contest{}
	for _, c := range s.contests {
		copy := *c
		out = append(out, &copy)
	}
	return out, nil
}

func (s *stubContestStore) UpdateContestStatus(id, status string) error {
	c, ok := s.contests[id]
	if !ok {
		return NewNotFoundError("contest not found")
	}
	c.Status = status
	return nil
}

func (s *stubContestStore) InsertParticipation(p *ContestParticipation) error {
	key := p.ContestID + "/" + p.PanelistID
	if _, ok := s.participations[key]; ok {
		return NewConflictError("already joined")
	}
	copy := *p
	s.participations[key] = &copy
	return nil
}

func (s *stubContestStore) GetParticipation(contestID, panelistID string) (*ContestParticipation, error) {
	if p, ok := s.participations[contestID+"/"+panelistID]; ok {
		copy := *p
		return &copy, nil
	}
	return nil, nil
}

func (s *stubContestStore) ListParticipations(contestID string) ([]*ContestParticipation, error) {
	out := []*ContestParticipation{}
	for _, p := range s.participations {
		if p.ContestID == contestID {
			copy := *p
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (s *stubContestStore) SetRanks(contestID string, ranks []ParticipationRank) error {
	for _, r := range ranks {
		p, ok := s.participations[contestID+"/"+r.PanelistID]
		if !ok {
			return NewNotFoundError("participation not found")
		}
		rank := r.Rank
		p.Rank = &rank
		p.PointsEarned = r.PointsEarned
	}
	return nil
}

func (s *stubContestStore) MarkPrizeAwarded(contestID, panelistID string) (bool, error) {
	p, ok := s.participations[contestID+"/"+panelistID]
	if !ok || p.PrizeAwarded {
		return false, nil
	}
	p.PrizeAwarded = true
	return true, nil
}

func (s *stubContestStore) SumPointsInWindow(panelistID string, from, to time.Time) (int, error) {
	total := 0
	for _, e := range s.ledger {
		if e.PanelistID != panelistID || e.Points <= 0 {
			continue
		}
		if e.EarnedAt.Before(from) || e.EarnedAt.After(to) {
			continue
		}
		total += e.Points
	}
	return total, nil
}

func (s *stubContestStore) CreditPoints(panelistID string, points int, kind, refID string) error {
	p, ok := s.panelists[panelistID]
	if !ok {
		return NewNotFoundError("panelist not found")
	}
	p.PointsBalance += points
	p.TotalPointsEarned += points
	s.credits++
	s.ledger = append(s.ledger, &PointsEntry{PanelistID: panelistID, Points: points, Kind: kind, RefID: refID})
	return nil
}

func (s *stubContestStore) GetPanelist(id string) (*PanelistProfile, error) {
	if p, ok := s.panelists[id]; ok {
		copy := *p
		return &copy, nil
	}
	return nil, nil
}

func (s *stubContestStore) AddActivity(e ActivityEntry) {
	s.audits = append(s.audits, e)
}

func seedContest(store *stubContestStore, status string) *Contest {
	c := &Contest{
		ID:          "C1",
		Title:       "Spring Sprint",
		StartDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		PrizePoints: 500,
		Status:      status,
		InviteType:  InviteAll,
	}
	store.contests[c.ID] = c
	return c
}

func TestCreateContestDefaults(t *testing.T) {
	store := newStubContestStore()
	svc := NewContestService(store)
	svc.now = func() time.Time { return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC) }

	c, err := svc.Create("admin", &Contest{
		Title:     "Spring Sprint",
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if c.Status != ContestStatusDraft {
		t.Fatalf("new contest must start in draft, got %q", c.Status)
	}
	if c.InviteType != InviteAll {
		t.Fatalf("invite_type should default to all, got %q", c.InviteType)
	}
	if c.ID == "" {
		t.Fatal("expected generated contest id")
	}
}

func TestContestTransitions(t *testing.T) {
	store := newStubContestStore()
	svc := NewContestService(store)
	seedContest(store, ContestStatusDraft)

	if err := svc.End("C1", "admin"); err == nil {
		t.Fatal("ending a draft contest must fail")
	}
	if err := svc.Activate("C1", "admin"); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := svc.Activate("C1", "admin"); err == nil {
		t.Fatal("double activation must fail")
	}
	if err := svc.End("C1", "admin"); err != nil {
		t.Fatalf("End: %v", err)
	}
	if err := svc.Cancel("C1", "admin"); err == nil {
		t.Fatal("cancelling an ended contest must fail")
	}
	if store.contests["C1"].Status != ContestStatusEnded {
		t.Fatalf("unexpected final status %q", store.contests["C1"].Status)
	}
}

func TestJoinRequiresActiveContest(t *testing.T) {
	store := newStubContestStore()
	store.panelists["p1"] = &PanelistProfile{ID: "p1", IsActive: true}
	svc := NewContestService(store)

	for _, status := range []string{ContestStatusDraft, ContestStatusEnded, ContestStatusCancelled} {
		seedContest(store, status)
		_, err := svc.Join("C1", "p1")
		se, ok := AsServiceError(err)
		if !ok || se.Code != ErrorConflict {
			t.Fatalf("join on %s contest: expected conflict, got %v", status, err)
		}
	}
}

func TestJoinEnforcesInviteList(t *testing.T) {
	store := newStubContestStore()
	store.panelists["p1"] = &PanelistProfile{ID: "p1", IsActive: true}
	store.panelists["p2"] = &PanelistProfile{ID: "p2", IsActive: true}
	c := seedContest(store, ContestStatusActive)
	c.InviteType = InviteSelected
	c.InvitedIDs = []string{"p2"}
	svc := NewContestService(store)

	_, err := svc.Join("C1", "p1")
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorForbidden {
		t.Fatalf("uninvited join: expected forbidden, got %v", err)
	}
	if _, err := svc.Join("C1", "p2"); err != nil {
		t.Fatalf("invited join failed: %v", err)
	}
}

func TestJoinRejectsDuplicate(t *testing.T) {
	store := newStubContestStore()
	store.panelists["p1"] = &PanelistProfile{ID: "p1", IsActive: true}
	seedContest(store, ContestStatusActive)
	svc := NewContestService(store)

	if _, err := svc.Join("C1", "p1"); err != nil {
		t.Fatalf("first join: %v", err)
	}
	_, err := svc.Join("C1", "p1")
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorConflict {
		t.Fatalf("expected conflict on duplicate join, got %v", err)
	}
}

func TestCompetitionRanking(t *testing.T) {
	rows := []ParticipationRank{
		{PanelistID: "p4", PointsEarned: 80},
		{PanelistID: "p1", PointsEarned: 100},
		{PanelistID: "p3", PointsEarned: 90},
		{PanelistID: "p2", PointsEarned: 100},
	}
	assignCompetitionRanks(rows)
	want := map[string]int{"p1": 1, "p2": 1, "p3": 3, "p4": 4}
	for _, r := range rows {
		if want[r.PanelistID] != r.Rank {
			t.Fatalf("panelist %s: want rank %d, got %d", r.PanelistID, want[r.PanelistID], r.Rank)
		}
	}
}

func TestUpdateLeaderboardRecomputesFromLedger(t *testing.T) {
	store := newStubContestStore()
	c := seedContest(store, ContestStatusActive)
	for _, pid := range []string{"p1", "p2", "p3"} {
		store.panelists[pid] = &PanelistProfile{ID: pid, IsActive: true}
		store.participations["C1/"+pid] = &ContestParticipation{ContestID: "C1", PanelistID: pid}
	}
	inWindow := c.StartDate.Add(24 * time.Hour)
	store.ledger = []*PointsEntry{
		{PanelistID: "p1", Points: 100, EarnedAt: inWindow},
		{PanelistID: "p2", Points: 100, EarnedAt: inWindow},
		{PanelistID: "p3", Points: 90, EarnedAt: inWindow},
		// outside the window, must not count
		{PanelistID: "p3", Points: 50, EarnedAt: c.EndDate.Add(time.Hour)},
	}
	svc := NewContestService(store)

	rows, err := svc.UpdateLeaderboard("C1", "admin")
	if err != nil {
		t.Fatalf("UpdateLeaderboard: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	wantRank := map[string]int{"p1": 1, "p2": 1, "p3": 3}
	wantPoints := map[string]int{"p1": 100, "p2": 100, "p3": 90}
	for _, r := range rows {
		if r.Rank == nil || *r.Rank != wantRank[r.PanelistID] {
			t.Fatalf("panelist %s: unexpected rank %v", r.PanelistID, r.Rank)
		}
		if r.PointsEarned != wantPoints[r.PanelistID] {
			t.Fatalf("panelist %s: unexpected points %d", r.PanelistID, r.PointsEarned)
		}
	}
}

func TestUpdateLeaderboardRejectsDraft(t *testing.T) {
	store := newStubContestStore()
	seedContest(store, ContestStatusDraft)
	svc := NewContestService(store)

	_, err := svc.UpdateLeaderboard("C1", "admin")
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorConflict {
		t.Fatalf("expected conflict for draft contest, got %v", err)
	}
}

func TestAwardPrizeCreditsOnce(t *testing.T) {
	store := newStubContestStore()
	seedContest(store, ContestStatusEnded)
	store.panelists["p1"] = &PanelistProfile{ID: "p1", IsActive: true, PointsBalance: 300, TotalPointsEarned: 300}
	store.participations["C1/p1"] = &ContestParticipation{ContestID: "C1", PanelistID: "p1", PointsEarned: 300}
	svc := NewContestService(store)

	part, err := svc.AwardPrize("C1", "p1", "admin")
	if err != nil {
		t.Fatalf("AwardPrize: %v", err)
	}
	if !part.PrizeAwarded {
		t.Fatal("participation must report prize_awarded after success")
	}
	if got := store.panelists["p1"].PointsBalance; got != 800 {
		t.Fatalf("expected balance 800 after 500 point prize, got %d", got)
	}

	_, err = svc.AwardPrize("C1", "p1", "admin")
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorConflict {
		t.Fatalf("second award: expected conflict, got %v", err)
	}
	if got := store.panelists["p1"].PointsBalance; got != 800 {
		t.Fatalf("second award must not touch the balance, got %d", got)
	}
	if store.credits != 1 {
		t.Fatalf("expected exactly one credit, got %d", store.credits)
	}
	if !store.participations["C1/p1"].PrizeAwarded {
		t.Fatal("prize_awarded must stay true")
	}
}

func TestAwardPrizeRequiresEndedContest(t *testing.T) {
	store := newStubContestStore()
	seedContest(store, ContestStatusActive)
	store.panelists["p1"] = &PanelistProfile{ID: "p1", IsActive: true}
	store.participations["C1/p1"] = &ContestParticipation{ContestID: "C1", PanelistID: "p1"}
	svc := NewContestService(store)

	_, err := svc.AwardPrize("C1", "p1", "admin")
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorInvalid {
		t.Fatalf("expected invalid for non-ended contest, got %v", err)
	}
	if store.credits != 0 {
		t.Fatalf("no credit may happen before the contest ends, got %d", store.credits)
	}
}

func TestAwardPrizeUnknownParticipation(t *testing.T) {
	store := newStubContestStore()
	seedContest(store, ContestStatusEnded)
	svc := NewContestService(store)

	_, err := svc.AwardPrize("C1", "ghost", "admin")
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}
