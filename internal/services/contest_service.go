package services

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// ParticipationRank carries one row of a wholesale rank recomputation.
type ParticipationRank struct {
	PanelistID   string
	PointsEarned int
	Rank         int
}

// ContestStore abstracts persistence operations required by ContestService.
type ContestStore interface {
	InsertContest(c *Contest) (*Contest, error)
	GetContest(id string) (*Contest, error)
	ListContests() ([]*Contest, error)
	UpdateContestStatus(id, status string) error

	InsertParticipation(p *ContestParticipation) error
	GetParticipation(contestID, panelistID string) (*ContestParticipation, error)
	ListParticipations(contestID string) ([]*ContestParticipation, error)
	// SetRanks writes the full rank set in one batch; either all rows are
	// written or none.
	SetRanks(contestID string, ranks []ParticipationRank) error
	// MarkPrizeAwarded flips prize_awarded false->true as a conditional
	// update and reports whether a row actually changed.
	MarkPrizeAwarded(contestID, panelistID string) (bool, error)

	SumPointsInWindow(panelistID string, from, to time.Time) (int, error)
	CreditPoints(panelistID string, points int, kind, refID string) error
	GetPanelist(id string) (*PanelistProfile, error)
	AddActivity(e ActivityEntry)
}

// ContestService owns the contest lifecycle, participation, leaderboard
// ranking and the one-shot prize award.
type ContestService struct {
	store ContestStore
	now   func() time.Time
}

func NewContestService(store ContestStore) *ContestService {
	return &ContestService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *ContestService) Create(createdBy string, c *Contest) (*Contest, error) {
	if c == nil {
		return nil, NewInvalidError("contest required")
	}
	if strings.TrimSpace(c.Title) == "" {
		return nil, NewInvalidError("title required")
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return nil, NewInvalidError("start_date and end_date required")
	}
	if !c.EndDate.After(c.StartDate) {
		return nil, NewInvalidError("end_date must be after start_date")
	}
	if c.PrizePoints < 0 {
		return nil, NewInvalidError("prize_points must be non-negative")
	}
	switch c.InviteType {
	case "":
		c.InviteType = InviteAll
	case InviteAll, InviteSelected:
	default:
		return nil, NewInvalidError("invite_type must be all or selected")
	}
	if c.InviteType == InviteSelected && len(c.InvitedIDs) == 0 {
		return nil, NewInvalidError("invited panelists required for selected invite_type")
	}
	if c.ID == "" {
		c.ID = shortID(8)
	}
	c.Status = ContestStatusDraft
	c.CreatedAt = s.now()
	created, err := s.store.InsertContest(c)
	if err != nil {
		return nil, err
	}
	s.store.AddActivity(ActivityEntry{Time: s.now(), Actor: createdBy, Action: "create_contest", Target: c.ID})
	if created == nil {
		return c, nil
	}
	return created, nil
}

func (s *ContestService) Get(id string) (*Contest, error) {
	c, err := s.store.GetContest(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, NewNotFoundError("contest not found")
	}
	return c, nil
}

func (s *ContestService) List() ([]*Contest, error) {
	return s.store.ListContests()
}

// Activate moves draft -> active. Activation is an explicit admin action; the
// start date is not enforced here.
func (s *ContestService) Activate(id, actor string) error {
	return s.transition(id, actor, ContestStatusActive, ContestStatusDraft)
}

// End moves active -> ended. No further points accrue toward participations
// after this transition.
func (s *ContestService) End(id, actor string) error {
	return s.transition(id, actor, ContestStatusEnded, ContestStatusActive)
}

// Cancel is terminal and reachable from draft or active.
func (s *ContestService) Cancel(id, actor string) error {
	return s.transition(id, actor, ContestStatusCancelled, ContestStatusDraft, ContestStatusActive)
}

func (s *ContestService) transition(id, actor, to string, from ...string) error {
	c, err := s.Get(id)
	if err != nil {
		return err
	}
	allowed := false
	for _, st := range from {
		if c.Status == st {
			allowed = true
			break
		}
	}
	if !allowed {
		return NewConflictError("contest is " + c.Status)
	}
	if err := s.store.UpdateContestStatus(id, to); err != nil {
		return err
	}
	s.store.AddActivity(ActivityEntry{Time: s.now(), Actor: actor, Action: "contest_" + to, Target: id})
	return nil
}

// Join creates a participation. Only permitted while the contest is active,
// and for selected-invite contests only for panelists on the invitation list.
func (s *ContestService) Join(contestID, panelistID string) (*ContestParticipation, error) {
	if strings.TrimSpace(panelistID) == "" {
		return nil, NewInvalidError("panelist_id required")
	}
	c, err := s.Get(contestID)
	if err != nil {
		return nil, err
	}
	if c.Status != ContestStatusActive {
		return nil, NewConflictError("contest is not active")
	}
	if c.InviteType == InviteSelected && !contains(c.InvitedIDs, panelistID) {
		return nil, NewForbiddenError("panelist not invited")
	}
	p, err := s.store.GetPanelist(panelistID)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.IsActive {
		return nil, NewNotFoundError("panelist not found")
	}
	existing, err := s.store.GetParticipation(contestID, panelistID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewConflictError("already joined")
	}
	part := &ContestParticipation{ContestID: contestID, PanelistID: panelistID, JoinedAt: s.now()}
	if err := s.store.InsertParticipation(part); err != nil {
		return nil, err
	}
	return part, nil
}

// UpdateLeaderboard recomputes every participation's points_earned from the
// ledger within the contest window and assigns competition ranks: tied point
// totals share a rank and the next distinct total skips accordingly
// (100, 100, 90 -> 1, 1, 3). The recomputation is wholesale, never
// incremental, and the rank set is written as a single batch.
func (s *ContestService) UpdateLeaderboard(id, actor string) ([]*ContestParticipation, error) {
	c, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if c.Status != ContestStatusActive && c.Status != ContestStatusEnded {
		return nil, NewConflictError("contest is " + c.Status)
	}
	parts, err := s.store.ListParticipations(id)
	if err != nil {
		return nil, err
	}
	ranks := make([]ParticipationRank, 0, len(parts))
	for _, p := range parts {
		pts, err := s.store.SumPointsInWindow(p.PanelistID, c.StartDate, c.EndDate)
		if err != nil {
			return nil, err
		}
		ranks = append(ranks, ParticipationRank{PanelistID: p.PanelistID, PointsEarned: pts})
	}
	assignCompetitionRanks(ranks)
	if err := s.store.SetRanks(id, ranks); err != nil {
		return nil, err
	}
	s.store.AddActivity(ActivityEntry{Time: s.now(), Actor: actor, Action: "update_leaderboard", Target: id, Note: strconv.Itoa(len(ranks))})
	return s.Leaderboard(id)
}

// Leaderboard returns participations ordered by rank, unranked rows last.
func (s *ContestService) Leaderboard(id string) ([]*ContestParticipation, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	parts, err := s.store.ListParticipations(id)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(parts, func(i, j int) bool {
		ri, rj := parts[i].Rank, parts[j].Rank
		if ri == nil && rj == nil {
			return parts[i].PointsEarned > parts[j].PointsEarned
		}
		if ri == nil {
			return false
		}
		if rj == nil {
			return true
		}
		if *ri != *rj {
			return *ri < *rj
		}
		return parts[i].PanelistID < parts[j].PanelistID
	})
	return parts, nil
}

// AwardPrize credits the contest's prize points to one ranked participation.
// Only permitted after the contest has ended, and at most once per
// participation: the store's conditional flip decides the winner of any
// concurrent double-award attempt, and points move only when the flip
// actually happened.
func (s *ContestService) AwardPrize(contestID, panelistID, actor string) (*ContestParticipation, error) {
	c, err := s.Get(contestID)
	if err != nil {
		return nil, err
	}
	if c.Status != ContestStatusEnded {
		return nil, NewInvalidError("contest not ended")
	}
	part, err := s.store.GetParticipation(contestID, panelistID)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, NewNotFoundError("participation not found")
	}
	if part.PrizeAwarded {
		return nil, NewConflictError("prize already awarded")
	}
	flipped, err := s.store.MarkPrizeAwarded(contestID, panelistID)
	if err != nil {
		return nil, err
	}
	if !flipped {
		return nil, NewConflictError("prize already awarded")
	}
	if err := s.store.CreditPoints(panelistID, c.PrizePoints, PointsKindPrize, contestID); err != nil {
		return nil, err
	}
	s.store.AddActivity(ActivityEntry{Time: s.now(), Actor: actor, Action: "award_prize", Target: contestID, Note: panelistID})
	part.PrizeAwarded = true
	return part, nil
}

// assignCompetitionRanks sorts rows by points descending and fills Rank using
// competition ranking.
func assignCompetitionRanks(rows []ParticipationRank) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].PointsEarned != rows[j].PointsEarned {
			return rows[i].PointsEarned > rows[j].PointsEarned
		}
		return rows[i].PanelistID < rows[j].PanelistID
	})
	for i := range rows {
		if i > 0 && rows[i].PointsEarned == rows[i-1].PointsEarned {
			rows[i].Rank = rows[i-1].Rank
			continue
		}
		rows[i].Rank = i + 1
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
