package api

import (
	"errors"
	"time"

	"github.com/panelhive/panelhive/internal/services"
)

type contestStoreAdapter struct {
	store Store
}

func newContestStoreAdapter(store Store) services.ContestStore {
	return &contestStoreAdapter{store: store}
}

func (a *contestStoreAdapter) InsertContest(c *services.Contest) (*services.Contest, error) {
	apiContest := fromServiceContest(c)
	a.store.AddContest(apiContest)
	return toServiceContest(a.store.GetContest(apiContest.ID)), nil
}

func (a *contestStoreAdapter) GetContest(id string) (*services.Contest, error) {
	return toServiceContest(a.store.GetContest(id)), nil
}

func (a *contestStoreAdapter) ListContests() ([]*services.Contest, error) {
	contests := a.store.ListContests()
	out := make([]*services.Contest, 0, len(contests))
	for _, c := range contests {
		out = append(out, toServiceContest(c))
	}
	return out, nil
}

func (a *contestStoreAdapter) UpdateContestStatus(id, status string) error {
	if ok := a.store.UpdateContestStatus(id, status); !ok {
		return services.NewNotFoundError("contest not found")
	}
	return nil
}

func (a *contestStoreAdapter) InsertParticipation(p *services.ContestParticipation) error {
	err := a.store.AddParticipation(fromServiceParticipation(p))
	if errors.Is(err, ErrDuplicate) {
		return services.NewConflictError("already joined")
	}
	return err
}

func (a *contestStoreAdapter) GetParticipation(contestID, panelistID string) (*services.ContestParticipation, error) {
	return toServiceParticipation(a.store.GetParticipation(contestID, panelistID)), nil
}

func (a *contestStoreAdapter) ListParticipations(contestID string) ([]*services.ContestParticipation, error) {
	parts := a.store.ListParticipations(contestID)
	out := make([]*services.ContestParticipation, 0, len(parts))
	for _, p := range parts {
		out = append(out, toServiceParticipation(p))
	}
	return out, nil
}

func (a *contestStoreAdapter) SetRanks(contestID string, ranks []services.ParticipationRank) error {
	rows := make([]RankAssignment, 0, len(ranks))
	for _, r := range ranks {
		rows = append(rows, RankAssignment{PanelistID: r.PanelistID, PointsEarned: r.PointsEarned, Rank: r.Rank})
	}
	err := a.store.SetRanks(contestID, rows)
	if errors.Is(err, ErrNotFound) {
		return services.NewNotFoundError("participation not found")
	}
	return err
}

func (a *contestStoreAdapter) MarkPrizeAwarded(contestID, panelistID string) (bool, error) {
	return a.store.MarkPrizeAwarded(contestID, panelistID), nil
}

func (a *contestStoreAdapter) SumPointsInWindow(panelistID string, from, to time.Time) (int, error) {
	return a.store.SumPointsInWindow(panelistID, from, to), nil
}

func (a *contestStoreAdapter) CreditPoints(panelistID string, points int, kind, refID string) error {
	if ok := a.store.CreditPoints(panelistID, points, kind, refID); !ok {
		return services.NewNotFoundError("panelist not found")
	}
	return nil
}

func (a *contestStoreAdapter) GetPanelist(id string) (*services.PanelistProfile, error) {
	return toServicePanelist(a.store.GetPanelist(id)), nil
}

func (a *contestStoreAdapter) AddActivity(e services.ActivityEntry) {
	a.store.AddActivity(toStoreActivity(e))
}

var _ services.ContestStore = (*contestStoreAdapter)(nil)
