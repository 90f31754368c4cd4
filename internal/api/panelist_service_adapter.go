package api

import "github.com/panelhive/panelhive/internal/services"

type panelistStoreAdapter struct {
	store Store
}

func newPanelistStoreAdapter(store Store) services.PanelistStore {
	return &panelistStoreAdapter{store: store}
}

func (a *panelistStoreAdapter) InsertPanelist(p *services.PanelistProfile) (*services.PanelistProfile, error) {
	apiPanelist := fromServicePanelist(p)
	a.store.AddPanelist(apiPanelist)
	return toServicePanelist(a.store.GetPanelist(apiPanelist.ID)), nil
}

func (a *panelistStoreAdapter) GetPanelist(id string) (*services.PanelistProfile, error) {
	return toServicePanelist(a.store.GetPanelist(id)), nil
}

func (a *panelistStoreAdapter) UpdatePanelist(p *services.PanelistProfile) error {
	if p == nil {
		return services.NewInvalidError("panelist required")
	}
	if ok := a.store.UpdatePanelist(fromServicePanelist(p)); !ok {
		return services.NewNotFoundError("panelist not found")
	}
	return nil
}

func (a *panelistStoreAdapter) DeactivatePanelist(id string) error {
	if ok := a.store.DeactivatePanelist(id); !ok {
		return services.NewNotFoundError("panelist not found")
	}
	return nil
}

func (a *panelistStoreAdapter) ListPointsEntries(panelistID string) ([]*services.PointsEntry, error) {
	entries := a.store.ListPointsEntries(panelistID)
	out := make([]*services.PointsEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, &services.PointsEntry{
			ID:         e.ID,
			PanelistID: e.PanelistID,
			Points:     e.Points,
			Kind:       e.Kind,
			RefID:      e.RefID,
			EarnedAt:   e.EarnedAt,
		})
	}
	return out, nil
}

func (a *panelistStoreAdapter) AddActivity(e services.ActivityEntry) {
	a.store.AddActivity(toStoreActivity(e))
}

var _ services.PanelistStore = (*panelistStoreAdapter)(nil)
