package api

import "github.com/panelhive/panelhive/internal/services"

type scanStoreAdapter struct {
	store Store
}

func newScanStoreAdapter(store Store) services.ScanStore {
	return &scanStoreAdapter{store: store}
}

func (a *scanStoreAdapter) InsertScanTask(t *services.ScanTask) (*services.ScanTask, error) {
	apiTask := fromServiceScanTask(t)
	a.store.AddScanTask(apiTask)
	return toServiceScanTask(a.store.GetScanTask(apiTask.ID)), nil
}

func (a *scanStoreAdapter) GetScanTask(id string) (*services.ScanTask, error) {
	return toServiceScanTask(a.store.GetScanTask(id)), nil
}

func (a *scanStoreAdapter) UpdateScanTask(t *services.ScanTask) error {
	if t == nil {
		return services.NewInvalidError("scan task required")
	}
	if ok := a.store.UpdateScanTask(fromServiceScanTask(t)); !ok {
		return services.NewNotFoundError("scan task not found")
	}
	return nil
}

func (a *scanStoreAdapter) ListScanTasks(status string) ([]*services.ScanTask, error) {
	tasks := a.store.ListScanTasks(status)
	out := make([]*services.ScanTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toServiceScanTask(t))
	}
	return out, nil
}

func (a *scanStoreAdapter) GetPanelist(id string) (*services.PanelistProfile, error) {
	return toServicePanelist(a.store.GetPanelist(id)), nil
}

func (a *scanStoreAdapter) HasPointsEntry(panelistID, kind, refID string) (bool, error) {
	return a.store.HasPointsEntry(panelistID, kind, refID), nil
}

func (a *scanStoreAdapter) CreditPoints(panelistID string, points int, kind, refID string) error {
	if ok := a.store.CreditPoints(panelistID, points, kind, refID); !ok {
		return services.NewNotFoundError("panelist not found")
	}
	return nil
}

func (a *scanStoreAdapter) AddActivity(e services.ActivityEntry) {
	a.store.AddActivity(toStoreActivity(e))
}

var _ services.ScanStore = (*scanStoreAdapter)(nil)
