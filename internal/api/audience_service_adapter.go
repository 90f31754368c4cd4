package api

import "github.com/panelhive/panelhive/internal/services"

type audienceStoreAdapter struct {
	store Store
}

func newAudienceStoreAdapter(store Store) services.AudienceStore {
	return &audienceStoreAdapter{store: store}
}

func (a *audienceStoreAdapter) ListActivePanelists() ([]*services.PanelistProfile, error) {
	panelists := a.store.ListActivePanelists()
	out := make([]*services.PanelistProfile, 0, len(panelists))
	for _, p := range panelists {
		out = append(out, toServicePanelist(p))
	}
	return out, nil
}

func (a *audienceStoreAdapter) GetSurvey(id string) (*services.Survey, error) {
	return toServiceSurvey(a.store.GetSurvey(id)), nil
}

func (a *audienceStoreAdapter) UpsertQualifications(qs []*services.SurveyQualification) error {
	rows := make([]*SurveyQualification, 0, len(qs))
	for _, q := range qs {
		rows = append(rows, fromServiceQualification(q))
	}
	return a.store.UpsertQualifications(rows)
}

func (a *audienceStoreAdapter) AddActivity(e services.ActivityEntry) {
	a.store.AddActivity(toStoreActivity(e))
}

var _ services.AudienceStore = (*audienceStoreAdapter)(nil)
