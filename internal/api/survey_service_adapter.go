package api

import "github.com/panelhive/panelhive/internal/services"

type surveyStoreAdapter struct {
	store Store
}

func newSurveyStoreAdapter(store Store) services.SurveyStore {
	return &surveyStoreAdapter{store: store}
}

func (a *surveyStoreAdapter) InsertSurvey(sv *services.Survey) (*services.Survey, error) {
	apiSurvey := fromServiceSurvey(sv)
	a.store.AddSurvey(apiSurvey)
	return toServiceSurvey(a.store.GetSurvey(apiSurvey.ID)), nil
}

func (a *surveyStoreAdapter) GetSurvey(id string) (*services.Survey, error) {
	return toServiceSurvey(a.store.GetSurvey(id)), nil
}

func (a *surveyStoreAdapter) UpdateSurvey(sv *services.Survey) error {
	if sv == nil {
		return services.NewInvalidError("survey required")
	}
	if ok := a.store.UpdateSurvey(fromServiceSurvey(sv)); !ok {
		return services.NewNotFoundError("survey not found")
	}
	return nil
}

func (a *surveyStoreAdapter) ListSurveys() ([]*services.Survey, error) {
	surveys := a.store.ListSurveys()
	out := make([]*services.Survey, 0, len(surveys))
	for _, sv := range surveys {
		out = append(out, toServiceSurvey(sv))
	}
	return out, nil
}

func (a *surveyStoreAdapter) GetQualification(surveyID, panelistID string) (*services.SurveyQualification, error) {
	return toServiceQualification(a.store.GetQualification(surveyID, panelistID)), nil
}

func (a *surveyStoreAdapter) GetPanelist(id string) (*services.PanelistProfile, error) {
	return toServicePanelist(a.store.GetPanelist(id)), nil
}

func (a *surveyStoreAdapter) HasPointsEntry(panelistID, kind, refID string) (bool, error) {
	return a.store.HasPointsEntry(panelistID, kind, refID), nil
}

func (a *surveyStoreAdapter) CreditPoints(panelistID string, points int, kind, refID string) error {
	if ok := a.store.CreditPoints(panelistID, points, kind, refID); !ok {
		return services.NewNotFoundError("panelist not found")
	}
	return nil
}

func (a *surveyStoreAdapter) AddActivity(e services.ActivityEntry) {
	a.store.AddActivity(toStoreActivity(e))
}

var _ services.SurveyStore = (*surveyStoreAdapter)(nil)
