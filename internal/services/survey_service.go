package services

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SurveyStore abstracts persistence operations required by SurveyService.
type SurveyStore interface {
	InsertSurvey(sv *Survey) (*Survey, error)
	GetSurvey(id string) (*Survey, error)
	UpdateSurvey(sv *Survey) error
	ListSurveys() ([]*Survey, error)
	GetQualification(surveyID, panelistID string) (*SurveyQualification, error)
	GetPanelist(id string) (*PanelistProfile, error)
	HasPointsEntry(panelistID, kind, refID string) (bool, error)
	CreditPoints(panelistID string, points int, kind, refID string) error
	AddActivity(e ActivityEntry)
}

// SurveyService owns survey CRUD, the draft -> active -> inactive lifecycle
// and completion credit.
type SurveyService struct {
	store SurveyStore
	now   func() time.Time
}

func NewSurveyService(store SurveyStore) *SurveyService {
	return &SurveyService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *SurveyService) Create(createdBy string, sv *Survey) (*Survey, error) {
	if sv == nil {
		return nil, NewInvalidError("survey required")
	}
	if strings.TrimSpace(sv.Title) == "" {
		return nil, NewInvalidError("title required")
	}
	if sv.Points <= 0 {
		return nil, NewInvalidError("points must be positive")
	}
	if sv.EstimatedMinutes < 0 {
		return nil, NewInvalidError("estimated_minutes must be non-negative")
	}
	if err := validateFilters(sv.Filters); err != nil {
		return nil, err
	}
	if sv.ID == "" {
		sv.ID = shortID(8)
	}
	sv.Status = SurveyStatusDraft
	sv.CreatedBy = createdBy
	sv.CreatedAt = s.now()
	created, err := s.store.InsertSurvey(sv)
	if err != nil {
		return nil, err
	}
	s.store.AddActivity(ActivityEntry{Time: s.now(), Actor: createdBy, Action: "create_survey", Target: sv.ID})
	if created == nil {
		return sv, nil
	}
	return created, nil
}

func (s *SurveyService) Get(id string) (*Survey, error) {
	sv, err := s.store.GetSurvey(id)
	if err != nil {
		return nil, err
	}
	if sv == nil {
		return nil, NewNotFoundError("survey not found")
	}
	return sv, nil
}

func (s *SurveyService) List() ([]*Survey, error) {
	return s.store.ListSurveys()
}

// Update applies a partial patch. Identity is immutable; status changes go
// through Activate/Deactivate. Editing is only permitted in draft or active.
func (s *SurveyService) Update(id string, raw map[string]any, actor string) (*Survey, error) {
	sv, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if sv.Status != SurveyStatusDraft && sv.Status != SurveyStatusActive {
		return nil, NewConflictError("survey is " + sv.Status)
	}
	updated := *sv
	if v, ok := raw["title"].(string); ok {
		if strings.TrimSpace(v) == "" {
			return nil, NewInvalidError("title required")
		}
		updated.Title = v
	}
	if v, ok := raw["description"].(string); ok {
		updated.Description = v
	}
	if v, ok := raw["points"].(float64); ok {
		if v <= 0 {
			return nil, NewInvalidError("points must be positive")
		}
		updated.Points = int(v)
	}
	if v, ok := raw["estimated_minutes"].(float64); ok {
		updated.EstimatedMinutes = int(v)
	}
	if v, ok := raw["filters"]; ok {
		f, err := parseFilters(v)
		if err != nil {
			return nil, err
		}
		updated.Filters = f
	}
	if err := s.store.UpdateSurvey(&updated); err != nil {
		return nil, err
	}
	s.store.AddActivity(ActivityEntry{Time: s.now(), Actor: actor, Action: "update_survey", Target: id})
	return &updated, nil
}

func (s *SurveyService) Activate(id, actor string) error {
	return s.setStatus(id, actor, SurveyStatusActive, SurveyStatusDraft)
}

func (s *SurveyService) Deactivate(id, actor string) error {
	return s.setStatus(id, actor, SurveyStatusInactive, SurveyStatusActive)
}

func (s *SurveyService) setStatus(id, actor, to, from string) error {
	sv, err := s.Get(id)
	if err != nil {
		return err
	}
	if sv.Status != from {
		return NewConflictError("survey is " + sv.Status)
	}
	updated := *sv
	updated.Status = to
	if err := s.store.UpdateSurvey(&updated); err != nil {
		return err
	}
	s.store.AddActivity(ActivityEntry{Time: s.now(), Actor: actor, Action: "survey_" + to, Target: id})
	return nil
}

// Complete credits the survey's point reward to a panelist, once per
// (survey, panelist). For surveys carrying a qualification predicate the
// panelist must hold a qualified decision row.
func (s *SurveyService) Complete(surveyID, panelistID string) (int, error) {
	sv, err := s.Get(surveyID)
	if err != nil {
		return 0, err
	}
	if sv.Status != SurveyStatusActive {
		return 0, NewConflictError("survey is not active")
	}
	p, err := s.store.GetPanelist(panelistID)
	if err != nil {
		return 0, err
	}
	if p == nil || !p.IsActive {
		return 0, NewNotFoundError("panelist not found")
	}
	if sv.Filters != nil {
		q, err := s.store.GetQualification(surveyID, panelistID)
		if err != nil {
			return 0, err
		}
		if q == nil || !q.IsQualified {
			return 0, NewForbiddenError("panelist not qualified")
		}
	}
	done, err := s.store.HasPointsEntry(panelistID, PointsKindSurvey, surveyID)
	if err != nil {
		return 0, err
	}
	if done {
		return 0, NewConflictError("survey already completed")
	}
	if err := s.store.CreditPoints(panelistID, sv.Points, PointsKindSurvey, surveyID); err != nil {
		return 0, err
	}
	s.store.AddActivity(ActivityEntry{Time: s.now(), Actor: panelistID, Action: "complete_survey", Target: surveyID, Note: strconv.Itoa(sv.Points)})
	return sv.Points, nil
}

func parseFilters(raw any) (*AudienceFilters, error) {
	if raw == nil {
		return nil, nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, NewInvalidError(err.Error())
	}
	var f struct {
		Gender     string `json:"gender"`
		Location   string `json:"location"`
		Education  string `json:"education"`
		Employment string `json:"employment"`
		AgeMin     *int   `json:"age_min"`
		AgeMax     *int   `json:"age_max"`
		IncomeMin  *int   `json:"income_min"`
		IncomeMax  *int   `json:"income_max"`
	}
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, NewInvalidError("invalid filters: " + err.Error())
	}
	out := &AudienceFilters{
		Gender:     f.Gender,
		Location:   f.Location,
		Education:  f.Education,
		Employment: f.Employment,
		AgeMin:     f.AgeMin,
		AgeMax:     f.AgeMax,
		IncomeMin:  f.IncomeMin,
		IncomeMax:  f.IncomeMax,
	}
	if err := validateFilters(out); err != nil {
		return nil, err
	}
	return out, nil
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
