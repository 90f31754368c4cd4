package services

import (
	"strconv"
	"strings"
	"time"
)

// AudienceStore abstracts persistence operations required by AudienceService.
type AudienceStore interface {
	ListActivePanelists() ([]*PanelistProfile, error)
	GetSurvey(id string) (*Survey, error)
	UpsertQualifications(qs []*SurveyQualification) error
	AddActivity(e ActivityEntry)
}

// AudienceService evaluates demographic filter predicates against the active
// panelist population, for audience-size previews and survey assignment.
type AudienceService struct {
	store AudienceStore
	now   func() time.Time
}

func NewAudienceService(store AudienceStore) *AudienceService {
	return &AudienceService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// matchesFilters reports whether a panelist passes every supplied predicate.
// A missing attribute value never passes a predicate on that attribute.
func matchesFilters(f *AudienceFilters, p *PanelistProfile) bool {
	if f == nil {
		return true
	}
	if f.Gender != "" && !strings.EqualFold(p.Gender, f.Gender) {
		return false
	}
	if f.Location != "" && !strings.EqualFold(p.Location, f.Location) {
		return false
	}
	if f.Education != "" && !strings.EqualFold(p.Education, f.Education) {
		return false
	}
	if f.Employment != "" && !strings.EqualFold(p.Employment, f.Employment) {
		return false
	}
	if f.AgeMin != nil || f.AgeMax != nil {
		if p.Age == nil {
			return false
		}
		if f.AgeMin != nil && *p.Age < *f.AgeMin {
			return false
		}
		if f.AgeMax != nil && *p.Age > *f.AgeMax {
			return false
		}
	}
	if f.IncomeMin != nil || f.IncomeMax != nil {
		if p.Income == nil {
			return false
		}
		if f.IncomeMin != nil && *p.Income < *f.IncomeMin {
			return false
		}
		if f.IncomeMax != nil && *p.Income > *f.IncomeMax {
			return false
		}
	}
	return true
}

func validateFilters(f *AudienceFilters) error {
	if f == nil {
		return nil
	}
	if f.AgeMin != nil && f.AgeMax != nil && *f.AgeMin > *f.AgeMax {
		return NewInvalidError("age_min exceeds age_max")
	}
	if f.IncomeMin != nil && f.IncomeMax != nil && *f.IncomeMin > *f.IncomeMax {
		return NewInvalidError("income_min exceeds income_max")
	}
	return nil
}

// Count returns the number of active panelists matching all predicates.
func (s *AudienceService) Count(f *AudienceFilters) (int, error) {
	if err := validateFilters(f); err != nil {
		return 0, err
	}
	pool, err := s.store.ListActivePanelists()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, p := range pool {
		if matchesFilters(f, p) {
			n++
		}
	}
	return n, nil
}

// Assign evaluates filters against the active population and materializes
// SurveyQualification rows for the whole population: is_qualified=true for
// matches, false for the rest. The write is a single upsert batch, so a
// failed population read leaves no partial state. Returns the matched count.
func (s *AudienceService) Assign(surveyID string, f *AudienceFilters, reason, actor string) (int, error) {
	if strings.TrimSpace(surveyID) == "" {
		return 0, NewInvalidError("survey_id required")
	}
	if err := validateFilters(f); err != nil {
		return 0, err
	}
	sv, err := s.store.GetSurvey(surveyID)
	if err != nil {
		return 0, err
	}
	if sv == nil {
		return 0, NewNotFoundError("survey not found")
	}
	if reason == "" {
		reason = "audience filter"
	}
	pool, err := s.store.ListActivePanelists()
	if err != nil {
		return 0, err
	}
	now := s.now()
	qs := make([]*SurveyQualification, 0, len(pool))
	matched := 0
	for _, p := range pool {
		ok := matchesFilters(f, p)
		if ok {
			matched++
		}
		qs = append(qs, &SurveyQualification{
			SurveyID:    surveyID,
			PanelistID:  p.ID,
			IsQualified: ok,
			Reason:      reason,
			EvaluatedAt: now,
		})
	}
	if err := s.store.UpsertQualifications(qs); err != nil {
		return 0, err
	}
	s.store.AddActivity(ActivityEntry{Time: now, Actor: actor, Action: "assign_audience", Target: surveyID, Note: strconv.Itoa(matched)})
	return matched, nil
}
