package services

import (
	"strings"
	"time"
)

// PanelistStore abstracts persistence operations required by PanelistService.
type PanelistStore interface {
	InsertPanelist(p *PanelistProfile) (*PanelistProfile, error)
	GetPanelist(id string) (*PanelistProfile, error)
	UpdatePanelist(p *PanelistProfile) error
	DeactivatePanelist(id string) error
	ListPointsEntries(panelistID string) ([]*PointsEntry, error)
	AddActivity(e ActivityEntry)
}

// PanelistService owns profile creation at registration completion,
// demographic updates and soft deactivation.
type PanelistService struct {
	store PanelistStore
	now   func() time.Time
}

func NewPanelistService(store PanelistStore) *PanelistService {
	return &PanelistService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *PanelistService) Create(p *PanelistProfile) (*PanelistProfile, error) {
	if p == nil {
		return nil, NewInvalidError("panelist required")
	}
	if err := validateAttributes(p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = shortID(12)
	}
	p.IsActive = true
	p.PointsBalance = 0
	p.TotalPointsEarned = 0
	p.TotalPointsRedeemed = 0
	p.CreatedAt = s.now()
	created, err := s.store.InsertPanelist(p)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return p, nil
	}
	return created, nil
}

func (s *PanelistService) Get(id string) (*PanelistProfile, error) {
	p, err := s.store.GetPanelist(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, NewNotFoundError("panelist not found")
	}
	return p, nil
}

// Update patches demographic attributes. Balances and totals are never
// editable here; they move only through the points primitives.
func (s *PanelistService) Update(id string, raw map[string]any, actor string) (*PanelistProfile, error) {
	p, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	updated := *p
	if v, ok := raw["gender"].(string); ok {
		updated.Gender = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := raw["location"].(string); ok {
		updated.Location = strings.TrimSpace(v)
	}
	if v, ok := raw["education"].(string); ok {
		updated.Education = strings.TrimSpace(v)
	}
	if v, ok := raw["employment"].(string); ok {
		updated.Employment = strings.TrimSpace(v)
	}
	if v, ok := raw["age"]; ok {
		updated.Age, err = parseOptionalInt(v)
		if err != nil {
			return nil, NewInvalidError("invalid age")
		}
	}
	if v, ok := raw["income"]; ok {
		updated.Income, err = parseOptionalInt(v)
		if err != nil {
			return nil, NewInvalidError("invalid income")
		}
	}
	if v, ok := raw["interests"]; ok {
		updated.Interests = parseStringSlice(v)
	}
	if err := validateAttributes(&updated); err != nil {
		return nil, err
	}
	if err := s.store.UpdatePanelist(&updated); err != nil {
		return nil, err
	}
	s.store.AddActivity(ActivityEntry{Time: s.now(), Actor: actor, Action: "update_panelist", Target: id})
	return &updated, nil
}

// Deactivate soft-deletes. The profile row and its ledger survive.
func (s *PanelistService) Deactivate(id, actor string) error {
	p, err := s.Get(id)
	if err != nil {
		return err
	}
	if !p.IsActive {
		return NewConflictError("panelist already inactive")
	}
	if err := s.store.DeactivatePanelist(id); err != nil {
		return err
	}
	s.store.AddActivity(ActivityEntry{Time: s.now(), Actor: actor, Action: "deactivate_panelist", Target: id})
	return nil
}

// Ledger returns the panelist's points history, newest first.
func (s *PanelistService) Ledger(id string) ([]*PointsEntry, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	return s.store.ListPointsEntries(id)
}

func validateAttributes(p *PanelistProfile) error {
	if p.Age != nil && (*p.Age < 0 || *p.Age > 150) {
		return NewInvalidError("age out of range")
	}
	if p.Income != nil && *p.Income < 0 {
		return NewInvalidError("income must be non-negative")
	}
	return nil
}

func parseOptionalInt(v any) (*int, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case float64:
		n := int(t)
		return &n, nil
	default:
		return nil, NewInvalidError("expected number")
	}
}

func parseStringSlice(raw any) []string {
	arr, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			s = strings.TrimSpace(s)
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
