package services

import (
	"strconv"
	"strings"
	"time"
)

// RedemptionStore abstracts persistence operations required by
// RedemptionService.
type RedemptionStore interface {
	InsertOffer(o *MerchantOffer) (*MerchantOffer, error)
	GetOffer(id string) (*MerchantOffer, error)
	UpdateOffer(o *MerchantOffer) error
	ListOffers(activeOnly bool) ([]*MerchantOffer, error)

	GetPanelist(id string) (*PanelistProfile, error)
	// DebitPoints decrements the panelist's balance by points as an atomic
	// conditional update with a zero floor, records the redemption ledger
	// entry, and reports whether the debit happened.
	DebitPoints(panelistID string, points int, refID string) (bool, error)
	InsertRedemption(r *Redemption) error
	AddActivity(e ActivityEntry)
}

// RedemptionService owns merchant offers and point redemption. A redemption
// debits the balance exactly once per successful attempt and is rejected
// outright when the balance is insufficient.
type RedemptionService struct {
	store RedemptionStore
	now   func() time.Time
}

func NewRedemptionService(store RedemptionStore) *RedemptionService {
	return &RedemptionService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *RedemptionService) CreateOffer(actor string, o *MerchantOffer) (*MerchantOffer, error) {
	if o == nil {
		return nil, NewInvalidError("offer required")
	}
	if strings.TrimSpace(o.Title) == "" {
		return nil, NewInvalidError("title required")
	}
	if o.PointsCost <= 0 {
		return nil, NewInvalidError("points_cost must be positive")
	}
	if o.ID == "" {
		o.ID = shortID(8)
	}
	o.CreatedAt = s.now()
	created, err := s.store.InsertOffer(o)
	if err != nil {
		return nil, err
	}
	s.store.AddActivity(ActivityEntry{Time: s.now(), Actor: actor, Action: "create_offer", Target: o.ID})
	if created == nil {
		return o, nil
	}
	return created, nil
}

func (s *RedemptionService) UpdateOffer(id string, raw map[string]any, actor string) (*MerchantOffer, error) {
	o, err := s.store.GetOffer(id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, NewNotFoundError("offer not found")
	}
	updated := *o
	if v, ok := raw["title"].(string); ok && strings.TrimSpace(v) != "" {
		updated.Title = v
	}
	if v, ok := raw["merchant"].(string); ok {
		updated.Merchant = v
	}
	if v, ok := raw["points_cost"].(float64); ok {
		if v <= 0 {
			return nil, NewInvalidError("points_cost must be positive")
		}
		updated.PointsCost = int(v)
	}
	if v, ok := raw["is_active"].(bool); ok {
		updated.IsActive = v
	}
	if err := s.store.UpdateOffer(&updated); err != nil {
		return nil, err
	}
	s.store.AddActivity(ActivityEntry{Time: s.now(), Actor: actor, Action: "update_offer", Target: id})
	return &updated, nil
}

func (s *RedemptionService) ListOffers(activeOnly bool) ([]*MerchantOffer, error) {
	return s.store.ListOffers(activeOnly)
}

// Redeem debits the offer's point cost from the panelist's balance. The debit
// is delegated to the store's conditional decrement, so two simultaneous
// redemptions cannot both succeed on one balance.
func (s *RedemptionService) Redeem(panelistID, offerID string) (*Redemption, error) {
	o, err := s.store.GetOffer(offerID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, NewNotFoundError("offer not found")
	}
	if !o.IsActive {
		return nil, NewConflictError("offer is not active")
	}
	p, err := s.store.GetPanelist(panelistID)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.IsActive {
		return nil, NewNotFoundError("panelist not found")
	}
	r := &Redemption{
		ID:          shortID(12),
		PanelistID:  panelistID,
		OfferID:     offerID,
		PointsSpent: o.PointsCost,
		RedeemedAt:  s.now(),
	}
	ok, err := s.store.DebitPoints(panelistID, o.PointsCost, r.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewConflictError("insufficient points")
	}
	if err := s.store.InsertRedemption(r); err != nil {
		return nil, err
	}
	s.store.AddActivity(ActivityEntry{Time: s.now(), Actor: panelistID, Action: "redeem_offer", Target: offerID, Note: strconv.Itoa(o.PointsCost)})
	return r, nil
}
