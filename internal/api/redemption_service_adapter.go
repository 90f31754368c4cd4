package api

import "github.com/panelhive/panelhive/internal/services"

type redemptionStoreAdapter struct {
	store Store
}

func newRedemptionStoreAdapter(store Store) services.RedemptionStore {
	return &redemptionStoreAdapter{store: store}
}

func (a *redemptionStoreAdapter) InsertOffer(o *services.MerchantOffer) (*services.MerchantOffer, error) {
	apiOffer := fromServiceOffer(o)
	a.store.AddOffer(apiOffer)
	return toServiceOffer(a.store.GetOffer(apiOffer.ID)), nil
}

func (a *redemptionStoreAdapter) GetOffer(id string) (*services.MerchantOffer, error) {
	return toServiceOffer(a.store.GetOffer(id)), nil
}

func (a *redemptionStoreAdapter) UpdateOffer(o *services.MerchantOffer) error {
	if o == nil {
		return services.NewInvalidError("offer required")
	}
	if ok := a.store.UpdateOffer(fromServiceOffer(o)); !ok {
		return services.NewNotFoundError("offer not found")
	}
	return nil
}

func (a *redemptionStoreAdapter) ListOffers(activeOnly bool) ([]*services.MerchantOffer, error) {
	offers := a.store.ListOffers(activeOnly)
	out := make([]*services.MerchantOffer, 0, len(offers))
	for _, o := range offers {
		out = append(out, toServiceOffer(o))
	}
	return out, nil
}

func (a *redemptionStoreAdapter) GetPanelist(id string) (*services.PanelistProfile, error) {
	return toServicePanelist(a.store.GetPanelist(id)), nil
}

func (a *redemptionStoreAdapter) DebitPoints(panelistID string, points int, refID string) (bool, error) {
	return a.store.DebitPoints(panelistID, points, refID), nil
}

func (a *redemptionStoreAdapter) InsertRedemption(r *services.Redemption) error {
	a.store.AddRedemption(&Redemption{
		ID:          r.ID,
		PanelistID:  r.PanelistID,
		OfferID:     r.OfferID,
		PointsSpent: r.PointsSpent,
		RedeemedAt:  r.RedeemedAt,
	})
	return nil
}

func (a *redemptionStoreAdapter) AddActivity(e services.ActivityEntry) {
	a.store.AddActivity(toStoreActivity(e))
}

var _ services.RedemptionStore = (*redemptionStoreAdapter)(nil)
