package api

import "github.com/panelhive/panelhive/internal/services"

type authStoreAdapter struct {
	store Store
}

func newAuthStoreAdapter(store Store) services.AuthStore {
	return &authStoreAdapter{store: store}
}

func (a *authStoreAdapter) FindUserByEmail(email string) (*services.User, error) {
	return toServiceUser(a.store.FindUserByEmail(email)), nil
}

func (a *authStoreAdapter) AddUser(u *services.User) error {
	a.store.AddUser(fromServiceUser(u))
	return nil
}

func (a *authStoreAdapter) InsertPanelist(p *services.PanelistProfile) (*services.PanelistProfile, error) {
	apiPanelist := fromServicePanelist(p)
	a.store.AddPanelist(apiPanelist)
	return toServicePanelist(a.store.GetPanelist(apiPanelist.ID)), nil
}

var _ services.AuthStore = (*authStoreAdapter)(nil)
