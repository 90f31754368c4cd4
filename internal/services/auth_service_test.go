package services

import (
	"errors"
	"testing"
	"time"
)

type stubAuthStore struct {
	users     map[string]*User
	panelists map[string]*PanelistProfile
	addErr    error
}

func newStubAuthStore() *stubAuthStore {
	return &stubAuthStore{users: map[string]*User{}, panelists: map[string]*PanelistProfile{}}
}

func (s *stubAuthStore) FindUserByEmail(email string) (*User, error) {
	if u, ok := s.users[email]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, nil
}

func (s *stubAuthStore) AddUser(u *User) error {
	if s.addErr != nil {
		return s.addErr
	}
	copy := *u
	s.users[u.Email] = &copy
	return nil
}

func (s *stubAuthStore) InsertPanelist(p *PanelistProfile) (*PanelistProfile, error) {
	copy := *p
	s.panelists[p.ID] = &copy
	return &copy, nil
}

func testSigner(uid, role, email string, ttl time.Duration) (string, error) {
	return "tok-" + uid + "-" + role, nil
}

func TestRegisterCreatesPanelistProfile(t *testing.T) {
	store := newStubAuthStore()
	svc := NewAuthService(store, testSigner)

	res, err := svc.Register("ann@example.com", "secret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.Role != RolePanelist {
		t.Fatalf("public registration must yield panelist role, got %q", res.Role)
	}
	if res.PanelistID == "" {
		t.Fatal("expected linked panelist profile")
	}
	p := store.panelists[res.PanelistID]
	if p == nil || !p.IsActive || p.PointsBalance != 0 {
		t.Fatalf("unexpected panelist profile: %+v", p)
	}
	if res.Token == "" {
		t.Fatal("expected signed token")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	store := newStubAuthStore()
	svc := NewAuthService(store, testSigner)

	if _, err := svc.Register("ann@example.com", "secret"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register("ann@example.com", "other")
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterAdminSkipsPanelistProfile(t *testing.T) {
	store := newStubAuthStore()
	svc := NewAuthService(store, testSigner)

	res, err := svc.RegisterAdmin("ops@example.com", "secret", RoleSystemAdmin)
	if err != nil {
		t.Fatalf("RegisterAdmin: %v", err)
	}
	if res.PanelistID != "" {
		t.Fatal("admin accounts must not get a panelist profile")
	}
	if _, err := svc.RegisterAdmin("x@example.com", "secret", "superuser"); err == nil {
		t.Fatal("unknown role must be rejected")
	}
}

func TestLogin(t *testing.T) {
	store := newStubAuthStore()
	svc := NewAuthService(store, testSigner)
	if _, err := svc.Register("ann@example.com", "secret"); err != nil {
		t.Fatalf("register: %v", err)
	}

	res, err := svc.Login("ann@example.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token == "" || res.Role != RolePanelist {
		t.Fatalf("unexpected login result: %+v", res)
	}

	if _, err := svc.Login("ann@example.com", "wrong"); err == nil {
		t.Fatal("wrong password must fail")
	}
	_, err = svc.Login("ghost@example.com", "secret")
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorUnauthorized {
		t.Fatalf("unknown user: expected unauthorized, got %v", err)
	}
}

func TestRegisterPropagatesStoreError(t *testing.T) {
	store := newStubAuthStore()
	store.addErr = errors.New("store down")
	svc := NewAuthService(store, testSigner)

	if _, err := svc.Register("ann@example.com", "secret"); err == nil {
		t.Fatal("expected store error to propagate")
	}
}
