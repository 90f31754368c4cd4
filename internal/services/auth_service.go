package services

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// AuthStore abstracts persistence operations required by AuthService.
type AuthStore interface {
	FindUserByEmail(email string) (*User, error)
	AddUser(u *User) error
	InsertPanelist(p *PanelistProfile) (*PanelistProfile, error)
}

type TokenSigner func(uid, role, email string, ttl time.Duration) (string, error)

type AuthService struct {
	store     AuthStore
	now       func() time.Time
	idGen     func(prefix string, n int) string
	signToken TokenSigner
	tokenTTL  time.Duration
}

type AuthResult struct {
	Token      string
	UserID     string
	PanelistID string
	Role       string
}

func NewAuthService(store AuthStore, signer TokenSigner) *AuthService {
	return &AuthService{
		store:     store,
		now:       func() time.Time { return time.Now().UTC() },
		idGen:     func(prefix string, n int) string { return prefix + shortID(n) },
		signToken: signer,
		tokenTTL:  30 * 24 * time.Hour,
	}
}

// Register completes panelist sign-up: it creates the user account and the
// linked panelist profile, then issues a token. Public registration always
// yields the panelist role; admin accounts are provisioned out of band.
func (s *AuthService) Register(email, password string) (*AuthResult, error) {
	return s.register(email, password, RolePanelist)
}

// RegisterAdmin provisions an account with an elevated role. Used by the seed
// path at process start, never exposed over HTTP.
func (s *AuthService) RegisterAdmin(email, password, role string) (*AuthResult, error) {
	if role != RoleSurveyAdmin && role != RoleSystemAdmin {
		return nil, NewInvalidError("invalid admin role")
	}
	return s.register(email, password, role)
}

func (s *AuthService) register(email, password, role string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("email/password required")
	}
	existing, err := s.store.FindUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewConflictError("email exists")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	userID := s.idGen("u", 7)
	now := s.now()
	panelistID := ""
	if role == RolePanelist {
		p, err := s.store.InsertPanelist(&PanelistProfile{
			ID:        s.idGen("p", 11),
			UserID:    userID,
			IsActive:  true,
			CreatedAt: now,
		})
		if err != nil {
			return nil, err
		}
		panelistID = p.ID
	}
	if err := s.store.AddUser(&User{ID: userID, Email: email, PassHash: hash, Role: role, PanelistID: panelistID, CreatedAt: now}); err != nil {
		return nil, err
	}
	if s.signToken == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	token, err := s.signToken(userID, role, email, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, UserID: userID, PanelistID: panelistID, Role: role}, nil
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("email/password required")
	}
	u, err := s.store.FindUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(u.PassHash, []byte(password)); err != nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if s.signToken == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	token, err := s.signToken(u.ID, u.Role, u.Email, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, UserID: u.ID, PanelistID: u.PanelistID, Role: u.Role}, nil
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}
