package services

import "time"

// Survey lifecycle states.
const (
	SurveyStatusDraft    = "draft"
	SurveyStatusActive   = "active"
	SurveyStatusInactive = "inactive"
)

// Contest lifecycle states. Transitions are one-directional:
// draft -> active -> ended, with cancelled reachable from draft or active.
const (
	ContestStatusDraft     = "draft"
	ContestStatusActive    = "active"
	ContestStatusEnded     = "ended"
	ContestStatusCancelled = "cancelled"
)

const (
	InviteAll      = "all"
	InviteSelected = "selected"
)

const (
	ScanStatusPending  = "pending"
	ScanStatusApproved = "approved"
	ScanStatusRejected = "rejected"
)

// Points ledger entry kinds.
const (
	PointsKindSurvey     = "survey"
	PointsKindScan       = "scan"
	PointsKindPrize      = "prize"
	PointsKindRedemption = "redemption"
)

// PanelistProfile is a panelist's demographic and status record. Panelists
// are never hard-deleted; IsActive flips off on deactivation. Age and Income
// are pointers because a value may simply not be on file, and absence must be
// distinguishable from zero when evaluating range predicates.
type PanelistProfile struct {
	ID                  string
	UserID              string
	Age                 *int
	Gender              string
	Location            string
	Income              *int
	Education           string
	Employment          string
	Interests           []string
	IsActive            bool
	PointsBalance       int
	TotalPointsEarned   int
	TotalPointsRedeemed int
	CreatedAt           time.Time
}

// AudienceFilters is a filter specification: zero or more independent
// predicates combined with logical AND. An empty string or nil pointer means
// no constraint on that attribute.
type AudienceFilters struct {
	Gender     string
	Location   string
	Education  string
	Employment string
	AgeMin     *int
	AgeMax     *int
	IncomeMin  *int
	IncomeMax  *int
}

type Survey struct {
	ID               string
	Title            string
	Description      string
	Points           int
	EstimatedMinutes int
	Status           string
	Filters          *AudienceFilters
	CreatedBy        string
	CreatedAt        time.Time
}

// SurveyQualification is the materialized per-(survey, panelist) decision.
type SurveyQualification struct {
	SurveyID    string
	PanelistID  string
	IsQualified bool
	Reason      string
	EvaluatedAt time.Time
}

type Contest struct {
	ID          string
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	PrizePoints int
	Status      string
	InviteType  string
	InvitedIDs  []string
	CreatedAt   time.Time
}

// ContestParticipation joins a panelist to a contest. Rank is nil until the
// leaderboard has been computed at least once. PrizeAwarded flips true at
// most once and never back.
type ContestParticipation struct {
	ContestID    string
	PanelistID   string
	Rank         *int
	PointsEarned int
	PrizeAwarded bool
	JoinedAt     time.Time
}

type MerchantOffer struct {
	ID         string
	Merchant   string
	Title      string
	PointsCost int
	IsActive   bool
	CreatedAt  time.Time
}

type Redemption struct {
	ID          string
	PanelistID  string
	OfferID     string
	PointsSpent int
	RedeemedAt  time.Time
}

// PointsEntry is an append-only ledger row. Credits carry positive Points,
// redemption debits negative. Contest accrual sums entries whose EarnedAt
// falls inside the contest window.
type PointsEntry struct {
	ID         string
	PanelistID string
	Points     int
	Kind       string
	RefID      string
	EarnedAt   time.Time
}

type ScanTask struct {
	ID          string
	PanelistID  string
	ImageKey    string
	Points      int
	Status      string
	SubmittedAt time.Time
	ReviewedAt  *time.Time
	ReviewedBy  string
}

type User struct {
	ID         string
	Email      string
	PassHash   []byte
	Role       string
	PanelistID string
	CreatedAt  time.Time
}

// ActivityEntry records an admin or panelist action. Writes are best-effort
// and never abort the primary operation.
type ActivityEntry struct {
	Time   time.Time
	Actor  string
	Action string
	Target string
	Note   string
}
