package api

import (
	"errors"
	"time"
)

var (
	// ErrDuplicate signals a unique-key violation on insert.
	ErrDuplicate = errors.New("duplicate row")
	// ErrNotFound signals a write against a row that does not exist.
	ErrNotFound = errors.New("row not found")
)

// Store is the persistence surface the HTTP layer is built on. Both the
// in-memory store and the sqlite store implement it.
type Store interface {
	AddPanelist(p *Panelist)
	GetPanelist(id string) *Panelist
	ListActivePanelists() []*Panelist
	UpdatePanelist(p *Panelist) bool
	DeactivatePanelist(id string) bool

	CreditPoints(panelistID string, points int, kind, refID string) bool
	DebitPoints(panelistID string, points int, refID string) bool
	SumPointsInWindow(panelistID string, from, to time.Time) int
	HasPointsEntry(panelistID, kind, refID string) bool
	ListPointsEntries(panelistID string) []*PointsEntry

	AddSurvey(sv *Survey)
	GetSurvey(id string) *Survey
	UpdateSurvey(sv *Survey) bool
	ListSurveys() []*Survey
	UpsertQualifications(qs []*SurveyQualification) error
	GetQualification(surveyID, panelistID string) *SurveyQualification
	ListQualificationsBySurvey(surveyID string) []*SurveyQualification

	AddContest(c *Contest)
	GetContest(id string) *Contest
	ListContests() []*Contest
	UpdateContestStatus(id, status string) bool
	AddParticipation(p *ContestParticipation) error
	GetParticipation(contestID, panelistID string) *ContestParticipation
	ListParticipations(contestID string) []*ContestParticipation
	SetRanks(contestID string, ranks []RankAssignment) error
	MarkPrizeAwarded(contestID, panelistID string) bool

	AddOffer(o *MerchantOffer)
	GetOffer(id string) *MerchantOffer
	UpdateOffer(o *MerchantOffer) bool
	ListOffers(activeOnly bool) []*MerchantOffer
	AddRedemption(r *Redemption)
	ListRedemptionsByPanelist(panelistID string) []*Redemption

	AddScanTask(t *ScanTask)
	GetScanTask(id string) *ScanTask
	UpdateScanTask(t *ScanTask) bool
	ListScanTasks(status string) []*ScanTask

	AddUser(u *User)
	FindUserByEmail(email string) *User

	AddActivity(e ActivityEntry)
	ListActivity() []ActivityEntry
}

var _ Store = (*memoryStore)(nil)
