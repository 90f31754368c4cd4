package services

import (
	"strconv"
	"strings"
	"time"
)

// ObjectStore fetches scan image bytes by their opaque key. The hosting
// object storage service is an external collaborator; this is the whole
// surface the platform needs from it.
type ObjectStore interface {
	Fetch(key string) ([]byte, error)
}

// ScanStore abstracts persistence operations required by ScanService.
type ScanStore interface {
	InsertScanTask(t *ScanTask) (*ScanTask, error)
	GetScanTask(id string) (*ScanTask, error)
	UpdateScanTask(t *ScanTask) error
	ListScanTasks(status string) ([]*ScanTask, error)
	GetPanelist(id string) (*PanelistProfile, error)
	HasPointsEntry(panelistID, kind, refID string) (bool, error)
	CreditPoints(panelistID string, points int, kind, refID string) error
	AddActivity(e ActivityEntry)
}

// ScanService owns mail-scan tasks: panelists submit a scanned image by its
// object key, reviewers approve or reject, approval credits points once.
type ScanService struct {
	store   ScanStore
	objects ObjectStore
	now     func() time.Time
}

func NewScanService(store ScanStore, objects ObjectStore) *ScanService {
	return &ScanService{
		store:   store,
		objects: objects,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *ScanService) Submit(panelistID, imageKey string) (*ScanTask, error) {
	if strings.TrimSpace(imageKey) == "" {
		return nil, NewInvalidError("image_key required")
	}
	p, err := s.store.GetPanelist(panelistID)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.IsActive {
		return nil, NewNotFoundError("panelist not found")
	}
	t := &ScanTask{
		ID:          shortID(12),
		PanelistID:  panelistID,
		ImageKey:    imageKey,
		Status:      ScanStatusPending,
		SubmittedAt: s.now(),
	}
	created, err := s.store.InsertScanTask(t)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return t, nil
	}
	return created, nil
}

func (s *ScanService) Get(id string) (*ScanTask, error) {
	t, err := s.store.GetScanTask(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, NewNotFoundError("scan task not found")
	}
	return t, nil
}

func (s *ScanService) ListPending() ([]*ScanTask, error) {
	return s.store.ListScanTasks(ScanStatusPending)
}

// Review settles a pending task. Approval sets the point value and credits it
// through the shared points primitive; a task already credited is never
// credited again.
func (s *ScanService) Review(taskID string, approve bool, points int, reviewer string) (*ScanTask, error) {
	t, err := s.Get(taskID)
	if err != nil {
		return nil, err
	}
	if t.Status != ScanStatusPending {
		return nil, NewConflictError("scan task is " + t.Status)
	}
	now := s.now()
	updated := *t
	updated.ReviewedAt = &now
	updated.ReviewedBy = reviewer
	if !approve {
		updated.Status = ScanStatusRejected
		if err := s.store.UpdateScanTask(&updated); err != nil {
			return nil, err
		}
		s.store.AddActivity(ActivityEntry{Time: now, Actor: reviewer, Action: "reject_scan", Target: taskID})
		return &updated, nil
	}
	if points <= 0 {
		return nil, NewInvalidError("points must be positive")
	}
	credited, err := s.store.HasPointsEntry(t.PanelistID, PointsKindScan, taskID)
	if err != nil {
		return nil, err
	}
	if credited {
		return nil, NewConflictError("scan already credited")
	}
	updated.Status = ScanStatusApproved
	updated.Points = points
	if err := s.store.UpdateScanTask(&updated); err != nil {
		return nil, err
	}
	if err := s.store.CreditPoints(t.PanelistID, points, PointsKindScan, taskID); err != nil {
		return nil, err
	}
	s.store.AddActivity(ActivityEntry{Time: now, Actor: reviewer, Action: "approve_scan", Target: taskID, Note: strconv.Itoa(points)})
	return &updated, nil
}

// Image fetches the raw scan bytes for a stored key.
func (s *ScanService) Image(key string) ([]byte, error) {
	if strings.TrimSpace(key) == "" {
		return nil, NewInvalidError("key required")
	}
	if s.objects == nil {
		return nil, NewNotFoundError("image not found")
	}
	b, err := s.objects.Fetch(key)
	if err != nil {
		return nil, NewNotFoundError("image not found")
	}
	return b, nil
}
