package services

import (
	"errors"
	"testing"
)

type stubScanStore struct {
	tasks     map[string]*ScanTask
	panelists map[string]*PanelistProfile
	ledger    []*PointsEntry
	audits    []ActivityEntry
	credits   int
}

func newStubScanStore() *stubScanStore {
	return &stubScanStore{tasks: map[string]*ScanTask{}, panelists: map[string]*PanelistProfile{}}
}

func (s *stubScanStore) InsertScanTask(t *ScanTask) (*ScanTask, error) {
	copy := *t
	s.tasks[t.ID] = &copy
	return &copy, nil
}

func (s *stubScanStore) GetScanTask(id string) (*ScanTask, error) {
	if t, ok := s.tasks[id]; ok {
		copy := *t
		return &copy, nil
	}
	return nil, nil
}

func (s *stubScanStore) UpdateScanTask(t *ScanTask) error {
	if _, ok := s.tasks[t.ID]; !ok {
		return NewNotFoundError("scan task not found")
	}
	copy := *t
	s.tasks[t.ID] = &copy
	return nil
}

func (s *stubScanStore) ListScanTasks(status string) ([]*ScanTask, error) {
	out := []*ScanTask{}
	for _, t := range s.tasks {
		if status == "" || t.Status == status {
			copy := *t
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (s *stubScanStore) GetPanelist(id string) (*PanelistProfile, error) {
	if p, ok := s.panelists[id]; ok {
		copy := *p
		return &copy, nil
	}
	return nil, nil
}

func (s *stubScanStore) HasPointsEntry(panelistID, kind, refID string) (bool, error) {
	for _, e := range s.ledger {
		if e.PanelistID == panelistID && e.Kind == kind && e.RefID == refID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubScanStore) CreditPoints(panelistID string, points int, kind, refID string) error {
	p, ok := s.panelists[panelistID]
	if !ok {
		return NewNotFoundError("panelist not found")
	}
	p.PointsBalance += points
	p.TotalPointsEarned += points
	s.credits++
	s.ledger = append(s.ledger, &PointsEntry{PanelistID: panelistID, Points: points, Kind: kind, RefID: refID})
	return nil
}

func (s *stubScanStore) AddActivity(e ActivityEntry) {
	s.audits = append(s.audits, e)
}

type stubObjects struct {
	blobs map[string][]byte
}

func (o *stubObjects) Fetch(key string) ([]byte, error) {
	if b, ok := o.blobs[key]; ok {
		return b, nil
	}
	return nil, errors.New("no such key")
}

func TestSubmitScan(t *testing.T) {
	store := newStubScanStore()
	store.panelists["p1"] = &PanelistProfile{ID: "p1", IsActive: true}
	svc := NewScanService(store, &stubObjects{})

	task, err := svc.Submit("p1", "scans/2026/abc.jpg")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if task.Status != ScanStatusPending {
		t.Fatalf("new task must be pending, got %q", task.Status)
	}
	if task.ID == "" {
		t.Fatal("expected generated task id")
	}

	if _, err := svc.Submit("p1", "  "); err == nil {
		t.Fatal("blank image key must be rejected")
	}
	if _, err := svc.Submit("ghost", "scans/x.jpg"); err == nil {
		t.Fatal("unknown panelist must be rejected")
	}
}

func TestReviewApprovalCreditsOnce(t *testing.T) {
	store := newStubScanStore()
	store.panelists["p1"] = &PanelistProfile{ID: "p1", IsActive: true}
	store.tasks["T1"] = &ScanTask{ID: "T1", PanelistID: "p1", ImageKey: "k", Status: ScanStatusPending}
	svc := NewScanService(store, &stubObjects{})

	task, err := svc.Review("T1", true, 25, "reviewer")
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if task.Status != ScanStatusApproved || task.Points != 25 {
		t.Fatalf("unexpected task after approval: %+v", task)
	}
	if store.panelists["p1"].PointsBalance != 25 {
		t.Fatalf("expected 25 points credited, got %d", store.panelists["p1"].PointsBalance)
	}

	_, err = svc.Review("T1", true, 25, "reviewer")
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorConflict {
		t.Fatalf("re-review: expected conflict, got %v", err)
	}
	if store.credits != 1 {
		t.Fatalf("expected exactly one credit, got %d", store.credits)
	}
}

func TestReviewRejectionDoesNotCredit(t *testing.T) {
	store := newStubScanStore()
	store.panelists["p1"] = &PanelistProfile{ID: "p1", IsActive: true}
	store.tasks["T1"] = &ScanTask{ID: "T1", PanelistID: "p1", ImageKey: "k", Status: ScanStatusPending}
	svc := NewScanService(store, &stubObjects{})

	task, err := svc.Review("T1", false, 0, "reviewer")
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if task.Status != ScanStatusRejected {
		t.Fatalf("expected rejected, got %q", task.Status)
	}
	if store.credits != 0 {
		t.Fatalf("rejection must not credit, got %d credits", store.credits)
	}
}

func TestImageFetch(t *testing.T) {
	store := newStubScanStore()
	svc := NewScanService(store, &stubObjects{blobs: map[string][]byte{"k1": []byte("jpeg")}})

	b, err := svc.Image("k1")
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	if string(b) != "jpeg" {
		t.Fatalf("unexpected bytes %q", b)
	}
	_, err = svc.Image("missing")
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorNotFound {
		t.Fatalf("expected not_found for missing key, got %v", err)
	}
}
