package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shiiviitiiwarii28/Autograder/internal/model"
)

// stubAPI implements Service with per-test closures and call counters.
type stubAPI struct {
	mu          sync.Mutex
	examsCalls  int
	uploadCalls int
	resultCalls int

	exams   func() ([]model.ExamSummary, error)
	uploads func() ([]model.UploadRecord, error)
	result  func(examID string) (*model.ExamResult, error)
}

func (s *stubAPI) AvailableExams(ctx context.Context, studentID string) ([]model.ExamSummary, error) {
	s.mu.Lock()
	s.examsCalls++
	s.mu.Unlock()
	if s.exams == nil {
		return nil, nil
	}
	return s.exams()
}

func (s *stubAPI) Uploads(ctx context.Context, studentID string) ([]model.UploadRecord, error) {
	s.mu.Lock()
	s.uploadCalls++
	s.mu.Unlock()
	if s.uploads == nil {
		return nil, nil
	}
	return s.uploads()
}

func (s *stubAPI) StudentResult(ctx context.Context, studentID, examID string) (*model.ExamResult, error) {
	s.mu.Lock()
	s.resultCalls++
	s.mu.Unlock()
	if s.result == nil {
		return nil, nil
	}
	return s.result(examID)
}

func twoExams() []model.ExamSummary {
	return []model.ExamSummary{
		{ExamID: "1", ExamCode: "PHY-101", ExamName: "Physics Midterm", UploadStatus: model.UploadProcessed, HasResults: true},
		{ExamID: "2", ExamCode: "CHM-101", ExamName: "Chemistry Midterm", UploadStatus: model.UploadPending, HasResults: false},
	}
}

// seedExams loads the results tab so SelectExam has a collection to consult.
func seedExams(t *testing.T, c *Controller) {
	t.Helper()
	if err := c.LoadTab(context.Background(), TabResults); err != nil {
		t.Fatalf("LoadTab(results) error: %v", err)
	}
}

func TestParseTab(t *testing.T) {
	tests := []struct {
		in     string
		want   Tab
		wantOK bool
	}{
		{"results", TabResults, true},
		{"uploads", TabUploads, true},
		{"settings", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTab(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseTab(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLoadTabStoresCollection(t *testing.T) {
	svc := &stubAPI{exams: func() ([]model.ExamSummary, error) { return twoExams(), nil }}
	c := NewController(svc, "STU004")

	if err := c.LoadTab(context.Background(), TabResults); err != nil {
		t.Fatalf("LoadTab(results) error: %v", err)
	}
	view := c.Snapshot()
	if view.Tab != TabResults {
		t.Errorf("Tab = %q, want %q", view.Tab, TabResults)
	}
	if len(view.Exams) != 2 {
		t.Errorf("Exams = %d entries, want 2", len(view.Exams))
	}
}

func TestLoadTabFailureKeepsPreviousCollection(t *testing.T) {
	failing := false
	svc := &stubAPI{
		exams: func() ([]model.ExamSummary, error) {
			if failing {
				return nil, errors.New("connection refused")
			}
			return twoExams(), nil
		},
	}
	c := NewController(svc, "STU004")
	seedExams(t, c)

	failing = true
	if err := c.LoadTab(context.Background(), TabResults); err == nil {
		t.Fatal("LoadTab() should return the fetch error")
	}
	view := c.Snapshot()
	if len(view.Exams) != 2 {
		t.Errorf("Exams = %d entries after failed refresh, want previous 2", len(view.Exams))
	}
}

func TestLoadTabFailureKeepsPreviousUploads(t *testing.T) {
	failing := false
	svc := &stubAPI{
		uploads: func() ([]model.UploadRecord, error) {
			if failing {
				return nil, errors.New("timeout")
			}
			return []model.UploadRecord{{ID: "u1", FileName: "sheet.pdf"}}, nil
		},
	}
	c := NewController(svc, "STU004")
	if err := c.LoadTab(context.Background(), TabUploads); err != nil {
		t.Fatalf("LoadTab(uploads) error: %v", err)
	}

	failing = true
	if err := c.LoadTab(context.Background(), TabUploads); err == nil {
		t.Fatal("LoadTab() should return the fetch error")
	}
	view := c.Snapshot()
	if len(view.Uploads) != 1 {
		t.Errorf("Uploads = %d entries after failed refresh, want previous 1", len(view.Uploads))
	}
}

func TestLoadTabStaleResponseDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	call := 0

	svc := &stubAPI{
		exams: func() ([]model.ExamSummary, error) {
			mu.Lock()
			call++
			n := call
			mu.Unlock()
			switch n {
			case 1:
				return twoExams(), nil
			default:
				close(started)
				<-release
				return []model.ExamSummary{{ExamID: "9", ExamName: "Stale Exam"}}, nil
			}
		},
	}
	c := NewController(svc, "STU004")
	seedExams(t, c)

	done := make(chan error, 1)
	go func() { done <- c.LoadTab(context.Background(), TabResults) }()
	<-started

	// A newer refresh completes while the first is still in flight.
	fresh := []model.ExamSummary{
		{ExamID: "1", ExamName: "Physics Midterm", HasResults: true},
		{ExamID: "2", ExamName: "Chemistry Midterm"},
		{ExamID: "3", ExamName: "Biology Final", HasResults: true},
	}
	svc.exams = func() ([]model.ExamSummary, error) { return fresh, nil }
	if err := c.LoadTab(context.Background(), TabResults); err != nil {
		t.Fatalf("LoadTab() error: %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Errorf("stale LoadTab() error = %v, want nil", err)
	}

	view := c.Snapshot()
	if len(view.Exams) != 3 {
		t.Fatalf("Exams = %d entries, want the 3 from the newer fetch", len(view.Exams))
	}
	for _, e := range view.Exams {
		if e.ExamName == "Stale Exam" {
			t.Error("stale fetch result should have been discarded")
		}
	}
}

func TestLoadTabLastSwitchWins(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	svc := &stubAPI{
		exams: func() ([]model.ExamSummary, error) {
			close(started)
			<-release
			return twoExams(), nil
		},
		uploads: func() ([]model.UploadRecord, error) {
			return []model.UploadRecord{{ID: "u1", FileName: "sheet.pdf"}}, nil
		},
	}
	c := NewController(svc, "STU004")

	done := make(chan error, 1)
	go func() { done <- c.LoadTab(context.Background(), TabResults) }()
	<-started

	if err := c.LoadTab(context.Background(), TabUploads); err != nil {
		t.Fatalf("LoadTab(uploads) error: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Errorf("superseded LoadTab() error = %v, want nil", err)
	}

	view := c.Snapshot()
	if view.Tab != TabUploads {
		t.Errorf("Tab = %q, want %q after the later switch", view.Tab, TabUploads)
	}
	if len(view.Exams) != 0 {
		t.Errorf("Exams = %d entries, want 0: the superseded fetch must not apply", len(view.Exams))
	}
	if len(view.Uploads) != 1 {
		t.Errorf("Uploads = %d entries, want 1", len(view.Uploads))
	}
}

func TestSelectExamWithoutResultsIssuesNoRequest(t *testing.T) {
	svc := &stubAPI{exams: func() ([]model.ExamSummary, error) { return twoExams(), nil }}
	c := NewController(svc, "STU004")
	seedExams(t, c)

	tests := []struct {
		name   string
		examID string
	}{
		{"has_results false", "2"},
		{"unknown exam", "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.SelectExam(context.Background(), tt.examID)
			if !errors.Is(err, ErrExamUnavailable) {
				t.Errorf("SelectExam(%q) error = %v, want ErrExamUnavailable", tt.examID, err)
			}
			svc.mu.Lock()
			calls := svc.resultCalls
			svc.mu.Unlock()
			if calls != 0 {
				t.Errorf("StudentResult called %d times, want 0", calls)
			}
		})
	}
}

func TestSelectExamStoresResult(t *testing.T) {
	res := &model.ExamResult{
		ExamID: "1", ExamName: "Physics Midterm", Percentage: 87, Grade: "B+",
		Questions: []model.QuestionResult{{QuestionNumber: 1, QuestionText: "Define work."}},
	}
	svc := &stubAPI{
		exams:  func() ([]model.ExamSummary, error) { return twoExams(), nil },
		result: func(examID string) (*model.ExamResult, error) { return res, nil },
	}
	c := NewController(svc, "STU004")
	seedExams(t, c)
	c.ToggleQuestion(1)

	if err := c.SelectExam(context.Background(), "1"); err != nil {
		t.Fatalf("SelectExam() error: %v", err)
	}
	view := c.Snapshot()
	if view.Result == nil || view.Result.Grade != "B+" {
		t.Fatalf("Result = %+v, want grade B+", view.Result)
	}
	if view.Notice != NoticeNone {
		t.Errorf("Notice = %q, want none", view.Notice)
	}
	if len(view.Expanded) != 0 {
		t.Errorf("Expanded = %d entries, want reset on new result", len(view.Expanded))
	}
}

func TestSelectExamEmptyResult(t *testing.T) {
	exams := []model.ExamSummary{{ExamID: "7", ExamName: "History Quiz", HasResults: true}}
	svc := &stubAPI{
		exams:  func() ([]model.ExamSummary, error) { return exams, nil },
		result: func(examID string) (*model.ExamResult, error) { return nil, nil },
	}
	c := NewController(svc, "STU004")
	seedExams(t, c)

	if err := c.SelectExam(context.Background(), "7"); err != nil {
		t.Fatalf("SelectExam() error: %v", err)
	}
	view := c.Snapshot()
	if view.Result != nil {
		t.Errorf("Result = %+v, want nil for an exam with no results yet", view.Result)
	}
	if view.Notice != NoticeEmpty {
		t.Errorf("Notice = %q, want %q", view.Notice, NoticeEmpty)
	}
}

func TestSelectExamFailureClearsResult(t *testing.T) {
	failing := false
	res := &model.ExamResult{ExamID: "1", Grade: "A"}
	svc := &stubAPI{
		exams: func() ([]model.ExamSummary, error) { return twoExams(), nil },
		result: func(examID string) (*model.ExamResult, error) {
			if failing {
				return nil, errors.New("bad gateway")
			}
			return res, nil
		},
	}
	c := NewController(svc, "STU004")
	seedExams(t, c)
	if err := c.SelectExam(context.Background(), "1"); err != nil {
		t.Fatalf("SelectExam() error: %v", err)
	}

	failing = true
	if err := c.SelectExam(context.Background(), "1"); err == nil {
		t.Fatal("SelectExam() should return the fetch error")
	}
	view := c.Snapshot()
	if view.Result != nil {
		t.Errorf("Result = %+v, want nil after failed fetch", view.Result)
	}
	if view.Notice != NoticeError {
		t.Errorf("Notice = %q, want %q", view.Notice, NoticeError)
	}
}

func TestSelectExamStaleResponseDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	exams := []model.ExamSummary{
		{ExamID: "1", ExamName: "Physics Midterm", HasResults: true},
		{ExamID: "3", ExamName: "Biology Final", HasResults: true},
	}
	svc := &stubAPI{
		exams: func() ([]model.ExamSummary, error) { return exams, nil },
		result: func(examID string) (*model.ExamResult, error) {
			if examID == "1" {
				close(started)
				<-release
				return nil, errors.New("late failure")
			}
			return &model.ExamResult{ExamID: "3", ExamName: "Biology Final", Grade: "A"}, nil
		},
	}
	c := NewController(svc, "STU004")
	seedExams(t, c)

	done := make(chan error, 1)
	go func() { done <- c.SelectExam(context.Background(), "1") }()
	<-started

	if err := c.SelectExam(context.Background(), "3"); err != nil {
		t.Fatalf("SelectExam(3) error: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Errorf("stale SelectExam() error = %v, want nil", err)
	}

	view := c.Snapshot()
	if view.Result == nil || view.Result.ExamID != "3" {
		t.Fatalf("Result = %+v, want the newer exam 3 result", view.Result)
	}
	if view.Notice != NoticeNone {
		t.Errorf("Notice = %q, want none: the stale failure must not apply", view.Notice)
	}
}

func TestToggleQuestionTwiceRestoresSet(t *testing.T) {
	c := NewController(&stubAPI{}, "STU004")

	if got := c.ToggleQuestion(2); !got {
		t.Error("first ToggleQuestion(2) = false, want true")
	}
	if view := c.Snapshot(); !view.Expanded[2] {
		t.Error("question 2 should be expanded after one toggle")
	}
	if got := c.ToggleQuestion(2); got {
		t.Error("second ToggleQuestion(2) = true, want false")
	}
	if view := c.Snapshot(); len(view.Expanded) != 0 {
		t.Errorf("Expanded = %d entries after double toggle, want 0", len(view.Expanded))
	}
}

func TestSnapshotIsolatesExpandedSet(t *testing.T) {
	c := NewController(&stubAPI{}, "STU004")
	c.ToggleQuestion(1)

	view := c.Snapshot()
	c.ToggleQuestion(5)

	if view.Expanded[5] {
		t.Error("snapshot should not observe toggles made after it was taken")
	}
	if !view.Expanded[1] {
		t.Error("snapshot lost an expansion present when it was taken")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	c1 := NewController(&stubAPI{}, "STU001")
	c2 := NewController(&stubAPI{}, "STU002")

	r.Put("tok-a", c1)
	if got, ok := r.Get("tok-a"); !ok || got != c1 {
		t.Error("Get(tok-a) should return the stored controller")
	}

	r.Put("tok-a", c2)
	if got, _ := r.Get("tok-a"); got != c2 {
		t.Error("Put should replace the previous controller for a session")
	}

	if _, ok := r.Get("tok-b"); ok {
		t.Error("Get(tok-b) should miss for an unknown session")
	}

	r.Delete("tok-a")
	if _, ok := r.Get("tok-a"); ok {
		t.Error("Get(tok-a) should miss after Delete")
	}
}
