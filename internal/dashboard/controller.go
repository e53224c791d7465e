// Package dashboard holds the per-session view-state behind the student
// dashboard. Every htmx request is its own goroutine, so a session's state
// is a mutex-guarded Controller; fetches run without the lock and sequence
// counters make late responses detectably stale.
package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/shiiviitiiwarii28/Autograder/internal/model"
)

// Tab identifies one of the two dashboard tabs.
type Tab string

const (
	TabResults Tab = "results"
	TabUploads Tab = "uploads"
)

// ParseTab maps a URL segment to a Tab.
func ParseTab(s string) (Tab, bool) {
	switch Tab(s) {
	case TabResults:
		return TabResults, true
	case TabUploads:
		return TabUploads, true
	default:
		return "", false
	}
}

// Notice is the state of the result detail panel when no result is shown.
type Notice string

const (
	// NoticeNone means the panel shows either nothing or a fetched result.
	NoticeNone Notice = ""
	// NoticeEmpty means the exam has no results available yet.
	NoticeEmpty Notice = "empty"
	// NoticeError means the last detail fetch failed.
	NoticeError Notice = "error"
)

// ErrExamUnavailable is returned by SelectExam when the exam is unknown or
// has no results to fetch; the caller treats it as a no-op.
var ErrExamUnavailable = errors.New("exam has no results to select")

// Service is the slice of the Autograder API the dashboard consumes.
type Service interface {
	AvailableExams(ctx context.Context, studentID string) ([]model.ExamSummary, error)
	Uploads(ctx context.Context, studentID string) ([]model.UploadRecord, error)
	StudentResult(ctx context.Context, studentID, examID string) (*model.ExamResult, error)
}

// Controller owns the dashboard view-state for one signed-in student. The
// student identity is fixed at construction; it is never read from shared
// mutable state afterwards.
type Controller struct {
	svc       Service
	studentID string

	mu        sync.Mutex
	tab       Tab
	exams     []model.ExamSummary
	uploads   []model.UploadRecord
	result    *model.ExamResult
	notice    Notice
	expanded  map[int]bool
	tabSeq    uint64
	detailSeq uint64
}

// NewController creates view-state for one student session. The initial tab
// is results; nothing is fetched until LoadTab runs.
func NewController(svc Service, studentID string) *Controller {
	return &Controller{
		svc:       svc,
		studentID: studentID,
		tab:       TabResults,
		expanded:  make(map[int]bool),
	}
}

// View is a render-ready copy of the controller state. Collections are
// shared with the controller but are only ever replaced wholesale, so a View
// stays internally consistent after the lock is released.
type View struct {
	Tab      Tab
	Exams    []model.ExamSummary
	Uploads  []model.UploadRecord
	Result   *model.ExamResult
	Notice   Notice
	Expanded map[int]bool
}

// Snapshot returns a consistent copy of the current state for rendering.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	expanded := make(map[int]bool, len(c.expanded))
	for n, v := range c.expanded {
		expanded[n] = v
	}
	return View{
		Tab:      c.tab,
		Exams:    c.exams,
		Uploads:  c.uploads,
		Result:   c.result,
		Notice:   c.notice,
		Expanded: expanded,
	}
}

// LoadTab activates a tab and refreshes its collection. The active tab
// changes immediately; the fetched collection is applied only if no newer
// LoadTab started in the meantime, so with overlapping switches the last one
// wins. On failure the previous collection is kept and the error returned;
// stale outcomes (success or failure) are discarded silently.
func (c *Controller) LoadTab(ctx context.Context, tab Tab) error {
	c.mu.Lock()
	c.tab = tab
	c.tabSeq++
	seq := c.tabSeq
	c.mu.Unlock()

	var (
		exams   []model.ExamSummary
		uploads []model.UploadRecord
		err     error
	)
	switch tab {
	case TabUploads:
		uploads, err = c.svc.Uploads(ctx, c.studentID)
	default:
		exams, err = c.svc.AvailableExams(ctx, c.studentID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.tabSeq {
		return nil
	}
	if err != nil {
		return err
	}
	switch tab {
	case TabUploads:
		c.uploads = uploads
	default:
		c.exams = exams
	}
	return nil
}

// SelectExam fetches the graded result for one of the listed exams. Unknown
// exam IDs and exams without results are a no-op returning
// ErrExamUnavailable, with no request issued. An empty result from the API
// clears the panel with the empty notice; a failure clears it with the error
// notice. Stale outcomes are discarded.
func (c *Controller) SelectExam(ctx context.Context, examID string) error {
	c.mu.Lock()
	var found *model.ExamSummary
	for i := range c.exams {
		if c.exams[i].ExamID == examID {
			found = &c.exams[i]
			break
		}
	}
	if found == nil || !found.HasResults {
		c.mu.Unlock()
		return ErrExamUnavailable
	}
	c.detailSeq++
	seq := c.detailSeq
	c.mu.Unlock()

	result, err := c.svc.StudentResult(ctx, c.studentID, examID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.detailSeq {
		return nil
	}
	if err != nil {
		c.result = nil
		c.notice = NoticeError
		return err
	}
	if result == nil {
		c.result = nil
		c.notice = NoticeEmpty
		return nil
	}
	c.result = result
	c.notice = NoticeNone
	c.expanded = make(map[int]bool)
	return nil
}

// ToggleQuestion flips the expanded state of a question in the current
// result and reports the new state. Toggling twice restores the set.
func (c *Controller) ToggleQuestion(number int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.expanded[number] {
		delete(c.expanded, number)
		return false
	}
	c.expanded[number] = true
	return true
}
