package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	appI18n "github.com/shiiviitiiwarii28/Autograder/internal/i18n"
	"github.com/shiiviitiiwarii28/Autograder/internal/model"
	"github.com/shiiviitiiwarii28/Autograder/internal/store"
)

// stubAPI fakes the Autograder REST API with canned responses.
type stubAPI struct {
	exams   []model.ExamSummary
	uploads []model.UploadRecord
	result  *model.ExamResult
	status  []model.ExamUpload

	examsErr   error
	uploadsErr error
	resultErr  error
	statusErr  error

	resultCalls int
	statusCalls int
}

func (s *stubAPI) AvailableExams(_ context.Context, _ string) ([]model.ExamSummary, error) {
	if s.examsErr != nil {
		return nil, s.examsErr
	}
	return s.exams, nil
}

func (s *stubAPI) Uploads(_ context.Context, _ string) ([]model.UploadRecord, error) {
	if s.uploadsErr != nil {
		return nil, s.uploadsErr
	}
	return s.uploads, nil
}

func (s *stubAPI) StudentResult(_ context.Context, _, _ string) (*model.ExamResult, error) {
	s.resultCalls++
	if s.resultErr != nil {
		return nil, s.resultErr
	}
	return s.result, nil
}

func (s *stubAPI) ExamUploadStatus(_ context.Context, _ string) ([]model.ExamUpload, error) {
	s.statusCalls++
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	return s.status, nil
}

// studentAPI returns a stub with one graded exam, one pending exam, and one
// upload on record.
func studentAPI() *stubAPI {
	return &stubAPI{
		exams: []model.ExamSummary{
			{ExamID: "EX1", ExamCode: "PHY-01", ExamName: "Physics Midterm", ExamDate: "2026-03-14", UploadStatus: model.UploadProcessed, HasResults: true},
			{ExamID: "EX2", ExamCode: "CHE-01", ExamName: "Chemistry Midterm", ExamDate: "2026-03-21", UploadStatus: model.UploadProcessing, HasResults: false},
		},
		uploads: []model.UploadRecord{
			{ID: "U1", ExamName: "Physics Midterm", ExamCode: "PHY-01", FileName: "answers.pdf", FileSize: 204800, FileType: "pdf", UploadedAt: time.Now().Add(-2 * time.Hour), ProcessingStatus: model.UploadProcessed},
		},
		result: &model.ExamResult{
			ExamID: "EX1", ExamName: "Physics Midterm", ExamCode: "PHY-01", ExamType: "midterm",
			ObtainedMarks: 43.5, MaxMarks: 50, Percentage: 87, Grade: "A",
			Questions: []model.QuestionResult{
				{QuestionNumber: 1, QuestionText: "State the law of inertia.", ObtainedMarks: 5, MaxMarks: 5, StudentAnswer: "An object keeps its velocity unless a force acts on it.", AIFeedback: "Correct."},
				{QuestionNumber: 2, QuestionText: "Define momentum.", ObtainedMarks: 3.5, MaxMarks: 5, TeacherFeedback: "Missing the vector nature."},
			},
		},
	}
}

func newTestServer(t *testing.T, api *stubAPI) (*httptest.Server, *store.Store) {
	t.Helper()
	if err := appI18n.Init("en"); err != nil {
		t.Fatalf("init i18n: %v", err)
	}
	db, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	h, err := New(db, api, model.AppConfig{APIBaseURL: "http://api.test"})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	r := chi.NewRouter()
	r.Use(appI18n.Middleware("en"))
	h.Routes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, db
}

func createTestUser(t *testing.T, db *store.Store, username string, role model.UserRole, studentRef string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	_, err = db.CreateUser(model.User{
		Username:     username,
		DisplayName:  "Asha Rao",
		PasswordHash: string(hash),
		Role:         role,
		StudentRef:   studentRef,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
}

func csrfFromJar(t *testing.T, jar http.CookieJar, base string) string {
	t.Helper()
	u, err := url.Parse(base)
	if err != nil {
		t.Fatalf("parse URL: %v", err)
	}
	for _, c := range jar.Cookies(u) {
		if c.Name == csrfCookieName {
			return c.Value
		}
	}
	t.Fatal("csrf cookie not set")
	return ""
}

// login signs in and returns a client whose jar carries the session and CSRF
// cookies. The redirect to the role's home page is followed, so for students
// the dashboard controller already exists afterwards.
func login(t *testing.T, srv *httptest.Server, username string) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	client := &http.Client{Jar: jar}

	resp, err := client.Get(srv.URL + "/login")
	if err != nil {
		t.Fatalf("GET /login: %v", err)
	}
	resp.Body.Close()

	form := url.Values{
		"username":   {username},
		"password":   {"secret123"},
		"csrf_token": {csrfFromJar(t, jar, srv.URL)},
	}
	resp, err = client.PostForm(srv.URL+"/login", form)
	if err != nil {
		t.Fatalf("POST /login: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200 after redirect, got %d", resp.StatusCode)
	}
	return client
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func wantContains(t *testing.T, body, substr string) {
	t.Helper()
	if !strings.Contains(body, substr) {
		t.Errorf("expected body to contain %q", substr)
	}
}

func noRedirects(client *http.Client) *http.Client {
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return client
}

func TestLandingPage(t *testing.T) {
	srv, _ := newTestServer(t, studentAPI())

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	wantContains(t, body, "Grade handwritten answer sheets in minutes")
	wantContains(t, body, "Get started")
	wantContains(t, body, `href="/login"`)
}

func TestLandingRedirectsSignedIn(t *testing.T) {
	srv, db := newTestServer(t, studentAPI())
	createTestUser(t, db, "asha", model.UserRoleStudent, "S001")

	client := noRedirects(login(t, srv, "asha"))
	resp, err := client.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/dashboard" {
		t.Errorf("expected redirect to /dashboard, got %q", loc)
	}
}

func TestDashboardRequiresLogin(t *testing.T) {
	srv, _ := newTestServer(t, studentAPI())
	client := noRedirects(&http.Client{})

	resp, err := client.Get(srv.URL + "/dashboard")
	if err != nil {
		t.Fatalf("GET /dashboard: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}

	// htmx requests get a client-side redirect instead of a 3xx the browser
	// would swallow.
	req, _ := http.NewRequest("GET", srv.URL+"/dashboard", nil)
	req.Header.Set("HX-Request", "true")
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("GET /dashboard (htmx): %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("HX-Redirect"); loc != "/login" {
		t.Errorf("expected HX-Redirect /login, got %q", loc)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	srv, db := newTestServer(t, studentAPI())
	createTestUser(t, db, "asha", model.UserRoleStudent, "S001")

	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar}
	resp, err := client.Get(srv.URL + "/login")
	if err != nil {
		t.Fatalf("GET /login: %v", err)
	}
	resp.Body.Close()

	form := url.Values{
		"username":   {"asha"},
		"password":   {"wrong"},
		"csrf_token": {csrfFromJar(t, jar, srv.URL)},
	}
	resp, err = client.PostForm(srv.URL+"/login", form)
	if err != nil {
		t.Fatalf("POST /login: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	wantContains(t, body, "Invalid username or password.")
}

func TestDashboardRendersExams(t *testing.T) {
	srv, db := newTestServer(t, studentAPI())
	createTestUser(t, db, "asha", model.UserRoleStudent, "S001")

	client := login(t, srv, "asha")
	resp, err := client.Get(srv.URL + "/dashboard")
	if err != nil {
		t.Fatalf("GET /dashboard: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	wantContains(t, body, "Hello, Asha Rao")
	wantContains(t, body, "Physics Midterm")
	wantContains(t, body, "Chemistry Midterm")
	// Graded exam offers results; ungraded one shows the pending marker.
	wantContains(t, body, "View results")
	wantContains(t, body, "Results pending")
	wantContains(t, body, "Processed")
	wantContains(t, body, "Select an exam to see your marks and feedback.")
}

func TestDashboardUnlinkedStudent(t *testing.T) {
	srv, db := newTestServer(t, studentAPI())
	createTestUser(t, db, "asha", model.UserRoleStudent, "")

	client := login(t, srv, "asha")
	resp, err := client.Get(srv.URL + "/dashboard")
	if err != nil {
		t.Fatalf("GET /dashboard: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	wantContains(t, body, "Your account is not linked to a student record.")
	if strings.Contains(body, "View results") {
		t.Error("unlinked dashboard should not list exams")
	}
}

func TestDashboardInitialFetchFailure(t *testing.T) {
	api := studentAPI()
	api.examsErr = errors.New("api down")
	srv, db := newTestServer(t, api)
	createTestUser(t, db, "asha", model.UserRoleStudent, "S001")

	client := login(t, srv, "asha")
	resp, err := client.Get(srv.URL + "/dashboard")
	if err != nil {
		t.Fatalf("GET /dashboard: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	// Page still renders, with an error toast and the empty collection.
	wantContains(t, body, "Failed to fetch exams.")
	wantContains(t, body, "No exams available yet.")
}

func TestTabSwitch(t *testing.T) {
	srv, db := newTestServer(t, studentAPI())
	createTestUser(t, db, "asha", model.UserRoleStudent, "S001")
	client := login(t, srv, "asha")

	resp, err := client.Get(srv.URL + "/dashboard/tab/uploads")
	if err != nil {
		t.Fatalf("GET tab: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	wantContains(t, body, `id="tab-content"`)
	wantContains(t, body, "answers.pdf")
	wantContains(t, body, "tab-btn active")

	resp, err = client.Get(srv.URL + "/dashboard/tab/bogus")
	if err != nil {
		t.Fatalf("GET bogus tab: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown tab, got %d", resp.StatusCode)
	}
}

func TestTabSwitchFailureKeepsCollection(t *testing.T) {
	api := studentAPI()
	srv, db := newTestServer(t, api)
	createTestUser(t, db, "asha", model.UserRoleStudent, "S001")
	client := login(t, srv, "asha")

	// Load uploads once so the collection is populated.
	resp, err := client.Get(srv.URL + "/dashboard/tab/uploads")
	if err != nil {
		t.Fatalf("GET tab: %v", err)
	}
	readBody(t, resp)

	api.uploadsErr = errors.New("api down")
	resp, err = client.Get(srv.URL + "/dashboard/tab/uploads")
	if err != nil {
		t.Fatalf("GET tab after failure: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	// The stale-but-valid collection is still shown, with a toast on top.
	wantContains(t, body, "answers.pdf")
	wantContains(t, body, "Failed to fetch uploads.")
	wantContains(t, body, "hx-swap-oob")
}

func TestExamResult(t *testing.T) {
	api := studentAPI()
	srv, db := newTestServer(t, api)
	createTestUser(t, db, "asha", model.UserRoleStudent, "S001")
	client := login(t, srv, "asha")

	resp, err := client.Get(srv.URL + "/dashboard/exams/EX1/result")
	if err != nil {
		t.Fatalf("GET result: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	wantContains(t, body, `id="result-panel"`)
	wantContains(t, body, "87%")
	wantContains(t, body, "43.5 / 50")
	wantContains(t, body, "tone-ok")
	wantContains(t, body, "Question 1")
	wantContains(t, body, "Question 2")
	if api.resultCalls != 1 {
		t.Errorf("expected 1 result fetch, got %d", api.resultCalls)
	}
}

func TestExamResultWithoutResultsIsNoop(t *testing.T) {
	api := studentAPI()
	srv, db := newTestServer(t, api)
	createTestUser(t, db, "asha", model.UserRoleStudent, "S001")
	client := login(t, srv, "asha")

	resp, err := client.Get(srv.URL + "/dashboard/exams/EX2/result")
	if err != nil {
		t.Fatalf("GET result: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	// Panel re-renders unchanged and no API request is made.
	wantContains(t, body, "Select an exam to see your marks and feedback.")
	if api.resultCalls != 0 {
		t.Errorf("expected no result fetch, got %d", api.resultCalls)
	}
}

func TestExamResultEmpty(t *testing.T) {
	api := studentAPI()
	api.result = nil
	srv, db := newTestServer(t, api)
	createTestUser(t, db, "asha", model.UserRoleStudent, "S001")
	client := login(t, srv, "asha")

	resp, err := client.Get(srv.URL + "/dashboard/exams/EX1/result")
	if err != nil {
		t.Fatalf("GET result: %v", err)
	}
	body := readBody(t, resp)
	wantContains(t, body, "No results available for this exam yet.")
}

func TestExamResultFetchFailure(t *testing.T) {
	api := studentAPI()
	api.resultErr = errors.New("api down")
	srv, db := newTestServer(t, api)
	createTestUser(t, db, "asha", model.UserRoleStudent, "S001")
	client := login(t, srv, "asha")

	resp, err := client.Get(srv.URL + "/dashboard/exams/EX1/result")
	if err != nil {
		t.Fatalf("GET result: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	wantContains(t, body, "Could not load results for this exam.")
	wantContains(t, body, "Failed to fetch results.")
	wantContains(t, body, "hx-swap-oob")
}

func TestToggleQuestion(t *testing.T) {
	api := studentAPI()
	srv, db := newTestServer(t, api)
	createTestUser(t, db, "asha", model.UserRoleStudent, "S001")
	client := login(t, srv, "asha")

	resp, err := client.Get(srv.URL + "/dashboard/exams/EX1/result")
	if err != nil {
		t.Fatalf("GET result: %v", err)
	}
	body := readBody(t, resp)
	if strings.Contains(body, "State the law of inertia.") {
		t.Fatal("question body should start collapsed")
	}

	form := url.Values{"csrf_token": {csrfFromJar(t, client.Jar, srv.URL)}}
	resp, err = client.PostForm(srv.URL+"/dashboard/questions/1/toggle", form)
	if err != nil {
		t.Fatalf("POST toggle: %v", err)
	}
	body = readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	wantContains(t, body, "State the law of inertia.")
	wantContains(t, body, "Your answer")
	wantContains(t, body, "AI feedback")

	// Toggling again collapses it.
	resp, err = client.PostForm(srv.URL+"/dashboard/questions/1/toggle", form)
	if err != nil {
		t.Fatalf("POST toggle again: %v", err)
	}
	body = readBody(t, resp)
	if strings.Contains(body, "State the law of inertia.") {
		t.Error("question body should be collapsed after second toggle")
	}
}

func TestCSRFRequired(t *testing.T) {
	srv, db := newTestServer(t, studentAPI())
	createTestUser(t, db, "asha", model.UserRoleStudent, "S001")
	client := login(t, srv, "asha")

	tests := []struct {
		name string
		form url.Values
	}{
		{"missing token", url.Values{}},
		{"wrong token", url.Values{"csrf_token": {"bogus"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := client.PostForm(srv.URL+"/dashboard/questions/1/toggle", tt.form)
			if err != nil {
				t.Fatalf("POST toggle: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusForbidden {
				t.Fatalf("expected 403, got %d", resp.StatusCode)
			}
		})
	}
}

func TestHtmxWithoutControllerRedirects(t *testing.T) {
	srv, db := newTestServer(t, studentAPI())
	createTestUser(t, db, "asha", model.UserRoleStudent, "S001")

	// Sign in without following the redirect, so /dashboard never runs and
	// no controller exists for this session.
	jar, _ := cookiejar.New(nil)
	client := noRedirects(&http.Client{Jar: jar})
	resp, err := client.Get(srv.URL + "/login")
	if err != nil {
		t.Fatalf("GET /login: %v", err)
	}
	resp.Body.Close()
	form := url.Values{
		"username":   {"asha"},
		"password":   {"secret123"},
		"csrf_token": {csrfFromJar(t, jar, srv.URL)},
	}
	resp, err = client.PostForm(srv.URL+"/login", form)
	if err != nil {
		t.Fatalf("POST /login: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}

	resp, err = client.Get(srv.URL + "/dashboard/tab/uploads")
	if err != nil {
		t.Fatalf("GET tab: %v", err)
	}
	resp.Body.Close()
	if loc := resp.Header.Get("HX-Redirect"); loc != "/dashboard" {
		t.Errorf("expected HX-Redirect /dashboard, got %q", loc)
	}
}

func TestRoleGates(t *testing.T) {
	srv, db := newTestServer(t, studentAPI())
	createTestUser(t, db, "asha", model.UserRoleStudent, "S001")
	client := login(t, srv, "asha")

	for _, path := range []string{"/teacher", "/admin/users"} {
		resp, err := client.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("GET %s as student: expected 403, got %d", path, resp.StatusCode)
		}
	}
}

func TestTeacherStatusPage(t *testing.T) {
	api := studentAPI()
	api.status = []model.ExamUpload{
		{ID: "U1", FileName: "a.pdf", FileSize: 1024, FileType: "pdf", ProcessingStatus: model.UploadProcessed, UploadedAt: time.Now(), Student: model.StudentRef{StudentID: "S001", FullName: "Asha Rao"}},
		{ID: "U2", FileName: "b.pdf", FileSize: 2048, FileType: "pdf", ProcessingStatus: model.UploadFailed, UploadedAt: time.Now(), Student: model.StudentRef{StudentID: "S002", FullName: "Vikram Singh"}},
	}
	srv, db := newTestServer(t, api)
	createTestUser(t, db, "teach", model.UserRoleTeacher, "")
	client := login(t, srv, "teach")

	// Without a query the form renders and nothing is fetched.
	resp, err := client.Get(srv.URL + "/teacher")
	if err != nil {
		t.Fatalf("GET /teacher: %v", err)
	}
	body := readBody(t, resp)
	wantContains(t, body, "Exam upload status")
	wantContains(t, body, "Check status")
	if api.statusCalls != 0 {
		t.Fatalf("expected no status fetch, got %d", api.statusCalls)
	}

	resp, err = client.Get(srv.URL + "/teacher?exam_id=EX1")
	if err != nil {
		t.Fatalf("GET /teacher?exam_id: %v", err)
	}
	body = readBody(t, resp)
	wantContains(t, body, "2 uploads found.")
	wantContains(t, body, "Asha Rao")
	wantContains(t, body, "Vikram Singh")
	wantContains(t, body, "Failed")
	if api.statusCalls != 1 {
		t.Errorf("expected 1 status fetch, got %d", api.statusCalls)
	}

	// Singular form.
	api.status = api.status[:1]
	resp, err = client.Get(srv.URL + "/teacher?exam_id=EX1")
	if err != nil {
		t.Fatalf("GET /teacher singular: %v", err)
	}
	body = readBody(t, resp)
	wantContains(t, body, "1 upload found.")

	// Empty list.
	api.status = nil
	resp, err = client.Get(srv.URL + "/teacher?exam_id=EX9")
	if err != nil {
		t.Fatalf("GET /teacher empty: %v", err)
	}
	body = readBody(t, resp)
	wantContains(t, body, "No uploads for this exam yet.")

	// Upstream failure.
	api.statusErr = errors.New("api down")
	resp, err = client.Get(srv.URL + "/teacher?exam_id=EX1")
	if err != nil {
		t.Fatalf("GET /teacher failure: %v", err)
	}
	body = readBody(t, resp)
	wantContains(t, body, "Failed to fetch upload status.")
}

func TestAdminUserManagement(t *testing.T) {
	srv, db := newTestServer(t, studentAPI())
	createTestUser(t, db, "root", model.UserRoleAdmin, "")
	client := login(t, srv, "root")

	token := csrfFromJar(t, client.Jar, srv.URL)

	// Create a student account.
	form := url.Values{
		"username":     {"bob"},
		"display_name": {"Bob Iyer"},
		"password":     {"hunter22"},
		"role":         {"student"},
		"student_ref":  {"S002"},
		"csrf_token":   {token},
	}
	resp, err := client.PostForm(srv.URL+"/admin/users", form)
	if err != nil {
		t.Fatalf("POST /admin/users: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after redirect, got %d", resp.StatusCode)
	}
	wantContains(t, body, "bob")
	wantContains(t, body, "Bob Iyer")
	wantContains(t, body, "S002")

	bob, err := db.GetUserByUsername("bob")
	if err != nil || bob == nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if !bob.Active {
		t.Error("new user should be active")
	}

	// Invalid role is rejected.
	bad := url.Values{
		"username":   {"eve"},
		"password":   {"pw"},
		"role":       {"superuser"},
		"csrf_token": {token},
	}
	resp, err = client.PostForm(srv.URL+"/admin/users", bad)
	if err != nil {
		t.Fatalf("POST invalid role: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid role, got %d", resp.StatusCode)
	}

	// Deactivate bob.
	toggle := url.Values{
		"user_id":    {"2"},
		"csrf_token": {token},
	}
	resp, err = client.PostForm(srv.URL+"/admin/users/toggle", toggle)
	if err != nil {
		t.Fatalf("POST toggle: %v", err)
	}
	body = readBody(t, resp)
	wantContains(t, body, "Activate")

	bob, err = db.GetUserByUsername("bob")
	if err != nil || bob == nil {
		t.Fatalf("GetUserByUsername after toggle: %v", err)
	}
	if bob.Active {
		t.Error("expected bob to be inactive after toggle")
	}
}

func TestDeactivatedUserLosesSession(t *testing.T) {
	srv, db := newTestServer(t, studentAPI())
	createTestUser(t, db, "asha", model.UserRoleStudent, "S001")

	// Sign in, then deactivate the account; the live session stops working.
	client := login(t, srv, "asha")
	user, err := db.GetUserByUsername("asha")
	if err != nil || user == nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if err := db.ToggleUserActive(user.ID); err != nil {
		t.Fatalf("ToggleUserActive: %v", err)
	}

	resp, err := noRedirects(client).Get(srv.URL + "/dashboard")
	if err != nil {
		t.Fatalf("GET /dashboard: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}
}

func TestLogout(t *testing.T) {
	srv, db := newTestServer(t, studentAPI())
	createTestUser(t, db, "asha", model.UserRoleStudent, "S001")
	client := login(t, srv, "asha")

	form := url.Values{"csrf_token": {csrfFromJar(t, client.Jar, srv.URL)}}
	resp, err := client.PostForm(srv.URL+"/logout", form)
	if err != nil {
		t.Fatalf("POST /logout: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after redirect, got %d", resp.StatusCode)
	}
	wantContains(t, body, "Sign in to Autograder")

	resp, err = noRedirects(client).Get(srv.URL + "/dashboard")
	if err != nil {
		t.Fatalf("GET /dashboard after logout: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 after logout, got %d", resp.StatusCode)
	}
}
