package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shiiviitiiwarii28/Autograder/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"valid http", "http://localhost:8000", false},
		{"valid https with trailing slash", "https://api.example.com/", false},
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"wrong scheme", "ftp://api.example.com", true},
		{"no scheme", "localhost:8000", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.baseURL, time.Second)
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%q) error = %v, wantErr %v", tt.baseURL, err, tt.wantErr)
			}
		})
	}
}

func TestAvailableExams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/results/student/STU004/available-exams" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"exams": [
			{"exam_id": "1", "exam_code": "PHY-101", "exam_name": "Physics Midterm",
			 "exam_date": "2025-03-10", "upload_status": "processed", "has_results": true},
			{"exam_id": "2", "exam_code": "CHM-101", "exam_name": "Chemistry Midterm",
			 "exam_date": "2025-03-12", "upload_status": "pending", "has_results": false}
		]}`))
	})

	exams, err := c.AvailableExams(context.Background(), "STU004")
	if err != nil {
		t.Fatalf("AvailableExams() error: %v", err)
	}
	if len(exams) != 2 {
		t.Fatalf("AvailableExams() = %d exams, want 2", len(exams))
	}
	if exams[0].ExamName != "Physics Midterm" {
		t.Errorf("exams[0].ExamName = %q, want %q", exams[0].ExamName, "Physics Midterm")
	}
	if exams[0].UploadStatus != model.UploadProcessed {
		t.Errorf("exams[0].UploadStatus = %q, want %q", exams[0].UploadStatus, model.UploadProcessed)
	}
	if !exams[0].HasResults {
		t.Error("exams[0].HasResults should be true")
	}
	if exams[1].HasResults {
		t.Error("exams[1].HasResults should be false")
	}
}

func TestAvailableExamsServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	if _, err := c.AvailableExams(context.Background(), "STU004"); err == nil {
		t.Error("AvailableExams() should fail on 500")
	}
}

func TestAvailableExamsMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"exams": [`))
	})

	if _, err := c.AvailableExams(context.Background(), "STU004"); err == nil {
		t.Error("AvailableExams() should fail on malformed JSON")
	}
}

func TestUploads(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload/student/STU004/uploads" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"uploads": [
			{"id": "u1", "exam_name": "Physics Midterm", "exam_code": "PHY-101",
			 "file_name": "sheet.pdf", "file_size": 204800, "file_type": "application/pdf",
			 "uploaded_at": "2025-03-11T09:30:00Z", "processing_status": "processing"}
		]}`))
	})

	uploads, err := c.Uploads(context.Background(), "STU004")
	if err != nil {
		t.Fatalf("Uploads() error: %v", err)
	}
	if len(uploads) != 1 {
		t.Fatalf("Uploads() = %d records, want 1", len(uploads))
	}
	u := uploads[0]
	if u.FileName != "sheet.pdf" {
		t.Errorf("FileName = %q, want %q", u.FileName, "sheet.pdf")
	}
	if u.FileSize != 204800 {
		t.Errorf("FileSize = %d, want 204800", u.FileSize)
	}
	if u.ProcessingStatus != model.UploadProcessing {
		t.Errorf("ProcessingStatus = %q, want %q", u.ProcessingStatus, model.UploadProcessing)
	}
	if u.UploadedAt.IsZero() {
		t.Error("UploadedAt should be parsed")
	}
}

func TestUploadsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"uploads": []}`))
	})

	uploads, err := c.Uploads(context.Background(), "STU004")
	if err != nil {
		t.Fatalf("Uploads() error: %v", err)
	}
	if len(uploads) != 0 {
		t.Errorf("Uploads() = %d records, want 0", len(uploads))
	}
}

func TestStudentResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/results/student/STU004" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("exam_id"); got != "3" {
			t.Errorf("exam_id = %q, want %q", got, "3")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"exams": [
			{"exam_id": "3", "exam_name": "Biology Final", "exam_code": "BIO-201",
			 "exam_type": "final", "obtained_marks": 87, "max_marks": 100,
			 "percentage": 87, "grade": "B+",
			 "question_results": [
				{"question_number": 1, "question_text": "Define osmosis.",
				 "obtained_marks": 9, "max_marks": 10,
				 "student_answer": "Movement of water across a membrane.",
				 "ai_feedback": "Good definition, missing gradient detail."}
			 ]}
		]}`))
	})

	res, err := c.StudentResult(context.Background(), "STU004", "3")
	if err != nil {
		t.Fatalf("StudentResult() error: %v", err)
	}
	if res == nil {
		t.Fatal("StudentResult() returned nil result")
	}
	if res.Grade != "B+" {
		t.Errorf("Grade = %q, want %q", res.Grade, "B+")
	}
	if res.Percentage != 87 {
		t.Errorf("Percentage = %v, want 87", res.Percentage)
	}
	if len(res.Questions) != 1 {
		t.Fatalf("Questions = %d, want 1", len(res.Questions))
	}
	if res.Questions[0].QuestionNumber != 1 {
		t.Errorf("QuestionNumber = %d, want 1", res.Questions[0].QuestionNumber)
	}
}

func TestStudentResultEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"exams": []}`))
	})

	res, err := c.StudentResult(context.Background(), "STU004", "7")
	if err != nil {
		t.Fatalf("StudentResult() error: %v", err)
	}
	if res != nil {
		t.Errorf("StudentResult() = %+v, want nil for empty result set", res)
	}
}

func TestExamUploadStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload/exam/EX-9/status" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"uploads": [
			{"id": "u7", "file_name": "stu4.pdf", "file_size": 102400,
			 "file_type": "application/pdf", "processing_status": "failed",
			 "uploaded_at": "2025-03-11T10:00:00Z",
			 "student": {"student_id": "STU004", "full_name": "Asha Verma"}}
		]}`))
	})

	uploads, err := c.ExamUploadStatus(context.Background(), "EX-9")
	if err != nil {
		t.Fatalf("ExamUploadStatus() error: %v", err)
	}
	if len(uploads) != 1 {
		t.Fatalf("ExamUploadStatus() = %d rows, want 1", len(uploads))
	}
	if uploads[0].Student.FullName != "Asha Verma" {
		t.Errorf("Student.FullName = %q, want %q", uploads[0].Student.FullName, "Asha Verma")
	}
	if uploads[0].ProcessingStatus != model.UploadFailed {
		t.Errorf("ProcessingStatus = %q, want %q", uploads[0].ProcessingStatus, model.UploadFailed)
	}
}

func TestPing(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/health" {
				t.Errorf("unexpected path %q", r.URL.Path)
			}
			w.WriteHeader(http.StatusOK)
		})
		if err := c.Ping(context.Background()); err != nil {
			t.Errorf("Ping() error: %v", err)
		}
	})

	t.Run("unhealthy", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		if err := c.Ping(context.Background()); err == nil {
			t.Error("Ping() should fail on 503")
		}
	})
}
