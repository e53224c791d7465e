package model

import "time"

// UploadStatus is the processing state of an answer sheet as reported by the
// Autograder API. Values outside the known set are preserved and rendered
// through the fallback label.
type UploadStatus string

const (
	UploadPending    UploadStatus = "pending"
	UploadUploaded   UploadStatus = "uploaded"
	UploadProcessing UploadStatus = "processing"
	UploadProcessed  UploadStatus = "processed"
	UploadFailed     UploadStatus = "failed"
)

// ExamSummary is one row of a student's available-exams listing.
type ExamSummary struct {
	ExamID       string       `json:"exam_id"`
	ExamCode     string       `json:"exam_code"`
	ExamName     string       `json:"exam_name"`
	ExamDate     string       `json:"exam_date"`
	UploadStatus UploadStatus `json:"upload_status"`
	HasResults   bool         `json:"has_results"`
}

// UploadRecord is one row of a student's upload history.
type UploadRecord struct {
	ID               string       `json:"id"`
	ExamName         string       `json:"exam_name"`
	ExamCode         string       `json:"exam_code"`
	FileName         string       `json:"file_name"`
	FileSize         int64        `json:"file_size"`
	FileType         string       `json:"file_type"`
	UploadedAt       time.Time    `json:"uploaded_at"`
	ProcessingStatus UploadStatus `json:"processing_status"`
}

// ExamResult is a student's graded result for one exam. Percentage and Grade
// are computed by the API and displayed as-is.
type ExamResult struct {
	ExamID        string           `json:"exam_id"`
	ExamName      string           `json:"exam_name"`
	ExamCode      string           `json:"exam_code"`
	ExamType      string           `json:"exam_type"`
	ObtainedMarks float64          `json:"obtained_marks"`
	MaxMarks      float64          `json:"max_marks"`
	Percentage    float64          `json:"percentage"`
	Grade         string           `json:"grade"`
	Questions     []QuestionResult `json:"question_results"`
}

// QuestionResult is the per-question breakdown inside an ExamResult.
// QuestionNumber is unique within a result.
type QuestionResult struct {
	QuestionNumber  int     `json:"question_number"`
	QuestionText    string  `json:"question_text"`
	ObtainedMarks   float64 `json:"obtained_marks"`
	MaxMarks        float64 `json:"max_marks"`
	StudentAnswer   string  `json:"student_answer,omitempty"`
	AIFeedback      string  `json:"ai_feedback,omitempty"`
	TeacherFeedback string  `json:"teacher_feedback,omitempty"`
}

// StudentRef identifies the student attached to an upload in teacher views.
type StudentRef struct {
	StudentID string `json:"student_id"`
	FullName  string `json:"full_name"`
}

// ExamUpload is one row of a per-exam upload status listing.
type ExamUpload struct {
	ID               string       `json:"id"`
	FileName         string       `json:"file_name"`
	FileSize         int64        `json:"file_size"`
	FileType         string       `json:"file_type"`
	ProcessingStatus UploadStatus `json:"processing_status"`
	UploadedAt       time.Time    `json:"uploaded_at"`
	Student          StudentRef   `json:"student"`
}
