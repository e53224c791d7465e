package model

import "time"

// ResultsExport is the top-level JSON structure for results export.
type ResultsExport struct {
	StudentID  string       `json:"student_id"`
	ExportedAt time.Time    `json:"exported_at"`
	Results    []ExamResult `json:"results"`
}
