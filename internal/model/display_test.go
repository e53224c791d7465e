package model

import "testing"

func TestUploadStatusLabel(t *testing.T) {
	tests := []struct {
		name   string
		status UploadStatus
		want   string
	}{
		{"pending", UploadPending, "Pending"},
		{"uploaded", UploadUploaded, "Uploaded"},
		{"processing", UploadProcessing, "Processing"},
		{"processed", UploadProcessed, "Processed"},
		{"failed", UploadFailed, "Failed"},
		{"unknown code", UploadStatus("ocr_queued"), "Pending"},
		{"empty", UploadStatus(""), "Pending"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Label(); got != tt.want {
				t.Errorf("Label(%q) = %q, want %q", tt.status, got, tt.want)
			}
		})
	}
}

func TestUploadStatusTone(t *testing.T) {
	tests := []struct {
		name   string
		status UploadStatus
		want   Tone
	}{
		{"pending", UploadPending, ToneNeutral},
		{"uploaded", UploadUploaded, ToneInfo},
		{"processing", UploadProcessing, ToneProgress},
		{"processed", UploadProcessed, ToneOK},
		{"failed", UploadFailed, ToneError},
		{"unknown code", UploadStatus("archived"), ToneNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Tone(); got != tt.want {
				t.Errorf("Tone(%q) = %q, want %q", tt.status, got, tt.want)
			}
		})
	}
}

func TestGradeTone(t *testing.T) {
	tests := []struct {
		grade string
		want  Tone
	}{
		{"A+", ToneOK},
		{"A", ToneOK},
		{"A-", ToneOK},
		{"B+", ToneInfo},
		{"B", ToneInfo},
		{"C-", ToneWarn},
		{"D", ToneWarn},
		{"F", ToneError},
		{"S", ToneNeutral},
		{"pass", ToneNeutral},
		{"", ToneNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.grade, func(t *testing.T) {
			if got := GradeTone(tt.grade); got != tt.want {
				t.Errorf("GradeTone(%q) = %q, want %q", tt.grade, got, tt.want)
			}
		})
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{87, "87%"},
		{87.5, "87.5%"},
		{100, "100%"},
		{0, "0%"},
		{33.33, "33.33%"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatPercent(tt.in); got != tt.want {
				t.Errorf("FormatPercent(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatMarks(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{42, "42"},
		{42.5, "42.5"},
		{0, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatMarks(tt.in); got != tt.want {
				t.Errorf("FormatMarks(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHomePath(t *testing.T) {
	tests := []struct {
		role UserRole
		want string
	}{
		{UserRoleStudent, "/dashboard"},
		{UserRoleTeacher, "/teacher"},
		{UserRoleAdmin, "/admin/users"},
		{UserRole("auditor"), "/dashboard"},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := HomePath(tt.role); got != tt.want {
				t.Errorf("HomePath(%q) = %q, want %q", tt.role, got, tt.want)
			}
		})
	}
}
