package model

import "strconv"

// Tone names a badge style class understood by the stylesheet.
type Tone string

const (
	ToneNeutral  Tone = "neutral"
	ToneInfo     Tone = "info"
	ToneProgress Tone = "progress"
	ToneOK       Tone = "ok"
	ToneWarn     Tone = "warn"
	ToneError    Tone = "error"
)

// Label returns the display text for an upload status. Unknown values fall
// back to the pending presentation rather than leaking raw API codes into the
// page.
func (s UploadStatus) Label() string {
	switch s {
	case UploadPending:
		return "Pending"
	case UploadUploaded:
		return "Uploaded"
	case UploadProcessing:
		return "Processing"
	case UploadProcessed:
		return "Processed"
	case UploadFailed:
		return "Failed"
	default:
		return "Pending"
	}
}

// Tone returns the badge tone for an upload status.
func (s UploadStatus) Tone() Tone {
	switch s {
	case UploadPending:
		return ToneNeutral
	case UploadUploaded:
		return ToneInfo
	case UploadProcessing:
		return ToneProgress
	case UploadProcessed:
		return ToneOK
	case UploadFailed:
		return ToneError
	default:
		return ToneNeutral
	}
}

// GradeTone maps a letter grade to a badge tone by its family, so "B+" and
// "B-" render alike. Grades outside the A-F families get the neutral tone.
func GradeTone(grade string) Tone {
	if grade == "" {
		return ToneNeutral
	}
	switch grade[0] {
	case 'A':
		return ToneOK
	case 'B':
		return ToneInfo
	case 'C', 'D':
		return ToneWarn
	case 'F':
		return ToneError
	default:
		return ToneNeutral
	}
}

// FormatPercent renders a percentage the way the API computed it, with no
// added precision: 87 becomes "87%", 87.5 becomes "87.5%".
func FormatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64) + "%"
}

// FormatMarks renders a marks value without trailing zeros.
func FormatMarks(m float64) string {
	return strconv.FormatFloat(m, 'f', -1, 64)
}
