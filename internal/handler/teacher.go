package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/shiiviitiiwarii28/Autograder/internal/handler/views"
	appI18n "github.com/shiiviitiiwarii28/Autograder/internal/i18n"
	"github.com/shiiviitiiwarii28/Autograder/internal/model"
)

func (h *Handler) handleTeacherStatus(w http.ResponseWriter, r *http.Request) {
	examID := strings.TrimSpace(r.URL.Query().Get("exam_id"))

	var (
		uploads []model.ExamUpload
		errMsg  string
	)
	if examID != "" {
		var err error
		uploads, err = h.api.ExamUploadStatus(r.Context(), examID)
		if err != nil {
			slog.Error("failed to fetch exam upload status", "exam_id", examID, "error", err)
			errMsg = appI18n.T(r.Context(), "StatusFetchFailed")
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.TeacherPage(examID, uploads, errMsg).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}
