package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shiiviitiiwarii28/Autograder/internal/dashboard"
	"github.com/shiiviitiiwarii28/Autograder/internal/handler/views"
	appI18n "github.com/shiiviitiiwarii28/Autograder/internal/i18n"
	"github.com/shiiviitiiwarii28/Autograder/internal/model"
	"github.com/shiiviitiiwarii28/Autograder/internal/store"
)

// ExamAPI is the upstream REST surface the web app consumes.
type ExamAPI interface {
	dashboard.Service
	ExamUploadStatus(ctx context.Context, examID string) ([]model.ExamUpload, error)
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store  *store.Store
	api    ExamAPI
	dash   *dashboard.Registry
	config model.AppConfig
}

// New creates a new Handler.
func New(s *store.Store, api ExamAPI, cfg model.AppConfig) (*Handler, error) {
	return &Handler{
		store:  s,
		api:    api,
		dash:   dashboard.NewRegistry(),
		config: cfg,
	}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.csrfMiddleware)

		r.Get("/", h.handleLanding)
		r.Get("/login", h.handleLoginPage)
		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)

			r.Get("/dashboard", h.handleDashboard)
			r.Get("/dashboard/tab/{tab}", h.handleDashboardTab)
			r.Get("/dashboard/exams/{examID}/result", h.handleExamResult)
			r.Post("/dashboard/questions/{number}/toggle", h.handleToggleQuestion)

			r.With(requireRole(model.UserRoleTeacher, model.UserRoleAdmin)).
				Get("/teacher", h.handleTeacherStatus)

			r.Group(func(r chi.Router) {
				r.Use(requireRole(model.UserRoleAdmin))
				r.Get("/admin/users", h.handleAdminUsersPage)
				r.Post("/admin/users", h.handleCreateUser)
				r.Post("/admin/users/toggle", h.handleToggleUserActive)
			})
		})
	})

	r.Handle("/static/*", http.FileServerFS(staticFiles))
}

// handleLanding renders the marketing page, or sends a signed-in visitor
// straight to their role's home.
func (h *Handler) handleLanding(w http.ResponseWriter, r *http.Request) {
	if user := h.sessionUser(r); user != nil {
		http.Redirect(w, r, model.HomePath(user.Role), http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.LandingPage().Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

// handleDashboard serves the full student dashboard page. Each page load
// builds a fresh controller bound to the user's student record and loads the
// results tab before rendering; a failed first fetch still renders the page,
// with an error toast and an empty collection.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())
	if user.Role != model.UserRoleStudent {
		http.Redirect(w, r, model.HomePath(user.Role), http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if user.StudentRef == "" {
		if err := views.DashboardUnlinked(user.DisplayName).Render(r.Context(), w); err != nil {
			slog.Error("render error", "error", err)
		}
		return
	}

	ctrl := dashboard.NewController(h.api, user.StudentRef)
	toast := ""
	if err := ctrl.LoadTab(r.Context(), dashboard.TabResults); err != nil {
		slog.Error("initial exams fetch failed", "student_ref", user.StudentRef, "error", err)
		toast = appI18n.T(r.Context(), "FetchExamsFailed")
	}
	if token := h.sessionToken(r); token != "" {
		h.dash.Put(token, ctrl)
	}

	if err := views.DashboardPage(user.DisplayName, ctrl.Snapshot(), toast).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

// handleDashboardTab swaps the tab panel. On a fetch failure the panel
// re-renders from the unchanged state and an out-of-band toast reports the
// error.
func (h *Handler) handleDashboardTab(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.dash.Get(h.sessionToken(r))
	if !ok {
		h.redirectToDashboard(w)
		return
	}
	tab, ok := dashboard.ParseTab(chi.URLParam(r, "tab"))
	if !ok {
		http.Error(w, "invalid tab", http.StatusBadRequest)
		return
	}

	err := ctrl.LoadTab(r.Context(), tab)
	view := ctrl.Snapshot()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err != nil {
		slog.Error("tab fetch failed", "tab", tab, "error", err)
		msgID := "FetchExamsFailed"
		if tab == dashboard.TabUploads {
			msgID = "FetchUploadsFailed"
		}
		if err := views.TabPanelWithToast(view, appI18n.T(r.Context(), msgID)).Render(r.Context(), w); err != nil {
			slog.Error("render error", "error", err)
		}
		return
	}
	if err := views.TabPanel(view).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

// handleExamResult swaps the result panel with one exam's marks. Exams
// without results are a no-op; fetch failures show the inline error plus a
// toast; an empty result shows the benign inline notice.
func (h *Handler) handleExamResult(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.dash.Get(h.sessionToken(r))
	if !ok {
		h.redirectToDashboard(w)
		return
	}
	examID := chi.URLParam(r, "examID")

	err := ctrl.SelectExam(r.Context(), examID)
	view := ctrl.Snapshot()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	switch {
	case errors.Is(err, dashboard.ErrExamUnavailable):
		if err := views.ResultPanel(view).Render(r.Context(), w); err != nil {
			slog.Error("render error", "error", err)
		}
	case err != nil:
		slog.Error("result fetch failed", "exam_id", examID, "error", err)
		if err := views.ResultPanelWithToast(view, appI18n.T(r.Context(), "FetchResultFailed")).Render(r.Context(), w); err != nil {
			slog.Error("render error", "error", err)
		}
	default:
		if err := views.ResultPanel(view).Render(r.Context(), w); err != nil {
			slog.Error("render error", "error", err)
		}
	}
}

// handleToggleQuestion expands or collapses one question and re-renders the
// result panel.
func (h *Handler) handleToggleQuestion(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.dash.Get(h.sessionToken(r))
	if !ok {
		h.redirectToDashboard(w)
		return
	}
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		http.Error(w, "invalid question number", http.StatusBadRequest)
		return
	}

	ctrl.ToggleQuestion(number)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.ResultPanel(ctrl.Snapshot()).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

// redirectToDashboard handles htmx requests that arrive without a live
// controller, e.g. after a server restart. A full page load rebuilds it.
func (h *Handler) redirectToDashboard(w http.ResponseWriter) {
	w.Header().Set("HX-Redirect", "/dashboard")
	w.WriteHeader(http.StatusOK)
}

// sessionUser resolves the signed-in user for routes outside requireAuth.
func (h *Handler) sessionUser(r *http.Request) *model.User {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	sess, err := h.store.GetAuthSession(cookie.Value)
	if err != nil || sess == nil {
		return nil
	}
	user, err := h.store.GetUserByID(sess.UserID)
	if err != nil || user == nil || !user.Active {
		return nil
	}
	return user
}

func (h *Handler) sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
