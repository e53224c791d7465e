package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/shiiviitiiwarii28/Autograder/internal/api"
	"github.com/shiiviitiiwarii28/Autograder/internal/handler"
	appI18n "github.com/shiiviitiiwarii28/Autograder/internal/i18n"
	"github.com/shiiviitiiwarii28/Autograder/internal/model"
	"github.com/shiiviitiiwarii28/Autograder/internal/store"
)

//go:generate templ generate

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "autograder",
		Short: "Web front end for the Autograder exam grading service",
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `autograder --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP web server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "autograder.db", "SQLite database path")
	f.String("api-url", "http://localhost:9000/api/v1", "Autograder API base URL")
	f.Duration("api-timeout", 10*time.Second, "Timeout for Autograder API requests")
	f.StringP("lang", "l", "en", "UI language (en, hi)")
	f.Bool("secure-cookies", true, "Set Secure flag on session cookies")
	f.String("admin-password", "", "Initial admin password (or set AUTOGRADER_ADMIN_PASSWORD)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a student's graded results as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("api-url", "http://localhost:9000/api/v1", "Autograder API base URL")
	f.Duration("api-timeout", 10*time.Second, "Timeout for Autograder API requests")
	f.StringP("student", "s", "", "Student identifier (required)")
	f.String("exam-id", "", "Export a single exam instead of all graded exams")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")

	_ = cmd.MarkFlagRequired("student")

	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("AUTOGRADER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("autograder")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/autograder")
	v.AddConfigPath("/etc/autograder")
	v.AddConfigPath("/data")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	// Open database.
	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Seed default admin user if no users exist.
	if err := seedAdmin(db, v.GetString("admin-password")); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	go sessionCleanup(db)

	// Initialize i18n.
	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	// Create the exam API client. An unreachable API is not fatal: the UI
	// stays up and surfaces fetch errors as toasts until the API recovers.
	apiURL := v.GetString("api-url")
	apiClient, err := api.New(apiURL, v.GetDuration("api-timeout"))
	if err != nil {
		return fmt.Errorf("create API client: %w", err)
	}
	if err := apiClient.Ping(context.Background()); err != nil {
		slog.Warn("exam API not reachable at startup", "url", apiURL, "error", err)
	} else {
		slog.Info("exam API OK", "url", apiURL)
	}

	cfg := model.AppConfig{
		APIBaseURL:    apiURL,
		SecureCookies: v.GetBool("secure-cookies"),
	}

	h, err := handler.New(db, apiClient, cfg)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"api_url", apiURL,
		"lang", lang,
		"db", v.GetString("db"),
	)
	return http.ListenAndServe(addr, r)
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	apiClient, err := api.New(v.GetString("api-url"), v.GetDuration("api-timeout"))
	if err != nil {
		return fmt.Errorf("create API client: %w", err)
	}

	ctx := context.Background()
	studentID := strings.TrimSpace(v.GetString("student"))
	examFilter := strings.TrimSpace(v.GetString("exam-id"))

	exams, err := apiClient.AvailableExams(ctx, studentID)
	if err != nil {
		return fmt.Errorf("list exams: %w", err)
	}

	filterMatched := examFilter == ""
	results := make([]model.ExamResult, 0, len(exams))
	for _, e := range exams {
		if examFilter != "" && e.ExamID != examFilter {
			continue
		}
		filterMatched = true
		if !e.HasResults {
			continue
		}
		res, err := apiClient.StudentResult(ctx, studentID, e.ExamID)
		if err != nil {
			return fmt.Errorf("fetch result for exam %s: %w", e.ExamID, err)
		}
		if res == nil {
			continue
		}
		results = append(results, *res)
	}
	if !filterMatched {
		return fmt.Errorf("exam %s is not available for student %s", examFilter, studentID)
	}

	export := model.ResultsExport{
		StudentID:  studentID,
		ExportedAt: time.Now().UTC(),
		Results:    results,
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	_, _ = fmt.Fprintln(w)

	return nil
}

// sessionCleanup drops expired auth sessions at startup and then hourly.
func sessionCleanup(db *store.Store) {
	tick := time.NewTicker(time.Hour)
	defer tick.Stop()
	for {
		n, err := db.CleanupExpiredSessions()
		if err != nil {
			slog.Error("session cleanup failed", "error", err)
		} else if n > 0 {
			slog.Info("removed expired auth sessions", "count", n)
		}
		<-tick.C
	}
}

func seedAdmin(db *store.Store, password string) error {
	count, err := db.UserCount()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if password == "" {
		return fmt.Errorf("admin password is required: set --admin-password flag or AUTOGRADER_ADMIN_PASSWORD env var")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = db.CreateUser(model.User{
		Username:     "admin",
		DisplayName:  "Administrator",
		PasswordHash: string(hash),
		Role:         model.UserRoleAdmin,
		Active:       true,
	})
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	slog.Info("seeded default admin user", "username", "admin")
	return nil
}
