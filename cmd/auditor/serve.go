package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/aiact-formation/auditor/internal/handler"
	appI18n "github.com/aiact-formation/auditor/internal/i18n"
	"github.com/aiact-formation/auditor/internal/model"
	"github.com/aiact-formation/auditor/internal/notify"
	"github.com/aiact-formation/auditor/internal/store"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP audit server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "auditor.db", "SQLite database path for the delivery log")
	f.String("resend-key", "", "Resend API key for quiz-result emails (or set AUDITOR_RESEND_KEY)")
	f.String("mail-from", "AI Act Formation <noreply@aiact-formation.fr>", "Sender address for quiz-result emails")
	f.Float64("rate-limit", 5, "Quiz-result emails allowed per minute per client (0 disables)")
	f.Int("rate-burst", 3, "Quiz-result email burst per client")
	addEngineFlags(f)
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	engine, src, err := loadEngine(v)
	if err != nil {
		return err
	}

	err = db.SetServerInfo(model.ServerInfo{
		BankVersion:  engine.Bank().Version,
		BankSource:   src.bank,
		PolicySource: src.policy,
		StartedAt:    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("record server info: %w", err)
	}

	if v.GetString("resend-key") == "" {
		slog.Warn("no Resend API key configured, quiz-result emails will fail")
	}
	mailer := notify.NewResendMailer(v.GetString("resend-key"), v.GetString("mail-from"))

	cfg := model.ServerConfig{
		RateLimit:  v.GetFloat64("rate-limit"),
		RateBurst:  v.GetInt("rate-burst"),
		BankSource: src.bank,
	}
	h, err := handler.New(engine, notify.NewService(mailer, db), cfg)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"lang", lang,
		"bank", src.bank,
		"bank_version", engine.Bank().Version,
		"policy", src.policy,
		"rate_limit", cfg.RateLimit,
		"rate_burst", cfg.RateBurst,
	)
	return http.ListenAndServe(addr, r)
}
