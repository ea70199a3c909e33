// Package notify delivers quiz results by email with a PDF checklist.
package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/aiact-formation/auditor/internal/i18n"
	"github.com/aiact-formation/auditor/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var emailTmpl = template.Must(template.ParseFS(templateFS, "templates/quiz_results.html.tmpl"))

// DeliveryRecorder persists delivery attempts.
type DeliveryRecorder interface {
	RecordDelivery(d model.Delivery) (model.Delivery, error)
}

// Service sends quiz results and records every attempt.
type Service struct {
	mailer   Mailer
	recorder DeliveryRecorder
	now      func() time.Time
}

// NewService creates a service. recorder may be nil.
func NewService(mailer Mailer, recorder DeliveryRecorder) *Service {
	return &Service{mailer: mailer, recorder: recorder, now: time.Now}
}

// SendQuizResults builds the checklist, sends it to req.Email and returns
// the recorded delivery. The delivery is recorded whether or not sending
// succeeded.
func (s *Service) SendQuizResults(ctx context.Context, req model.QuizResultRequest) (model.Delivery, error) {
	d := model.Delivery{
		Email:          req.Email,
		RiskLevel:      req.RiskLevel,
		RiskPercentage: req.RiskPercentage,
		Findings:       len(req.Findings),
		CreatedAt:      s.now().UTC(),
	}

	id, err := s.send(ctx, req)
	if err != nil {
		d.Status = model.DeliveryFailed
		d.Error = err.Error()
	} else {
		d.Status = model.DeliverySent
		d.ProviderID = id
	}
	s.record(&d)
	return d, err
}

func (s *Service) send(ctx context.Context, req model.QuizResultRequest) (string, error) {
	label := RiskLabel(ctx, req.RiskLevel)
	pdf, err := BuildChecklist(ChecklistFor(req, label, s.now()))
	if err != nil {
		return "", err
	}

	subject := i18n.T(ctx, "EmailSubject")
	var body bytes.Buffer
	err = emailTmpl.Execute(&body, map[string]any{
		"Title":          subject,
		"RiskLabel":      label,
		"RiskPercentage": req.RiskPercentage,
		"Findings":       req.Findings,
	})
	if err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}

	return s.mailer.Send(ctx, Message{
		To:      req.Email,
		Subject: subject,
		HTML:    body.String(),
		Attachments: []Attachment{
			{Filename: ChecklistFilename, Content: pdf},
		},
	})
}

func (s *Service) record(d *model.Delivery) {
	if s.recorder == nil {
		return
	}
	saved, err := s.recorder.RecordDelivery(*d)
	if err != nil {
		slog.Error("failed to record delivery", "email", d.Email, "status", d.Status, "error", err)
		return
	}
	*d = saved
}

// RiskLabel translates a known risk level and returns other values as is.
func RiskLabel(ctx context.Context, level string) string {
	switch model.RiskLevel(level) {
	case model.RiskLow, model.RiskMedium, model.RiskHigh, model.RiskCritical:
		return i18n.T(ctx, "Risk_"+level)
	}
	return level
}
