package notify

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiact-formation/auditor/internal/i18n"
	"github.com/aiact-formation/auditor/internal/model"
)

func TestMain(m *testing.M) {
	if err := i18n.Init("fr"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeMailer struct {
	sent []Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "email_123", nil
}

type fakeRecorder struct {
	deliveries []model.Delivery
	err        error
}

func (f *fakeRecorder) RecordDelivery(d model.Delivery) (model.Delivery, error) {
	if f.err != nil {
		return d, f.err
	}
	d.ID = "delivery_1"
	f.deliveries = append(f.deliveries, d)
	return d, nil
}

func sampleRequest() model.QuizResultRequest {
	return model.QuizResultRequest{
		Email:          "dpo@example.com",
		Answers:        map[string]any{"q1": "yes"},
		RiskLevel:      "high",
		RiskPercentage: 62,
		Findings:       []string{"Aucun registre des systèmes d'IA", "Pas de formation"},
	}
}

func newTestService(m Mailer, r DeliveryRecorder) *Service {
	s := NewService(m, r)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return s
}

func TestBuildChecklist(t *testing.T) {
	pdf, err := BuildChecklist(Checklist{
		RiskLabel:      "Élevé",
		RiskPercentage: 62,
		Findings:       []string{"Données de santé traitées sans analyse d'impact"},
		Date:           time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
	assert.True(t, bytes.Contains(pdf, []byte("%%EOF")))
}

func TestSendQuizResults(t *testing.T) {
	mailer := &fakeMailer{}
	rec := &fakeRecorder{}
	s := newTestService(mailer, rec)

	d, err := s.SendQuizResults(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, "delivery_1", d.ID)
	assert.Equal(t, model.DeliverySent, d.Status)
	assert.Equal(t, "email_123", d.ProviderID)
	assert.Equal(t, 2, d.Findings)

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "dpo@example.com", msg.To)
	assert.Equal(t, "Vos résultats d'évaluation AI Act", msg.Subject)
	assert.Contains(t, msg.HTML, "Élevé")
	assert.Contains(t, msg.HTML, "Pas de formation")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, ChecklistFilename, msg.Attachments[0].Filename)
	assert.True(t, bytes.HasPrefix(msg.Attachments[0].Content, []byte("%PDF-")))

	require.Len(t, rec.deliveries, 1)
}

func TestSendQuizResultsFailureIsRecorded(t *testing.T) {
	rec := &fakeRecorder{}
	s := newTestService(&fakeMailer{err: errors.New("provider down")}, rec)

	d, err := s.SendQuizResults(context.Background(), sampleRequest())
	require.Error(t, err)

	assert.Equal(t, model.DeliveryFailed, d.Status)
	assert.Equal(t, "provider down", d.Error)
	require.Len(t, rec.deliveries, 1)
	assert.Equal(t, model.DeliveryFailed, rec.deliveries[0].Status)
}

func TestRecorderErrorDoesNotFailSend(t *testing.T) {
	s := newTestService(&fakeMailer{}, &fakeRecorder{err: errors.New("disk full")})

	d, err := s.SendQuizResults(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, model.DeliverySent, d.Status)
	assert.Empty(t, d.ID)
}

func TestResendMailerWithoutKey(t *testing.T) {
	m := NewResendMailer("", "noreply@example.com")
	_, err := m.Send(context.Background(), Message{To: "a@example.com"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestRiskLabel(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "Critique", RiskLabel(ctx, "critical"))
	assert.Equal(t, "modéré", RiskLabel(ctx, "modéré"))
}
