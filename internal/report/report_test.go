package report

import (
	"context"
	"io"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiact-formation/auditor/internal/i18n"
	"github.com/aiact-formation/auditor/internal/model"
	"github.com/aiact-formation/auditor/internal/questions"
	"github.com/aiact-formation/auditor/internal/scoring"
)

func TestMain(m *testing.M) {
	if err := i18n.Init("fr"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newEngine(t *testing.T) *scoring.Engine {
	t.Helper()
	bank, err := questions.Default()
	require.NoError(t, err)
	policy, err := scoring.DefaultPolicy()
	require.NoError(t, err)
	return scoring.New(bank, policy)
}

// answersAt picks, for every question of the plan, the option with the
// lowest or the highest score.
func answersAt(bank *questions.Bank, plan model.Plan, highest bool) model.Answers {
	answers := model.Answers{}
	for _, q := range bank.ForPlan(plan) {
		best := q.Options[0]
		for _, o := range q.Options[1:] {
			if (highest && o.Score > best.Score) || (!highest && o.Score < best.Score) {
				best = o
			}
		}
		answers[q.ID] = model.Single(best.Value)
	}
	return answers
}

var fixedNow = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

func render(t *testing.T, ctx context.Context, res model.AuditResult, opts Options) string {
	t.Helper()
	if opts.Now == nil {
		opts.Now = fixedNow
	}
	out, err := Render(ctx, res, opts)
	require.NoError(t, err)
	return string(out)
}

func TestSectionOrder(t *testing.T) {
	e := newEngine(t)
	res := e.Calculate(answersAt(e.Bank(), model.PlanPro, true), model.PlanPro)
	html := render(t, context.Background(), res, Options{Profile: &model.Profile{Name: "Acme"}})

	assert.Equal(t, []string{
		"cover", "toc", "summary", "profile", "methodology", "results", "analysis",
		"recommendations", "action-plan", "budget", "next-steps", "glossary",
		"references", "checklist", "certificate",
	}, Sections)
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"), "document starts with the page head")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(html), "</html>"), "document ends with the page foot")

	last := -1
	for _, s := range Sections {
		idx := strings.Index(html, `<section id="`+s+`"`)
		require.GreaterOrEqual(t, idx, 0, "section %s missing", s)
		assert.Greater(t, idx, last, "section %s out of order", s)
		last = idx
	}
}

func TestUnknownBlockFails(t *testing.T) {
	tpl, err := page.Clone()
	require.NoError(t, err)
	err = block(tpl, "missing", view{}).Render(context.Background(), io.Discard)
	assert.ErrorContains(t, err, "render report missing")
}

func TestMissingProfileFallbacks(t *testing.T) {
	e := newEngine(t)
	res := FromRequest(e, model.ReportRequest{Score: 50, Plan: model.PlanSolo})
	html := render(t, context.Background(), res, Options{})

	assert.Contains(t, html, "<h2 style=\"border: none\">Organisation</h2>")
	assert.Contains(t, html, "<td>Non renseigné</td>")
}

func TestProfileFromCollectedData(t *testing.T) {
	ctx := context.Background()
	org := orgProfile(ctx, nil, map[string]string{"sector": "sante", "company_size": "eti", "site_count": "3"})

	assert.Equal(t, "Organisation", org.Name)
	assert.Equal(t, "sante", org.Sector)
	assert.Equal(t, "ETI (250 à 4 999 salariés)", org.Size)
	assert.Equal(t, "3 sites", org.Sites)

	org = orgProfile(ctx, &model.Profile{Name: "Acme", Size: "Startup"}, nil)
	assert.Equal(t, "Startup", org.Size)
	assert.Equal(t, "Site unique", org.Sites)

	org = orgProfile(ctx, &model.Profile{HasMultipleSites: true}, nil)
	assert.Equal(t, "Plusieurs sites", org.Sites)
}

func TestProfileIsEscaped(t *testing.T) {
	e := newEngine(t)
	res := e.Calculate(model.Answers{}, model.PlanSolo)
	html := render(t, context.Background(), res, Options{Profile: &model.Profile{Name: "<script>alert(1)</script>"}})

	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestEnglishChrome(t *testing.T) {
	e := newEngine(t)
	res := e.Calculate(model.Answers{}, model.PlanSolo)
	html := render(t, i18n.WithLang(context.Background(), "en"), res, Options{})

	assert.Contains(t, html, "Executive summary")
	assert.Contains(t, html, "Organization")
	assert.Contains(t, html, "2026-03-01")
}

func TestStrengthsAndWeaknesses(t *testing.T) {
	e := newEngine(t)
	res := FromRequest(e, model.ReportRequest{
		Score: 65,
		CategoryScores: []model.PostedCategoryScore{
			{Category: "governance", Score: 70},
			{Category: "training", Score: 69},
		},
	})
	v := newView(context.Background(), res, Options{Now: fixedNow})

	require.Len(t, v.Strengths, 1)
	require.Len(t, v.Weaknesses, 1)
	assert.Equal(t, "governance", v.Strengths[0].Category)
	assert.Equal(t, "training", v.Weaknesses[0].Category)
	assert.Equal(t, "01/03/2026", v.GeneratedOn)
	assert.Equal(t, "01/03/2027", v.CertValidUntil)
}

func TestNarrative(t *testing.T) {
	ctx := i18n.WithLang(context.Background(), "fr")
	tests := []struct {
		pct  int
		tier string
	}{
		{100, "NarrativeTier80"}, {80, "NarrativeTier80"},
		{79, "NarrativeTier60"}, {60, "NarrativeTier60"},
		{59, "NarrativeTier40"}, {40, "NarrativeTier40"},
		{39, "NarrativeTier0"}, {0, "NarrativeTier0"},
	}
	for _, tt := range tests {
		got := Narrative(ctx, "governance", tt.pct)
		require.Len(t, got, 2)
		assert.Equal(t, i18n.T(ctx, tt.tier), got[0], "percentage %d", tt.pct)
		assert.Equal(t, i18n.T(ctx, "Requirement_governance"), got[1])
	}

	assert.Equal(t, i18n.T(ctx, defaultRequirement), Narrative(ctx, "unknown", 50)[1])
	assert.Contains(t, Narrative(ctx, "training", 90)[1], "article 4")
}

func TestNarrativeEnglish(t *testing.T) {
	ctx := i18n.WithLang(context.Background(), "en")

	got := Narrative(ctx, "training", 30)
	assert.Contains(t, got[0], "critical level of compliance")
	assert.Contains(t, got[1], "Article 4")

	html := render(t, ctx, newEngine(t).Calculate(model.Answers{}, model.PlanSolo), Options{})
	assert.Contains(t, html, "high level of maturity")
	assert.NotContains(t, html, "niveau de maturité élevé")
}

func TestEveryBankCategoryHasRequirement(t *testing.T) {
	for _, lang := range []string{"fr", "en"} {
		ctx := i18n.WithLang(context.Background(), lang)
		for _, c := range newEngine(t).Bank().Categories {
			id := requirementID(c.ID)
			assert.Equal(t, "Requirement_"+c.ID, id)
			assert.NotEqual(t, id, i18n.T(ctx, id), "%s: %s", lang, c.ID)
		}
	}
}

func TestCertificate(t *testing.T) {
	now := fixedNow()
	c := NewCertificate(now)

	assert.Regexp(t, regexp.MustCompile(`^AACT-[0-9A-F]{8}$`), c.ID)
	assert.Equal(t, now, c.Issued)
	assert.Equal(t, time.Date(2027, 3, 1, 10, 0, 0, 0, time.UTC), c.ValidUntil)
}

func TestFromRequestRecomputesFromAnswers(t *testing.T) {
	e := newEngine(t)
	req := model.ReportRequest{
		Score:   12,
		Plan:    model.PlanSolo,
		Answers: answersAt(e.Bank(), model.PlanSolo, false),
	}
	res := FromRequest(e, req)

	assert.Equal(t, 100, res.GlobalScore)
	assert.Equal(t, model.RiskLow, res.RiskLevel)
	assert.Empty(t, res.ComplianceGaps)
	assert.False(t, res.HighRiskSystemsDetected)
}

func TestFromRequestHighRiskFlags(t *testing.T) {
	e := newEngine(t)
	answers := answersAt(e.Bank(), model.PlanSolo, false)
	answers["inv_company_size"] = model.Single("pme")
	delete(answers, "rc_high_risk_count")
	res := FromRequest(e, model.ReportRequest{
		Plan:          model.PlanSolo,
		Answers:       answers,
		HighRiskFlags: []string{"a", "b", "c"},
	})

	assert.True(t, res.HighRiskSystemsDetected)
	// score 100, pme, three flagged systems
	assert.Equal(t, 1.5, res.BudgetEstimate.Multiplier)
}

func TestFromRequestUsesPostedScores(t *testing.T) {
	e := newEngine(t)
	res := FromRequest(e, model.ReportRequest{
		Score:   55.4,
		Profile: &model.Profile{Size: "pme"},
		CategoryScores: []model.PostedCategoryScore{
			{Category: "governance", Score: 82},
			{Category: "training", Score: 35, Icon: "x", Color: "#000000"},
		},
		HighRiskFlags:  []string{"a", "b", "c"},
		TotalQuestions: 15,
	})

	assert.Equal(t, model.PlanSolo, res.Plan)
	assert.Equal(t, 55, res.GlobalScore)
	assert.Equal(t, model.RiskHigh, res.RiskLevel)
	require.Len(t, res.CategoryScores, 2)
	assert.Equal(t, "Gouvernance", res.CategoryScores[0].Name)
	assert.Equal(t, "x", res.CategoryScores[1].Icon)
	require.Len(t, res.ComplianceGaps, 1)
	assert.Equal(t, "training", res.ComplianceGaps[0].Category)
	assert.True(t, res.HighRiskSystemsDetected)
	assert.Equal(t, 15, res.TotalQuestions)
	// 1 (pme) x 1.5 (score below 60) x 1.5 (three high-risk systems)
	assert.Equal(t, 2.25, res.BudgetEstimate.Multiplier)
	assert.Equal(t, scoring.PhaseUrgent, res.Timeline[0].Phase)
}

func TestOptionsFromRequest(t *testing.T) {
	opts := OptionsFromRequest(model.ReportRequest{CompletedAt: "2026-02-10T08:00:00Z"})
	assert.Equal(t, time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC), opts.CompletedAt)

	opts = OptionsFromRequest(model.ReportRequest{CompletedAt: "hier"})
	assert.True(t, opts.CompletedAt.IsZero())
}

func TestPrioritize(t *testing.T) {
	recs := []model.Recommendation{
		{ID: "a", Priority: model.RiskMedium},
		{ID: "b", Priority: model.RiskCritical},
		{ID: "c", Priority: model.RiskHigh},
		{ID: "d", Priority: model.RiskCritical},
	}
	got := Prioritize(recs)

	ids := make([]string, len(got))
	for i, r := range got {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"b", "d", "c", "a"}, ids)
	assert.Equal(t, "a", recs[0].ID)
}

func TestActionPlan(t *testing.T) {
	plan := ActionPlan([]model.Recommendation{
		{Title: "Urgent", Priority: model.RiskCritical},
		{Title: "Important", Priority: model.RiskHigh},
		{Title: "Plus tard", Priority: model.RiskMedium},
	})

	require.Len(t, plan, 6)
	assert.Contains(t, plan[0].Actions, "Urgent")
	assert.Contains(t, plan[1].Actions, "Important")
	assert.Len(t, months[0].Actions, 2)
}

func TestFormatEuros(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0 €"},
		{500, "500 €"},
		{13000, "13 000 €"},
		{1234567, "1 234 567 €"},
		{-4500, "-4 500 €"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatEuros(tt.in))
	}
}
