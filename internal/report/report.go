// Package report renders an AuditResult as a printable HTML document.
package report

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/aiact-formation/auditor/internal/i18n"
	"github.com/aiact-formation/auditor/internal/model"
	"github.com/aiact-formation/auditor/internal/scoring"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// page is parsed once with placeholder funcs; each render clones it and
// binds the translation funcs of the request context.
var page = template.Must(template.New("page").
	Funcs(funcs(context.Background())).
	ParseFS(templateFS, "templates/*.tmpl"))

// Options carries what the report needs beyond the AuditResult.
type Options struct {
	Profile     *model.Profile
	CompletedAt time.Time
	// Now defaults to time.Now.
	Now func() time.Time
}

// Sections lists the report's sections in document order. Each is a
// template block named after its anchor id.
var Sections = []string{
	"cover", "toc", "summary", "profile", "methodology", "results", "analysis",
	"recommendations", "action-plan", "budget", "next-steps", "glossary",
	"references", "checklist", "certificate",
}

// Document returns the report as a templ component: the page head, every
// entry of Sections in order, then the page foot.
func Document(res model.AuditResult, opts Options) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, err := page.Clone()
		if err != nil {
			return fmt.Errorf("clone report template: %w", err)
		}
		t.Funcs(funcs(ctx))
		v := newView(ctx, res, opts)

		parts := make([]templ.Component, 0, len(Sections)+2)
		parts = append(parts, block(t, "head", v))
		for _, name := range Sections {
			parts = append(parts, block(t, name, v))
		}
		parts = append(parts, block(t, "foot", v))
		return templ.Join(parts...).Render(ctx, w)
	})
}

// block renders one named template of t as a component.
func block(t *template.Template, name string, v view) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if err := t.ExecuteTemplate(w, name, v); err != nil {
			return fmt.Errorf("render report %s: %w", name, err)
		}
		return nil
	})
}

// Render renders the whole document into memory so that a failure never
// yields a partial report.
func Render(ctx context.Context, res model.AuditResult, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Document(res, opts).Render(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type profileView struct {
	Name   string
	Sector string
	Size   string
	Sites  string
}

type categoryView struct {
	model.CategoryScore
	Narrative []string
}

type budgetRow struct {
	Label string
	model.CostRange
}

type view struct {
	Org             profileView
	Plan            string
	Result          model.AuditResult
	ScoreColor      string
	GeneratedOn     string
	CompletedOn     string
	Strengths       []model.CategoryScore
	Weaknesses      []model.CategoryScore
	Categories      []categoryView
	Recommendations []model.Recommendation
	Months          []Month
	Budget          []budgetRow
	Multiplier      string
	NextSteps       []string
	Glossary        []Term
	References      []string
	Checklist       []string
	Certificate     Certificate
	CertIssued      string
	CertValidUntil  string
}

func newView(ctx context.Context, res model.AuditResult, opts Options) view {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	generated := now()
	layout := i18n.T(ctx, "DateLayout")

	v := view{
		Org:         orgProfile(ctx, opts.Profile, res.CollectedData),
		Plan:        planLabel(ctx, res.Plan),
		Result:      res,
		ScoreColor:  RiskColor(res.RiskLevel),
		GeneratedOn: generated.Format(layout),
		Months:      ActionPlan(res.Recommendations()),
		Multiplier:  strconv.FormatFloat(res.BudgetEstimate.Multiplier, 'f', -1, 64),
		NextSteps:   nextSteps,
		Glossary:    glossary,
		References:  references,
		Checklist:   checklist,
		Certificate: NewCertificate(generated),
	}
	if !opts.CompletedAt.IsZero() {
		v.CompletedOn = opts.CompletedAt.Format(layout)
	}
	v.CertIssued = v.Certificate.Issued.Format(layout)
	v.CertValidUntil = v.Certificate.ValidUntil.Format(layout)

	for _, cs := range res.CategoryScores {
		if cs.Percentage >= scoring.GapThreshold {
			v.Strengths = append(v.Strengths, cs)
		} else {
			v.Weaknesses = append(v.Weaknesses, cs)
		}
		v.Categories = append(v.Categories, categoryView{
			CategoryScore: cs,
			Narrative:     Narrative(ctx, cs.Category, cs.Percentage),
		})
	}

	v.Recommendations = Prioritize(res.Recommendations())

	b := res.BudgetEstimate
	v.Budget = []budgetRow{
		{i18n.T(ctx, "BudgetFormation"), b.Formation},
		{i18n.T(ctx, "BudgetConsulting"), b.Consulting},
		{i18n.T(ctx, "BudgetTools"), b.Tools},
		{i18n.T(ctx, "BudgetDocumentation"), b.Documentation},
		{i18n.T(ctx, "BudgetAudit"), b.Audit},
	}
	return v
}

// Prioritize orders recommendations critical first, keeping category order
// within a priority.
func Prioritize(recs []model.Recommendation) []model.Recommendation {
	out := append([]model.Recommendation(nil), recs...)
	sort.SliceStable(out, func(i, j int) bool {
		return priorityRank(out[i].Priority) < priorityRank(out[j].Priority)
	})
	return out
}

func priorityRank(p model.RiskLevel) int {
	switch p {
	case model.RiskCritical:
		return 0
	case model.RiskHigh:
		return 1
	case model.RiskMedium:
		return 2
	default:
		return 3
	}
}

// RiskColor is the display color of a risk band.
func RiskColor(level model.RiskLevel) string {
	switch level {
	case model.RiskLow:
		return "#16a34a"
	case model.RiskMedium:
		return "#ca8a04"
	case model.RiskHigh:
		return "#ea580c"
	default:
		return "#dc2626"
	}
}

// orgProfile fills the profile table, falling back on collected answers
// and then on the "not provided" label.
func orgProfile(ctx context.Context, p *model.Profile, data map[string]string) profileView {
	var prof model.Profile
	if p != nil {
		prof = *p
	}
	if prof.Sector == "" {
		prof.Sector = data["sector"]
	}
	if prof.Size == "" {
		prof.Size = data[scoring.KeyCompanySize]
	}
	if prof.SiteCount == 0 {
		if n, err := strconv.Atoi(data["site_count"]); err == nil && n > 1 {
			prof.HasMultipleSites = true
			prof.SiteCount = n
		}
	}

	missing := i18n.T(ctx, "NotProvided")
	out := profileView{
		Name:   orDefault(prof.Name, i18n.T(ctx, "OrganizationFallback")),
		Sector: orDefault(prof.Sector, missing),
		Size:   orDefault(sizeLabel(ctx, prof.Size), missing),
	}
	switch {
	case prof.HasMultipleSites && prof.SiteCount > 1:
		out.Sites = i18n.Td(ctx, "MultipleSites", map[string]any{"Count": prof.SiteCount})
	case prof.HasMultipleSites:
		out.Sites = i18n.T(ctx, "MultipleSitesUnknown")
	case p != nil || prof.SiteCount == 1:
		out.Sites = i18n.T(ctx, "SingleSite")
	default:
		out.Sites = missing
	}
	return out
}

func sizeLabel(ctx context.Context, size string) string {
	code := strings.ToLower(strings.TrimSpace(size))
	switch code {
	case "tpe", "pme", "eti", "ge":
		return i18n.T(ctx, "Size_"+code)
	}
	return strings.TrimSpace(size)
}

func planLabel(ctx context.Context, p model.Plan) string {
	if p.Valid() {
		return i18n.T(ctx, "Plan_"+string(p))
	}
	return orDefault(string(p), i18n.T(ctx, "NotProvided"))
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// FormatEuros formats an amount with French digit grouping.
func FormatEuros(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	out := b.String() + " €"
	if neg {
		out = "-" + out
	}
	return out
}

func funcs(ctx context.Context) template.FuncMap {
	return template.FuncMap{
		"t": func(id string) string { return i18n.T(ctx, id) },
		"td": func(id string, kv ...any) string {
			data := make(map[string]any, len(kv)/2)
			for i := 0; i+1 < len(kv); i += 2 {
				if k, ok := kv[i].(string); ok {
					data[k] = kv[i+1]
				}
			}
			return i18n.Td(ctx, id, data)
		},
		"tp":    func(id string, n int) string { return i18n.Tp(ctx, id, n) },
		"risk":  func(l model.RiskLevel) string { return i18n.T(ctx, "Risk_"+string(l)) },
		"color": RiskColor,
		"euros": FormatEuros,
	}
}
