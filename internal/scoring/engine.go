package scoring

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/aiact-formation/auditor/internal/model"
	"github.com/aiact-formation/auditor/internal/questions"
)

// GapThreshold is the minimum compliance percentage a category must reach.
const GapThreshold = 70

// Keys under which the budget reads collected answers.
const (
	KeyCompanySize   = "company_size"
	KeyHighRiskCount = "high_risk_count"
)

// Engine scores answer sets against a question bank. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	bank   *questions.Bank
	policy *Policy
}

// New creates an engine.
func New(bank *questions.Bank, policy *Policy) *Engine {
	return &Engine{bank: bank, policy: policy}
}

// Bank returns the engine's question bank.
func (e *Engine) Bank() *questions.Bank { return e.bank }

// Policy returns the engine's budget policy.
func (e *Engine) Policy() *Policy { return e.policy }

type bucket struct {
	score    float64
	max      float64
	answered int
	total    int
	critical []string
}

// Calculate scores answers for the given plan. It never mutates answers and
// returns the same result for the same inputs. An unknown plan has no
// questions, so every category defaults to full compliance.
func (e *Engine) Calculate(answers model.Answers, plan model.Plan) model.AuditResult {
	buckets := make(map[string]*bucket, len(e.bank.Categories))
	for _, c := range e.bank.Categories {
		buckets[c.ID] = &bucket{}
	}

	var (
		criticalIssues []string
		prohibited     bool
		highRisk       bool
		answered       int
		total          int
	)
	collected := make(map[string]string)

	for _, q := range e.bank.Questions {
		if !q.InPlan(plan) {
			continue
		}
		b := buckets[q.Category]
		b.total++
		total++

		ans := distinct(answers[q.ID])
		if len(ans) == 0 {
			continue
		}
		if !q.Multiple && len(ans) > 1 {
			slog.Debug("several values for a single choice question", "question", q.ID, "answer", ans.String())
			continue
		}
		if q.CollectData != "" {
			collected[q.CollectData] = ans.String()
		}

		var raw float64
		matched := false
		critical := false
		for _, v := range ans {
			opt, ok := q.Option(v)
			if !ok {
				continue
			}
			matched = true
			raw += opt.Score * q.Weight
			if opt.RiskLevel == model.RiskCritical {
				critical = true
			}
		}
		if !matched {
			slog.Debug("answer matches no option", "question", q.ID, "answer", ans.String())
			continue
		}

		b.score += raw
		b.max += q.MaxOptionScore() * q.Weight
		b.answered++
		answered++

		if critical {
			criticalIssues = append(criticalIssues, q.Question)
			b.critical = append(b.critical, q.Question)
			switch q.Flag {
			case model.FlagProhibited:
				prohibited = true
			case model.FlagHighRisk:
				highRisk = true
			}
		}
	}

	var sumScore, sumMax float64
	cats := make([]model.CategoryScore, 0, len(e.bank.Categories))
	for _, c := range e.bank.Categories {
		b := buckets[c.ID]
		sumScore += b.score
		sumMax += b.max
		pct := Compliance(b.score, b.max)
		cats = append(cats, model.CategoryScore{
			Category:          c.ID,
			Name:              c.Name,
			Icon:              c.Icon,
			Color:             c.Color,
			Score:             b.score,
			MaxScore:          b.max,
			Percentage:        pct,
			RiskLevel:         model.RiskLevelFor(pct),
			AnsweredQuestions: b.answered,
			TotalQuestions:    b.total,
			CriticalIssues:    nonNil(b.critical),
		})
	}

	res := e.finish(Summary{
		Plan:               plan,
		GlobalScore:        Compliance(sumScore, sumMax),
		Categories:         cats,
		CriticalIssues:     criticalIssues,
		HighRiskDetected:   highRisk,
		ProhibitedDetected: prohibited,
		CollectedData:      collected,
		AnsweredQuestions:  answered,
		TotalQuestions:     total,
	})
	slog.Debug("audit scored",
		"plan", plan,
		"global_score", res.GlobalScore,
		"answered", answered,
		"total", total,
		"critical_issues", res.CriticalIssuesCount,
	)
	return res
}

// Summary is an already-aggregated scoring outcome. Summarize completes it
// into a canonical AuditResult using the same rules as Calculate.
type Summary struct {
	Plan               model.Plan
	GlobalScore        int
	Categories         []model.CategoryScore
	CriticalIssues     []string
	HighRiskDetected   bool
	ProhibitedDetected bool
	CollectedData      map[string]string
	AnsweredQuestions  int
	TotalQuestions     int
}

// Summarize builds an AuditResult from pre-aggregated category percentages.
// Category names, icons and colors missing from the summary are filled from
// the bank; risk levels are recomputed from the percentages.
func (e *Engine) Summarize(s Summary) model.AuditResult {
	cats := make([]model.CategoryScore, 0, len(s.Categories))
	for _, cs := range s.Categories {
		if c, ok := e.bank.Category(cs.Category); ok {
			if cs.Name == "" {
				cs.Name = c.Name
			}
			if cs.Icon == "" {
				cs.Icon = c.Icon
			}
			if cs.Color == "" {
				cs.Color = c.Color
			}
		}
		if cs.Name == "" {
			cs.Name = cs.Category
		}
		cs.Percentage = clamp(cs.Percentage)
		cs.RiskLevel = model.RiskLevelFor(cs.Percentage)
		cs.CriticalIssues = nonNil(cs.CriticalIssues)
		cats = append(cats, cs)
	}
	s.Categories = cats
	s.GlobalScore = clamp(s.GlobalScore)
	return e.finish(s)
}

func (e *Engine) finish(s Summary) model.AuditResult {
	if s.CollectedData == nil {
		s.CollectedData = make(map[string]string)
	}
	res := model.AuditResult{
		Plan:                        s.Plan,
		GlobalScore:                 s.GlobalScore,
		RiskLevel:                   model.RiskLevelFor(s.GlobalScore),
		CriticalIssues:              nonNil(s.CriticalIssues),
		CriticalIssuesCount:         len(s.CriticalIssues),
		HighRiskSystemsDetected:     s.HighRiskDetected,
		ProhibitedPracticesDetected: s.ProhibitedDetected,
		CollectedData:               s.CollectedData,
		AnsweredQuestions:           s.AnsweredQuestions,
		TotalQuestions:              s.TotalQuestions,
		ComplianceGaps:              []model.ComplianceGap{},
	}

	for _, cs := range s.Categories {
		cs.Recommendations = Recommend(cs.Category, cs.Percentage)
		res.TotalRecommendations += len(cs.Recommendations)
		if cs.Percentage < GapThreshold {
			res.ComplianceGaps = append(res.ComplianceGaps, model.ComplianceGap{
				Category:      cs.Category,
				CategoryName:  cs.Name,
				CurrentState:  fmt.Sprintf("%d%%", cs.Percentage),
				RequiredState: fmt.Sprintf("Minimum %d%%", GapThreshold),
				Gap:           GapThreshold - cs.Percentage,
				Priority:      model.RiskLevelFor(cs.Percentage),
			})
		}
		res.CategoryScores = append(res.CategoryScores, cs)
	}

	res.BudgetEstimate = e.policy.Estimate(
		res.GlobalScore,
		companySize(s.CollectedData),
		highRiskCount(s.CollectedData),
	)
	res.Timeline = Timeline(res.GlobalScore, res.CriticalIssuesCount)
	return res
}

// Compliance inverts a risk total into a compliance percentage in [0,100].
// A category with nothing answered is fully compliant.
func Compliance(score, maxScore float64) int {
	if maxScore <= 0 {
		return 100
	}
	return clamp(int(math.Round(100 - (score/maxScore)*100)))
}

func clamp(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// companySize returns the collected size code; empty means the policy default.
func companySize(data map[string]string) string {
	return strings.TrimSpace(data[KeyCompanySize])
}

func highRiskCount(data map[string]string) int {
	v := strings.TrimSpace(data[KeyHighRiskCount])
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// distinct drops repeated values, keeping first occurrences in order.
func distinct(ans model.AnswerValue) model.AnswerValue {
	if len(ans) < 2 {
		return ans
	}
	seen := make(map[string]bool, len(ans))
	out := make(model.AnswerValue, 0, len(ans))
	for _, v := range ans {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
