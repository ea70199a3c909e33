package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Plan is the questionnaire tier.
type Plan string

const (
	PlanSolo       Plan = "solo"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// Valid reports whether p is one of the known tiers.
func (p Plan) Valid() bool {
	switch p {
	case PlanSolo, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

// RiskLevel is the risk band of a score or an option.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskLevelFor maps a compliance percentage to its risk band.
// The bands are inclusive on the low side.
func RiskLevelFor(percentage int) RiskLevel {
	switch {
	case percentage >= 80:
		return RiskLow
	case percentage >= 60:
		return RiskMedium
	case percentage >= 40:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// FlagKind tags a question whose critical answers raise a detection flag.
type FlagKind string

const (
	FlagNone       FlagKind = ""
	FlagProhibited FlagKind = "prohibited"
	FlagHighRisk   FlagKind = "high_risk"
)

// Option is one selectable answer of a question. Score is a risk
// contribution: higher means worse compliance.
type Option struct {
	Value     string    `json:"value"`
	Label     string    `json:"label"`
	Score     float64   `json:"score"`
	RiskLevel RiskLevel `json:"riskLevel,omitempty"`
}

// Question is one evaluation item of the audit questionnaire.
type Question struct {
	ID          string   `json:"id"`
	Category    string   `json:"category"`
	Question    string   `json:"question"`
	Weight      float64  `json:"weight"`
	Options     []Option `json:"options"`
	ForPlans    []Plan   `json:"forPlans"`
	Multiple    bool     `json:"multiple,omitempty"`
	Flag        FlagKind `json:"flag,omitempty"`
	CollectData string   `json:"collectData,omitempty"`
}

// InPlan reports whether the question belongs to the plan's questionnaire.
func (q Question) InPlan(p Plan) bool {
	for _, fp := range q.ForPlans {
		if fp == p {
			return true
		}
	}
	return false
}

// Option returns the option with the given value.
func (q Question) Option(value string) (Option, bool) {
	for _, o := range q.Options {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}

// MaxOptionScore is the single worst-possible raw option score.
func (q Question) MaxOptionScore() float64 {
	var m float64
	for _, o := range q.Options {
		if o.Score > m {
			m = o.Score
		}
	}
	return m
}

// Category groups related questions. Icon and Color are passed through to
// the report unchanged.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// AnswerValue is either a single option value or a set of values for
// multi-select questions.
type AnswerValue []string

// Single builds a single-select answer.
func Single(v string) AnswerValue { return AnswerValue{v} }

// Multi builds a multi-select answer.
func Multi(vs ...string) AnswerValue { return AnswerValue(vs) }

// UnmarshalJSON accepts a string, an array of strings, a number or a bool.
func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*a = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var raw []any
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		vals := make([]string, 0, len(raw))
		for _, r := range raw {
			vals = append(vals, scalarString(r))
		}
		*a = vals
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = AnswerValue{scalarString(raw)}
	return nil
}

// MarshalJSON writes single answers as a plain string.
func (a AnswerValue) MarshalJSON() ([]byte, error) {
	if len(a) == 1 {
		return json.Marshal(a[0])
	}
	return json.Marshal([]string(a))
}

// String joins the values for display.
func (a AnswerValue) String() string {
	return strings.Join(a, ", ")
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// Answers maps question ids to the submitted answer.
type Answers map[string]AnswerValue

// Recommendation is a remediation item generated from a category score.
type Recommendation struct {
	ID              string    `json:"id"`
	Priority        RiskLevel `json:"priority"`
	Category        string    `json:"category"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	AIActArticle    string    `json:"aiActArticle,omitempty"`
	EstimatedEffort string    `json:"estimatedEffort"`
	EstimatedCost   string    `json:"estimatedCost"`
	Deadline        string    `json:"deadline,omitempty"`
	Actions         []string  `json:"actions,omitempty"`
	Responsible     string    `json:"responsible,omitempty"`
}

// CategoryScore is the per-category aggregate of one scoring run.
type CategoryScore struct {
	Category          string           `json:"category"`
	Name              string           `json:"name"`
	Icon              string           `json:"icon"`
	Color             string           `json:"color"`
	Score             float64          `json:"score"`
	MaxScore          float64          `json:"maxScore"`
	Percentage        int              `json:"percentage"`
	RiskLevel         RiskLevel        `json:"riskLevel"`
	AnsweredQuestions int              `json:"answeredQuestions"`
	TotalQuestions    int              `json:"totalQuestions"`
	CriticalIssues    []string         `json:"criticalIssues"`
	Recommendations   []Recommendation `json:"recommendations"`
}

// ComplianceGap is a category below the compliance threshold.
type ComplianceGap struct {
	Category      string    `json:"category"`
	CategoryName  string    `json:"categoryName"`
	CurrentState  string    `json:"currentState"`
	RequiredState string    `json:"requiredState"`
	Gap           int       `json:"gap"`
	Priority      RiskLevel `json:"priority"`
}

// CostRange is an estimated cost interval in euros.
type CostRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// BudgetEstimate is the remediation budget split in five buckets.
type BudgetEstimate struct {
	Formation     CostRange `json:"formation"`
	Consulting    CostRange `json:"consulting"`
	Tools         CostRange `json:"tools"`
	Documentation CostRange `json:"documentation"`
	Audit         CostRange `json:"audit"`
	Total         CostRange `json:"total"`
	Multiplier    float64   `json:"multiplier"`
}

// TimelinePhase is one step of the remediation plan.
type TimelinePhase struct {
	Phase    string    `json:"phase"`
	Title    string    `json:"title"`
	Duration string    `json:"duration"`
	Priority RiskLevel `json:"priority"`
	Actions  []string  `json:"actions"`
}

// AuditResult is the full output of one scoring run and the only input
// the report renderer consumes.
type AuditResult struct {
	Plan                        Plan              `json:"plan"`
	GlobalScore                 int               `json:"globalScore"`
	RiskLevel                   RiskLevel         `json:"riskLevel"`
	CategoryScores              []CategoryScore   `json:"categoryScores"`
	TotalRecommendations        int               `json:"totalRecommendations"`
	CriticalIssuesCount         int               `json:"criticalIssuesCount"`
	CriticalIssues              []string          `json:"criticalIssues"`
	HighRiskSystemsDetected     bool              `json:"highRiskSystemsDetected"`
	ProhibitedPracticesDetected bool              `json:"prohibitedPracticesDetected"`
	ComplianceGaps              []ComplianceGap   `json:"complianceGaps"`
	BudgetEstimate              BudgetEstimate    `json:"budgetEstimate"`
	Timeline                    []TimelinePhase   `json:"timeline"`
	CollectedData               map[string]string `json:"collectedData"`
	AnsweredQuestions           int               `json:"answeredQuestions"`
	TotalQuestions              int               `json:"totalQuestions"`
}

// Recommendations flattens the per-category recommendations in category order.
func (r AuditResult) Recommendations() []Recommendation {
	var out []Recommendation
	for _, cs := range r.CategoryScores {
		out = append(out, cs.Recommendations...)
	}
	return out
}
