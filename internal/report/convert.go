package report

import (
	"math"
	"strconv"
	"time"

	"github.com/aiact-formation/auditor/internal/model"
	"github.com/aiact-formation/auditor/internal/scoring"
)

// FromRequest converges a report payload into one canonical AuditResult.
// When the payload carries answers known to the bank the engine recomputes
// everything from them; otherwise the posted category percentages are
// completed with the same rules.
func FromRequest(e *scoring.Engine, req model.ReportRequest) model.AuditResult {
	plan := req.Plan
	if plan == "" {
		plan = model.PlanSolo
	}
	flagged := len(req.HighRiskFlags)

	if e.Bank().Knows(req.Answers) {
		res := e.Calculate(req.Answers, plan)
		if flagged > 0 {
			res.HighRiskSystemsDetected = true
			if _, ok := res.CollectedData[scoring.KeyHighRiskCount]; !ok {
				res.BudgetEstimate = e.Policy().Estimate(res.GlobalScore, res.CollectedData[scoring.KeyCompanySize], flagged)
			}
		}
		return res
	}

	cats := make([]model.CategoryScore, 0, len(req.CategoryScores))
	for _, pc := range req.CategoryScores {
		cats = append(cats, model.CategoryScore{
			Category:   pc.Category,
			Icon:       pc.Icon,
			Color:      pc.Color,
			Percentage: int(math.Round(pc.Score)),
		})
	}
	collected := make(map[string]string)
	if req.Profile != nil && req.Profile.Size != "" {
		collected[scoring.KeyCompanySize] = req.Profile.Size
	}
	if flagged > 0 {
		collected[scoring.KeyHighRiskCount] = strconv.Itoa(flagged)
	}
	return e.Summarize(scoring.Summary{
		Plan:             plan,
		GlobalScore:      int(math.Round(req.Score)),
		Categories:       cats,
		HighRiskDetected: flagged > 0,
		CollectedData:    collected,
		TotalQuestions:   req.TotalQuestions,
	})
}

// OptionsFromRequest extracts the rendering options of a report payload.
// An unparsable completion date is ignored.
func OptionsFromRequest(req model.ReportRequest) Options {
	opts := Options{Profile: req.Profile}
	if req.CompletedAt != "" {
		if t, err := time.Parse(time.RFC3339, req.CompletedAt); err == nil {
			opts.CompletedAt = t
		}
	}
	return opts
}
