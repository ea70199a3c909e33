package report

import (
	"context"

	"github.com/aiact-formation/auditor/internal/i18n"
)

// tiers maps score bands to their analysis paragraph, highest band first.
var tiers = []struct {
	min int
	id  string
}{
	{80, "NarrativeTier80"},
	{60, "NarrativeTier60"},
	{40, "NarrativeTier40"},
	{0, "NarrativeTier0"},
}

// requirementCategories have their own "Requirement_<id>" message stating
// what the AI Act expects.
var requirementCategories = map[string]bool{
	"ai_inventory":        true,
	"risk_classification": true,
	"governance":          true,
	"documentation":       true,
	"training":            true,
	"transparency":        true,
	"human_oversight":     true,
	"security":            true,
	"compliance_process":  true,
	"suppliers":           true,
}

const defaultRequirement = "Requirement_default"

// Narrative returns the analysis of a category: the paragraph for its score
// band followed by the category's regulatory requirement.
func Narrative(ctx context.Context, category string, percentage int) []string {
	tier := tiers[len(tiers)-1].id
	for _, t := range tiers {
		if percentage >= t.min {
			tier = t.id
			break
		}
	}
	return []string{i18n.T(ctx, tier), i18n.T(ctx, requirementID(category))}
}

func requirementID(category string) string {
	if requirementCategories[category] {
		return "Requirement_" + category
	}
	return defaultRequirement
}
