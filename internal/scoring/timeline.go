package scoring

import "github.com/aiact-formation/auditor/internal/model"

// Phase names.
const (
	PhaseUrgent       = "Urgences"
	PhaseFoundations  = "Fondations"
	PhaseCompliance   = "Conformité"
	PhaseOptimization = "Optimisation"
)

// Timeline builds the remediation plan. The urgent phase is prepended when
// the score is below 60 or any critical issue was found; the other phases
// are shorter when the organization already scores 60 or more.
func Timeline(globalScore, criticalIssues int) []model.TimelinePhase {
	advanced := globalScore >= 60

	var phases []model.TimelinePhase
	if globalScore < 60 || criticalIssues > 0 {
		phases = append(phases, model.TimelinePhase{
			Phase:    PhaseUrgent,
			Title:    "Traiter les risques critiques",
			Duration: "0 - 1 mois",
			Priority: model.RiskCritical,
			Actions: []string{
				"Suspendre les pratiques potentiellement interdites",
				"Désigner un responsable de la conformité IA",
				"Sécuriser les systèmes à haut risque identifiés",
			},
		})
	}

	phases = append(phases,
		model.TimelinePhase{
			Phase:    PhaseFoundations,
			Title:    "Poser les fondations de la conformité",
			Duration: pick(advanced, "1 - 2 mois", "1 - 3 mois"),
			Priority: model.RiskHigh,
			Actions: []string{
				"Finaliser le registre des systèmes d'IA",
				"Classifier chaque système selon son niveau de risque",
				"Lancer le programme de formation à l'IA",
			},
		},
		model.TimelinePhase{
			Phase:    PhaseCompliance,
			Title:    "Mettre en conformité",
			Duration: pick(advanced, "2 - 4 mois", "3 - 6 mois"),
			Priority: model.RiskMedium,
			Actions: []string{
				"Produire la documentation technique",
				"Organiser la supervision humaine",
				"Mettre à jour les contrats fournisseurs",
			},
		},
		model.TimelinePhase{
			Phase:    PhaseOptimization,
			Title:    "Optimiser et maintenir",
			Duration: pick(advanced, "4 - 6 mois", "6 - 12 mois"),
			Priority: model.RiskLow,
			Actions: []string{
				"Auditer périodiquement les systèmes",
				"Mettre à jour la veille réglementaire",
				"Mesurer l'efficacité des mesures déployées",
			},
		},
	)
	return phases
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
