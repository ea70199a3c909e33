package scoring

import "github.com/aiact-formation/auditor/internal/model"

// rule emits a recommendation for a category whose percentage is below
// the rule's threshold.
type rule struct {
	category string
	below    int
	// fixed priority; empty means priorityFor(percentage)
	priority model.RiskLevel
	rec      model.Recommendation
}

// AI Act application dates.
const (
	deadlineProhibited   = "2 février 2025"
	deadlineGovernance   = "2 août 2025"
	deadlineTransparency = "2 août 2026"
	deadlineHighRisk     = "2 août 2026"
	deadlineAnnexI       = "2 août 2027"
)

var rules = []rule{
	{category: "ai_inventory", below: GapThreshold, rec: model.Recommendation{
		ID:              "rec_inventory_register",
		Title:           "Établir un registre complet des systèmes d'IA",
		Description:     "Recenser l'ensemble des systèmes d'IA utilisés, développés ou achetés, avec leur finalité, leur fournisseur et les données traitées.",
		AIActArticle:    "Articles 6 et 49",
		EstimatedEffort: "2 à 4 semaines",
		EstimatedCost:   "2 000 € - 5 000 €",
		Deadline:        deadlineGovernance,
		Responsible:     "DSI / Responsable conformité",
		Actions: []string{
			"Lancer un questionnaire d'inventaire auprès de chaque direction",
			"Identifier les usages non déclarés d'outils d'IA",
			"Centraliser les fiches systèmes dans un registre unique",
		},
	}},
	{category: "risk_classification", below: GapThreshold, rec: model.Recommendation{
		ID:              "rec_risk_classification",
		Title:           "Classifier chaque système selon les niveaux de risque",
		Description:     "Qualifier chaque système d'IA (interdit, haut risque, risque limité, risque minimal) au regard de l'article 5 et de l'annexe III.",
		AIActArticle:    "Articles 5, 6 et annexe III",
		EstimatedEffort: "3 à 6 semaines",
		EstimatedCost:   "5 000 € - 15 000 €",
		Deadline:        deadlineProhibited,
		Responsible:     "Responsable conformité / Juriste",
		Actions: []string{
			"Appliquer la grille de classification à chaque système du registre",
			"Documenter la justification de chaque classification",
			"Faire valider les cas limites par un juriste spécialisé",
		},
	}},
	{category: "risk_classification", below: 40, priority: model.RiskCritical, rec: model.Recommendation{
		ID:              "rec_prohibited_practices",
		Title:           "Auditer et faire cesser les pratiques interdites",
		Description:     "Vérifier qu'aucun système ne relève des pratiques interdites (notation sociale, reconnaissance des émotions au travail, manipulation) et y mettre fin sans délai.",
		AIActArticle:    "Article 5",
		EstimatedEffort: "1 à 2 semaines",
		EstimatedCost:   "3 000 € - 8 000 €",
		Deadline:        deadlineProhibited,
		Responsible:     "Direction générale",
		Actions: []string{
			"Suspendre immédiatement tout usage potentiellement interdit",
			"Conduire une revue juridique des cas identifiés",
			"Informer la direction et documenter les mesures prises",
		},
	}},
	{category: "governance", below: GapThreshold, rec: model.Recommendation{
		ID:              "rec_governance_owner",
		Title:           "Formaliser la gouvernance de l'IA",
		Description:     "Désigner un responsable de la conformité IA, adopter une politique d'utilisation et mettre en place un comité de pilotage.",
		AIActArticle:    "Article 17",
		EstimatedEffort: "2 à 4 semaines",
		EstimatedCost:   "3 000 € - 8 000 €",
		Deadline:        deadlineGovernance,
		Responsible:     "Direction générale",
		Actions: []string{
			"Nommer un responsable de la conformité IA",
			"Rédiger et diffuser une charte d'utilisation de l'IA",
			"Instaurer un comité de pilotage trimestriel",
		},
	}},
	{category: "governance", below: 40, priority: model.RiskCritical, rec: model.Recommendation{
		ID:              "rec_governance_risk_management",
		Title:           "Mettre en place un système de gestion des risques",
		Description:     "Déployer un processus continu d'identification, d'évaluation et de traitement des risques couvrant tout le cycle de vie des systèmes.",
		AIActArticle:    "Article 9",
		EstimatedEffort: "1 à 3 mois",
		EstimatedCost:   "8 000 € - 20 000 €",
		Deadline:        deadlineHighRisk,
		Responsible:     "Risk manager",
		Actions: []string{
			"Cartographier les risques par système",
			"Définir les mesures d'atténuation et leurs responsables",
			"Planifier des revues périodiques",
		},
	}},
	{category: "documentation", below: GapThreshold, rec: model.Recommendation{
		ID:              "rec_documentation_technical",
		Title:           "Constituer la documentation technique",
		Description:     "Rédiger pour chaque système la documentation exigée par l'annexe IV : finalité, architecture, données, performances et limites.",
		AIActArticle:    "Article 11 et annexe IV",
		EstimatedEffort: "1 à 2 mois",
		EstimatedCost:   "4 000 € - 12 000 €",
		Deadline:        deadlineHighRisk,
		Responsible:     "Équipe technique",
		Actions: []string{
			"Adopter un modèle de documentation commun",
			"Documenter les jeux de données et leur provenance",
			"Versionner la documentation avec chaque mise à jour",
		},
	}},
	{category: "documentation", below: 40, priority: model.RiskHigh, rec: model.Recommendation{
		ID:              "rec_documentation_logging",
		Title:           "Activer la journalisation des systèmes",
		Description:     "Garantir l'enregistrement automatique des événements pour assurer la traçabilité du fonctionnement des systèmes.",
		AIActArticle:    "Article 12",
		EstimatedEffort: "2 à 4 semaines",
		EstimatedCost:   "2 000 € - 6 000 €",
		Deadline:        deadlineHighRisk,
		Responsible:     "DSI",
		Actions: []string{
			"Identifier les événements à journaliser",
			"Conserver les journaux au moins six mois",
		},
	}},
	{category: "training", below: GapThreshold, rec: model.Recommendation{
		ID:              "rec_training_literacy",
		Title:           "Déployer un programme de littératie IA",
		Description:     "Former les collaborateurs qui conçoivent ou utilisent des systèmes d'IA à leurs usages, leurs limites et aux obligations de l'AI Act.",
		AIActArticle:    "Article 4",
		EstimatedEffort: "1 à 3 mois",
		EstimatedCost:   "2 000 € - 5 000 €",
		Deadline:        deadlineProhibited,
		Responsible:     "RH / Formation",
		Actions: []string{
			"Identifier les populations concernées",
			"Déployer un parcours de formation adapté à chaque rôle",
			"Suivre les taux de complétion et les certifications",
		},
	}},
	{category: "transparency", below: GapThreshold, rec: model.Recommendation{
		ID:              "rec_transparency_disclosure",
		Title:           "Informer les personnes des interactions avec l'IA",
		Description:     "Signaler clairement les interactions avec un système d'IA et marquer les contenus générés ou modifiés artificiellement.",
		AIActArticle:    "Article 50",
		EstimatedEffort: "2 à 4 semaines",
		EstimatedCost:   "1 000 € - 4 000 €",
		Deadline:        deadlineTransparency,
		Responsible:     "Marketing / Produit",
		Actions: []string{
			"Ajouter des mentions d'information sur les interfaces",
			"Marquer les contenus générés par IA",
		},
	}},
	{category: "human_oversight", below: GapThreshold, rec: model.Recommendation{
		ID:              "rec_human_oversight",
		Title:           "Organiser la supervision humaine",
		Description:     "Permettre à des personnes compétentes de comprendre, surveiller, corriger et interrompre les systèmes d'IA.",
		AIActArticle:    "Article 14",
		EstimatedEffort: "1 à 2 mois",
		EstimatedCost:   "3 000 € - 10 000 €",
		Deadline:        deadlineHighRisk,
		Responsible:     "Responsables métier",
		Actions: []string{
			"Désigner les superviseurs de chaque système",
			"Définir une procédure d'arrêt d'urgence",
			"Former les superviseurs aux biais d'automatisation",
		},
	}},
	{category: "security", below: GapThreshold, rec: model.Recommendation{
		ID:              "rec_security_robustness",
		Title:           "Renforcer la robustesse et la cybersécurité",
		Description:     "Tester la résistance des systèmes aux erreurs, aux attaques et aux tentatives de manipulation des données.",
		AIActArticle:    "Article 15",
		EstimatedEffort: "1 à 3 mois",
		EstimatedCost:   "5 000 € - 15 000 €",
		Deadline:        deadlineHighRisk,
		Responsible:     "RSSI",
		Actions: []string{
			"Planifier des tests d'intrusion spécifiques à l'IA",
			"Mesurer l'exactitude et la robustesse des modèles",
		},
	}},
	{category: "security", below: 40, priority: model.RiskCritical, rec: model.Recommendation{
		ID:              "rec_security_incidents",
		Title:           "Mettre en place le signalement des incidents graves",
		Description:     "Définir une procédure de détection et de notification des incidents graves aux autorités de surveillance du marché.",
		AIActArticle:    "Article 73",
		EstimatedEffort: "2 à 3 semaines",
		EstimatedCost:   "1 500 € - 4 000 €",
		Deadline:        deadlineHighRisk,
		Responsible:     "RSSI / Responsable conformité",
		Actions: []string{
			"Rédiger la procédure de notification",
			"Tenir un registre des incidents",
		},
	}},
	{category: "compliance_process", below: GapThreshold, rec: model.Recommendation{
		ID:              "rec_compliance_process",
		Title:           "Structurer le processus de conformité",
		Description:     "Organiser la veille réglementaire, l'évaluation de conformité et la surveillance après mise en service.",
		AIActArticle:    "Articles 43 et 72",
		EstimatedEffort: "1 à 2 mois",
		EstimatedCost:   "4 000 € - 12 000 €",
		Deadline:        deadlineAnnexI,
		Responsible:     "Responsable conformité",
		Actions: []string{
			"Mettre en place une veille réglementaire structurée",
			"Planifier les évaluations de conformité",
			"Définir un plan de surveillance après commercialisation",
		},
	}},
	{category: "suppliers", below: GapThreshold, rec: model.Recommendation{
		ID:              "rec_suppliers_contracts",
		Title:           "Encadrer contractuellement les fournisseurs d'IA",
		Description:     "Intégrer des clauses AI Act dans les contrats et évaluer la conformité des fournisseurs avant tout engagement.",
		AIActArticle:    "Articles 25 et 26",
		EstimatedEffort: "2 à 6 semaines",
		EstimatedCost:   "2 000 € - 6 000 €",
		Deadline:        deadlineHighRisk,
		Responsible:     "Achats / Juridique",
		Actions: []string{
			"Rédiger des clauses types AI Act",
			"Mettre en place un questionnaire de due diligence fournisseur",
		},
	}},
}

// Recommend returns the recommendations triggered for a category at the
// given compliance percentage, in rule order.
func Recommend(category string, percentage int) []model.Recommendation {
	out := []model.Recommendation{}
	for _, r := range rules {
		if r.category != category || percentage >= r.below {
			continue
		}
		rec := r.rec
		rec.Category = category
		rec.Priority = r.priority
		if rec.Priority == "" {
			rec.Priority = priorityFor(percentage)
		}
		rec.Actions = append([]string(nil), r.rec.Actions...)
		out = append(out, rec)
	}
	return out
}

func priorityFor(percentage int) model.RiskLevel {
	switch {
	case percentage < 40:
		return model.RiskCritical
	case percentage < 55:
		return model.RiskHigh
	default:
		return model.RiskMedium
	}
}
