package report

import (
	"github.com/aiact-formation/auditor/internal/model"
)

// Term is a glossary entry.
type Term struct {
	Term       string
	Definition string
}

var glossary = []Term{
	{"AI Act", "Règlement (UE) 2024/1689 établissant des règles harmonisées concernant l'intelligence artificielle."},
	{"Système d'IA", "Système automatisé conçu pour fonctionner à différents niveaux d'autonomie et capable de générer des prédictions, contenus, recommandations ou décisions."},
	{"Fournisseur", "Personne ou organisation qui développe un système d'IA et le met sur le marché sous son propre nom."},
	{"Déployeur", "Personne ou organisation qui utilise un système d'IA sous sa propre autorité dans un cadre professionnel."},
	{"Haut risque", "Système d'IA relevant de l'annexe I ou de l'annexe III, soumis aux exigences les plus strictes du règlement."},
	{"Pratique interdite", "Usage de l'IA prohibé par l'article 5, comme la notation sociale ou la manipulation subliminale."},
	{"Marquage CE", "Marquage attestant de la conformité d'un système à haut risque aux exigences du règlement."},
	{"Littératie IA", "Compétences et connaissances permettant de déployer et d'utiliser des systèmes d'IA en connaissance de cause."},
}

var references = []string{
	"Règlement (UE) 2024/1689 du 13 juin 2024 (AI Act), Journal officiel de l'Union européenne",
	"Article 4 : maîtrise de l'IA",
	"Article 5 : pratiques d'IA interdites",
	"Articles 6 et 7, annexe III : classification des systèmes à haut risque",
	"Articles 9 à 15 : exigences applicables aux systèmes à haut risque",
	"Article 17 : système de gestion de la qualité",
	"Article 50 : obligations de transparence",
	"Article 73 : signalement des incidents graves",
	"Article 99 : sanctions",
}

var nextSteps = []string{
	"Présenter ce rapport à la direction et désigner un responsable de la conformité IA",
	"Traiter en priorité les points critiques identifiés",
	"Compléter le registre des systèmes d'IA",
	"Planifier la formation des équipes concernées",
	"Engager les chantiers du plan d'action selon le calendrier proposé",
	"Programmer une nouvelle évaluation dans six mois",
}

var checklist = []string{
	"Registre des systèmes d'IA établi et à jour",
	"Classification des risques documentée pour chaque système",
	"Absence de pratique interdite vérifiée",
	"Responsable de la conformité IA désigné",
	"Politique d'utilisation de l'IA diffusée",
	"Documentation technique disponible pour les systèmes à haut risque",
	"Journalisation des événements activée",
	"Programme de formation à l'IA déployé",
	"Mentions de transparence affichées",
	"Supervision humaine organisée",
	"Tests de robustesse et de cybersécurité réalisés",
	"Procédure de signalement des incidents rédigée",
	"Clauses AI Act intégrées aux contrats fournisseurs",
}

// Checklist returns the compliance checklist items.
func Checklist() []string {
	return append([]string(nil), checklist...)
}

// Month is one step of the six-month action plan.
type Month struct {
	N       int
	Title   string
	Actions []string
}

var months = []Month{
	{1, "Mobilisation et urgences", []string{"Désigner le responsable de la conformité IA", "Suspendre les pratiques potentiellement interdites"}},
	{2, "Inventaire et classification", []string{"Finaliser le registre des systèmes d'IA", "Classifier chaque système selon son niveau de risque"}},
	{3, "Gouvernance et documentation", []string{"Adopter la politique d'utilisation de l'IA", "Lancer la rédaction de la documentation technique"}},
	{4, "Formation et transparence", []string{"Déployer le programme de littératie IA", "Mettre en place les mentions d'information"}},
	{5, "Supervision et sécurité", []string{"Organiser la supervision humaine", "Conduire les tests de robustesse"}},
	{6, "Contrôle et amélioration continue", []string{"Réaliser un audit interne", "Mettre à jour les contrats fournisseurs"}},
}

// ActionPlan returns the six-month plan. Critical recommendations are
// scheduled first, high ones in the second month.
func ActionPlan(recs []model.Recommendation) []Month {
	out := make([]Month, len(months))
	for i, m := range months {
		m.Actions = append([]string(nil), m.Actions...)
		out[i] = m
	}
	for _, r := range recs {
		switch r.Priority {
		case model.RiskCritical:
			out[0].Actions = append(out[0].Actions, r.Title)
		case model.RiskHigh:
			out[1].Actions = append(out[1].Actions, r.Title)
		}
	}
	return out
}
