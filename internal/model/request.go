package model

// Profile describes the audited organization as posted by the client.
// Every field is optional.
type Profile struct {
	Name             string `json:"name"`
	Sector           string `json:"sector"`
	Size             string `json:"size"`
	HasMultipleSites bool   `json:"hasMultipleSites"`
	SiteCount        int    `json:"siteCount,omitempty"`
}

// PostedCategoryScore is a pre-aggregated category score computed client-side.
type PostedCategoryScore struct {
	Category string  `json:"category"`
	Icon     string  `json:"icon"`
	Color    string  `json:"color"`
	Score    float64 `json:"score"`
}

// ReportRequest is the body of POST /api/audit/report.
type ReportRequest struct {
	Score          float64               `json:"score"`
	Plan           Plan                  `json:"plan"`
	Profile        *Profile              `json:"profile"`
	CategoryScores []PostedCategoryScore `json:"categoryScores"`
	HighRiskFlags  []string              `json:"highRiskFlags"`
	Answers        Answers               `json:"answers"`
	TotalQuestions int                   `json:"totalQuestions"`
	CompletedAt    string                `json:"completedAt"`
}

// ScoreRequest is the body of POST /api/audit/score.
type ScoreRequest struct {
	Plan    Plan    `json:"plan"`
	Answers Answers `json:"answers"`
}

// QuizResultRequest is the body of POST /api/quiz-results.
type QuizResultRequest struct {
	Email          string         `json:"email"`
	Answers        map[string]any `json:"answers"`
	RiskLevel      string         `json:"riskLevel"`
	RiskPercentage float64        `json:"riskPercentage"`
	Findings       []string       `json:"findings"`
}

// QuizResultResponse is the success body of POST /api/quiz-results.
type QuizResultResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	EmailID string `json:"emailId"`
}

// ServerConfig holds runtime parameters set via CLI flags.
type ServerConfig struct {
	RateLimit  float64 // requests per minute per client on the email endpoint
	RateBurst  int
	BankSource string // "embedded" or the external bank path
}
