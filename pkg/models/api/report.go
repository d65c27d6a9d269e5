package api

type GenerateRequest struct {
	AccessToken string `json:"accessToken"`
}

type GenerateResponse struct {
	Accepted bool   `json:"accepted"`
	State    string `json:"state"`
}

type ReportStatusResponse struct {
	IsCompleted    bool   `json:"isCompleted"`
	State          string `json:"state"`
	Progress       int    `json:"progress"`
	ElapsedSeconds int    `json:"elapsedSeconds"`
}

type SubScores struct {
	Wealth int `json:"wealth"`
	Love   int `json:"love"`
	Career int `json:"career"`
	Health int `json:"health"`
}

// ReportResponse is the reveal-filtered view of a report. Premium sections
// are omitted entirely while locked or generating, never sent masked.
type ReportResponse struct {
	State           string            `json:"state"`
	ElementScores   map[string]int    `json:"elementScores,omitempty"`
	SubScores       *SubScores        `json:"subScores,omitempty"`
	PremiumSections map[string]string `json:"premiumSections,omitempty"`
	IsPaid          bool              `json:"isPaid"`
	IsPremiumPaid   bool              `json:"isPremiumPaid"`
}
