package api

type CreateSessionRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birthDate"` // YYYY-MM-DD
	Gender    string `json:"gender"`
}

type VerifySessionRequest struct {
	Phone     string `json:"phone"`
	BirthDate string `json:"birthDate"`
}

type SessionResponse struct {
	AccessToken string `json:"accessToken"`
}
