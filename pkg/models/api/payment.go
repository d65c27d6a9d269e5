package api

type CreateIntentRequest struct {
	AccessToken string `json:"accessToken"`
	Amount      int64  `json:"amount"`
	Tier        string `json:"tier"`
}

type CreateIntentResponse struct {
	MerchantReference string `json:"merchantReference"`
}

type VerifyPaymentRequest struct {
	ExternalReceiptID string `json:"externalReceiptId"`
	MerchantReference string `json:"merchantReference"`
}

type VerifyPaymentResponse struct {
	Status      string `json:"status"`
	AccessToken string `json:"accessToken"`
	IsPremium   bool   `json:"isPremium"`
}
