package domain

import "time"

type ProductTier string

const (
	TierBasic   ProductTier = "basic"
	TierPremium ProductTier = "premium"
)

type IntentStatus string

const (
	IntentPending  IntentStatus = "pending"
	IntentVerified IntentStatus = "verified"
	IntentFailed   IntentStatus = "failed"
)

// PaymentIntent records one purchase attempt. The merchant reference is
// generated on our side before the gateway ever sees the charge; the intent
// is immutable once verified.
type PaymentIntent struct {
	MerchantReference string
	AccessToken       string
	Amount            int64
	Tier              ProductTier
	Status            IntentStatus
	ReceiptID         *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
