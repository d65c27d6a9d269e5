package store

import "time"

type PaymentIntent struct {
	MerchantReference string
	AccessToken       string
	Amount            int64
	Tier              string
	Status            string
	ReceiptID         *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
