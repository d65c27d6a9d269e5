package adapters

import (
	"github.com/fortuna-labs/report-funnel/pkg/models/domain"
	"github.com/fortuna-labs/report-funnel/pkg/models/store"
)

func MapStoreIntentToDomain(i *store.PaymentIntent) *domain.PaymentIntent {
	if i == nil {
		return nil
	}

	return &domain.PaymentIntent{
		MerchantReference: i.MerchantReference,
		AccessToken:       i.AccessToken,
		Amount:            i.Amount,
		Tier:              domain.ProductTier(i.Tier),
		Status:            domain.IntentStatus(i.Status),
		ReceiptID:         i.ReceiptID,
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
	}
}

func MapDomainIntentToStore(i *domain.PaymentIntent) *store.PaymentIntent {
	return &store.PaymentIntent{
		MerchantReference: i.MerchantReference,
		AccessToken:       i.AccessToken,
		Amount:            i.Amount,
		Tier:              string(i.Tier),
		Status:            string(i.Status),
		ReceiptID:         i.ReceiptID,
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
	}
}
