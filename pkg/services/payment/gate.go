// Package payment gates the funnel on settled money. Intents are opened
// idempotently per (token, tier); settlement is always verified server-side
// against the gateway, never taken from a client-supplied success flag.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fortuna-labs/report-funnel/pkg/adapters"
	"github.com/fortuna-labs/report-funnel/pkg/gateway"
	"github.com/fortuna-labs/report-funnel/pkg/models/domain"
	"github.com/fortuna-labs/report-funnel/pkg/services/session"
	paymentstore "github.com/fortuna-labs/report-funnel/pkg/store/duckdb/payment"
	reportstore "github.com/fortuna-labs/report-funnel/pkg/store/duckdb/report"
)

type Gate interface {
	// CreateIntent returns a merchant reference for the purchase attempt.
	// Calling it again for the same (token, tier) while a pending intent
	// exists returns that intent instead of opening a second chargeable
	// one.
	CreateIntent(ctx context.Context, accessToken string, amount int64, tier domain.ProductTier) (string, error)
	// Verify checks settlement with the gateway and promotes the intent.
	// The client-reported outcome is only the hint that made the caller
	// invoke this; the receipt lookup is the proof.
	Verify(ctx context.Context, externalReceiptID, merchantReference string) (*domain.PaymentIntent, error)
}

type gate struct {
	sessions session.Service
	intents  paymentstore.Store
	reports  reportstore.Store
	gateway  gateway.Client
}

func NewGate(
	sessions session.Service,
	intents paymentstore.Store,
	reports reportstore.Store,
	gw gateway.Client,
) Gate {
	return &gate{
		sessions: sessions,
		intents:  intents,
		reports:  reports,
		gateway:  gw,
	}
}

func (g *gate) CreateIntent(
	ctx context.Context,
	accessToken string,
	amount int64,
	tier domain.ProductTier,
) (string, error) {
	if tier != domain.TierBasic && tier != domain.TierPremium {
		return "", &domain.ValidationError{Field: "tier", Reason: "must be basic or premium"}
	}
	if amount <= 0 {
		return "", &domain.ValidationError{Field: "amount", Reason: "must be positive"}
	}

	sess, err := g.sessions.Resolve(ctx, accessToken)
	if err != nil {
		return "", err
	}

	if tier == domain.TierPremium {
		// Premium is an add-on on the same session, not a standalone
		// purchase path.
		basicPaid, err := g.intents.HasVerified(ctx, sess.AccessToken, string(domain.TierBasic))
		if err != nil {
			return "", fmt.Errorf("failed to check base payment: %w", err)
		}
		if !basicPaid {
			return "", &domain.ValidationError{Field: "tier", Reason: "premium requires a verified basic purchase"}
		}
	}

	pending, err := g.intents.FindPending(ctx, sess.AccessToken, string(tier))
	if err == nil {
		zerolog.Ctx(ctx).Info().
			Str("merchant_reference", pending.MerchantReference).
			Msg("reusing pending payment intent")
		return pending.MerchantReference, nil
	}
	if !errors.Is(err, paymentstore.ErrNotFound) {
		return "", fmt.Errorf("failed to look up pending intent: %w", err)
	}

	now := time.Now().UTC()
	intent := &domain.PaymentIntent{
		MerchantReference: "mr-" + uuid.NewString(),
		AccessToken:       sess.AccessToken,
		Amount:            amount,
		Tier:              tier,
		Status:            domain.IntentPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = g.gateway.RegisterIntent(ctx, gateway.ChargeRequest{
		MerchantReference: intent.MerchantReference,
		Amount:            intent.Amount,
		Tier:              string(intent.Tier),
	})
	if err != nil {
		return "", err
	}

	if err := g.intents.Create(ctx, adapters.MapDomainIntentToStore(intent)); err != nil {
		return "", fmt.Errorf("failed to persist payment intent: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("merchant_reference", intent.MerchantReference).
		Str("tier", string(tier)).
		Msg("payment intent created")

	return intent.MerchantReference, nil
}

func (g *gate) Verify(ctx context.Context, externalReceiptID, merchantReference string) (*domain.PaymentIntent, error) {
	if merchantReference == "" {
		return nil, &domain.ValidationError{Field: "merchantReference", Reason: "required"}
	}
	if externalReceiptID == "" {
		return nil, &domain.ValidationError{Field: "externalReceiptId", Reason: "required"}
	}

	record, err := g.intents.GetByReference(ctx, merchantReference)
	if errors.Is(err, paymentstore.ErrNotFound) {
		return nil, &domain.PaymentError{MerchantReference: merchantReference, Reason: "unknown merchant reference"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payment intent: %w", err)
	}

	intent := adapters.MapStoreIntentToDomain(record)
	switch intent.Status {
	case domain.IntentVerified:
		// Already settled; verified intents are immutable.
		return intent, nil
	case domain.IntentFailed:
		return nil, &domain.PaymentError{MerchantReference: merchantReference, Reason: "payment already failed"}
	}

	receipt, err := g.gateway.LookupReceipt(ctx, externalReceiptID)
	if errors.Is(err, gateway.ErrReceiptNotFound) {
		return g.fail(ctx, intent, "no settlement found for receipt")
	}
	if err != nil {
		// Transient lookup failure: the intent stays pending, the caller
		// may retry verification.
		return nil, err
	}

	if !receipt.Settled() {
		return g.fail(ctx, intent, "gateway reported settlement failure")
	}
	if receipt.MerchantReference != intent.MerchantReference {
		return g.fail(ctx, intent, "receipt does not match merchant reference")
	}
	if receipt.Amount != intent.Amount {
		return g.fail(ctx, intent, "settled amount does not match intent")
	}

	if err := g.intents.MarkVerified(ctx, intent.MerchantReference, receipt.ReceiptID); err != nil {
		return nil, fmt.Errorf("failed to mark intent verified: %w", err)
	}

	// The report row may not exist yet when payment lands before the first
	// basic-report read; the flags are re-derived from intents there.
	err = g.reports.SetPaid(ctx, intent.AccessToken, intent.Tier == domain.TierPremium)
	if err != nil && !errors.Is(err, reportstore.ErrNotFound) {
		return nil, fmt.Errorf("failed to update report paid flags: %w", err)
	}

	intent.Status = domain.IntentVerified
	intent.ReceiptID = &receipt.ReceiptID

	zerolog.Ctx(ctx).Info().
		Str("merchant_reference", intent.MerchantReference).
		Str("tier", string(intent.Tier)).
		Msg("payment verified")

	return intent, nil
}

func (g *gate) fail(ctx context.Context, intent *domain.PaymentIntent, reason string) (*domain.PaymentIntent, error) {
	if err := g.intents.MarkFailed(ctx, intent.MerchantReference); err != nil {
		return nil, fmt.Errorf("failed to mark intent failed: %w", err)
	}

	zerolog.Ctx(ctx).Warn().
		Str("merchant_reference", intent.MerchantReference).
		Str("reason", reason).
		Msg("payment verification failed")

	return nil, &domain.PaymentError{MerchantReference: intent.MerchantReference, Reason: reason}
}
