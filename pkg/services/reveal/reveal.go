// Package reveal decides which report sections may be shown. The decision is
// a total function over the payment and generation facts: it never errors and
// never consults hidden state, so rerunning it after any state change always
// yields a fresh answer.
package reveal

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/fortuna-labs/report-funnel/pkg/models/domain"
)

// Derive computes the visibility decision for one report.
//
// Rules in priority order: unpaid readers get preview content only; paid
// readers without generated content see basic scores plus a generating
// placeholder; paid readers with generated content see everything their tier
// covers. Premium add-on state without base payment is an upstream bug: it is
// logged and treated as unpaid rather than honored.
func Derive(ctx context.Context, in domain.RevealInput) domain.Reveal {
	out := domain.Reveal{State: domain.RevealLocked}

	if in.IsPremiumPaid && !in.IsPaid {
		zerolog.Ctx(ctx).Warn().
			Bool("is_paid", in.IsPaid).
			Bool("is_premium_paid", in.IsPremiumPaid).
			Msg("premium add-on recorded without base payment")
		out.InvariantViolation = true
		in.IsPremiumPaid = false
	}

	if !in.IsPaid {
		return out
	}

	out.ShowBasicScores = in.HasBasicData
	out.ShowEngraving = in.IsPremiumPaid

	if !in.HasPremiumData {
		out.State = domain.RevealGenerating
		return out
	}

	out.State = domain.RevealUnlocked
	out.ShowPremiumText = true
	return out
}
