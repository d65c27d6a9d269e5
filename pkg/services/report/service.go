// Package report assembles the funnel deliverable: synchronous basic scores,
// payment facts from the intent ledger, and whatever premium content the
// generation job has merged in so far.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fortuna-labs/report-funnel/pkg/adapters"
	"github.com/fortuna-labs/report-funnel/pkg/models/domain"
	"github.com/fortuna-labs/report-funnel/pkg/models/store"
	"github.com/fortuna-labs/report-funnel/pkg/services/reveal"
	"github.com/fortuna-labs/report-funnel/pkg/services/scoring"
	paymentstore "github.com/fortuna-labs/report-funnel/pkg/store/duckdb/payment"
	reportstore "github.com/fortuna-labs/report-funnel/pkg/store/duckdb/report"
)

type Service interface {
	// EnsureBasic returns the report for a session, deriving and storing
	// the basic scores on first access. The fast path: no generation
	// dependency, safe to call any number of times.
	EnsureBasic(ctx context.Context, sess *domain.Session) (*domain.Report, error)
	// View returns the report together with its reveal decision.
	View(ctx context.Context, sess *domain.Session) (*domain.Report, domain.Reveal, error)
	// MergeGenerated adds premium sections produced by the generation
	// backend. Sections only accumulate; nothing is overwritten or
	// removed.
	MergeGenerated(ctx context.Context, accessToken string, sections map[string]string) error
	// Completed reports whether generated content is present for the
	// token.
	Completed(ctx context.Context, accessToken string) (bool, error)
}

type service struct {
	reports reportstore.Store
	intents paymentstore.Store
}

func NewService(reports reportstore.Store, intents paymentstore.Store) Service {
	return &service{reports: reports, intents: intents}
}

func (s *service) EnsureBasic(ctx context.Context, sess *domain.Session) (*domain.Report, error) {
	record, err := s.reports.Get(ctx, sess.AccessToken)
	if err == nil {
		return s.withPaymentFacts(ctx, record)
	}
	if !errors.Is(err, reportstore.ErrNotFound) {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	elements, sub := scoring.Derive(sess.Profile)
	now := time.Now().UTC()
	rep := &domain.Report{
		AccessToken: sess.AccessToken,
		Elements:    elements,
		SubScores:   sub,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	stored, err := adapters.MapDomainReportToStore(rep)
	if err != nil {
		return nil, err
	}
	if err := s.reports.Create(ctx, stored); err != nil {
		return nil, fmt.Errorf("failed to persist basic report: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("profile_id", sess.ProfileID).
		Msg("basic report derived")

	return s.withPaymentFacts(ctx, stored)
}

func (s *service) View(ctx context.Context, sess *domain.Session) (*domain.Report, domain.Reveal, error) {
	rep, err := s.EnsureBasic(ctx, sess)
	if err != nil {
		return nil, domain.Reveal{}, err
	}

	decision := reveal.Derive(ctx, domain.RevealInput{
		IsPaid:         rep.IsPaid,
		IsPremiumPaid:  rep.IsPremiumPaid,
		HasBasicData:   true,
		HasPremiumData: rep.HasPremium(),
	})
	return rep, decision, nil
}

func (s *service) MergeGenerated(ctx context.Context, accessToken string, sections map[string]string) error {
	if err := s.reports.MergeSections(ctx, accessToken, sections); err != nil {
		return fmt.Errorf("failed to merge generated sections: %w", err)
	}
	return nil
}

func (s *service) Completed(ctx context.Context, accessToken string) (bool, error) {
	record, err := s.reports.Get(ctx, accessToken)
	if errors.Is(err, reportstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load report: %w", err)
	}
	return record.SectionsJSON != "", nil
}

// withPaymentFacts overlays the intent ledger onto the stored paid flags.
// The ledger is authoritative; the stored flags are a cache that may lag
// when payment verifies before the report row exists. The overlay only ever
// raises flags, so the result stays monotonic.
func (s *service) withPaymentFacts(ctx context.Context, record *store.Report) (*domain.Report, error) {
	rep, err := adapters.MapStoreReportToDomain(record)
	if err != nil {
		return nil, err
	}

	if !rep.IsPaid {
		paid, err := s.intents.HasVerified(ctx, rep.AccessToken, string(domain.TierBasic))
		if err != nil {
			return nil, fmt.Errorf("failed to check basic payment: %w", err)
		}
		rep.IsPaid = paid
	}
	if !rep.IsPremiumPaid {
		paid, err := s.intents.HasVerified(ctx, rep.AccessToken, string(domain.TierPremium))
		if err != nil {
			return nil, fmt.Errorf("failed to check premium payment: %w", err)
		}
		rep.IsPremiumPaid = paid
	}
	return rep, nil
}
