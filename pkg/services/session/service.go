// Package session issues and resolves the opaque capability tokens that
// stand in for accounts. Possession of a token is the only authorization the
// funnel knows about.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fortuna-labs/report-funnel/pkg/adapters"
	"github.com/fortuna-labs/report-funnel/pkg/models/domain"
	sessionstore "github.com/fortuna-labs/report-funnel/pkg/store/duckdb/session"
)

type Service interface {
	// Issue creates a session for one profile submission and returns it
	// with the freshly minted token. Callers must thread the returned
	// token through the rest of the flow instead of reading it back from
	// shared state later.
	Issue(ctx context.Context, profile domain.Profile) (*domain.Session, error)
	Resolve(ctx context.Context, accessToken string) (*domain.Session, error)
	// Recover re-derives a session from profile attributes the user can
	// re-enter, the fallback when a token was lost.
	Recover(ctx context.Context, phone string, birthDate time.Time) (*domain.Session, error)
	List(ctx context.Context) ([]*domain.Session, error)
}

type service struct {
	sessions sessionstore.Store
}

func NewService(sessions sessionstore.Store) Service {
	return &service{sessions: sessions}
}

func (s *service) Issue(ctx context.Context, profile domain.Profile) (*domain.Session, error) {
	if profile.Phone == "" {
		return nil, &domain.ValidationError{Field: "phone", Reason: "required"}
	}
	if profile.BirthDate.IsZero() {
		return nil, &domain.ValidationError{Field: "birthDate", Reason: "required"}
	}

	sess := &domain.Session{
		AccessToken: uuid.NewString(),
		ProfileID:   uuid.NewString(),
		Profile:     profile,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.sessions.Create(ctx, adapters.MapDomainSessionToStore(sess)); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("profile_id", sess.ProfileID).
		Msg("session issued")

	return sess, nil
}

func (s *service) Resolve(ctx context.Context, accessToken string) (*domain.Session, error) {
	if accessToken == "" {
		return nil, &domain.ValidationError{Field: "accessToken", Reason: "required"}
	}

	record, err := s.sessions.Get(ctx, accessToken)
	if errors.Is(err, sessionstore.ErrNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return adapters.MapStoreSessionToDomain(record), nil
}

func (s *service) Recover(ctx context.Context, phone string, birthDate time.Time) (*domain.Session, error) {
	if phone == "" {
		return nil, &domain.ValidationError{Field: "phone", Reason: "required"}
	}
	if birthDate.IsZero() {
		return nil, &domain.ValidationError{Field: "birthDate", Reason: "required"}
	}

	record, err := s.sessions.FindByIdentity(ctx, phone, birthDate)
	if errors.Is(err, sessionstore.ErrNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to recover session: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("profile_id", record.ProfileID).
		Msg("session recovered from identity")

	return adapters.MapStoreSessionToDomain(record), nil
}

func (s *service) List(ctx context.Context) ([]*domain.Session, error) {
	records, err := s.sessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]*domain.Session, 0, len(records))
	for _, record := range records {
		sessions = append(sessions, adapters.MapStoreSessionToDomain(record))
	}
	return sessions, nil
}
