package adapters

import (
	"github.com/fortuna-labs/report-funnel/pkg/models/domain"
	"github.com/fortuna-labs/report-funnel/pkg/models/store"
)

func MapStoreSessionToDomain(s *store.Session) *domain.Session {
	if s == nil {
		return nil
	}

	return &domain.Session{
		AccessToken: s.AccessToken,
		ProfileID:   s.ProfileID,
		Profile: domain.Profile{
			Name:      s.Name,
			Phone:     s.Phone,
			BirthDate: s.BirthDate,
			Gender:    s.Gender,
		},
		CreatedAt: s.CreatedAt,
	}
}

func MapDomainSessionToStore(s *domain.Session) *store.Session {
	return &store.Session{
		AccessToken: s.AccessToken,
		ProfileID:   s.ProfileID,
		Name:        s.Profile.Name,
		Phone:       s.Profile.Phone,
		BirthDate:   s.Profile.BirthDate,
		Gender:      s.Profile.Gender,
		CreatedAt:   s.CreatedAt,
	}
}
