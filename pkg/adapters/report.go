package adapters

import (
	"encoding/json"
	"fmt"

	"github.com/fortuna-labs/report-funnel/pkg/models/domain"
	"github.com/fortuna-labs/report-funnel/pkg/models/store"
)

func MapStoreReportToDomain(r *store.Report) (*domain.Report, error) {
	if r == nil {
		return nil, nil
	}

	sections := map[string]string{}
	if r.SectionsJSON != "" {
		if err := json.Unmarshal([]byte(r.SectionsJSON), &sections); err != nil {
			return nil, fmt.Errorf("failed to decode premium sections: %w", err)
		}
	}

	return &domain.Report{
		AccessToken: r.AccessToken,
		Elements: domain.ElementScores{
			domain.ElementWood:  r.Wood,
			domain.ElementFire:  r.Fire,
			domain.ElementEarth: r.Earth,
			domain.ElementMetal: r.Metal,
			domain.ElementWater: r.Water,
		},
		SubScores: domain.SubScores{
			Wealth: r.Wealth,
			Love:   r.Love,
			Career: r.Career,
			Health: r.Health,
		},
		PremiumSections: sections,
		IsPaid:          r.IsPaid,
		IsPremiumPaid:   r.IsPremiumPaid,
		GeneratedAt:     r.GeneratedAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}, nil
}

func MapDomainReportToStore(r *domain.Report) (*store.Report, error) {
	sectionsJSON := ""
	if len(r.PremiumSections) > 0 {
		raw, err := json.Marshal(r.PremiumSections)
		if err != nil {
			return nil, fmt.Errorf("failed to encode premium sections: %w", err)
		}
		sectionsJSON = string(raw)
	}

	return &store.Report{
		AccessToken:   r.AccessToken,
		Wood:          r.Elements[domain.ElementWood],
		Fire:          r.Elements[domain.ElementFire],
		Earth:         r.Elements[domain.ElementEarth],
		Metal:         r.Elements[domain.ElementMetal],
		Water:         r.Elements[domain.ElementWater],
		Wealth:        r.SubScores.Wealth,
		Love:          r.SubScores.Love,
		Career:        r.SubScores.Career,
		Health:        r.SubScores.Health,
		SectionsJSON:  sectionsJSON,
		IsPaid:        r.IsPaid,
		IsPremiumPaid: r.IsPremiumPaid,
		GeneratedAt:   r.GeneratedAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}, nil
}
