package scoring

import (
	"github.com/fortuna-labs/report-funnel/pkg/models/domain"
)

// Pillar contributions in raw weight points. The year pillar dominates, the
// hour pillar refines.
var pillarWeights = [4]float64{34, 26, 24, 16}

// Derive computes the five raw element weights and the four sub-scores for a
// profile. The derivation is deterministic and synchronous: the same birth
// data always yields the same basic report, with no dependency on the
// generation backend.
func Derive(profile domain.Profile) (domain.ElementScores, domain.SubScores) {
	bd := profile.BirthDate
	pillars := [4]int{
		bd.Year() % 10,
		int(bd.Month()),
		bd.Day(),
		bd.Hour() / 2,
	}

	raw := make([]float64, len(domain.Elements))
	for p, v := range pillars {
		idx := (v + p*3) % len(domain.Elements)
		raw[idx] += pillarWeights[p]

		// A pillar bleeds a fraction of its weight into the neighbouring
		// element, so distributions are rarely flat.
		next := (idx + 1) % len(domain.Elements)
		raw[next] += pillarWeights[p] * float64(v%4) / 10
	}

	normalized := Normalize(raw)
	scores := domain.ElementScores{}
	for i, e := range domain.Elements {
		scores[e] = normalized[i]
	}

	sub := domain.SubScores{
		Wealth: 40 + (bd.Day()*7+int(bd.Month())*5)%55,
		Love:   35 + (bd.Day()*11+bd.Year()%100*3)%60,
		Career: 45 + (int(bd.Month())*9+bd.Year()%100*2)%50,
		Health: 50 + (bd.Day()*5+bd.Hour()*7)%45,
	}
	return scores, sub
}
