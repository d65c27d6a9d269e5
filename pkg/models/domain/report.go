package domain

import "time"

// Element is one of the five weight categories of a reading.
type Element string

const (
	ElementWood  Element = "wood"
	ElementFire  Element = "fire"
	ElementEarth Element = "earth"
	ElementMetal Element = "metal"
	ElementWater Element = "water"
)

// Elements lists the five categories in canonical order. Normalization and
// storage both rely on this order being stable.
var Elements = []Element{ElementWood, ElementFire, ElementEarth, ElementMetal, ElementWater}

// ElementScores are the five integer category weights. They sum to exactly
// 100 for any input distribution.
type ElementScores map[Element]int

func (s ElementScores) Sum() int {
	total := 0
	for _, e := range Elements {
		total += s[e]
	}
	return total
}

// SubScores are the four numeric sub-scores shipped with the basic report.
type SubScores struct {
	Wealth int
	Love   int
	Career int
	Health int
}

// Report is the funnel deliverable. Fields are only ever added: basic scores
// are populated synchronously at creation, premium sections are merged in
// once the generation job completes, and no populated field is ever unset.
type Report struct {
	AccessToken     string
	Elements        ElementScores
	SubScores       SubScores
	PremiumSections map[string]string
	IsPaid          bool
	IsPremiumPaid   bool
	GeneratedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasPremium reports whether generated premium content is present, which by
// invariant is true exactly when the generation job has completed.
func (r *Report) HasPremium() bool {
	return len(r.PremiumSections) > 0
}
