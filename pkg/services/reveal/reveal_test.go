package reveal

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/fortuna-labs/report-funnel/pkg/models/domain"
)

func testCtx() context.Context {
	logger := zerolog.Nop()
	return logger.WithContext(context.Background())
}

func TestDerive_UnpaidStaysLocked(t *testing.T) {
	// Even with generated content present, no payment means no reveal.
	out := Derive(testCtx(), domain.RevealInput{
		IsPaid:         false,
		HasBasicData:   true,
		HasPremiumData: true,
	})

	assert.Equal(t, domain.RevealLocked, out.State)
	assert.False(t, out.ShowBasicScores)
	assert.False(t, out.ShowPremiumText)
	assert.False(t, out.ShowEngraving)
}

func TestDerive_PaidWithoutContentIsGenerating(t *testing.T) {
	out := Derive(testCtx(), domain.RevealInput{
		IsPaid:       true,
		HasBasicData: true,
	})

	assert.Equal(t, domain.RevealGenerating, out.State)
	assert.True(t, out.ShowBasicScores)
	assert.False(t, out.ShowPremiumText)
}

func TestDerive_PaidWithContentIsUnlocked(t *testing.T) {
	out := Derive(testCtx(), domain.RevealInput{
		IsPaid:         true,
		HasBasicData:   true,
		HasPremiumData: true,
	})

	assert.Equal(t, domain.RevealUnlocked, out.State)
	assert.True(t, out.ShowBasicScores)
	assert.True(t, out.ShowPremiumText)
}

func TestDerive_EngravingRequiresPremiumAddOn(t *testing.T) {
	out := Derive(testCtx(), domain.RevealInput{
		IsPaid:         true,
		IsPremiumPaid:  true,
		HasBasicData:   true,
		HasPremiumData: true,
	})

	assert.True(t, out.ShowEngraving)
}

func TestDerive_PremiumWithoutBaseIsViolation(t *testing.T) {
	out := Derive(testCtx(), domain.RevealInput{
		IsPremiumPaid:  true,
		HasBasicData:   true,
		HasPremiumData: true,
	})

	assert.True(t, out.InvariantViolation)
	assert.Equal(t, domain.RevealLocked, out.State)
	assert.False(t, out.ShowEngraving)
}

// Once a section is visible, inputs reachable by paying more or completing
// more generation never hide it again.
func TestDerive_RevealIsMonotonic(t *testing.T) {
	ctx := testCtx()

	le := func(a, b domain.RevealInput) bool {
		implies := func(x, y bool) bool { return !x || y }
		return implies(a.IsPaid, b.IsPaid) &&
			implies(a.IsPremiumPaid, b.IsPremiumPaid) &&
			implies(a.HasBasicData, b.HasBasicData) &&
			implies(a.HasPremiumData, b.HasPremiumData)
	}

	var inputs []domain.RevealInput
	for mask := 0; mask < 16; mask++ {
		in := domain.RevealInput{
			IsPaid:         mask&1 != 0,
			IsPremiumPaid:  mask&2 != 0,
			HasBasicData:   mask&4 != 0,
			HasPremiumData: mask&8 != 0,
		}
		// Skip the invariant-violating corner; it is not a reachable state.
		if in.IsPremiumPaid && !in.IsPaid {
			continue
		}
		inputs = append(inputs, in)
	}

	for _, from := range inputs {
		for _, to := range inputs {
			if !le(from, to) {
				continue
			}
			a := Derive(ctx, from)
			b := Derive(ctx, to)
			assert.False(t, a.ShowBasicScores && !b.ShowBasicScores,
				"basic hidden again: %+v -> %+v", from, to)
			assert.False(t, a.ShowPremiumText && !b.ShowPremiumText,
				"premium hidden again: %+v -> %+v", from, to)
			assert.False(t, a.ShowEngraving && !b.ShowEngraving,
				"engraving hidden again: %+v -> %+v", from, to)
		}
	}
}
