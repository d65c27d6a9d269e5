package domain

type RevealState string

const (
	RevealLocked     RevealState = "locked"
	RevealGenerating RevealState = "generating"
	RevealUnlocked   RevealState = "unlocked"
)

// RevealInput is the full set of facts the reveal decision depends on.
type RevealInput struct {
	IsPaid         bool
	IsPremiumPaid  bool
	HasBasicData   bool
	HasPremiumData bool
}

// Reveal is the derived visibility decision for a report. It carries no
// report content, only which parts of it may be shown.
type Reveal struct {
	State              RevealState
	ShowBasicScores    bool
	ShowPremiumText    bool
	ShowEngraving      bool
	InvariantViolation bool
}
