package model

import "strings"

// AssumptionType classifies an implicit premise underlying a claim.
type AssumptionType string

const (
	AssumptionData       AssumptionType = "data"
	AssumptionModel      AssumptionType = "model"
	AssumptionEvaluation AssumptionType = "evaluation"
)

// ParseAssumptionType validates a raw type string against the closed set.
func ParseAssumptionType(raw string) (AssumptionType, bool) {
	switch AssumptionType(strings.ToLower(strings.TrimSpace(raw))) {
	case AssumptionData:
		return AssumptionData, true
	case AssumptionModel:
		return AssumptionModel, true
	case AssumptionEvaluation:
		return AssumptionEvaluation, true
	}
	return "", false
}

// Assumption is an implicit premise the paper relies on without stating it.
type Assumption struct {
	Type       AssumptionType `json:"type"`
	Statement  string         `json:"statement"`
	Confidence float64        `json:"confidence"`
}

// ClaimAssumptions binds a claim to its mined assumptions.
type ClaimAssumptions struct {
	ClaimID     string       `json:"claim_id"`
	Assumptions []Assumption `json:"assumptions"`
}

// AssumptionLedger records assumptions per claim. Claims where nothing was
// mined are absent.
type AssumptionLedger struct {
	Ledger []ClaimAssumptions `json:"ledger"`
}

// AssumptionsFor returns the assumptions recorded for a claim, or nil.
func (l *AssumptionLedger) AssumptionsFor(claimID string) []Assumption {
	for _, entry := range l.Ledger {
		if entry.ClaimID == claimID {
			return entry.Assumptions
		}
	}
	return nil
}
