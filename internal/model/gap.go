package model

// GapSignal is a non-judgmental critique point about the claim/evidence/
// assumption triad.
type GapSignal struct {
	Signal string `json:"signal"`
}

// ClaimGaps binds a claim to the gap signals found for it.
type ClaimGaps struct {
	ClaimID string      `json:"claim_id"`
	Signals []GapSignal `json:"signals"`
}

// GapAnalysis records gap signals per claim, only for claims where signals
// exist.
type GapAnalysis struct {
	Analysis []ClaimGaps `json:"analysis"`
}

// SignalsFor returns the gap signals recorded for a claim, or nil.
func (a *GapAnalysis) SignalsFor(claimID string) []GapSignal {
	for _, entry := range a.Analysis {
		if entry.ClaimID == claimID {
			return entry.Signals
		}
	}
	return nil
}

// ValidationQuestion is a constructive research question synthesized from
// gap signals.
type ValidationQuestion struct {
	Question string `json:"question"`
}

// ClaimValidation binds a claim to its validation questions.
type ClaimValidation struct {
	ClaimID   string               `json:"claim_id"`
	Questions []ValidationQuestion `json:"questions"`
}

// ValidationReport records validation questions per claim, generated only
// from claims that had gap signals.
type ValidationReport struct {
	Report []ClaimValidation `json:"report"`
}
