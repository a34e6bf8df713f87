package model

import "strings"

// EvidenceType classifies how a snippet supports a claim.
type EvidenceType string

const (
	EvidenceQuantitative EvidenceType = "quantitative"
	EvidenceQualitative  EvidenceType = "qualitative"
	EvidenceTheoretical  EvidenceType = "theoretical"
	EvidenceNone         EvidenceType = "none"
)

// NormalizeEvidenceType maps a raw type string onto the closed evidence
// set. Unrecognized values become EvidenceNone, which carries no
// evidential weight and is excluded from aggregation.
func NormalizeEvidenceType(raw string) EvidenceType {
	switch EvidenceType(strings.ToLower(strings.TrimSpace(raw))) {
	case EvidenceQuantitative:
		return EvidenceQuantitative
	case EvidenceQualitative:
		return EvidenceQualitative
	case EvidenceTheoretical:
		return EvidenceTheoretical
	}
	return EvidenceNone
}

// EvidenceLink is one textual span relevant to a claim.
type EvidenceLink struct {
	SectionID string       `json:"section_id"` // back-reference to a Section
	Type      EvidenceType `json:"type"`
	Snippet   string       `json:"snippet"`
	Notes     string       `json:"notes,omitempty"`
}

// ClaimEvidencePair binds a claim to its ordered evidence list.
type ClaimEvidencePair struct {
	ClaimID  string         `json:"claim_id"`
	Evidence []EvidenceLink `json:"evidence"`
}

// EvidenceGraph maps every claim to its evidence. Every claim gets an entry;
// claims with nothing found carry an empty list.
type EvidenceGraph struct {
	Links []ClaimEvidencePair `json:"links"`
}

// EvidenceFor returns the evidence recorded for a claim, or nil.
func (g *EvidenceGraph) EvidenceFor(claimID string) []EvidenceLink {
	for _, pair := range g.Links {
		if pair.ClaimID == claimID {
			return pair.Evidence
		}
	}
	return nil
}
