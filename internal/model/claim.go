package model

// ScientificClaim is a falsifiable declarative statement extracted from the
// paper. SourceSectionID is a back-reference to the originating section, not
// ownership.
type ScientificClaim struct {
	ClaimID         string  `json:"claim_id"` // C1, C2, ... unique within a run
	Statement       string  `json:"statement"`
	SourceSectionID string  `json:"source_section_id"`
	Confidence      float64 `json:"confidence"`
}

// ClaimList is the full set of claims extracted from one document.
type ClaimList struct {
	Claims []ScientificClaim `json:"claims"`
}
