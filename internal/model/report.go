package model

// AnalysisReport is the terminal output of one pipeline run: the serialized
// form of every stage's output, assembled by the orchestrator.
type AnalysisReport struct {
	Doc         Document         `json:"doc"`
	Rhetoric    RhetoricalMap    `json:"rhetoric"`
	Claims      ClaimList        `json:"claims"`
	Evidence    EvidenceGraph    `json:"evidence"`
	Assumptions AssumptionLedger `json:"assumptions"`
	Gaps        GapAnalysis      `json:"gaps"`
	Validation  ValidationReport `json:"validation"`
}
