package stage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/scarflab/scarf/internal/model"
)

func TestAnalyzer_FindsSignalsPerClaim(t *testing.T) {
	claims := twoClaims()
	evidence := &model.EvidenceGraph{Links: []model.ClaimEvidencePair{
		{ClaimID: "C1", Evidence: []model.EvidenceLink{
			{SectionID: "S3", Type: model.EvidenceQuantitative, Snippet: "12% improvement"},
		}},
		{ClaimID: "C2", Evidence: []model.EvidenceLink{}},
	}}
	assumptions := &model.AssumptionLedger{Ledger: []model.ClaimAssumptions{
		{ClaimID: "C1", Assumptions: []model.Assumption{
			{Type: model.AssumptionData, Statement: "Sample is representative.", Confidence: 0.7},
		}},
	}}

	gw := &stubGateway{responses: []stubCall{
		{text: `["evidence covers only one dataset"]`},
		{text: `{"signals": ["no supporting evidence at all"]}`},
	}}

	a := NewAnalyzer(gw, nil, testLogger())
	gaps, err := a.Run(context.Background(), claims, evidence, assumptions)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(gaps.Analysis) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(gaps.Analysis))
	}
	if sig := gaps.SignalsFor("C1"); len(sig) != 1 || sig[0].Signal != "evidence covers only one dataset" {
		t.Errorf("C1 signals = %+v", sig)
	}
}

func TestAnalyzer_PlaceholdersForMissingInputs(t *testing.T) {
	claims := &model.ClaimList{Claims: []model.ScientificClaim{
		{ClaimID: "C1", Statement: "Unsupported claim.", SourceSectionID: "S1"},
	}}

	gw := &stubGateway{responses: []stubCall{{text: `[]`}}}
	a := NewAnalyzer(gw, nil, testLogger())
	if _, err := a.Run(context.Background(), claims, &model.EvidenceGraph{}, &model.AssumptionLedger{}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	prompt := gw.prompts[0]
	if !strings.Contains(prompt, "No evidence found.") {
		t.Error("Expected evidence placeholder in prompt")
	}
	if !strings.Contains(prompt, "No assumptions inferred.") {
		t.Error("Expected assumptions placeholder in prompt")
	}
}

func TestAnalyzer_OnlyClaimsWithSignalsRecorded(t *testing.T) {
	claims := twoClaims()

	gw := &stubGateway{responses: []stubCall{
		{text: `[]`},
		{text: `["only this claim has a gap"]`},
	}}
	a := NewAnalyzer(gw, nil, testLogger())
	gaps, err := a.Run(context.Background(), claims, &model.EvidenceGraph{}, &model.AssumptionLedger{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(gaps.Analysis) != 1 || gaps.Analysis[0].ClaimID != "C2" {
		t.Errorf("Analysis = %+v", gaps.Analysis)
	}
	if gaps.SignalsFor("C1") != nil {
		t.Error("C1 should be absent when no signals were found")
	}
}

func TestAnalyzer_FailureSkipsClaim(t *testing.T) {
	claims := twoClaims()

	gw := &stubGateway{responses: []stubCall{
		{err: errors.New("boom")},
		{text: `["survivor signal"]`},
	}}
	a := NewAnalyzer(gw, nil, testLogger())
	gaps, err := a.Run(context.Background(), claims, &model.EvidenceGraph{}, &model.AssumptionLedger{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(gaps.Analysis) != 1 || gaps.Analysis[0].ClaimID != "C2" {
		t.Errorf("Analysis = %+v", gaps.Analysis)
	}
}
