package stage

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/scarflab/scarf/internal/model"
)

// Analyzer identifies logical gaps per claim given its evidence and
// assumptions. Missing evidence or assumptions are summarized by
// placeholders, never an error: a claim with neither still gets analyzed.
type Analyzer struct {
	gw       Gateway
	progress ProgressFunc
	log      *zap.SugaredLogger
}

// NewAnalyzer creates a gap analyzer.
func NewAnalyzer(gw Gateway, progress ProgressFunc, log *zap.SugaredLogger) *Analyzer {
	return &Analyzer{gw: gw, progress: progress, log: log}
}

// Run analyzes every claim against its evidence and assumption lists. Only
// claims where signals were found appear in the result.
func (a *Analyzer) Run(ctx context.Context, claims *model.ClaimList, evidence *model.EvidenceGraph, assumptions *model.AssumptionLedger) (*model.GapAnalysis, error) {
	out := &model.GapAnalysis{}

	for i, claim := range claims.Claims {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		a.progress.reportf("Analyzing gaps for claim %d of %d...", i+1, len(claims.Claims))

		evSummary := summarizeEvidence(evidence.EvidenceFor(claim.ClaimID))
		assSummary := summarizeAssumptions(assumptions.AssumptionsFor(claim.ClaimID))

		raw, err := a.gw.Call(ctx, a.buildPrompt(claim, evSummary, assSummary))
		if err != nil {
			a.log.Warnw("gap analysis failed, skipping claim",
				"claim_id", claim.ClaimID, "error", err)
			continue
		}
		texts, err := decodeTexts(raw, "signal", "signals", "analysis")
		if err != nil {
			a.log.Warnw("gap response unparseable, skipping claim",
				"claim_id", claim.ClaimID, "error", err)
			continue
		}
		if len(texts) == 0 {
			continue
		}

		entry := model.ClaimGaps{ClaimID: claim.ClaimID}
		for _, t := range texts {
			entry.Signals = append(entry.Signals, model.GapSignal{Signal: t})
		}
		out.Analysis = append(out.Analysis, entry)
	}

	a.log.Infow("gaps analyzed", "claims_with_signals", len(out.Analysis))
	return out, nil
}

func summarizeEvidence(links []model.EvidenceLink) string {
	if len(links) == 0 {
		return "No evidence found."
	}
	var b strings.Builder
	for _, e := range links {
		fmt.Fprintf(&b, "- %s: %s\n", e.Type, e.Snippet)
	}
	return b.String()
}

func summarizeAssumptions(assumptions []model.Assumption) string {
	if len(assumptions) == 0 {
		return "No assumptions inferred."
	}
	var b strings.Builder
	for _, a := range assumptions {
		fmt.Fprintf(&b, "- %s: %s\n", a.Type, a.Statement)
	}
	return b.String()
}

func (a *Analyzer) buildPrompt(claim model.ScientificClaim, evSummary, assSummary string) string {
	var b strings.Builder
	b.WriteString("Review this scientific claim together with its evidence and implicit assumptions.\n")
	b.WriteString("Identify logical gaps: places where the evidence does not fully support the\n")
	b.WriteString("claim, or where an assumption weakens it. Be non-judgmental and specific.\n\n")
	b.WriteString("CLAIM: ")
	b.WriteString(claim.Statement)
	b.WriteString("\n\nEVIDENCE:\n")
	b.WriteString(evSummary)
	b.WriteString("\nASSUMPTIONS:\n")
	b.WriteString(assSummary)
	b.WriteString("\nReturn ONLY a JSON array of gap signals, each a short string:\n")
	b.WriteString(`["signal one", "signal two"]`)
	b.WriteString("\nDo not include any other text.")
	return b.String()
}
