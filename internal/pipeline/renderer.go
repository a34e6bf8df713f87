package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/scarflab/scarf/internal/model"
)

// Renderer writes analysis reports to disk and the terminal.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a report renderer.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the report as indented JSON.
func (r *Renderer) RenderJSON(report *model.AnalysisReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderMarkdown writes a human-readable report.
func (r *Renderer) RenderMarkdown(report *model.AnalysisReport, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# SCARF Analysis: %s\n\n", report.Doc.DocID)

	b.WriteString("## Document Structure\n\n")
	for _, sec := range report.Doc.Sections {
		role := report.Rhetoric.RoleOf(sec.SectionID)
		fmt.Fprintf(&b, "- **%s** %s (%s)\n", sec.SectionID, sec.Title, role)
	}

	fmt.Fprintf(&b, "\n## Claims (%d)\n\n", len(report.Claims.Claims))
	for _, claim := range report.Claims.Claims {
		fmt.Fprintf(&b, "### %s\n\n%s\n\n", claim.ClaimID, claim.Statement)
		fmt.Fprintf(&b, "*Source: %s, confidence %.2f*\n\n", claim.SourceSectionID, claim.Confidence)

		if ev := report.Evidence.EvidenceFor(claim.ClaimID); len(ev) > 0 {
			b.WriteString("**Evidence:**\n\n")
			for _, e := range ev {
				fmt.Fprintf(&b, "- (%s, %s) %s\n", e.Type, e.SectionID, e.Snippet)
			}
			b.WriteByte('\n')
		}
		if ass := report.Assumptions.AssumptionsFor(claim.ClaimID); len(ass) > 0 {
			b.WriteString("**Assumptions:**\n\n")
			for _, a := range ass {
				fmt.Fprintf(&b, "- (%s) %s\n", a.Type, a.Statement)
			}
			b.WriteByte('\n')
		}
		if sigs := report.Gaps.SignalsFor(claim.ClaimID); len(sigs) > 0 {
			b.WriteString("**Gap signals:**\n\n")
			for _, s := range sigs {
				fmt.Fprintf(&b, "- %s\n", s.Signal)
			}
			b.WriteByte('\n')
		}
	}

	if len(report.Validation.Report) > 0 {
		b.WriteString("## Validation Questions\n\n")
		for _, v := range report.Validation.Report {
			fmt.Fprintf(&b, "### %s\n\n", v.ClaimID)
			for _, q := range v.Questions {
				fmt.Fprintf(&b, "- %s\n", q.Question)
			}
			b.WriteByte('\n')
		}
	}

	if r.includeFooter {
		b.WriteString("---\n\nGenerated by SCARF. Gap signals are non-judgmental critique points, not verdicts.\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// RenderSummary prints a one-screen summary.
func (r *Renderer) RenderSummary(report *model.AnalysisReport, w io.Writer) {
	fmt.Fprintf(w, "Document:   %s (%d sections)\n", report.Doc.DocID, len(report.Doc.Sections))
	fmt.Fprintf(w, "Claims:     %d\n", len(report.Claims.Claims))

	evidenceCount := 0
	for _, pair := range report.Evidence.Links {
		evidenceCount += len(pair.Evidence)
	}
	fmt.Fprintf(w, "Evidence:   %d links\n", evidenceCount)
	fmt.Fprintf(w, "Gaps:       %d claims flagged\n", len(report.Gaps.Analysis))
	fmt.Fprintf(w, "Questions:  %d claims with validation questions\n", len(report.Validation.Report))
}
