package stage

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/scarflab/scarf/internal/model"
)

// Linker connects claims to supporting evidence, one model call per claim
// over previews of every non-boilerplate section. Items are validated
// defensively: partial items with at least a snippet are salvaged, and
// type=none entries never reach the output.
type Linker struct {
	gw        Gateway
	previewAt int
	progress  ProgressFunc
	log       *zap.SugaredLogger
}

// NewLinker creates an evidence linker.
func NewLinker(gw Gateway, cfg model.PipelineConfig, progress ProgressFunc, log *zap.SugaredLogger) *Linker {
	return &Linker{gw: gw, previewAt: cfg.PreviewChars, progress: progress, log: log}
}

// boilerplateTitle matches section titles that carry no evidential content.
var boilerplateTitle = regexp.MustCompile(`(?i)referen|bibliograph|acknowledg`)

type evidenceItem struct {
	SectionID string `json:"section_id"`
	Type      string `json:"type"`
	Snippet   string `json:"snippet"`
	Notes     string `json:"notes"`
}

// Run links evidence for every claim. Every claim gets an entry in the
// graph; claims where nothing was found carry an empty list rather than
// failing.
func (l *Linker) Run(ctx context.Context, doc *model.Document, claims *model.ClaimList) (*model.EvidenceGraph, error) {
	sectionContext := l.buildSectionContext(doc)

	out := &model.EvidenceGraph{}
	for i, claim := range claims.Claims {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		l.progress.reportf("Linking evidence for claim %d of %d...", i+1, len(claims.Claims))

		pair := model.ClaimEvidencePair{ClaimID: claim.ClaimID, Evidence: []model.EvidenceLink{}}

		raw, err := l.gw.Call(ctx, l.buildPrompt(claim, sectionContext))
		if err != nil {
			l.log.Warnw("evidence call failed, recording empty list",
				"claim_id", claim.ClaimID, "error", err)
			out.Links = append(out.Links, pair)
			continue
		}
		items, err := decodeList[evidenceItem](raw, "evidence", "links")
		if err != nil {
			l.log.Warnw("evidence response unparseable, recording empty list",
				"claim_id", claim.ClaimID, "error", err)
			out.Links = append(out.Links, pair)
			continue
		}

		for _, item := range items {
			snippet := strings.TrimSpace(item.Snippet)
			if snippet == "" {
				continue
			}
			if !doc.HasSection(item.SectionID) {
				// Dangling back-reference; drop the item, not the claim.
				continue
			}
			typ := model.NormalizeEvidenceType(item.Type)
			if typ == model.EvidenceNone {
				continue
			}
			pair.Evidence = append(pair.Evidence, model.EvidenceLink{
				SectionID: item.SectionID,
				Type:      typ,
				Snippet:   snippet,
				Notes:     strings.TrimSpace(item.Notes),
			})
		}
		out.Links = append(out.Links, pair)
	}

	l.log.Infow("evidence linked", "doc_id", doc.DocID, "claims", len(out.Links))
	return out, nil
}

// buildSectionContext renders previews of every non-boilerplate section
// once, shared across all claim calls.
func (l *Linker) buildSectionContext(doc *model.Document) string {
	var b strings.Builder
	for _, sec := range doc.Sections {
		if boilerplateTitle.MatchString(sec.Title) {
			continue
		}
		if strings.TrimSpace(sec.Content) == "" {
			continue
		}
		b.WriteString("SECTION ")
		b.WriteString(sec.SectionID)
		b.WriteString(" (")
		b.WriteString(sec.Title)
		b.WriteString("):\n")
		b.WriteString(preview(sec.Content, l.previewAt))
		b.WriteString("\n---\n")
	}
	return b.String()
}

func (l *Linker) buildPrompt(claim model.ScientificClaim, sectionContext string) string {
	var b strings.Builder
	b.WriteString("Find evidence in the paper sections below that supports or relates to this claim.\n\n")
	b.WriteString("CLAIM: ")
	b.WriteString(claim.Statement)
	b.WriteString("\n\nPAPER SECTIONS:\n")
	b.WriteString(sectionContext)
	b.WriteString("\nFor each piece of evidence, report the section it came from, its type\n")
	b.WriteString("(quantitative, qualitative, theoretical, or none if nothing supports the claim),\n")
	b.WriteString("and the specific snippet or figure reference.\n")
	b.WriteString("Return ONLY a JSON array of the form:\n")
	b.WriteString(`[{"section_id": "S3", "type": "quantitative", "snippet": "...", "notes": "..."}]`)
	b.WriteString("\nDo not include any other text.")
	return b.String()
}
