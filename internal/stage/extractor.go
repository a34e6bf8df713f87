package stage

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/scarflab/scarf/internal/model"
)

// Extractor pulls falsifiable scientific claims out of relevant sections,
// one model call per section. Section-level failures are logged and
// skipped; they never abort the stage.
type Extractor struct {
	gw       Gateway
	excluded map[model.Role]bool
	progress ProgressFunc
	log      *zap.SugaredLogger
}

// NewExtractor creates a claim extractor. Policy favors inclusion: only the
// roles listed in cfg.ExcludedRoles are skipped.
func NewExtractor(gw Gateway, cfg model.PipelineConfig, progress ProgressFunc, log *zap.SugaredLogger) *Extractor {
	excluded := make(map[model.Role]bool, len(cfg.ExcludedRoles))
	for _, r := range cfg.ExcludedRoles {
		excluded[model.NormalizeRole(r)] = true
	}
	return &Extractor{gw: gw, excluded: excluded, progress: progress, log: log}
}

type claimItem struct {
	ClaimID    string  `json:"claim_id"`
	Statement  string  `json:"statement"`
	Confidence float64 `json:"confidence"`
}

// Run extracts claims from every section whose resolved role is not
// excluded. Every claim is stamped with its originating section and claim
// IDs are renumbered afterwards so uniqueness holds even when the model
// repeats IDs.
func (e *Extractor) Run(ctx context.Context, doc *model.Document, rhetoric *model.RhetoricalMap) (*model.ClaimList, error) {
	out := &model.ClaimList{}

	for _, sec := range doc.Sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.TrimSpace(sec.Content) == "" {
			continue
		}
		role := rhetoric.RoleOf(sec.SectionID)
		if e.excluded[role] {
			continue
		}

		e.progress.reportf("Extracting claims from %s (%s)...", sec.SectionID, sec.Title)

		raw, err := e.gw.Call(ctx, e.buildPrompt(sec))
		if err != nil {
			e.log.Warnw("claim extraction failed, skipping section",
				"section_id", sec.SectionID, "error", err)
			continue
		}
		items, err := decodeList[claimItem](raw, "claims")
		if err != nil {
			e.log.Warnw("claim response unparseable, skipping section",
				"section_id", sec.SectionID, "error", err)
			continue
		}

		for _, item := range items {
			statement := strings.TrimSpace(item.Statement)
			if statement == "" {
				continue
			}
			out.Claims = append(out.Claims, model.ScientificClaim{
				ClaimID:         item.ClaimID,
				Statement:       statement,
				SourceSectionID: sec.SectionID,
				Confidence:      model.ClampConfidence(item.Confidence),
			})
		}
	}

	for i := range out.Claims {
		out.Claims[i].ClaimID = fmt.Sprintf("C%d", i+1)
	}

	e.log.Infow("claims extracted", "doc_id", doc.DocID, "claims", len(out.Claims))
	return out, nil
}

func (e *Extractor) buildPrompt(sec model.Section) string {
	var b strings.Builder
	b.WriteString("Extract the scientific claims made in the following section of a paper.\n")
	b.WriteString("Include ONLY falsifiable, testable claims. Exclude background statements,\n")
	b.WriteString("citations of other work, and descriptions of what the paper will do.\n\n")
	b.WriteString("SECTION ")
	b.WriteString(sec.SectionID)
	b.WriteString(" (")
	b.WriteString(sec.Title)
	b.WriteString("):\n")
	b.WriteString(sec.Content)
	b.WriteString("\n\nReturn ONLY a JSON array of the form:\n")
	b.WriteString(`[{"claim_id": "C1", "statement": "...", "confidence": 0.8}]`)
	b.WriteString("\nNormalize each statement into a single declarative sentence. Do not include any other text.")
	return b.String()
}
