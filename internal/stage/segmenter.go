package stage

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/scarflab/scarf/internal/model"
)

// Segmenter classifies the rhetorical role of each section. Sections are
// batched into single model calls to cut request count; a batch that cannot
// be parsed degrades to body-role assignments instead of failing the run.
type Segmenter struct {
	gw        Gateway
	batchSize int
	previewAt int
	progress  ProgressFunc
	log       *zap.SugaredLogger
}

// NewSegmenter creates a segmenter. The progress sink is fixed at
// construction.
func NewSegmenter(gw Gateway, cfg model.PipelineConfig, progress ProgressFunc, log *zap.SugaredLogger) *Segmenter {
	batch := cfg.SegmentBatchSize
	if batch <= 0 {
		batch = 5
	}
	return &Segmenter{
		gw:        gw,
		batchSize: batch,
		previewAt: cfg.PreviewChars,
		progress:  progress,
		log:       log,
	}
}

type roleItem struct {
	SectionID  string  `json:"section_id"`
	Role       string  `json:"role"`
	Confidence float64 `json:"confidence"`
}

// Run classifies every non-empty section of the document.
func (s *Segmenter) Run(ctx context.Context, doc *model.Document) (*model.RhetoricalMap, error) {
	var candidates []model.Section
	for _, sec := range doc.Sections {
		if strings.TrimSpace(sec.Content) != "" {
			candidates = append(candidates, sec)
		}
	}

	out := &model.RhetoricalMap{}
	total := len(candidates)
	for start := 0; start < total; start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := start + s.batchSize
		if end > total {
			end = total
		}
		batch := candidates[start:end]

		s.progress.reportf("Classifying sections %d-%d of %d...", start+1, end, total)
		out.Roles = append(out.Roles, s.classifyBatch(ctx, batch)...)
	}

	s.log.Infow("sections classified", "doc_id", doc.DocID, "roles", len(out.Roles))
	return out, nil
}

// classifyBatch issues one model call for a batch. Any failure degrades the
// whole batch to body-role fallbacks.
func (s *Segmenter) classifyBatch(ctx context.Context, batch []model.Section) []model.SectionRole {
	raw, err := s.gw.Call(ctx, s.buildPrompt(batch))
	if err != nil {
		s.log.Warnw("segmentation batch failed", "error", err)
		return fallbackRoles(batch)
	}

	items, err := decodeList[roleItem](raw, "roles")
	if err != nil {
		s.log.Warnw("segmentation batch unparseable", "error", err)
		return fallbackRoles(batch)
	}

	byID := make(map[string]model.SectionRole, len(items))
	for _, item := range items {
		known := false
		for _, sec := range batch {
			if sec.SectionID == item.SectionID {
				known = true
				break
			}
		}
		if !known {
			continue
		}
		// Last write wins on duplicates.
		byID[item.SectionID] = model.SectionRole{
			SectionID:  item.SectionID,
			Role:       model.NormalizeRole(item.Role),
			Confidence: model.ClampConfidence(item.Confidence),
		}
	}

	roles := make([]model.SectionRole, 0, len(batch))
	for _, sec := range batch {
		if r, ok := byID[sec.SectionID]; ok {
			roles = append(roles, r)
			continue
		}
		roles = append(roles, model.SectionRole{
			SectionID:  sec.SectionID,
			Role:       model.RoleBody,
			Confidence: model.FallbackConfidence,
		})
	}
	return roles
}

func fallbackRoles(batch []model.Section) []model.SectionRole {
	roles := make([]model.SectionRole, 0, len(batch))
	for _, sec := range batch {
		roles = append(roles, model.SectionRole{
			SectionID:  sec.SectionID,
			Role:       model.RoleBody,
			Confidence: model.FallbackConfidence,
		})
	}
	return roles
}

func (s *Segmenter) buildPrompt(batch []model.Section) string {
	var b strings.Builder
	b.WriteString("You are classifying sections of a scientific paper by rhetorical role.\n")
	b.WriteString("Allowed roles: background, method, results, discussion, limitations, body.\n\n")
	for _, sec := range batch {
		b.WriteString("SECTION_ID: ")
		b.WriteString(sec.SectionID)
		b.WriteString("\nTITLE: ")
		b.WriteString(sec.Title)
		b.WriteString("\nCONTENT:\n")
		b.WriteString(preview(sec.Content, s.previewAt))
		b.WriteString("\n---\n")
	}
	b.WriteString("\nReturn ONLY a JSON array, one object per section, of the form:\n")
	b.WriteString(`[{"section_id": "S1", "role": "background", "confidence": 0.9}]`)
	b.WriteString("\nDo not include any other text.")
	return b.String()
}
