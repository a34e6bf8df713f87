package stage

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/scarflab/scarf/internal/model"
)

// Synthesizer turns gap signals into constructive validation questions.
// Claims without gap signals are skipped entirely.
type Synthesizer struct {
	gw       Gateway
	progress ProgressFunc
	log      *zap.SugaredLogger
}

// NewSynthesizer creates a validation synthesizer.
func NewSynthesizer(gw Gateway, progress ProgressFunc, log *zap.SugaredLogger) *Synthesizer {
	return &Synthesizer{gw: gw, progress: progress, log: log}
}

// Run generates research questions for every claim that had gap signals.
func (s *Synthesizer) Run(ctx context.Context, gaps *model.GapAnalysis) (*model.ValidationReport, error) {
	out := &model.ValidationReport{}

	for i, entry := range gaps.Analysis {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(entry.Signals) == 0 {
			continue
		}
		s.progress.reportf("Generating validation questions %d of %d...", i+1, len(gaps.Analysis))

		raw, err := s.gw.Call(ctx, s.buildPrompt(entry))
		if err != nil {
			s.log.Warnw("validation call failed, skipping claim",
				"claim_id", entry.ClaimID, "error", err)
			continue
		}
		texts, err := decodeTexts(raw, "question", "questions", "report")
		if err != nil {
			s.log.Warnw("validation response unparseable, skipping claim",
				"claim_id", entry.ClaimID, "error", err)
			continue
		}
		if len(texts) == 0 {
			continue
		}

		validation := model.ClaimValidation{ClaimID: entry.ClaimID}
		for _, t := range texts {
			validation.Questions = append(validation.Questions, model.ValidationQuestion{Question: t})
		}
		out.Report = append(out.Report, validation)
	}

	s.log.Infow("validation synthesized", "claims", len(out.Report))
	return out, nil
}

func (s *Synthesizer) buildPrompt(entry model.ClaimGaps) string {
	var b strings.Builder
	b.WriteString("The following gaps were identified in a scientific claim. For each gap,\n")
	b.WriteString("formulate a constructive research question that would help validate or\n")
	b.WriteString("refute the claim.\n\nGAPS:\n")
	for _, sig := range entry.Signals {
		b.WriteString("- ")
		b.WriteString(sig.Signal)
		b.WriteByte('\n')
	}
	b.WriteString("\nReturn ONLY a JSON array of questions, each a short string:\n")
	b.WriteString(`["question one", "question two"]`)
	b.WriteString("\nDo not include any other text.")
	return b.String()
}
