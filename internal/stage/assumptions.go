package stage

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/scarflab/scarf/internal/llm"
	"github.com/scarflab/scarf/internal/model"
)

// Miner infers the implicit data/model/evaluation assumptions underlying
// each claim, using a shared context built from the document's leading
// sections. Calls run at a moderate temperature, favoring diversity over
// determinism.
type Miner struct {
	gw           Gateway
	contextChars int
	temperature  float32
	progress     ProgressFunc
	log          *zap.SugaredLogger
}

// NewMiner creates an assumption miner.
func NewMiner(gw Gateway, cfg model.PipelineConfig, progress ProgressFunc, log *zap.SugaredLogger) *Miner {
	temp := cfg.AssumptionTemperature
	if temp <= 0 {
		temp = 0.7
	}
	return &Miner{
		gw:           gw,
		contextChars: cfg.ContextChars,
		temperature:  temp,
		progress:     progress,
		log:          log,
	}
}

type assumptionItem struct {
	Type       string  `json:"type"`
	Statement  string  `json:"statement"`
	Confidence float64 `json:"confidence"`
}

// Run mines assumptions per claim. Invalid items are dropped individually;
// claims where nothing valid was mined are absent from the ledger.
func (m *Miner) Run(ctx context.Context, doc *model.Document, claims *model.ClaimList) (*model.AssumptionLedger, error) {
	sharedContext := m.buildContext(doc)

	out := &model.AssumptionLedger{}
	for i, claim := range claims.Claims {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m.progress.reportf("Mining assumptions for claim %d of %d...", i+1, len(claims.Claims))

		raw, err := m.gw.Call(ctx, m.buildPrompt(claim, sharedContext),
			llm.WithTemperature(m.temperature))
		if err != nil {
			m.log.Warnw("assumption call failed, skipping claim",
				"claim_id", claim.ClaimID, "error", err)
			continue
		}
		items, err := decodeList[assumptionItem](raw, "assumptions")
		if err != nil {
			m.log.Warnw("assumption response unparseable, skipping claim",
				"claim_id", claim.ClaimID, "error", err)
			continue
		}

		var mined []model.Assumption
		for _, item := range items {
			typ, ok := model.ParseAssumptionType(item.Type)
			if !ok {
				continue
			}
			statement := strings.TrimSpace(item.Statement)
			if statement == "" {
				continue
			}
			mined = append(mined, model.Assumption{
				Type:       typ,
				Statement:  statement,
				Confidence: model.ClampConfidence(item.Confidence),
			})
		}
		if len(mined) > 0 {
			out.Ledger = append(out.Ledger, model.ClaimAssumptions{
				ClaimID:     claim.ClaimID,
				Assumptions: mined,
			})
		}
	}

	m.log.Infow("assumptions mined", "doc_id", doc.DocID, "claims", len(out.Ledger))
	return out, nil
}

// buildContext concatenates leading sections up to the configured cap.
func (m *Miner) buildContext(doc *model.Document) string {
	var b strings.Builder
	for _, sec := range doc.Sections {
		if m.contextChars > 0 && b.Len() >= m.contextChars {
			break
		}
		b.WriteString(sec.Content)
		b.WriteByte('\n')
	}
	ctx := b.String()
	if m.contextChars > 0 && len(ctx) > m.contextChars {
		ctx = ctx[:m.contextChars]
	}
	return ctx
}

func (m *Miner) buildPrompt(claim model.ScientificClaim, sharedContext string) string {
	var b strings.Builder
	b.WriteString("The paper below makes the following claim. Infer the IMPLICIT assumptions\n")
	b.WriteString("the claim relies on - premises the authors did not state explicitly.\n")
	b.WriteString("Classify each as a data, model, or evaluation assumption.\n\n")
	b.WriteString("CLAIM: ")
	b.WriteString(claim.Statement)
	b.WriteString("\n\nPAPER CONTEXT:\n")
	b.WriteString(sharedContext)
	b.WriteString("\n\nReturn ONLY a JSON array of the form:\n")
	b.WriteString(`[{"type": "data", "statement": "...", "confidence": 0.7}]`)
	b.WriteString("\nDo not include any other text.")
	return b.String()
}
