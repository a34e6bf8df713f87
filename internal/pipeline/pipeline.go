// Package pipeline wires the seven analysis stages in fixed order and owns
// the job lifecycle: progress reporting, partial-result persistence and
// terminal failure handling.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/scarflab/scarf/internal/jobs"
	"github.com/scarflab/scarf/internal/model"
	"github.com/scarflab/scarf/internal/stage"
)

// minSectionContent is the threshold below which a section is not counted
// as extracted text when deciding whether to flag a degraded run.
const minSectionContent = 50

// Runner orchestrates one or more pipeline runs against a shared gateway
// and job store.
type Runner struct {
	gw        stage.Gateway
	store     jobs.Store
	cfg       *model.Config
	extractor stage.TextExtractor
	log       *zap.SugaredLogger
}

// NewRunner creates a pipeline runner. The job store is an explicit
// dependency; nothing here touches ambient state.
func NewRunner(gw stage.Gateway, store jobs.Store, cfg *model.Config, log *zap.SugaredLogger) *Runner {
	return &Runner{gw: gw, store: store, cfg: cfg, log: log}
}

// WithExtractor swaps in an external text extractor for grounding.
func (r *Runner) WithExtractor(ex stage.TextExtractor) *Runner {
	r.extractor = ex
	return r
}

// Submit kicks off a run in the background and returns immediately. All
// failures, including panics, end up in the job store as a FAILED status;
// nothing propagates past the orchestrator.
func (r *Runner) Submit(ctx context.Context, sourcePath, jobID string) error {
	if err := r.store.Create(jobID); err != nil {
		return err
	}
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Errorw("pipeline panicked", "job_id", jobID, "panic", rec)
				r.fail(jobID, fmt.Errorf("internal error: %v", rec))
			}
		}()
		if _, err := r.run(ctx, sourcePath, jobID); err != nil {
			r.fail(jobID, err)
		}
	}()
	return nil
}

// Run executes the pipeline synchronously and returns the terminal report.
func (r *Runner) Run(ctx context.Context, sourcePath, jobID string) (*model.AnalysisReport, error) {
	if err := r.store.Create(jobID); err != nil {
		return nil, err
	}
	report, err := r.run(ctx, sourcePath, jobID)
	if err != nil {
		r.fail(jobID, err)
		return nil, err
	}
	return report, nil
}

func (r *Runner) fail(jobID string, err error) {
	_ = r.store.Update(jobID, func(s *jobs.Status) {
		s.State = jobs.StateFailed
		s.Error = err.Error()
		s.Message = "Error: " + err.Error()
	})
}

// progressSink returns the message callback threaded into every stage.
// Writes are idempotent last-write overwrites on the status record.
func (r *Runner) progressSink(jobID string) stage.ProgressFunc {
	return func(msg string) {
		_ = r.store.Update(jobID, func(s *jobs.Status) {
			s.Message = msg
		})
	}
}

func (r *Runner) transition(jobID string, state jobs.State, progress int, msg string) {
	_ = r.store.Update(jobID, func(s *jobs.Status) {
		s.State = state
		s.Progress = progress
		s.Message = msg
	})
}

func (r *Runner) persistPartial(jobID, stageName string, partial model.AnalysisReport) {
	_ = r.store.Update(jobID, func(s *jobs.Status) {
		s.PartialStage = stageName
		s.Partial = &partial
	})
}

func (r *Runner) run(ctx context.Context, sourcePath, jobID string) (*model.AnalysisReport, error) {
	progress := r.progressSink(jobID)
	log := r.log.With("job_id", jobID)

	grounder := stage.NewGrounder(r.cfg.Grounding, log)
	if r.extractor != nil {
		grounder = grounder.WithExtractor(r.extractor)
	}
	segmenter := stage.NewSegmenter(r.gw, r.cfg.Pipeline, progress, log)
	extractor := stage.NewExtractor(r.gw, r.cfg.Pipeline, progress, log)
	linker := stage.NewLinker(r.gw, r.cfg.Pipeline, progress, log)
	miner := stage.NewMiner(r.gw, r.cfg.Pipeline, progress, log)
	analyzer := stage.NewAnalyzer(r.gw, progress, log)
	synthesizer := stage.NewSynthesizer(r.gw, progress, log)

	// 1. Grounding
	r.transition(jobID, jobs.StateGrounding, 10, "Grounding document...")
	doc, err := grounder.Run(sourcePath, jobID)
	if err != nil {
		return nil, fmt.Errorf("grounding: %w", err)
	}

	hasContent := false
	for _, sec := range doc.Sections {
		if len(strings.TrimSpace(sec.Content)) > minSectionContent {
			hasContent = true
			break
		}
	}
	if !hasContent {
		// Non-fatal, but the caller should know confidence is degraded.
		_ = r.store.Update(jobID, func(s *jobs.Status) {
			s.Warnings = append(s.Warnings, "no text extracted from source; results will be degraded")
		})
		progress("WARNING: no text extracted from source.")
	}

	// 2. Segmentation
	r.transition(jobID, jobs.StateSegmenting, 25,
		fmt.Sprintf("Grounding complete. Analyzing %d sections...", len(doc.Sections)))
	rhetoric, err := segmenter.Run(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("segmentation: %w", err)
	}
	r.persistPartial(jobID, "segmentation_complete", model.AnalysisReport{
		Doc:      *doc,
		Rhetoric: *rhetoric,
	})

	// 3. Claims
	r.transition(jobID, jobs.StateExtracting, 40, "Structure mapped. Extracting claims...")
	claims, err := extractor.Run(ctx, doc, rhetoric)
	if err != nil {
		return nil, fmt.Errorf("claim extraction: %w", err)
	}
	r.persistPartial(jobID, "extraction_complete", model.AnalysisReport{
		Doc:      *doc,
		Rhetoric: *rhetoric,
		Claims:   *claims,
	})

	// 4 & 5. Evidence and assumptions are independent network-bound
	// workloads; run them together and join before gap analysis.
	r.transition(jobID, jobs.StateLinking, 55,
		fmt.Sprintf("Found %d claims. Linking evidence and mining assumptions...", len(claims.Claims)))

	var (
		evidence    *model.EvidenceGraph
		assumptions *model.AssumptionLedger
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ev, err := linker.Run(gctx, doc, claims)
		if err != nil {
			return fmt.Errorf("evidence linking: %w", err)
		}
		evidence = ev
		return nil
	})
	g.Go(func() error {
		led, err := miner.Run(gctx, doc, claims)
		if err != nil {
			return fmt.Errorf("assumption mining: %w", err)
		}
		assumptions = led
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	r.persistPartial(jobID, "parallel_complete", model.AnalysisReport{
		Doc:         *doc,
		Rhetoric:    *rhetoric,
		Claims:      *claims,
		Evidence:    *evidence,
		Assumptions: *assumptions,
	})

	// 6. Gaps
	r.transition(jobID, jobs.StateAnalyzing, 70, "Evidence linked. Analyzing logic and gaps...")
	gaps, err := analyzer.Run(ctx, claims, evidence, assumptions)
	if err != nil {
		return nil, fmt.Errorf("gap analysis: %w", err)
	}
	r.persistPartial(jobID, "gaps_complete", model.AnalysisReport{
		Doc:         *doc,
		Rhetoric:    *rhetoric,
		Claims:      *claims,
		Evidence:    *evidence,
		Assumptions: *assumptions,
		Gaps:        *gaps,
	})

	// 7. Validation
	r.transition(jobID, jobs.StateValidating, 85, "Generating validation questions...")
	validation, err := synthesizer.Run(ctx, gaps)
	if err != nil {
		return nil, fmt.Errorf("validation synthesis: %w", err)
	}

	report := &model.AnalysisReport{
		Doc:         *doc,
		Rhetoric:    *rhetoric,
		Claims:      *claims,
		Evidence:    *evidence,
		Assumptions: *assumptions,
		Gaps:        *gaps,
		Validation:  *validation,
	}

	_ = r.store.Update(jobID, func(s *jobs.Status) {
		s.State = jobs.StateCompleted
		s.Progress = 100
		s.Message = "Analysis complete."
		s.Result = report
		s.Partial = nil
		s.PartialStage = ""
	})
	log.Infow("pipeline complete",
		"claims", len(claims.Claims),
		"gaps", len(gaps.Analysis),
		"questions", len(validation.Report))
	return report, nil
}
