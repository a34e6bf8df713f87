package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/scarflab/scarf/internal/model"
)

// Analyzer runs the full pipeline for a single source document.
type Analyzer interface {
	Run(ctx context.Context, sourcePath, jobID string) (*model.AnalysisReport, error)
}

// AnalyzeJob analyzes one source document.
type AnalyzeJob struct {
	Path     string
	JobID    string
	Analyzer Analyzer
}

// Execute runs the job.
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	report, err := j.Analyzer.Run(ctx, j.Path, j.JobID)
	if err != nil {
		return &AnalyzeResult{Path: j.Path, JobID: j.JobID, Error: err}
	}
	return &AnalyzeResult{Path: j.Path, JobID: j.JobID, Report: report}
}

// AnalyzeResult is the outcome of one document analysis.
type AnalyzeResult struct {
	Path   string
	JobID  string
	Report *model.AnalysisReport
	Error  error
}

// GetError returns the error from the analysis, if any.
func (r *AnalyzeResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes multiple documents concurrently.
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	jobIDFor    func(path string) string
}

// NewBatchProcessor creates a batch processor. jobIDFor mints a job ID for
// each source path.
func NewBatchProcessor(analyzer Analyzer, concurrency int, jobIDFor func(path string) string) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
		jobIDFor:    jobIDFor,
	}
}

// ProcessPaths analyzes the given source documents concurrently.
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*AnalyzeResult {
	if len(paths) == 0 {
		return []*AnalyzeResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start(ctx)

	go func() {
		for _, path := range paths {
			pool.Submit(&AnalyzeJob{
				Path:     path,
				JobID:    b.jobIDFor(path),
				Analyzer: b.analyzer,
			})
		}
		pool.Close()
	}()

	results := pool.Wait()

	out := make([]*AnalyzeResult, len(results))
	for i, result := range results {
		out[i] = result.(*AnalyzeResult)
	}
	return out
}

// ProcessFile reads source paths from a list file and analyzes them
// concurrently.
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string) ([]*AnalyzeResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read paths: %w", err)
	}
	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads source paths from a file, one per line. Blank
// lines and # comments are skipped; duplicates are dropped.
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return paths, nil
}
