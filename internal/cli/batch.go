package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/scarflab/scarf/internal/pipeline"
	"github.com/scarflab/scarf/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	// provider/model/cache flags are defined in analyze.go and shared here
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze multiple papers from a file in parallel",
	Long: `Batch processes multiple documents concurrently:
- Read document paths from input file (one per line)
- Analyze documents in parallel with configurable worker count
- Generate individual reports for each document

Example:
  scarf batch papers.txt
  scarf batch papers.txt --concurrency 4 --output-dir ./reports
  scarf batch papers.txt --concurrency 2 --timeout 2h`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 2, "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./scarf-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", time.Hour, "total timeout for batch processing")

	// Inherit flags from analyze command
	batchCmd.Flags().BoolVar(&useCache, "cache", false, "cache model responses for identical re-runs")
	batchCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "cache directory (default: in-memory only)")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// LLM flags
	batchCmd.Flags().StringVar(&provider, "provider", "", "LLM provider (novita, openai)")
	batchCmd.Flags().StringVar(&primaryModel, "model", "", "primary model name")
	batchCmd.Flags().StringVar(&fallbackModel, "fallback-model", "", "fallback model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Concurrency.BatchWorkers = concurrency

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  SCARF Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "  Model:        %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	fmt.Fprintf(os.Stderr, "\n")

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	log, err := buildLogger()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	runner, _, err := buildRunner(cfg, log)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(runner, concurrency, func(string) string {
		return uuid.NewString()
	})

	fmt.Fprintf(os.Stderr, "⚙️  Reading document paths from file...\n")
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Loaded %d documents\n", len(results))
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "⚙️  Analyzing documents with %d workers...\n", concurrency)
	fmt.Fprintf(os.Stderr, "\n")

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}

		successCount++

		slug := sanitizeFilename(result.Path)
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Path, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.Path, err)
			continue
		}

		fmt.Fprintf(os.Stderr, "✓ %s (claims: %d)\n", result.Path, len(result.Report.Claims.Claims))
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d documents\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// sanitizeFilename sanitizes a source path for use as a report filename.
func sanitizeFilename(s string) string {
	s = filepath.Base(s)
	if ext := filepath.Ext(s); ext != "" {
		s = strings.TrimSuffix(s, ext)
	}
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	s = replacer.Replace(s)
	if s == "" || s == "." {
		s = "report"
	}
	return s
}
