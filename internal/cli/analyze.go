package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scarflab/scarf/internal/cache"
	"github.com/scarflab/scarf/internal/jobs"
	"github.com/scarflab/scarf/internal/llm"
	"github.com/scarflab/scarf/internal/model"
	"github.com/scarflab/scarf/internal/pipeline"
)

var (
	outJSON       string
	outMD         string
	timeout       time.Duration
	provider      string
	primaryModel  string
	fallbackModel string
	useCache      bool
	cacheDir      string
	noFooter      bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a single paper and generate a critique report",
	Long: `Analyze runs the full pipeline on a single document:
- Ground the raw text into sections
- Map each section's rhetorical role
- Extract falsifiable claims
- Link claims to supporting evidence
- Mine the implicit assumptions claims rest on
- Flag logical gaps and weak reasoning
- Synthesize validation questions for a reviewer

Example:
  scarf analyze paper.txt
  scarf analyze paper.txt --json report.json --md report.md
  scarf analyze paper.txt --provider openai --model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Pipeline flags
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "overall analysis timeout (increase for long papers)")
	analyzeCmd.Flags().BoolVar(&useCache, "cache", false, "cache model responses for identical re-runs")
	analyzeCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "cache directory (default: in-memory only)")

	// LLM flags
	analyzeCmd.Flags().StringVar(&provider, "provider", "", "LLM provider (novita, openai)")
	analyzeCmd.Flags().StringVar(&primaryModel, "model", "", "primary model name")
	analyzeCmd.Flags().StringVar(&fallbackModel, "fallback-model", "", "fallback model name")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", path)
		fmt.Fprintf(os.Stderr, "Provider: %s\n", cfg.LLM.Provider)
		fmt.Fprintf(os.Stderr, "Model: %s (fallback: %s)\n", cfg.LLM.Model, cfg.LLM.FallbackModel)
		fmt.Fprintln(os.Stderr)
	}

	log, err := buildLogger()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	runner, store, err := buildRunner(cfg, log)
	if err != nil {
		return err
	}

	jobID := uuid.NewString()
	report, err := runner.Run(ctx, path, jobID)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if status, ok := store.Get(jobID); ok {
		for _, w := range status.Warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
		}
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if outJSON != "" {
		if err := renderer.RenderJSON(report, outJSON); err != nil {
			return fmt.Errorf("writing JSON report: %w", err)
		}
		fmt.Printf("JSON report: %s\n", outJSON)
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(report, outMD); err != nil {
			return fmt.Errorf("writing Markdown report: %w", err)
		}
		fmt.Printf("Markdown report: %s\n", outMD)
	}

	renderer.RenderSummary(report, os.Stdout)
	return nil
}

// buildConfig assembles the runtime configuration from defaults, environment
// and flags. The API key is read from the environment only.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter
	cfg.Cache.Enabled = useCache
	if cacheDir != "" {
		cfg.Cache.Dir = cacheDir
	}

	if provider != "" {
		cfg.LLM.Provider = provider
	}
	if primaryModel != "" {
		cfg.LLM.Model = primaryModel
	}
	if fallbackModel != "" {
		cfg.LLM.FallbackModel = fallbackModel
	}

	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		cfg.LLM.BaseURL = ""
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	default:
		cfg.LLM.APIKey = os.Getenv("NOVITA_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("NOVITA_API_KEY environment variable not set")
		}
	}
	return cfg, nil
}

// buildRunner wires the gateway, job store and pipeline runner.
func buildRunner(cfg *model.Config, log *zap.SugaredLogger) (*pipeline.Runner, *jobs.MemoryStore, error) {
	prov, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, nil, err
	}

	client := llm.NewClient(prov, llm.ConfigFromModel(cfg.LLM), log)
	if cfg.Cache.Enabled {
		var respCache llm.ResponseCache
		if cfg.Cache.Dir != "" {
			respCache = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
		} else {
			respCache = cache.NewMemoryCache(cfg.Cache.TTL, 10*time.Minute)
		}
		client = client.WithCache(respCache, cfg.Cache.TTL)
	}

	store := jobs.NewMemoryStore(0)
	return pipeline.NewRunner(client, store, cfg, log), store, nil
}
