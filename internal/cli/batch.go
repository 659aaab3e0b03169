package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dchernyak/cvproof/internal/model"
	"github.com/dchernyak/cvproof/internal/pipeline"
	"github.com/dchernyak/cvproof/internal/worker"
)

var (
	outputDir    string
	concurrency  int
	batchTimeout time.Duration
)

// supportedBatchExts lists the file types picked up from a batch directory.
var supportedBatchExts = map[string]bool{
	".pdf":  true,
	".html": true,
	".htm":  true,
	".txt":  true,
	".text": true,
	".md":   true,
}

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <directory>",
	Short: "Verify every CV in a directory in parallel",
	Long: `Batch processes a directory of CV files concurrently:
- Pick up every supported file (PDF, HTML, plain text)
- Verify CVs in parallel with a configurable worker count
- Write an individual JSON and Markdown report per CV

Example:
  cvproof batch ./cvs
  cvproof batch ./cvs --concurrency 4 --output-dir ./reports
  cvproof batch ./cvs --mode llm --timeout 1h`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./cvproof-reports", "output directory for reports")
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent CVs (0 = config default)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", time.Hour, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable search response caching")

	// Shared verification flags
	batchCmd.Flags().StringVar(&searchMode, "mode", "crossref", "verification mode (crossref, llm)")
	batchCmd.Flags().StringVar(&mailTo, "mailto", "", "contact email for the bibliographic search polite pool")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default when empty)")
	batchCmd.Flags().StringVar(&modelPath, "model-path", "", "trained header model JSON")
	batchCmd.Flags().StringVar(&headersPath, "headers-path", "", "known-header list YAML")
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := buildConfig()
	if concurrency > 0 {
		cfg.Concurrency.BatchWorkers = concurrency
	}
	if err := resolveAPIKey(cfg); err != nil {
		return err
	}

	files, err := collectCVFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported CV files in %s", dir)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Processing %d CV(s) with %d worker(s)\n", len(files), cfg.Concurrency.BatchWorkers)

	pool := worker.NewPool(cfg.Concurrency.BatchWorkers)
	pool.Start()
	for _, file := range files {
		pool.Submit(&batchJob{pipeline: p, ctx: ctx, file: file})
	}

	successCount := 0
	failureCount := 0
	for _, r := range pool.Wait() {
		br := r.(*batchResult)
		if !br.result.Success {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %s\n", br.file, br.result.Error)
			continue
		}

		slug := strings.TrimSuffix(filepath.Base(br.file), filepath.Ext(br.file))
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")
		if err := writeOutputs(br.result, jsonPath, mdPath, cfg.Output.IncludeFooter); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", br.file, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s: ", br.file)
		pipeline.WriteSummary(os.Stderr, br.result)
	}

	fmt.Fprintf(os.Stderr, "\nBatch complete: %d succeeded, %d failed, reports in %s\n",
		successCount, failureCount, outputDir)

	if failureCount > 0 && successCount == 0 {
		return fmt.Errorf("all %d CV(s) failed", failureCount)
	}
	return nil
}

// collectCVFiles lists the supported files directly under dir.
func collectCVFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if supportedBatchExts[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// batchJob runs one CV through the shared pipeline.
type batchJob struct {
	pipeline *pipeline.Pipeline
	ctx      context.Context
	file     string
}

// Execute implements worker.Job.
func (j *batchJob) Execute(ctx context.Context) worker.Result {
	return &batchResult{
		file:   j.file,
		result: j.pipeline.Run(j.ctx, j.file),
	}
}

type batchResult struct {
	file   string
	result model.Result
}

// GetError implements worker.Result; per-CV failures are reported in the
// result envelope, not as job errors.
func (r *batchResult) GetError() error { return nil }
