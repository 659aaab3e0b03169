package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dchernyak/cvproof/internal/model"
	"github.com/dchernyak/cvproof/internal/pipeline"
)

var (
	outJSON       string
	outMD         string
	verifyTimeout time.Duration
	searchMode    string
	mailTo        string
	llmProvider   string
	llmModel      string
	modelPath     string
	headersPath   string
	maxChars      int
	noCache       bool
	noFooter      bool
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <cv-file>",
	Short: "Verify the publication claims in a single CV",
	Long: `Verify processes one CV file to:
- Extract the text (PDF, HTML, or plain text)
- Detect section headers and locate the publication list
- Extract publication claims via the configured LLM provider
- Resolve each claim against bibliographic records
- Generate a JSON (and optionally Markdown) verification report

Example:
  cvproof verify cv.pdf
  cvproof verify cv.pdf --json report.json --md report.md
  cvproof verify cv.pdf --mode llm --llm-model gpt-4o-mini
  cvproof verify cv.pdf --model-path model.json --headers-path headers.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	// Output flags
	verifyCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	verifyCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	verifyCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Verification flags
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 15*time.Minute, "overall verification timeout (large CVs make many paced calls)")
	verifyCmd.Flags().StringVar(&searchMode, "mode", "crossref", "verification mode (crossref, llm)")
	verifyCmd.Flags().StringVar(&mailTo, "mailto", "", "contact email for the bibliographic search polite pool")
	verifyCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable search response caching")

	// LLM flags
	verifyCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai)")
	verifyCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default when empty)")

	// Classifier flags
	verifyCmd.Flags().StringVar(&modelPath, "model-path", "", "trained header model JSON (section detection disabled when empty)")
	verifyCmd.Flags().StringVar(&headersPath, "headers-path", "", "known-header list YAML (built-in list when empty)")

	verifyCmd.Flags().IntVar(&maxChars, "max-chars", 0, "chunking threshold in characters (0 = default)")
}

// buildConfig folds the shared command flags into a configuration.
func buildConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Search.Mode = searchMode
	cfg.Search.MailTo = mailTo
	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel
	cfg.Classifier.ModelPath = modelPath
	cfg.Classifier.HeadersPath = headersPath
	if maxChars > 0 {
		cfg.Chunking.MaxChars = maxChars
	}
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter
	return cfg
}

func runVerify(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	cfg := buildConfig()
	if err := resolveAPIKey(cfg); err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Verifying: %s\n", file)
		fmt.Fprintf(os.Stderr, "Mode: %s\n", cfg.Search.Mode)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", verifyTimeout)
		fmt.Fprintln(os.Stderr)
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	result := p.Run(ctx, file)
	if !result.Success {
		return fmt.Errorf("verification failed: %s", result.Error)
	}

	if err := writeOutputs(result, outJSON, outMD, cfg.Output.IncludeFooter); err != nil {
		return err
	}

	pipeline.WriteSummary(os.Stdout, result)
	if verbose && outJSON != "" {
		fmt.Fprintf(os.Stderr, "✓ Report written to %s\n", outJSON)
	}

	return nil
}
