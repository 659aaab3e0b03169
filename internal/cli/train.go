package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dchernyak/cvproof/internal/classify"
)

var (
	trainOutput  string
	trainHeaders string
	trainSeed    int64
)

// trainCmd represents the train command
var trainCmd = &cobra.Command{
	Use:   "train <corpus.jsonl>",
	Short: "Train the section-header classifier from a labeled corpus",
	Long: `Train fits the header classifier from a JSONL corpus where each line is
an object with a "text" field (the CV line) and a "header" boolean label.

The trainer balances the classes, fits per-feature weights, grid-searches
the decision threshold on a held-out fold, and writes the model as JSON
for later use with --model-path.

Example:
  cvproof train corpus.jsonl
  cvproof train corpus.jsonl --output model.json --headers headers.yaml --seed 7`,
	Args: cobra.ExactArgs(1),
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().StringVar(&trainOutput, "output", "model.json", "output path for the trained model")
	trainCmd.Flags().StringVar(&trainHeaders, "headers", "", "known-header list YAML (built-in list when empty)")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", 42, "random seed for balancing and splitting")
}

func runTrain(cmd *cobra.Command, args []string) error {
	corpusPath := args[0]

	headers := classify.DefaultHeaderList()
	if trainHeaders != "" {
		loaded, err := classify.LoadHeaderList(trainHeaders)
		if err != nil {
			return err
		}
		headers = loaded
	}

	examples, err := classify.LoadCorpus(corpusPath, headers)
	if err != nil {
		return err
	}

	classifier := classify.NewClassifier(headers)
	stats, err := classifier.Train(examples, trainSeed)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	if err := classifier.Save(trainOutput); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Trained on %d header and %d non-header example(s)\n",
		stats.HeaderExamples, stats.NonHeaderExamples)
	fmt.Fprintf(os.Stderr, "Threshold: %.2f, validation F1: %.3f\n", stats.Threshold, stats.ValidationF1)
	fmt.Printf("✓ Model written to %s\n", trainOutput)

	if verbose {
		for name, weight := range classifier.Weights() {
			fmt.Fprintf(os.Stderr, "  %-15s %+.3f\n", name, weight)
		}
	}

	return nil
}
