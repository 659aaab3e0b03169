package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dchernyak/cvproof/internal/classify"
)

var headersFile string

// headersCmd represents the headers command
var headersCmd = &cobra.Command{
	Use:   "headers",
	Short: "Manage the known section-header list",
	Long: `Manage the reference list of known CV section headers. The list backs
the classifier's known-header feature and the publication-section filter.`,
}

var headersShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the header list",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := loadHeadersFlag()
		if err != nil {
			return err
		}
		for _, entry := range list.Entries() {
			fmt.Println(entry)
		}
		fmt.Fprintf(os.Stderr, "%d header(s)\n", list.Len())
		return nil
	},
}

var headersInitCmd = &cobra.Command{
	Use:   "init <file>",
	Short: "Write the built-in header list to a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("file already exists: %s", path)
		}
		if err := classify.DefaultHeaderList().Save(path); err != nil {
			return err
		}
		fmt.Printf("✓ Header list written to %s\n", path)
		return nil
	},
}

var headersAddCmd = &cobra.Command{
	Use:   "add <header>...",
	Short: "Add headers to a list file",
	Long: `Add one or more headers to a YAML list file and save it back.
Entries are normalized, so casing and trailing colons do not create
duplicates.

Example:
  cvproof headers add "Refereed Articles" "Creative Works" --file headers.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if headersFile == "" {
			return fmt.Errorf("--file is required")
		}

		list, err := classify.LoadHeaderList(headersFile)
		if err != nil {
			return err
		}
		before := list.Len()
		for _, h := range args {
			list.Add(h)
		}
		if err := list.Save(headersFile); err != nil {
			return err
		}
		fmt.Printf("✓ Added %d new header(s) to %s\n", list.Len()-before, headersFile)
		return nil
	},
}

func loadHeadersFlag() (*classify.HeaderList, error) {
	if headersFile == "" {
		return classify.DefaultHeaderList(), nil
	}
	return classify.LoadHeaderList(headersFile)
}

func init() {
	rootCmd.AddCommand(headersCmd)
	headersCmd.AddCommand(headersShowCmd)
	headersCmd.AddCommand(headersInitCmd)
	headersCmd.AddCommand(headersAddCmd)

	headersCmd.PersistentFlags().StringVar(&headersFile, "file", "", "header list YAML file (built-in list when empty)")
}
