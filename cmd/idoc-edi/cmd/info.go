package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rezonia/idoc-edi/internal/processor"
)

var infoCmd = &cobra.Command{
	Use:   "info [files...]",
	Short: "Show information about IDOC files",
	Long: `Display information about IDOC files without converting them.

Shows:
  - Root element and IDOC document number
  - Partner roles, and which of them the strict mapping emits
  - Number of line items
  - Record types below the IDOC anchor

Examples:
  idoc-edi info invoice.xml
  idoc-edi info idocs/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args, ".xml")
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no files found")
	}

	profile, err := loadProfile()
	if err != nil {
		return err
	}
	pipeline := processor.NewPipeline(processor.WithLogger(logger), processor.WithProfile(profile))

	w := cmd.OutOrStdout()
	for _, file := range files {
		printFileInfo(cmd.Context(), w, pipeline, file)
		fmt.Fprintln(w)
	}

	return nil
}

func printFileInfo(ctx context.Context, w io.Writer, pipeline *processor.Pipeline, filePath string) {
	fmt.Fprintf(w, "File: %s\n", filePath)

	info, err := os.Stat(filePath)
	if err != nil {
		fmt.Fprintf(w, "  Error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "  Size: %d bytes\n", info.Size())

	data, err := os.ReadFile(filePath)
	if err != nil {
		fmt.Fprintf(w, "  Error reading file: %v\n", err)
		return
	}

	summary, err := pipeline.Inspect(ctx, data)
	if err != nil {
		fmt.Fprintf(w, "  Error: %v\n", err)
		return
	}

	fmt.Fprintf(w, "  Root: %s\n", summary.Root)
	fmt.Fprintf(w, "  Document: %s\n", orNone(summary.DocumentNumber))
	fmt.Fprintf(w, "  Currency: %s\n", orNone(summary.Currency))
	fmt.Fprintf(w, "  Partners: %s\n", orNone(strings.Join(summary.PartnerRoles, ", ")))
	fmt.Fprintf(w, "  Mapped partners: %s\n", orNone(strings.Join(summary.MappedRoles, ", ")))
	fmt.Fprintf(w, "  Line items: %d\n", summary.LineItems)
	fmt.Fprintf(w, "  Records: %s\n", orNone(strings.Join(summary.Segments, " ")))
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
