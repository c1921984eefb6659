package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rezonia/idoc-edi/internal/model"
	"github.com/rezonia/idoc-edi/internal/processor"
	"github.com/rezonia/idoc-edi/internal/store"
)

var (
	convertMode    string
	convertTimeout time.Duration
	convertWorkers int
	convertJSON    bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert IDOC XML files",
	Long: `Convert one or more IDOC XML files.

Directories are searched for .xml files. Without --output-dir the rendered
messages are written to stdout; with it each input produces one file named
after the input (.edi in strict mode, .txt in dynamic mode).

Examples:
  idoc-edi convert invoice.xml
  idoc-edi convert idocs/*.xml -o out/
  idoc-edi convert idocs/ --mode dynamic --workers 8`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertMode, "mode", "m", string(model.ModeStrict), "Mapping mode (strict, dynamic)")
	convertCmd.Flags().DurationVar(&convertTimeout, "timeout", 2*time.Minute, "Timeout for the whole batch")
	convertCmd.Flags().IntVar(&convertWorkers, "workers", 4, "Files converted in parallel")
	convertCmd.Flags().BoolVar(&convertJSON, "json", false, "Print a JSON report instead of the converted content")
}

// ConvertReport holds the outcome of converting a single file
type ConvertReport struct {
	File     string   `json:"file"`
	Mode     string   `json:"mode"`
	Output   string   `json:"output,omitempty"`
	Segments int      `json:"segments"`
	Items    int      `json:"items,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}

func runConvert(cmd *cobra.Command, args []string) error {
	mode, err := model.ParseMode(convertMode)
	if err != nil {
		return err
	}

	profile, err := loadProfile()
	if err != nil {
		return err
	}

	files, err := collectFiles(args, ".xml")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to convert")
	}
	logger.Debug("collected input files", zap.Int("count", len(files)))

	inputs := make([][]byte, len(files))
	for i, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		inputs[i] = data
	}

	pipeline := processor.NewPipeline(
		processor.WithLogger(logger),
		processor.WithProfile(profile),
		processor.WithWorkers(convertWorkers),
	)

	ctx, cancel := context.WithTimeout(cmd.Context(), convertTimeout)
	defer cancel()

	results, err := pipeline.ConvertBatch(ctx, mode, inputs)
	if err != nil {
		return fmt.Errorf("conversion interrupted: %w", err)
	}

	var fileStore *store.FileStore
	if outputDir != "" {
		fileStore = store.NewFileStore(outputDir, logger)
	}

	reports, failed := buildReports(files, results, fileStore)
	if err := writeReports(cmd.OutOrStdout(), reports, results); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to convert", failed, len(files))
	}
	return nil
}

func buildReports(files []string, results []*processor.Result, fileStore *store.FileStore) ([]*ConvertReport, int) {
	reports := make([]*ConvertReport, len(files))
	failed := 0

	for i, file := range files {
		result := results[i]
		report := &ConvertReport{File: file, Mode: string(result.Mode)}
		reports[i] = report

		if result.Error != nil {
			failed++
			report.Error = result.Error.Error()
			logger.Error("conversion failed", zap.String("file", file), zap.Error(result.Error))
			continue
		}

		report.Segments = len(result.Segments)
		report.Items = result.Items
		report.Warnings = result.Warnings

		if fileStore != nil {
			path, err := fileStore.SaveAs(file, result.Mode, result.Content)
			if err != nil {
				failed++
				report.Error = err.Error()
				logger.Error("failed to write output", zap.String("file", file), zap.Error(err))
				continue
			}
			report.Output = path
			logger.Info("converted", zap.String("file", file), zap.String("output", path))
		}
	}

	return reports, failed
}

func writeReports(w io.Writer, reports []*ConvertReport, results []*processor.Result) error {
	if convertJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(reports)
	}

	for i, report := range reports {
		switch {
		case report.Error != "":
			fmt.Fprintf(w, "%s: ERROR: %s\n", report.File, report.Error)
		case report.Output != "":
			fmt.Fprintf(w, "%s -> %s (%d segments)\n", report.File, report.Output, report.Segments)
		default:
			if len(reports) > 1 {
				fmt.Fprintf(w, "==> %s <==\n", report.File)
			}
			fmt.Fprintln(w, results[i].Content)
		}
	}
	return nil
}
