package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rezonia/idoc-edi/internal/mapper"
	"github.com/rezonia/idoc-edi/internal/segment"
)

var verifyJSON bool

var verifyCmd = &cobra.Command{
	Use:   "verify [files...]",
	Short: "Verify trailer counts of EDIFACT files",
	Long: `Verify the control counts of rendered EDIFACT interchanges.

Verifies:
  - CNT+2 matches the number of LIN segments before it
  - UNT matches the number of segments from UNH through UNT
  - UNZ matches the number of messages in the interchange

Examples:
  idoc-edi verify out/invoice.edi
  idoc-edi verify out/ --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "Print a JSON report")
}

// VerifyResult holds the result of verifying a single file
type VerifyResult struct {
	File     string `json:"file"`
	Valid    bool   `json:"valid"`
	Segments int    `json:"segments"`
	Error    string `json:"error,omitempty"`
}

func runVerify(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args, ".edi")
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no files found to verify")
	}

	results := make([]*VerifyResult, 0, len(files))
	allValid := true
	for _, file := range files {
		result := verifyFile(file)
		results = append(results, result)
		if !result.Valid {
			allValid = false
			logger.Warn("verification failed", zap.String("file", file), zap.String("error", result.Error))
		}
	}

	w := cmd.OutOrStdout()
	if verifyJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Fprintf(w, "%s: OK (%d segments)\n", r.File, r.Segments)
			} else {
				fmt.Fprintf(w, "%s: INVALID: %s\n", r.File, r.Error)
			}
		}
	}

	if !allValid {
		return fmt.Errorf("one or more files failed verification")
	}
	return nil
}

func verifyFile(path string) *VerifyResult {
	result := &VerifyResult{File: path}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Error = fmt.Sprintf("failed to read file: %v", err)
		return result
	}

	segs := segment.EDIFACT.Split(string(data))
	result.Segments = len(segs)
	if len(segs) == 0 {
		result.Error = "no segments found"
		return result
	}

	if err := mapper.NewReconciler().Verify(segs); err != nil {
		result.Error = err.Error()
		return result
	}

	result.Valid = true
	return result
}
