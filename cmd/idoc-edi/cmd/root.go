package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rezonia/idoc-edi/internal/config"
)

var (
	version = "1.0.0"

	// Global flags
	verbose     bool
	profilePath string
	outputDir   string

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "idoc-edi",
	Short: "Convert SAP IDOC XML into EDIFACT INVOIC messages",
	Long: `idoc-edi converts SAP INVOIC02 IDOC exports into EDIFACT INVOIC D.07A
messages, or maps any IDOC onto generic delimited segments.

Modes:
  - strict:  fixed INVOIC segment layout ('+' ':' and ' delimiters)
  - dynamic: one segment per IDOC record ('*' and '~' delimiters)

Examples:
  # Convert a single IDOC to stdout
  idoc-edi convert invoice.xml

  # Convert a directory, writing one .edi file per input
  idoc-edi convert idocs/ --output-dir out/

  # Generic segments with a custom profile
  idoc-edi convert invoice.xml --mode dynamic --profile profile.yaml

  # Check trailer counts of a rendered interchange
  idoc-edi verify out/invoice.edi`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&profilePath, "profile", "p", "", "Conversion profile YAML (env: IDOC_EDI_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for converted files (env: IDOC_EDI_OUTPUT_DIR)")

	// Load from environment variables if not set via flags
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if profilePath == "" {
		profilePath = os.Getenv("IDOC_EDI_PROFILE")
	}
	if outputDir == "" {
		outputDir = os.Getenv("IDOC_EDI_OUTPUT_DIR")
	}
}

// loadProfile returns the profile named by --profile, or the defaults
func loadProfile() (*config.Profile, error) {
	if profilePath == "" {
		return config.Default(), nil
	}
	p, err := config.Load(profilePath)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded profile", zap.String("path", profilePath))
	return p, nil
}
