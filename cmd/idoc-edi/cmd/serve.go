package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rezonia/idoc-edi/internal/server"
)

var (
	serverAddr     string
	serverDebug    bool
	readTimeout    time.Duration
	writeTimeout   time.Duration
	requestTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for converting IDOCs.

The API provides endpoints for:
  - POST /api/v1/convert?mode=   - Convert an IDOC (strict by default)
  - POST /api/v1/convert/strict  - Convert to EDIFACT INVOIC
  - POST /api/v1/convert/dynamic - Convert to generic segments
  - POST /api/v1/validate        - Check trailer counts of an interchange
  - POST /api/v1/info            - Summarize an IDOC
  - GET  /health                 - Health check

With --output-dir every converted message is also written to disk and the
response carries its path.

Examples:
  # Start server on default port
  idoc-edi serve

  # Persist converted messages
  idoc-edi serve --address :8080 -o /var/spool/edi

  # Start in debug mode
  idoc-edi serve --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", ":3000", "Server listen address")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", time.Minute, "HTTP write timeout")
	serveCmd.Flags().DurationVar(&requestTimeout, "request-timeout", 30*time.Second, "Timeout for a single conversion")
}

func runServe(cmd *cobra.Command, args []string) error {
	profile, err := loadProfile()
	if err != nil {
		return err
	}

	config := &server.Config{
		Address:        serverAddr,
		OutputDir:      outputDir,
		Profile:        profile,
		Logger:         logger,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		RequestTimeout: requestTimeout,
		Debug:          serverDebug,
	}

	srv := server.NewServer(config)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("shutting down", zap.String("signal", sig.String()))
		_ = logger.Sync()
		os.Exit(0)
	}()

	if outputDir != "" {
		logger.Info("persisting converted messages", zap.String("dir", outputDir))
	}

	return srv.Run()
}
