package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rezonia/idoc-edi/internal/config"
	"github.com/rezonia/idoc-edi/internal/mapper"
	"github.com/rezonia/idoc-edi/internal/model"
	"github.com/rezonia/idoc-edi/internal/processor"
	"github.com/rezonia/idoc-edi/internal/segment"
	"github.com/rezonia/idoc-edi/internal/store"
)

// StatusConverted is reported for every successful conversion
const StatusConverted = "converted"

// Config holds server configuration
type Config struct {
	Address      string
	OutputDir    string
	Profile      *config.Profile
	Logger       *zap.Logger
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// RequestTimeout bounds a single conversion
	RequestTimeout time.Duration
	Debug          bool
}

// Server represents the HTTP API server
type Server struct {
	config   *Config
	router   *gin.Engine
	logger   *zap.Logger
	pipeline *processor.Pipeline
	store    *store.FileStore
}

// NewServer creates a new API server.
// Converted messages are persisted when an output directory is configured.
func NewServer(config *Config) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 30 * time.Second
	}

	s := &Server{
		config: config,
		router: router,
		logger: logger,
		pipeline: processor.NewPipeline(
			processor.WithLogger(logger),
			processor.WithProfile(config.Profile),
		),
	}
	if config.OutputDir != "" {
		s.store = store.NewFileStore(config.OutputDir, logger)
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		// Convert endpoints
		v1.POST("/convert", s.handleConvert)
		v1.POST("/convert/strict", s.convertWith(model.ModeStrict))
		v1.POST("/convert/dynamic", s.convertWith(model.ModeDynamic))

		// Trailer check of a rendered interchange
		v1.POST("/validate", s.handleValidate)

		// Info endpoint
		v1.POST("/info", s.handleInfo)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.logger.Info("listening", zap.String("address", s.config.Address))
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleConvert(c *gin.Context) {
	mode, err := model.ParseMode(c.Query("mode"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	s.convert(c, mode)
}

func (s *Server) convertWith(mode model.Mode) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.convert(c, mode)
	}
}

func (s *Server) convert(c *gin.Context, mode model.Mode) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	if processor.DetectFormat(body) != processor.FormatXML {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unsupported file format", Details: "expected an XML document"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.config.RequestTimeout)
	defer cancel()

	result := s.pipeline.Convert(ctx, mode, body)
	if result.Error != nil {
		s.logger.Info("conversion rejected", zap.String("mode", string(mode)), zap.Error(result.Error))
		c.JSON(statusFor(result.Error), ErrorResponse{
			Error:    "conversion failed",
			Details:  result.Error.Error(),
			Warnings: result.Warnings,
		})
		return
	}

	response := ConvertResponse{
		Status:   StatusConverted,
		Mode:     string(result.Mode),
		Content:  result.Content,
		Segments: len(result.Segments),
		Items:    result.Items,
		Warnings: result.Warnings,
	}

	if s.store != nil {
		path, err := s.store.Save(mode, result.Content)
		if err != nil {
			s.logger.Error("failed to persist output", zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to persist output"})
			return
		}
		response.Path = path
	}

	c.JSON(http.StatusOK, response)
}

func (s *Server) handleValidate(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	segs := segment.EDIFACT.Split(string(body))
	response := ValidationResponse{Valid: true, Segments: len(segs)}
	if err := mapper.NewReconciler().Verify(segs); err != nil {
		response.Valid = false
		response.Errors = []string{err.Error()}
	}

	c.JSON(http.StatusOK, response)
}

func (s *Server) handleInfo(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.config.RequestTimeout)
	defer cancel()

	summary, err := s.pipeline.Inspect(ctx, body)
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: "inspection failed", Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, InfoResponse{
		Format:  string(processor.FormatXML),
		Size:    len(body),
		Summary: summary,
	})
}

// Helper functions

func readBody(c *gin.Context) ([]byte, bool) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return nil, false
	}

	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return nil, false
	}
	return body, true
}

func statusFor(err error) int {
	var vErr *model.ValidationError
	var docErr *model.DocumentError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.As(err, &docErr):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusUnprocessableEntity
	}
}
