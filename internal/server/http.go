package server

import (
	"time"

	"resumelens/internal/config"
	lensErrors "resumelens/internal/errors"
	"resumelens/internal/export"
	"resumelens/internal/session"
	"resumelens/internal/skills"
)

// AnalyzeRequest is the JSON body of the analyze and match endpoints.
// When the request is multipart, the resume arrives as a file part
// instead of ResumeText. Either may be empty when the session already
// holds a resume.
type AnalyzeRequest struct {
	ResumeText     string `json:"resumeText,omitempty"`
	JobDescription string `json:"jobDescription"`
	Enhance        *bool  `json:"enhance,omitempty"`
}

type QuestionsRequest struct {
	ResumeText     string `json:"resumeText,omitempty"`
	JobDescription string `json:"jobDescription,omitempty"`
	Count          int    `json:"count,omitempty"`
}

type QARequest struct {
	ResumeText string `json:"resumeText,omitempty"`
	Topic      string `json:"topic"`
	Count      int    `json:"count,omitempty"`
}

type ImproveRequest struct {
	ResumeText     string `json:"resumeText,omitempty"`
	JobDescription string `json:"jobDescription,omitempty"`
	Level          string `json:"level,omitempty"`
}

type ExportRequest struct {
	Format   string   `json:"format"`
	Title    string   `json:"title,omitempty"`
	Body     string   `json:"body"`
	Sections []string `json:"sections,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// sessionHeader carries the session ID on requests and responses.
const sessionHeader = "X-Session-ID"

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Domain components shared across requests
	Analyzer *skills.Analyzer
	Sessions *session.Manager
	Exporter *export.Exporter

	// Logger
	Logger *lensErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, analyzer *skills.Analyzer, logger *lensErrors.Logger) *Server {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Analyzer:       analyzer,
		Sessions:       session.NewManager(appCfg.Session.TTL),
		Exporter:       export.NewExporter(logger),
		Logger:         logger,
	}
}
