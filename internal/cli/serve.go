package cli

import (
	"fmt"

	"resumelens/internal/config"
	"resumelens/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server exposing the analysis pipeline as a REST API.

Available endpoints:
- POST /v1/analyze: Full analysis (multipart resume upload or JSON text)
- POST /v1/match: Deterministic skills/ATS match
- POST /v1/questions: Interview question generation
- POST /v1/qa: Topic-scoped Q&A generation
- POST /v1/improve: Resume rewrite
- POST /v1/export: Render DOCX/PDF
- DELETE /v1/sessions/{id}: Discard a session
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info

Sessions are keyed by the X-Session-ID header and cache parsed resumes,
match results and the per-resume retrieval index until they expire.

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server
- Use --cert-file and --key-file for TLS certificates`,
	RunE: runServe,
}

var (
	servePort     string
	serveHost     string
	serveTLSMode  string
	serveCertFile string
	serveKeyFile  string
)

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default from config)")
	serveCmd.Flags().StringVar(&serveTLSMode, "tls-mode", "", "TLS mode: disabled, server (overrides config)")
	serveCmd.Flags().StringVar(&serveCertFile, "cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().StringVar(&serveKeyFile, "key-file", "", "Server private key file (PEM, overrides config)")
}

// applyServeFlags overrides config values with explicit serve flags.
func applyServeFlags(cfg *config.Config) {
	if servePort != "" {
		cfg.Server.Port = servePort
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if serveTLSMode != "" {
		cfg.Server.TLS.Mode = serveTLSMode
	}
	if serveCertFile != "" {
		cfg.Server.TLS.CertFile = serveCertFile
	}
	if serveKeyFile != "" {
		cfg.Server.TLS.KeyFile = serveKeyFile
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	applyServeFlags(cfg)

	// Validate TLS configuration after applying overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid server configuration: %w", err)
	}

	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return fmt.Errorf("failed to load skills vocabulary: %w", err)
	}

	// Hot-reload the vocabulary on file changes while the server runs.
	if cfg.Analyzer.WatchVocabulary && cfg.Analyzer.VocabularyFile != "" {
		watcher, err := config.NewVocabularyWatcher(cfg.Analyzer.VocabularyFile, analyzer.SetVocabulary, logger)
		if err != nil {
			return fmt.Errorf("failed to watch vocabulary file: %w", err)
		}
		defer func() { _ = watcher.Close() }()
		logger.Info("Vocabulary hot reload enabled", "file", cfg.Analyzer.VocabularyFile)
	}

	serverCfg := server.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        Version,
		TLSConfig:      cfg.Server.TLS,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.App.MaxFileSize,
		RateLimit:      &cfg.Server.RateLimit,
	}
	return server.NewServer(cfg, serverCfg, analyzer, logger).Start()
}
