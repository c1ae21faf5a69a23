package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		AI: AIConfig{
			Provider:    "gemini",
			Model:       "gemini-2.0-flash",
			Timeout:     60 * time.Second,
			MaxRetries:  3,
			Temperature: 0.7,
		},
		Index: IndexConfig{
			Enabled:        true,
			EmbeddingModel: "gemini-embedding-001",
			MaxChunkChars:  600,
			ChunkOverlap:   120,
			TopK:           5,
		},
		Session: SessionConfig{
			TTL:           30 * time.Minute,
			SweepInterval: 5 * time.Minute,
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: "8080",
			TLS:  TLSConfig{Mode: "disabled"},
		},
		App: AppConfig{
			LogLevel:         "info",
			DefaultFormat:    "json",
			SupportedFormats: []string{"json", "text", "markdown"},
			MaxFileSize:      10 * 1024 * 1024,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "zero AI timeout",
			mutate:  func(c *Config) { c.AI.Timeout = 0 },
			wantErr: "timeout",
		},
		{
			name:    "missing server port",
			mutate:  func(c *Config) { c.Server.Port = "" },
			wantErr: "port",
		},
		{
			name:    "unsupported default format",
			mutate:  func(c *Config) { c.App.DefaultFormat = "xml" },
			wantErr: "default format",
		},
		{
			name:    "zero max file size",
			mutate:  func(c *Config) { c.App.MaxFileSize = 0 },
			wantErr: "maxFileSize",
		},
		{
			name:    "chunk overlap not smaller than chunk size",
			mutate:  func(c *Config) { c.Index.ChunkOverlap = 600 },
			wantErr: "chunkOverlap",
		},
		{
			name: "index disabled skips index validation",
			mutate: func(c *Config) {
				c.Index.Enabled = false
				c.Index.MaxChunkChars = 0
			},
		},
		{
			name:    "zero session ttl",
			mutate:  func(c *Config) { c.Session.TTL = 0 },
			wantErr: "session ttl",
		},
		{
			name:    "zero session sweep interval",
			mutate:  func(c *Config) { c.Session.SweepInterval = 0 },
			wantErr: "sweepInterval",
		},
		{
			name:    "tls server mode without cert",
			mutate:  func(c *Config) { c.Server.TLS.Mode = "server" },
			wantErr: "certificate",
		},
		{
			name: "tls server mode with cert and key",
			mutate: func(c *Config) {
				c.Server.TLS.Mode = "server"
				c.Server.TLS.CertFile = "server.crt"
				c.Server.TLS.KeyFile = "server.key"
			},
		},
		{
			name:    "invalid tls mode",
			mutate:  func(c *Config) { c.Server.TLS.Mode = "mutual" },
			wantErr: "invalid TLS mode",
		},
		{
			name: "invalid tls min version",
			mutate: func(c *Config) {
				c.Server.TLS.Mode = "server"
				c.Server.TLS.CertFile = "server.crt"
				c.Server.TLS.KeyFile = "server.key"
				c.Server.TLS.MinVersion = "1.0"
			},
			wantErr: "minVersion",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestGetEnhanceConfigAppliesGlobalDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.AI.APIKey = "global-key"
	cfg.AI.UseSystemPrompts = true
	cfg.AI.CustomPrompts.SystemPrompts.EnhanceAnalysis = "global system prompt"

	op := cfg.GetEnhanceConfig()

	if op.Provider != "gemini" {
		t.Errorf("Provider = %q, want inherited %q", op.Provider, "gemini")
	}
	if op.Model != "gemini-2.0-flash" {
		t.Errorf("Model = %q, want inherited %q", op.Model, "gemini-2.0-flash")
	}
	if op.APIKey != "global-key" {
		t.Errorf("APIKey = %q, want inherited global key", op.APIKey)
	}
	if op.Timeout == nil || *op.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want inherited 60s", op.Timeout)
	}
	if op.MaxRetries == nil || *op.MaxRetries != 3 {
		t.Errorf("MaxRetries = %v, want inherited 3", op.MaxRetries)
	}
	if op.UseSystemPrompts == nil || !*op.UseSystemPrompts {
		t.Errorf("UseSystemPrompts = %v, want inherited true", op.UseSystemPrompts)
	}
	if op.CustomPrompts.SystemPrompts.EnhanceAnalysis != "global system prompt" {
		t.Errorf("system prompt = %q, want inherited global prompt",
			op.CustomPrompts.SystemPrompts.EnhanceAnalysis)
	}
}

func TestGetImproveConfigKeepsOperationOverrides(t *testing.T) {
	cfg := validConfig()
	cfg.AI.APIKey = "global-key"

	opTimeout := 90 * time.Second
	opTemp := float32(0.3)
	cfg.AI.Improve = OperationAIConfig{
		Model:       "gemini-2.5-pro",
		Timeout:     &opTimeout,
		Temperature: &opTemp,
	}
	cfg.AI.Improve.CustomPrompts.UserPrompts.ImproveResume = "op prompt"

	op := cfg.GetImproveConfig()

	if op.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %q, want operation override kept", op.Model)
	}
	if op.Timeout == nil || *op.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v, want operation override kept", op.Timeout)
	}
	if op.Temperature == nil || *op.Temperature != 0.3 {
		t.Errorf("Temperature = %v, want operation override kept", op.Temperature)
	}
	if op.APIKey != "global-key" {
		t.Errorf("APIKey = %q, want inherited global key", op.APIKey)
	}
	if op.CustomPrompts.UserPrompts.ImproveResume != "op prompt" {
		t.Errorf("user prompt = %q, want operation override kept",
			op.CustomPrompts.UserPrompts.ImproveResume)
	}
}

func TestLoadPromptsFromFiles(t *testing.T) {
	dir := t.TempDir()

	promptFile := filepath.Join(dir, "enhance_system.txt")
	if err := os.WriteFile(promptFile, []byte("  file prompt  \n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Run("file content is loaded and trimmed", func(t *testing.T) {
		cfg := validConfig()
		cfg.AI.CustomPrompts.SystemPrompts.EnhanceAnalysisFile = promptFile
		if err := cfg.loadPromptsFromFiles(); err != nil {
			t.Fatalf("loadPromptsFromFiles() = %v", err)
		}
		if got := cfg.AI.CustomPrompts.SystemPrompts.EnhanceAnalysis; got != "file prompt" {
			t.Errorf("prompt = %q, want %q", got, "file prompt")
		}
	})

	t.Run("inline prompt wins over file", func(t *testing.T) {
		cfg := validConfig()
		cfg.AI.CustomPrompts.SystemPrompts.EnhanceAnalysis = "inline"
		cfg.AI.CustomPrompts.SystemPrompts.EnhanceAnalysisFile = promptFile
		if err := cfg.loadPromptsFromFiles(); err != nil {
			t.Fatalf("loadPromptsFromFiles() = %v", err)
		}
		if got := cfg.AI.CustomPrompts.SystemPrompts.EnhanceAnalysis; got != "inline" {
			t.Errorf("prompt = %q, want inline value kept", got)
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		cfg := validConfig()
		cfg.AI.Questions.CustomPrompts.UserPrompts.GenerateQuestionsFile = filepath.Join(dir, "absent.txt")
		if err := cfg.loadPromptsFromFiles(); err == nil {
			t.Error("loadPromptsFromFiles() = nil, want error for missing file")
		}
	})

	t.Run("empty file is an error", func(t *testing.T) {
		empty := filepath.Join(dir, "empty.txt")
		if err := os.WriteFile(empty, []byte("   \n"), 0o600); err != nil {
			t.Fatal(err)
		}
		cfg := validConfig()
		cfg.AI.CustomPrompts.UserPrompts.GenerateQAFile = empty
		if err := cfg.loadPromptsFromFiles(); err == nil {
			t.Error("loadPromptsFromFiles() = nil, want error for empty file")
		}
	})
}

func TestLoadVocabulary(t *testing.T) {
	t.Run("empty path returns built-in lexicon", func(t *testing.T) {
		vocab, err := LoadVocabulary("")
		if err != nil {
			t.Fatalf("LoadVocabulary(\"\") = %v", err)
		}
		if !vocab.Has("python") {
			t.Error("built-in vocabulary should know python")
		}
	})

	t.Run("file replaces lexicon wholesale", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "vocab.yaml")
		content := `skills:
  - cobol
  - fortran
multiWord:
  - mainframe migration
variations:
  cobol:
    - cobol-85
importance:
  high:
    - cobol
stopwords:
  - legacy
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		vocab, err := LoadVocabulary(path)
		if err != nil {
			t.Fatalf("LoadVocabulary() = %v", err)
		}
		if !vocab.Has("cobol") || !vocab.Has("fortran") {
			t.Error("custom skills missing from loaded vocabulary")
		}
		if vocab.Has("python") {
			t.Error("built-in skills should not leak into a custom vocabulary")
		}
		if !vocab.IsStopword("legacy") {
			t.Error("custom stopword not loaded")
		}
		if got := vocab.ImportanceOf("cobol"); got != "high" {
			t.Errorf("ImportanceOf(cobol) = %q, want high", got)
		}
		if got := vocab.ImportanceOf("fortran"); got != "low" {
			t.Errorf("ImportanceOf(fortran) = %q, want default low", got)
		}
	})

	t.Run("file without skills is rejected", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "vocab.yaml")
		if err := os.WriteFile(path, []byte("stopwords:\n  - the\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadVocabulary(path); err == nil {
			t.Error("LoadVocabulary() = nil, want error for lexicon without skills")
		}
	})
}
