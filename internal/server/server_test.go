package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"resumelens/internal/config"
	lensErrors "resumelens/internal/errors"
	"resumelens/internal/observability"
	"resumelens/internal/skills"
	"resumelens/internal/types"
)

const testResume = `Jane Doe
Senior Platform Engineer

Experience
- Built Go microservices on Kubernetes with Docker and Terraform
- Operated PostgreSQL and Redis clusters on AWS

Education
- BSc Computer Science

Skills
Go, Kubernetes, Docker, Terraform, PostgreSQL, Redis, AWS`

const testJob = `Looking for a platform engineer with Go, Kubernetes,
Terraform and AWS experience. Python is a plus.`

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.AI.Provider = "fallback"
	cfg.AI.Timeout = 30 * time.Second
	cfg.Session.TTL = 30 * time.Minute
	cfg.Session.SweepInterval = 5 * time.Minute
	cfg.App.MaxFileSize = 1 << 20
	cfg.Observability.HealthCheck.Timeout = 2 * time.Second
	return cfg
}

func newTestServer(t *testing.T, mutate func(*ServerConfig)) (*Server, *observability.ObservabilityManager) {
	t.Helper()

	appCfg := testConfig()
	serverCfg := ServerConfig{
		Host:           "127.0.0.1",
		Port:           "0",
		Version:        "test",
		MaxRequestSize: appCfg.App.MaxFileSize,
	}
	if mutate != nil {
		mutate(&serverCfg)
	}

	logger := lensErrors.NewLogger(slog.LevelError, "text")
	analyzer := skills.NewAnalyzer(skills.DefaultVocabulary())
	srv := NewServer(appCfg, serverCfg, analyzer, logger)

	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{}, appCfg)
	if err != nil {
		t.Fatalf("NewObservabilityManager: %v", err)
	}
	return srv, om
}

func postJSON(t *testing.T, handler http.Handler, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestMatchEndpoint(t *testing.T) {
	srv, om := newTestServer(t, nil)
	mux := srv.setupRoutes(om)

	rec := postJSON(t, mux, "/v1/match", AnalyzeRequest{
		ResumeText:     testResume,
		JobDescription: testJob,
	}, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	sessionID := rec.Header().Get(sessionHeader)
	if sessionID == "" {
		t.Error("expected X-Session-ID header on response")
	}

	var result types.MatchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if result.ATSScore <= 0 {
		t.Errorf("expected positive ATS score, got %v", result.ATSScore)
	}
	if len(result.MatchedSkills) == 0 {
		t.Error("expected matched skills")
	}
	if result.FromCache {
		t.Error("first request must not come from cache")
	}

	// Same pair within the same session is served from the memo table.
	rec2 := postJSON(t, mux, "/v1/match", AnalyzeRequest{
		ResumeText:     testResume,
		JobDescription: testJob,
	}, map[string]string{sessionHeader: sessionID})
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200 on repeat, got %d", rec2.Code)
	}
	var cached types.MatchResult
	if err := json.Unmarshal(rec2.Body.Bytes(), &cached); err != nil {
		t.Fatalf("unmarshal repeat response: %v", err)
	}
	if !cached.FromCache {
		t.Error("expected repeated request to be served from cache")
	}
	if cached.ATSScore != result.ATSScore {
		t.Errorf("cached score %v differs from original %v", cached.ATSScore, result.ATSScore)
	}
}

func TestMatchEndpointRequiresResume(t *testing.T) {
	srv, om := newTestServer(t, nil)
	mux := srv.setupRoutes(om)

	rec := postJSON(t, mux, "/v1/match", AnalyzeRequest{JobDescription: testJob}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a resume, got %d", rec.Code)
	}
}

func TestAnalyzeEndpointEnhancesInFallbackMode(t *testing.T) {
	srv, om := newTestServer(t, nil)
	mux := srv.setupRoutes(om)

	rec := postJSON(t, mux, "/v1/analyze", AnalyzeRequest{
		ResumeText:     testResume,
		JobDescription: testJob,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var out types.AnalyzeOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if out.Enhanced == nil {
		t.Fatal("expected enhanced analysis in the response")
	}
	if out.Enhanced.Summary == "" {
		t.Error("expected non-empty enhancement summary")
	}
	if out.Match.ATSScore <= 0 {
		t.Errorf("expected positive ATS score, got %v", out.Match.ATSScore)
	}
}

func TestAnalyzeEndpointRepeatReplaysEnhancement(t *testing.T) {
	srv, om := newTestServer(t, nil)
	mux := srv.setupRoutes(om)

	rec := postJSON(t, mux, "/v1/analyze", AnalyzeRequest{
		ResumeText:     testResume,
		JobDescription: testJob,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	sessionID := rec.Header().Get(sessionHeader)

	var first types.AnalyzeOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatalf("unmarshal first response: %v", err)
	}
	if first.Enhanced == nil {
		t.Fatal("first analyze must carry an enhanced analysis")
	}

	// The same pair in the same session hits the memo table; the
	// enhancement must come back with it, not vanish.
	rec2 := postJSON(t, mux, "/v1/analyze", AnalyzeRequest{
		ResumeText:     testResume,
		JobDescription: testJob,
	}, map[string]string{sessionHeader: sessionID})
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200 on repeat, got %d", rec2.Code)
	}

	var second types.AnalyzeOutput
	if err := json.Unmarshal(rec2.Body.Bytes(), &second); err != nil {
		t.Fatalf("unmarshal second response: %v", err)
	}
	if !second.Match.FromCache {
		t.Error("expected repeated analyze to be served from cache")
	}
	if second.Enhanced == nil {
		t.Fatal("cache hit dropped the enhanced analysis")
	}
	if second.Enhanced.Summary != first.Enhanced.Summary {
		t.Errorf("replayed enhancement differs: %q vs %q",
			second.Enhanced.Summary, first.Enhanced.Summary)
	}
}

func TestAnalyzeEndpointEnhancesMatchSeededCacheEntry(t *testing.T) {
	srv, om := newTestServer(t, nil)
	mux := srv.setupRoutes(om)

	// Seed the memo entry through the deterministic endpoint; no
	// enhancement is stored yet.
	rec := postJSON(t, mux, "/v1/match", AnalyzeRequest{
		ResumeText:     testResume,
		JobDescription: testJob,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("seed request failed: %d", rec.Code)
	}
	sessionID := rec.Header().Get(sessionHeader)

	rec2 := postJSON(t, mux, "/v1/analyze", AnalyzeRequest{
		ResumeText:     testResume,
		JobDescription: testJob,
	}, map[string]string{sessionHeader: sessionID})
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec2.Code, rec2.Body.String())
	}

	var out types.AnalyzeOutput
	if err := json.Unmarshal(rec2.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !out.Match.FromCache {
		t.Error("expected the match to come from the memo table")
	}
	if out.Enhanced == nil {
		t.Fatal("analyze on a match-seeded entry must still run enhancement")
	}
}

func TestAnalyzeEndpointSkipsEnhancement(t *testing.T) {
	srv, om := newTestServer(t, nil)
	mux := srv.setupRoutes(om)

	noEnhance := false
	rec := postJSON(t, mux, "/v1/analyze", AnalyzeRequest{
		ResumeText:     testResume,
		JobDescription: testJob,
		Enhance:        &noEnhance,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var out types.AnalyzeOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if out.Enhanced != nil {
		t.Error("expected no enhancement when enhance=false")
	}
}

func TestSessionReuseAcrossEndpoints(t *testing.T) {
	srv, om := newTestServer(t, nil)
	mux := srv.setupRoutes(om)

	rec := postJSON(t, mux, "/v1/match", AnalyzeRequest{
		ResumeText:     testResume,
		JobDescription: testJob,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("seed request failed: %d", rec.Code)
	}
	sessionID := rec.Header().Get(sessionHeader)

	// Questions without resumeText should reuse the session's resume.
	rec2 := postJSON(t, mux, "/v1/questions", QuestionsRequest{Count: 3},
		map[string]string{sessionHeader: sessionID})
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200 reusing session resume, got %d: %s", rec2.Code, rec2.Body.String())
	}
	var out types.QuestionsOutput
	if err := json.Unmarshal(rec2.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(out.Questions) == 0 {
		t.Error("expected generated questions")
	}
}

func TestQAEndpointRequiresTopic(t *testing.T) {
	srv, om := newTestServer(t, nil)
	mux := srv.setupRoutes(om)

	rec := postJSON(t, mux, "/v1/qa", QARequest{ResumeText: testResume}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without topic, got %d", rec.Code)
	}
}

func TestImproveEndpointRejectsUnknownLevel(t *testing.T) {
	srv, om := newTestServer(t, nil)
	mux := srv.setupRoutes(om)

	rec := postJSON(t, mux, "/v1/improve", ImproveRequest{
		ResumeText: testResume,
		Level:      "extreme",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown level, got %d", rec.Code)
	}
}

func TestImproveEndpointFallback(t *testing.T) {
	srv, om := newTestServer(t, nil)
	mux := srv.setupRoutes(om)

	rec := postJSON(t, mux, "/v1/improve", ImproveRequest{
		ResumeText:     testResume,
		JobDescription: testJob,
		Level:          "moderate",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var out types.ImprovedResume
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if out.Content == "" {
		t.Error("expected rewritten content")
	}
	if out.EnhancementLevel != types.EnhancementModerate {
		t.Errorf("expected moderate level, got %q", out.EnhancementLevel)
	}
}

func TestExportEndpointRejectsUnknownFormat(t *testing.T) {
	srv, om := newTestServer(t, nil)
	mux := srv.setupRoutes(om)

	rec := postJSON(t, mux, "/v1/export", ExportRequest{
		Format: "odt",
		Body:   "Some resume text",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown format, got %d", rec.Code)
	}
}

func TestExportEndpointRendersDOCX(t *testing.T) {
	srv, om := newTestServer(t, nil)
	mux := srv.setupRoutes(om)

	rec := postJSON(t, mux, "/v1/export", ExportRequest{
		Format: "docx",
		Title:  "Jane Doe",
		Body:   "Summary\nPlatform engineer.\n\nSkills\n- Go\n- Kubernetes",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "wordprocessingml") {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "resume.docx") {
		t.Errorf("unexpected content disposition %q", cd)
	}
	// OOXML packages are ZIP archives.
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("expected ZIP signature on DOCX payload")
	}
}

func TestDeleteSession(t *testing.T) {
	srv, om := newTestServer(t, nil)
	mux := srv.setupRoutes(om)

	rec := postJSON(t, mux, "/v1/match", AnalyzeRequest{
		ResumeText:     testResume,
		JobDescription: testJob,
	}, nil)
	sessionID := rec.Header().Get(sessionHeader)
	if sessionID == "" {
		t.Fatal("no session ID on seed response")
	}

	req := httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+sessionID, nil)
	del := httptest.NewRecorder()
	mux.ServeHTTP(del, req)
	if del.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", del.Code)
	}

	req2 := httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+sessionID, nil)
	del2 := httptest.NewRecorder()
	mux.ServeHTTP(del2, req2)
	if del2.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", del2.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	srv, _ := newTestServer(t, func(cfg *ServerConfig) {
		cfg.APIKeys = []string{"secret-key-12345"}
	})

	handler := srv.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name     string
		headers  map[string]string
		expected int
	}{
		{name: "missing key", headers: nil, expected: http.StatusUnauthorized},
		{name: "invalid key", headers: map[string]string{"X-API-Key": "wrong"}, expected: http.StatusUnauthorized},
		{name: "valid header key", headers: map[string]string{"X-API-Key": "secret-key-12345"}, expected: http.StatusOK},
		{name: "valid bearer token", headers: map[string]string{"Authorization": "Bearer secret-key-12345"}, expected: http.StatusOK},
		{name: "invalid bearer token", headers: map[string]string{"Authorization": "Bearer nope"}, expected: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/match", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)
			if rec.Code != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, rec.Code)
			}
		})
	}
}

func TestRateLimiterBurst(t *testing.T) {
	limiter := NewRateLimiter(60, 2, nil)
	defer limiter.Close()

	if !limiter.Allow("ip:10.0.0.1") {
		t.Error("first request should be allowed")
	}
	if !limiter.Allow("ip:10.0.0.1") {
		t.Error("second request within burst should be allowed")
	}
	if limiter.Allow("ip:10.0.0.1") {
		t.Error("third request should exceed the burst")
	}
	// A different key has its own bucket.
	if !limiter.Allow("ip:10.0.0.2") {
		t.Error("independent key should be allowed")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		expected   string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "192.0.2.10:41234",
			expected:   "192.0.2.10",
		},
		{
			name:       "x-forwarded-for wins",
			remoteAddr: "10.0.0.1:1000",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"},
			expected:   "203.0.113.5",
		},
		{
			name:       "x-real-ip fallback",
			remoteAddr: "10.0.0.1:1000",
			headers:    map[string]string{"X-Real-IP": "198.51.100.7"},
			expected:   "198.51.100.7",
		},
		{
			name:       "invalid forwarded entries skipped",
			remoteAddr: "10.0.0.1:1000",
			headers:    map[string]string{"X-Forwarded-For": "not-an-ip, 203.0.113.9"},
			expected:   "203.0.113.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := maskAPIKey("short"); got != "****" {
		t.Errorf("short keys must be fully masked, got %q", got)
	}
	if got := maskAPIKey("abcdefgh12345678"); got != "abcdefgh****" {
		t.Errorf("unexpected mask %q", got)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, om := newTestServer(t, nil)
	mux := srv.setupRoutes(om)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", body["status"])
	}
	models, ok := body["ai_models"].(map[string]any)
	if !ok {
		t.Fatal("expected ai_models object")
	}
	for _, op := range []string{"enhance", "questions", "qa", "improve"} {
		if _, ok := models[op]; !ok {
			t.Errorf("missing %s model status", op)
		}
	}
}
