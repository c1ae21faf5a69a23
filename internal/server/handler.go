package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"resumelens/internal/ai"
	"resumelens/internal/common"
	"resumelens/internal/config"
	"resumelens/internal/export"
	"resumelens/internal/index"
	"resumelens/internal/observability"
	"resumelens/internal/parser"
	"resumelens/internal/session"
	"resumelens/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// defaultQuestionCount is used when a request leaves count unset.
const defaultQuestionCount = 5

// getSession resolves the request's session from the X-Session-ID
// header, creating one when absent, and echoes the ID on the response
// so clients can continue the conversation.
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) *session.Session {
	sess := s.Sessions.Get(r.Header.Get(sessionHeader))
	w.Header().Set(sessionHeader, sess.ID)
	return sess
}

// resolveResume produces the resume document for a request: an uploaded
// multipart file wins, then inline text, then the resume already stored
// in the session. A new upload replaces the session document and
// rebuilds the semantic index.
func (s *Server) resolveResume(ctx context.Context, r *http.Request, sess *session.Session, inlineText string) (*types.ResumeDocument, error) {
	if doc, uploaded, err := s.readUploadedResume(ctx, r, sess); err != nil {
		return nil, err
	} else if uploaded {
		return doc, nil
	}

	if strings.TrimSpace(inlineText) != "" {
		doc := parser.ParseText(inlineText)
		// Unchanged text keeps the session document, its index and
		// its memo table.
		if cur := sess.Resume(); cur != nil && cur.Text == doc.Text {
			return cur, nil
		}
		sess.SetResume(doc)
		s.buildSessionIndex(ctx, sess, doc)
		return doc, nil
	}

	if doc := sess.Resume(); doc != nil {
		return doc, nil
	}

	return nil, fmt.Errorf("no resume provided: upload a file, set resumeText, or reuse a session that has one")
}

// readUploadedResume extracts and parses a multipart "resume" file
// part. The second return value reports whether an upload was present.
func (s *Server) readUploadedResume(ctx context.Context, r *http.Request, sess *session.Session) (*types.ResumeDocument, bool, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		return nil, false, nil
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		return nil, true, fmt.Errorf("multipart request is missing the resume file part: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.Logger.Warn("Failed to close uploaded file", "error", err)
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	doc, err := parser.Parse(header.Filename, data)
	if err != nil {
		return nil, true, err
	}

	sess.SetResume(doc)
	s.buildSessionIndex(ctx, sess, doc)
	return doc, true, nil
}

// buildSessionIndex chunks and embeds the resume for retrieval. Index
// failures degrade to no semantic retrieval rather than failing the
// request.
func (s *Server) buildSessionIndex(ctx context.Context, sess *session.Session, doc *types.ResumeDocument) {
	if !s.AppConfig.Index.Enabled || s.AppConfig.AI.APIKey == "" {
		return
	}

	embedder, err := index.NewGeminiEmbedder(ctx, s.AppConfig.AI.APIKey, s.AppConfig.Index.EmbeddingModel)
	if err != nil {
		s.Logger.Warn("Semantic index unavailable", "error", err)
		return
	}

	store := index.NewStore(embedder)
	if err := store.Build(ctx, doc.Text); err != nil {
		s.Logger.Warn("Failed to build semantic index", "error", err)
		return
	}
	sess.SetStore(store)
}

// sessionExcerpts retrieves the top-k resume chunks most relevant to
// the query, or nil when no index is available.
func (s *Server) sessionExcerpts(ctx context.Context, sess *session.Session, query string) []string {
	store := sess.Store()
	if store == nil || store.Len() == 0 || strings.TrimSpace(query) == "" {
		return nil
	}
	return index.Texts(store.Search(ctx, query, s.AppConfig.Index.TopK))
}

// newAIService builds the per-operation AI service the way the CLI
// does, sharing the server's skills analyzer for fallback output.
func (s *Server) newAIService(opConfig config.OperationAIConfig, operation string) (*ai.Service, error) {
	return ai.NewService(&opConfig, operation, s.Analyzer, s.Logger)
}

// runMatch computes (or recalls) the analysis for a resume/job pair
// within the session's memo table. The returned fingerprint keys later
// additions to the same entry, such as an AI enhancement.
func (s *Server) runMatch(ctx context.Context, om *observability.ObservabilityManager, sess *session.Session, doc *types.ResumeDocument, jobText string) (session.Analysis, string, bool) {
	fp := session.Fingerprint(doc.Text, jobText)
	if cached, ok := sess.Cached(fp); ok {
		om.GetMetrics().RecordBusinessMetric(ctx, "cache_hit", true, om,
			attribute.String("operation", "match"))
		return cached, fp, true
	}

	result := s.Analyzer.Match(doc.Text, jobText)
	sess.Remember(fp, result)
	return session.Analysis{Match: result}, fp, false
}

// createAnalyzeHandler runs the full pipeline: parse, deterministic
// match, and AI enhancement with fallback.
func (s *Server) createAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumelens.api")
		ctx, span := tracer.Start(ctx, "api.analyze")
		defer span.End()

		sess := s.getSession(w, r)

		var req AnalyzeRequest
		if isMultipart(r) {
			req.JobDescription = r.FormValue("jobDescription")
			if v := r.FormValue("enhance"); v != "" {
				enhance := v != "false" && v != "0"
				req.Enhance = &enhance
			}
		} else if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		doc, err := s.resolveResume(ctx, r, sess, req.ResumeText)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid resume", err.Error(), http.StatusBadRequest)
			return
		}
		if req.JobDescription != "" {
			sess.SetJobDescription(req.JobDescription)
		}
		jobText := sess.JobDescription()

		span.SetAttributes(
			attribute.Int("request.resume_words", doc.WordCount),
			attribute.Int("request.job_length", len(jobText)),
			attribute.String("operation", "analyze"),
		)

		analysis, fp, fromCache := s.runMatch(ctx, om, sess, doc, jobText)

		response := types.AnalyzeOutput{Match: analysis.Match}

		enhance := req.Enhance == nil || *req.Enhance
		if enhance {
			// A memo entry replays its stored enhancement; one without
			// (first analyze, or the pair was seeded by /v1/match) still
			// runs the AI step and attaches the result for next time.
			if analysis.Enhanced != nil {
				response.Enhanced = analysis.Enhanced
			} else {
				enhanced, notice, err := s.runEnhancement(ctx, om, doc, jobText, &response.Match)
				if err != nil {
					span.RecordError(err)
					span.SetAttributes(attribute.String("error.type", "ai_processing"))
					writeErrorResponse(w, "Failed to enhance analysis", err.Error(), http.StatusBadGateway)
					return
				}
				response.Enhanced = enhanced
				sess.AttachEnhancement(fp, enhanced, notice)
				if notice != "" {
					span.SetAttributes(attribute.Bool("ai.fallback", true))
				}
			}
		}

		metrics := om.GetMetrics()
		metrics.RecordBusinessMetric(ctx, "resume_analyzed", true, om,
			attribute.Float64("ats.score", response.Match.ATSScore),
			attribute.Bool("from_cache", fromCache))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Float64("ats.score", response.Match.ATSScore),
			attribute.Bool("from_cache", fromCache),
		)

		writeJSON(w, response)
	}
}

// runEnhancement calls the enhance operation, attaching the fallback
// notice to the match result when the live provider was unavailable.
func (s *Server) runEnhancement(ctx context.Context, om *observability.ObservabilityManager, doc *types.ResumeDocument, jobText string, match *types.MatchResult) (*types.EnhancedAnalysis, string, error) {
	service, err := s.newAIService(s.AppConfig.GetEnhanceConfig(), "enhance")
	if err != nil {
		return nil, "", err
	}
	defer s.closeAIService(service)

	input := types.AnalyzeInput{ResumeText: doc.Text, JobDescription: jobText}

	metrics := om.GetMetrics()
	var enhanced types.EnhancedAnalysis
	var notice string
	err = metrics.TrackAIOperationWithTokens(ctx, "enhance", func(ctx context.Context) *observability.AIOperationResult {
		output, tokenUsage, n, aiErr := service.EnhanceAnalysis(ctx, input, *match)
		enhanced = output
		notice = n
		return &observability.AIOperationResult{
			Error:      aiErr,
			TokenUsage: (*observability.TokenUsage)(tokenUsage),
		}
	}, om)
	if err != nil {
		return nil, "", err
	}

	if notice != "" {
		match.AINotice = notice
		metrics.RecordBusinessMetric(ctx, "fallback_activated", true, om,
			attribute.String("operation", "enhance"))
	}
	return &enhanced, notice, nil
}

// createMatchHandler runs the deterministic core only. It never
// touches the AI provider.
func (s *Server) createMatchHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumelens.api")
		ctx, span := tracer.Start(ctx, "api.match")
		defer span.End()

		sess := s.getSession(w, r)

		var req AnalyzeRequest
		if isMultipart(r) {
			req.JobDescription = r.FormValue("jobDescription")
		} else if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		doc, err := s.resolveResume(ctx, r, sess, req.ResumeText)
		if err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid resume", err.Error(), http.StatusBadRequest)
			return
		}
		if req.JobDescription != "" {
			sess.SetJobDescription(req.JobDescription)
		}

		analysis, _, fromCache := s.runMatch(ctx, om, sess, doc, sess.JobDescription())
		match := analysis.Match

		om.GetMetrics().RecordBusinessMetric(ctx, "resume_analyzed", true, om,
			attribute.Float64("ats.score", match.ATSScore),
			attribute.Bool("from_cache", fromCache),
			attribute.String("operation", "match"))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Float64("ats.score", match.ATSScore),
		)

		writeJSON(w, match)
	}
}

// createQuestionsHandler generates interview questions grounded in the
// session's retrieval index when one exists.
func (s *Server) createQuestionsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumelens.api")
		ctx, span := tracer.Start(ctx, "api.questions")
		defer span.End()

		sess := s.getSession(w, r)

		var req QuestionsRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		if err := common.ValidateQuestionCount(req.Count); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid question count", err.Error(), http.StatusBadRequest)
			return
		}
		if req.Count == 0 {
			req.Count = defaultQuestionCount
		}

		doc, err := s.resolveResume(ctx, r, sess, req.ResumeText)
		if err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid resume", err.Error(), http.StatusBadRequest)
			return
		}
		if req.JobDescription != "" {
			sess.SetJobDescription(req.JobDescription)
		}
		jobText := sess.JobDescription()

		service, err := s.newAIService(s.AppConfig.GetQuestionsConfig(), "questions")
		if err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}
		defer s.closeAIService(service)

		input := types.QuestionsInput{
			ResumeText:     doc.Text,
			JobDescription: jobText,
			Count:          req.Count,
		}
		excerpts := s.sessionExcerpts(ctx, sess, jobText)

		metrics := om.GetMetrics()
		var result types.QuestionsOutput
		err = metrics.TrackAIOperationWithTokens(ctx, "questions", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, notice, aiErr := service.GenerateQuestions(ctx, input, excerpts)
			output.Notice = notice
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)
		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "questions_generated", false, om)
			writeErrorResponse(w, "Failed to generate questions", err.Error(), http.StatusBadGateway)
			return
		}

		if result.Notice != "" {
			metrics.RecordBusinessMetric(ctx, "fallback_activated", true, om,
				attribute.String("operation", "questions"))
		}
		metrics.RecordBusinessMetric(ctx, "questions_generated", true, om,
			attribute.Int("count", len(result.Questions)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("questions_count", len(result.Questions)),
		)

		writeJSON(w, result)
	}
}

// createQAHandler generates topic-scoped question/answer pairs.
func (s *Server) createQAHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumelens.api")
		ctx, span := tracer.Start(ctx, "api.qa")
		defer span.End()

		sess := s.getSession(w, r)

		var req QARequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		if err := common.ValidateTopic(req.Topic); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Missing topic", "topic field is required", http.StatusBadRequest)
			return
		}
		if err := common.ValidateQuestionCount(req.Count); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid question count", err.Error(), http.StatusBadRequest)
			return
		}
		if req.Count == 0 {
			req.Count = defaultQuestionCount
		}

		doc, err := s.resolveResume(ctx, r, sess, req.ResumeText)
		if err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid resume", err.Error(), http.StatusBadRequest)
			return
		}

		service, err := s.newAIService(s.AppConfig.GetQAConfig(), "qa")
		if err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}
		defer s.closeAIService(service)

		input := types.QAInput{ResumeText: doc.Text, Topic: req.Topic, Count: req.Count}
		excerpts := s.sessionExcerpts(ctx, sess, req.Topic)

		metrics := om.GetMetrics()
		var result types.QAOutput
		err = metrics.TrackAIOperationWithTokens(ctx, "qa", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, notice, aiErr := service.GenerateQA(ctx, input, excerpts)
			output.Notice = notice
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)
		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "questions_generated", false, om,
				attribute.String("operation", "qa"))
			writeErrorResponse(w, "Failed to generate Q&A", err.Error(), http.StatusBadGateway)
			return
		}

		if result.Notice != "" {
			metrics.RecordBusinessMetric(ctx, "fallback_activated", true, om,
				attribute.String("operation", "qa"))
		}
		metrics.RecordBusinessMetric(ctx, "questions_generated", true, om,
			attribute.String("operation", "qa"),
			attribute.Int("count", len(result.Pairs)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("topic", req.Topic),
			attribute.Int("pairs_count", len(result.Pairs)),
		)

		writeJSON(w, result)
	}
}

// createImproveHandler rewrites the resume at the requested
// enhancement level.
func (s *Server) createImproveHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumelens.api")
		ctx, span := tracer.Start(ctx, "api.improve")
		defer span.End()

		sess := s.getSession(w, r)

		var req ImproveRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		level, err := common.ValidateEnhancementLevel(req.Level)
		if err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid enhancement level", err.Error(), http.StatusBadRequest)
			return
		}

		doc, err := s.resolveResume(ctx, r, sess, req.ResumeText)
		if err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid resume", err.Error(), http.StatusBadRequest)
			return
		}
		if req.JobDescription != "" {
			sess.SetJobDescription(req.JobDescription)
		}

		service, err := s.newAIService(s.AppConfig.GetImproveConfig(), "improve")
		if err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}
		defer s.closeAIService(service)

		input := types.ImproveInput{
			ResumeText:     doc.Text,
			JobDescription: sess.JobDescription(),
			Level:          level,
		}

		metrics := om.GetMetrics()
		var result types.ImprovedResume
		err = metrics.TrackAIOperationWithTokens(ctx, "improve", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, notice, aiErr := service.ImproveResume(ctx, input)
			output.Notice = notice
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)
		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "resume_improved", false, om)
			writeErrorResponse(w, "Failed to improve resume", err.Error(), http.StatusBadGateway)
			return
		}

		if result.Notice != "" {
			metrics.RecordBusinessMetric(ctx, "fallback_activated", true, om,
				attribute.String("operation", "improve"))
		}
		metrics.RecordBusinessMetric(ctx, "resume_improved", true, om,
			attribute.String("level", string(level)),
			attribute.Int("changes_count", len(result.ChangesSummary)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("level", string(level)),
		)

		writeJSON(w, result)
	}
}

// createExportHandler renders structured content to DOCX or PDF and
// streams the binary back with a download disposition.
func (s *Server) createExportHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumelens.api")
		ctx, span := tracer.Start(ctx, "api.export")
		defer span.End()

		var req ExportRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		format, err := export.ParseFormat(req.Format)
		if err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid export format", err.Error(), http.StatusBadRequest)
			return
		}

		doc := types.ExportDocument{
			Title:    req.Title,
			Body:     req.Body,
			Sections: req.Sections,
		}

		data, err := s.Exporter.Render(ctx, format, doc)
		if err != nil {
			span.RecordError(err)
			om.GetMetrics().RecordBusinessMetric(ctx, "export_rendered", false, om,
				attribute.String("format", string(format)))
			status := http.StatusInternalServerError
			if isValidationError(err) {
				status = http.StatusBadRequest
			}
			writeErrorResponse(w, "Export failed", err.Error(), status)
			return
		}

		om.GetMetrics().RecordBusinessMetric(ctx, "export_rendered", true, om,
			attribute.String("format", string(format)),
			attribute.Int("bytes", len(data)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("format", string(format)),
			attribute.Int("response.bytes", len(data)),
		)

		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", "resume."+format.Extension()))
		if _, err := w.Write(data); err != nil {
			s.Logger.Warn("Failed to write export response", "error", err)
		}
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			// If rate limited, record metric
			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) closeAIService(service *ai.Service) {
	if err := service.Close(); err != nil {
		s.Logger.Warn("Failed to close AI service", "error", err)
	}
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
