// Package session holds per-user analysis state: the parsed resume,
// the job description, the semantic index, and a fingerprint-keyed
// memoization table for match results. Sessions never share mutable
// state; every exported method is safe for concurrent use.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"resumelens/internal/index"
	"resumelens/internal/types"
)

// Fingerprint returns the stable cache key for a resume/job pair:
// sha256 over the whitespace-normalized inputs with a separator that
// cannot occur in either.
func Fingerprint(resumeText, jobText string) string {
	h := sha256.New()
	h.Write([]byte(strings.TrimSpace(resumeText)))
	h.Write([]byte{0})
	h.Write([]byte(strings.TrimSpace(jobText)))
	return hex.EncodeToString(h.Sum(nil))
}

// Analysis is the memoized outcome for one resume/job fingerprint:
// the deterministic match plus the AI enhancement once one has been
// produced for the pair.
type Analysis struct {
	Match    types.MatchResult
	Enhanced *types.EnhancedAnalysis
}

// Session is the explicit, typed context object for one user's
// analysis lifecycle. It is created on first contact, mutated through
// its methods only, and cleared on explicit reset or new upload.
type Session struct {
	ID string

	mu        sync.Mutex
	resume    *types.ResumeDocument
	jobText   string
	store     *index.Store
	memo      map[string]Analysis
	createdAt time.Time
	lastSeen  time.Time
}

// NewSession creates an empty session.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		memo:      make(map[string]Analysis),
		createdAt: now,
		lastSeen:  now,
	}
}

// SetResume installs a newly parsed resume, invalidating the memo
// table and any semantic index built over the previous document.
func (s *Session) SetResume(doc *types.ResumeDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resume = doc
	s.store = nil
	s.memo = make(map[string]Analysis)
	s.lastSeen = time.Now()
}

// Resume returns the current resume document, if any.
func (s *Session) Resume() *types.ResumeDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	return s.resume
}

// SetJobDescription stores the pasted job description.
func (s *Session) SetJobDescription(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobText = text
	s.lastSeen = time.Now()
}

// JobDescription returns the stored job description text.
func (s *Session) JobDescription() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobText
}

// SetStore attaches the semantic index built over the current resume.
func (s *Session) SetStore(store *index.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = store
}

// Store returns the attached semantic index, or nil.
func (s *Session) Store() *index.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store
}

// Cached looks up a memoized analysis by fingerprint. The returned
// copy carries Match.FromCache=true so callers can verify the
// memoization.
func (s *Session) Cached(fingerprint string) (Analysis, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	a, ok := s.memo[fingerprint]
	if !ok {
		return Analysis{}, false
	}
	a.Match.FromCache = true
	return a, true
}

// Remember memoizes a computed match result under its fingerprint.
// The entry starts without an enhancement; AttachEnhancement adds one.
func (s *Session) Remember(fingerprint string, result types.MatchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result.FromCache = false
	s.memo[fingerprint] = Analysis{Match: result}
}

// AttachEnhancement records the AI enhancement (and its degradation
// notice, if any) on an existing memo entry, so repeat requests for
// the same pair replay the full analysis instead of just the match.
func (s *Session) AttachEnhancement(fingerprint string, enhanced *types.EnhancedAnalysis, notice string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.memo[fingerprint]
	if !ok {
		return
	}
	a.Enhanced = enhanced
	a.Match.AINotice = notice
	s.memo[fingerprint] = a
}

// Reset clears all session data: resume, job description, index and
// memo table. The session object itself stays valid.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resume = nil
	s.jobText = ""
	s.store = nil
	s.memo = make(map[string]Analysis)
	s.lastSeen = time.Now()
}

// LastSeen reports the session's most recent activity.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// CreatedAt reports when the session was created.
func (s *Session) CreatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createdAt
}
