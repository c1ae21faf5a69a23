package session

import (
	"context"
	"testing"
	"time"

	"resumelens/internal/types"
)

func TestFingerprint(t *testing.T) {
	t.Run("stable for identical inputs", func(t *testing.T) {
		a := Fingerprint("resume text", "job text")
		b := Fingerprint("resume text", "job text")
		if a != b {
			t.Errorf("fingerprints differ for identical input: %s vs %s", a, b)
		}
	})

	t.Run("normalizes surrounding whitespace", func(t *testing.T) {
		a := Fingerprint("resume text", "job text")
		b := Fingerprint("  resume text \n", "\tjob text ")
		if a != b {
			t.Error("fingerprint should ignore surrounding whitespace")
		}
	})

	t.Run("distinguishes field boundaries", func(t *testing.T) {
		a := Fingerprint("resume", "textjob")
		b := Fingerprint("resumetext", "job")
		if a == b {
			t.Error("fingerprint collision across field boundary")
		}
	})

	t.Run("differs for different pairs", func(t *testing.T) {
		if Fingerprint("a", "b") == Fingerprint("a", "c") {
			t.Error("fingerprint ignores job description")
		}
	})
}

func TestSessionMemoization(t *testing.T) {
	s := NewSession("test")
	fp := Fingerprint("resume", "job")

	if _, ok := s.Cached(fp); ok {
		t.Fatal("empty session reported a cached result")
	}

	result := types.MatchResult{MatchedSkills: []string{"python"}, ATSScore: 70}
	s.Remember(fp, result)

	cached, ok := s.Cached(fp)
	if !ok {
		t.Fatal("memoized result not found")
	}
	if !cached.Match.FromCache {
		t.Error("cached result should carry FromCache=true")
	}
	if cached.Match.ATSScore != 70 {
		t.Errorf("cached ATSScore = %v, want 70", cached.Match.ATSScore)
	}
	if cached.Enhanced != nil {
		t.Error("entry should have no enhancement before one is attached")
	}
}

func TestSessionAttachEnhancement(t *testing.T) {
	s := NewSession("test")
	fp := Fingerprint("resume", "job")
	s.Remember(fp, types.MatchResult{ATSScore: 70})

	enhanced := &types.EnhancedAnalysis{Summary: "solid backend profile"}
	s.AttachEnhancement(fp, enhanced, "provider unavailable")

	cached, ok := s.Cached(fp)
	if !ok {
		t.Fatal("memoized result not found after attaching enhancement")
	}
	if cached.Enhanced == nil || cached.Enhanced.Summary != "solid backend profile" {
		t.Errorf("cached enhancement = %+v, want the attached analysis", cached.Enhanced)
	}
	if cached.Match.AINotice != "provider unavailable" {
		t.Errorf("cached AINotice = %q, want the attached notice", cached.Match.AINotice)
	}

	// Attaching to an unknown fingerprint must not create an entry.
	other := Fingerprint("other", "job")
	s.AttachEnhancement(other, enhanced, "")
	if _, ok := s.Cached(other); ok {
		t.Error("AttachEnhancement created an entry for an unknown fingerprint")
	}
}

func TestSessionNewUploadInvalidatesCache(t *testing.T) {
	s := NewSession("test")
	fp := Fingerprint("resume", "job")
	s.Remember(fp, types.MatchResult{ATSScore: 70})

	s.SetResume(&types.ResumeDocument{Text: "new resume"})

	if _, ok := s.Cached(fp); ok {
		t.Error("cache survived a new resume upload")
	}
}

func TestSessionReset(t *testing.T) {
	s := NewSession("test")
	s.SetResume(&types.ResumeDocument{Text: "resume"})
	s.SetJobDescription("job")
	s.Remember(Fingerprint("resume", "job"), types.MatchResult{ATSScore: 50})

	s.Reset()

	if s.Resume() != nil {
		t.Error("resume survived reset")
	}
	if s.JobDescription() != "" {
		t.Error("job description survived reset")
	}
	if _, ok := s.Cached(Fingerprint("resume", "job")); ok {
		t.Error("memo table survived reset")
	}
}

func TestManagerSessionIsolation(t *testing.T) {
	m := NewManager(0)

	a := m.Get("alice")
	b := m.Get("bob")
	a.SetJobDescription("job for a")

	if b.JobDescription() != "" {
		t.Error("session state leaked between sessions")
	}
	if m.Get("alice") != a {
		t.Error("Get did not return the same session for the same id")
	}
}

func TestManagerGeneratesIDs(t *testing.T) {
	m := NewManager(0)
	a := m.Get("")
	b := m.Get("")
	if a.ID == "" || b.ID == "" {
		t.Fatal("generated session ID is empty")
	}
	if a.ID == b.ID {
		t.Error("two anonymous sessions share an ID")
	}
}

func TestStartSweeperRejectsNonPositiveInterval(t *testing.T) {
	m := NewManager(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A zero interval must be a no-op, not a ticker panic.
	m.StartSweeper(ctx, 0)
	m.StartSweeper(ctx, -time.Second)

	if m.Get("still-works") == nil {
		t.Fatal("manager unusable after disabled sweeper")
	}
}

func TestManagerSweep(t *testing.T) {
	m := NewManager(10 * time.Millisecond)
	s := m.Get("idle")
	s.SetJobDescription("x")

	time.Sleep(20 * time.Millisecond)
	m.sweep()

	if _, ok := m.Lookup("idle"); ok {
		t.Error("idle session not evicted by sweep")
	}
}
