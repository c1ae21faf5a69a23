package index

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		maxChars   int
		overlap    int
		wantChunks int
	}{
		{"empty", "", 600, 120, 0},
		{"whitespace only", "   \n ", 600, 120, 0},
		{"fits in one chunk", "short resume text", 600, 120, 1},
		{"splits with overlap", strings.Repeat("a", 1000), 600, 120, 2},
		{"defaults on zero args", strings.Repeat("b", 500), 0, -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Chunk(tt.text, tt.maxChars, tt.overlap)
			if len(chunks) != tt.wantChunks {
				t.Errorf("Chunk produced %d chunks, want %d", len(chunks), tt.wantChunks)
			}
			for _, c := range chunks {
				if len([]rune(c)) > 600 {
					t.Errorf("chunk exceeds max size: %d runes", len([]rune(c)))
				}
			}
		})
	}
}

func TestChunkOverlapCarriesContext(t *testing.T) {
	text := strings.Repeat("x", 590) + "BOUNDARY" + strings.Repeat("y", 400)
	chunks := Chunk(text, 600, 120)
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	// the marker straddles the first window edge and must survive
	// intact in a later chunk
	var intact bool
	for _, c := range chunks {
		if strings.Contains(c, "BOUNDARY") {
			intact = true
		}
	}
	if !intact {
		t.Error("overlap did not preserve text spanning a chunk boundary")
	}
}

// stubEmbedder embeds each text as a fixed vector keyed by its first
// word, so similarity is 1 for same-keyword texts and 0 otherwise.
type stubEmbedder struct {
	fail bool
}

func (s *stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if s.fail {
		return nil, errors.New("embedding backend down")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec := make([]float32, 4)
		switch {
		case strings.Contains(t, "python"):
			vec[0] = 1
		case strings.Contains(t, "docker"):
			vec[1] = 1
		default:
			vec[2] = 1
		}
		out[i] = vec
	}
	return out, nil
}

func TestStoreSearchRanksBySimilarity(t *testing.T) {
	store := NewStore(&stubEmbedder{})
	ctx := context.Background()

	text := "python development experience\n" + strings.Repeat("filler ", 100) +
		"\ndocker container operations" + strings.Repeat(" pad", 80)
	if err := store.Build(ctx, text); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if store.Len() == 0 {
		t.Fatal("store is empty after Build")
	}

	hits := store.Search(ctx, "python", 2)
	if len(hits) == 0 {
		t.Fatal("expected hits for python query")
	}
	if !strings.Contains(hits[0].Chunk, "python") {
		t.Errorf("top hit %q does not contain the query term", hits[0].Chunk)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Errorf("hits not sorted: %v > %v at %d", hits[i].Score, hits[i-1].Score, i)
		}
	}
}

func TestStoreFailuresYieldEmptyResults(t *testing.T) {
	t.Run("build failure leaves empty store", func(t *testing.T) {
		store := NewStore(&stubEmbedder{fail: true})
		if err := store.Build(context.Background(), strings.Repeat("text ", 50)); err == nil {
			t.Error("expected Build error from failing embedder")
		}
		if store.Len() != 0 {
			t.Errorf("store kept %d chunks after failed build", store.Len())
		}
		if hits := store.Search(context.Background(), "query", 3); len(hits) != 0 {
			t.Errorf("Search on empty store = %v, want empty", hits)
		}
	})

	t.Run("nil embedder never errors", func(t *testing.T) {
		store := NewStore(nil)
		if err := store.Build(context.Background(), "some text"); err != nil {
			t.Errorf("Build with nil embedder errored: %v", err)
		}
		if hits := store.Search(context.Background(), "query", 3); len(hits) != 0 {
			t.Errorf("Search = %v, want empty", hits)
		}
	})
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"dimension mismatch", []float32{1}, []float32{1, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cosine(tt.a, tt.b); got != tt.want {
				t.Errorf("cosine = %v, want %v", got, tt.want)
			}
		})
	}
}
