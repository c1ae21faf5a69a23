package index

import (
	"context"
	"math"
	"sort"
	"sync"
)

// Hit is one retrieval result: a stored chunk and its cosine
// similarity to the query, in [-1,1].
type Hit struct {
	Chunk string  `json:"chunk"`
	Score float64 `json:"score"`
}

// Store is an in-memory brute-force vector index. It is small enough
// for per-session resume corpora that linear scan beats any ANN
// structure.
type Store struct {
	mu       sync.RWMutex
	embedder Embedder
	chunks   []string
	vectors  [][]float32
}

// NewStore creates an empty store over the given embedder.
func NewStore(embedder Embedder) *Store {
	return &Store{embedder: embedder}
}

// Build chunks and embeds text, replacing any previous contents. On
// embedding failure the store is left empty and the error is returned;
// callers treat an empty store as "no semantic retrieval available".
func (s *Store) Build(ctx context.Context, text string) error {
	chunks := Chunk(text, DefaultMaxChars, DefaultOverlap)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
	s.vectors = nil

	if len(chunks) == 0 || s.embedder == nil {
		return nil
	}

	vectors, err := s.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		return err
	}

	s.chunks = chunks
	s.vectors = vectors
	return nil
}

// Len reports the number of indexed chunks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Search returns the k chunks most similar to the query, best first.
// Any failure — empty store, missing embedder, embedding error —
// yields an empty slice rather than an error so the caller degrades to
// non-semantic behavior.
func (s *Store) Search(ctx context.Context, query string, k int) []Hit {
	if k <= 0 {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.chunks) == 0 || s.embedder == nil {
		return nil
	}

	queryVecs, err := s.embedder.EmbedTexts(ctx, []string{query})
	if err != nil || len(queryVecs) != 1 {
		return nil
	}
	queryVec := queryVecs[0]

	hits := make([]Hit, 0, len(s.chunks))
	for i, vec := range s.vectors {
		hits = append(hits, Hit{
			Chunk: s.chunks[i],
			Score: cosine(queryVec, vec),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// Texts extracts the chunk strings from hits, preserving order.
func Texts(hits []Hit) []string {
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.Chunk)
	}
	return out
}

// cosine computes cosine similarity between two vectors, returning 0
// for mismatched or zero-magnitude inputs.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
