package memory

import (
	"context"
	"hash/fnv"
	"strings"
)

// Embedder is a deterministic hashing embedder: it derives a fixed-width
// bag-of-trigrams vector from each text so that similar strings land close
// together under cosine similarity, with no external model dependency.
// Standing in for a real embedding service in tests and CLI demo mode only.
type Embedder struct {
	dimension int
}

// NewEmbedder returns an Embedder producing vectors of the given dimension.
func NewEmbedder(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = 64
	}
	return &Embedder{dimension: dimension}
}

func (e *Embedder) Dimension() int { return e.dimension }

func (e *Embedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		out[i] = e.embedOne(text)
	}
	return out, nil
}

func (e *Embedder) embedOne(text string) []float64 {
	v := make([]float64, e.dimension)
	norm := strings.ToLower(strings.TrimSpace(text))
	if norm == "" {
		return v
	}

	trigramAt := func(i int) string {
		end := i + 3
		if end > len(norm) {
			end = len(norm)
		}
		return norm[i:end]
	}

	for i := 0; i < len(norm); i++ {
		h := fnv.New32a()
		h.Write([]byte(trigramAt(i)))
		bucket := int(h.Sum32()) % e.dimension
		if bucket < 0 {
			bucket += e.dimension
		}
		v[bucket]++
	}
	return v
}
