package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// Deterministic is a hashed bag-of-words embedder: the same text always
// produces the same unit vector, and texts sharing tokens produce
// similar vectors. It depends on no external service, which keeps
// matcher tests reproducible. Not suitable for production similarity.
type Deterministic struct {
	dims int
}

// NewDeterministic creates a deterministic embedder with the given
// dimension (DefaultDims when dims <= 0).
func NewDeterministic(dims int) *Deterministic {
	if dims <= 0 {
		dims = DefaultDims
	}
	return &Deterministic{dims: dims}
}

func (d *Deterministic) Embed(_ context.Context, text string) (Vector, error) {
	vec := make(Vector, d.dims)

	for _, tok := range tokenize(text) {
		h := fnv.New64a()
		h.Write([]byte(tok))
		sum := h.Sum64()
		idx := int(sum % uint64(d.dims))
		// Sign from a high bit spreads tokens across both hemispheres.
		if sum&(1<<63) != 0 {
			vec[idx] -= 1
		} else {
			vec[idx] += 1
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := 1 / math.Sqrt(norm)
		for i := range vec {
			vec[i] = float32(float64(vec[i]) * inv)
		}
	}
	return vec, nil
}

func (d *Deterministic) Dims() int { return d.dims }

func (d *Deterministic) Model() string { return "deterministic-bow-v1" }

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '#'
	})
}
