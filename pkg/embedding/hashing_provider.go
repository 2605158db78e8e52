package embedding

import (
	"context"
	"strings"
	"unicode"

	"github.com/minio/highwayhash"
)

// hashKey seeds highwayhash. Changing it invalidates every stored vector.
var hashKey = []byte("research-rag-feature-hashing-key")

// HashingProvider is an offline bag-of-words model: unigrams and bigrams are
// hashed into a fixed number of buckets with a sign bit, then the vector is
// L2-normalised. It needs no network and is deterministic across runs.
type HashingProvider struct {
	dim int
}

var _ Provider = (*HashingProvider)(nil)

func NewHashingProvider(dim int) *HashingProvider {
	if dim <= 0 {
		dim = 384
	}
	return &HashingProvider{dim: dim}
}

func (p *HashingProvider) Dimension() int { return p.dim }
func (p *HashingProvider) Model() string  { return "hashing" }

func (p *HashingProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = p.vector(t)
	}
	return out, nil
}

func (p *HashingProvider) vector(text string) []float32 {
	vec := make([]float32, p.dim)
	tokens := tokenize(text)
	for i, tok := range tokens {
		p.add(vec, tok, 1)
		if i > 0 {
			p.add(vec, tokens[i-1]+" "+tok, 0.5)
		}
	}
	return Normalize(vec)
}

func (p *HashingProvider) add(vec []float32, feature string, weight float32) {
	h := highwayhash.Sum64([]byte(feature), hashKey)
	bucket := int(h % uint64(p.dim))
	if h>>63 == 1 {
		weight = -weight
	}
	vec[bucket] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
