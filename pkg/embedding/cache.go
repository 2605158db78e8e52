package embedding

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"math"
	"time"

	"research-rag-be/internal/pkg/logger"

	"github.com/minio/highwayhash"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// VectorCache stores vectors by key. Misses and backend errors both read as
// a miss.
type VectorCache interface {
	Get(ctx context.Context, key string) ([]float32, bool)
	Set(ctx context.Context, key string, vec []float32)
}

// CacheKey derives a cache key from the model name and the exact text.
func CacheKey(model, text string) string {
	sum := highwayhash.Sum128([]byte(model+"\x00"+text), hashKey)
	return hex.EncodeToString(sum[:])
}

type MemoryCache struct {
	cache *gocache.Cache
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{cache: gocache.New(ttl, 2*ttl)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]float32, bool) {
	v, ok := m.cache.Get(key)
	if !ok {
		return nil, false
	}
	vec, ok := v.([]float32)
	return vec, ok
}

func (m *MemoryCache) Set(_ context.Context, key string, vec []float32) {
	m.cache.Set(key, vec, gocache.DefaultExpiration)
}

// RedisCache keeps vectors as little-endian float32 byte strings.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger logger.ILogger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, log logger.ILogger) *RedisCache {
	return &RedisCache{client: client, prefix: "emb:", ttl: ttl, logger: log}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]float32, bool) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn(moduleName, "Vector cache read failed", map[string]interface{}{"error": err.Error()})
		}
		return nil, false
	}
	if len(raw)%4 != 0 {
		return nil, false
	}
	return decodeVector(raw), true
}

func (r *RedisCache) Set(ctx context.Context, key string, vec []float32) {
	if err := r.client.Set(ctx, r.prefix+key, encodeVector(vec), r.ttl).Err(); err != nil {
		r.logger.Warn(moduleName, "Vector cache write failed", map[string]interface{}{"error": err.Error()})
	}
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(raw []byte) []float32 {
	vec := make([]float32, len(raw)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return vec
}

// CachedProvider serves repeated texts from a VectorCache and forwards only
// the misses to the wrapped provider.
type CachedProvider struct {
	next  Provider
	cache VectorCache
}

var _ Provider = (*CachedProvider)(nil)

func NewCachedProvider(next Provider, cache VectorCache) *CachedProvider {
	return &CachedProvider{next: next, cache: cache}
}

func (c *CachedProvider) Dimension() int { return c.next.Dimension() }
func (c *CachedProvider) Model() string  { return c.next.Model() }

func (c *CachedProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))
	var missIdx []int
	var missTexts []string

	for i, t := range texts {
		keys[i] = CacheKey(c.next.Model(), t)
		if vec, ok := c.cache.Get(ctx, keys[i]); ok {
			out[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := c.next.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if err := checkShape(c.next.Model(), vecs, len(missTexts), 0); err != nil {
		return nil, err
	}
	for j, i := range missIdx {
		out[i] = vecs[j]
		c.cache.Set(ctx, keys[i], vecs[j])
	}
	return out, nil
}
