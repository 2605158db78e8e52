package bootstrap

import (
	"context"
	"fmt"
	"time"

	"research-rag-be/internal/config"
	"research-rag-be/internal/pkg/logger"
	"research-rag-be/pkg/chunker"
	"research-rag-be/pkg/embedding"
	"research-rag-be/pkg/llm"
	"research-rag-be/pkg/llm/factory"
	"research-rag-be/pkg/pdf"
	"research-rag-be/pkg/rag/analysis"

	"github.com/redis/go-redis/v9"
)

// Pipeline holds the document processing components shared by the API and
// the CLI.
type Pipeline struct {
	LLM       llm.Provider
	Extractor *pdf.Extractor
	Chunker   *chunker.Chunker
	Embedder  *embedding.Service
}

func NewLLM(cfg *config.Config, log logger.ILogger) (llm.Provider, error) {
	return factory.NewProvider(factory.Settings{
		Primary: factory.Backend{
			Type:    cfg.Ai.Primary.Type,
			BaseURL: cfg.Ai.Primary.BaseURL,
			Model:   cfg.Ai.Primary.Model,
			APIKey:  cfg.Ai.APIKey,
		},
		Fallback: factory.Backend{
			Type:    cfg.Ai.Fallback.Type,
			BaseURL: cfg.Ai.Fallback.BaseURL,
			Model:   cfg.Ai.Fallback.Model,
			APIKey:  cfg.Ai.APIKey,
		},
		Timeout:           time.Duration(cfg.Ai.TimeoutSeconds) * time.Second,
		RequestsPerSecond: cfg.Ai.RequestsPerSec,
	}, log)
}

func NewEmbeddingProvider(cfg *config.Config) (embedding.Provider, error) {
	timeout := time.Duration(cfg.Ai.TimeoutSeconds) * time.Second
	e := cfg.Embedding
	switch e.Provider {
	case "ollama":
		return embedding.NewOllamaProvider(e.BaseURL, e.Model, e.Dimension, timeout), nil
	case "openai":
		return embedding.NewOpenAIProvider(e.BaseURL, e.Model, e.APIKey, e.Dimension, timeout), nil
	case "hashing", "":
		return embedding.NewHashingProvider(e.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", e.Provider)
	}
}

// NewRedisClient parses REDIS_URL, falling back to treating it as host:port.
func NewRedisClient(url string, log logger.ILogger) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to parse Redis URL, using it as address", map[string]interface{}{
			"error": err.Error(),
		})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("BOOTSTRAP", "Redis not reachable", map[string]interface{}{"error": err.Error()})
	}
	return rdb
}

// NewEmbeddingService wraps the provider with the configured vector cache.
// rdb is only used when the cache is "redis".
func NewEmbeddingService(cfg *config.Config, provider embedding.Provider, rdb *redis.Client, log logger.ILogger) *embedding.Service {
	ttl := time.Duration(cfg.Embedding.CacheTTLMins) * time.Minute
	switch cfg.Embedding.Cache {
	case "redis":
		if rdb != nil {
			provider = embedding.NewCachedProvider(provider, embedding.NewRedisCache(rdb, ttl, log))
		}
	case "memory":
		provider = embedding.NewCachedProvider(provider, embedding.NewMemoryCache(ttl))
	}
	return embedding.NewService(provider, log)
}

// NewPipeline builds extractor, chunker and embedder. The chunker gets the
// LLM analyzer only when analysis is enabled.
func NewPipeline(cfg *config.Config, rdb *redis.Client, log logger.ILogger) (*Pipeline, error) {
	provider, err := NewLLM(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	embedProvider, err := NewEmbeddingProvider(cfg)
	if err != nil {
		return nil, err
	}

	var analyzer chunker.Analyzer
	if cfg.Ai.AnalysisEnabled {
		analyzer = analysis.NewAnalyzer(provider, log)
	}

	return &Pipeline{
		LLM:       provider,
		Extractor: pdf.NewExtractor(pdf.WithLogger(log)),
		Chunker: chunker.New(chunker.Config{
			ChunkSize: cfg.Chunking.ChunkSize,
			Overlap:   cfg.Chunking.Overlap,
			MinWords:  cfg.Chunking.MinWords,
			MinChars:  cfg.Chunking.MinChars,
		}, analyzer, log),
		Embedder: NewEmbeddingService(cfg, embedProvider, rdb, log),
	}, nil
}
