package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 512, cfg.Chunking.ChunkSize)
	assert.Equal(t, 50, cfg.Chunking.Overlap)
	assert.Equal(t, 384, cfg.Embedding.Dimension)
	assert.Equal(t, 50, cfg.App.MaxUploadMB)
	assert.Equal(t, 10, cfg.Search.TopK)
	assert.Equal(t, 30, cfg.Ai.TimeoutSeconds)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "1024")
	t.Setenv("EMBEDDING_CACHE", "Redis")
	t.Setenv("LLM_REQUESTS_PER_SEC", "2.5")
	t.Setenv("LLM_ANALYSIS_ENABLED", "false")
	t.Setenv("GO_ENV", "production")
	t.Setenv("CHUNK_OVERLAP", "not-a-number")

	cfg := Load()

	assert.Equal(t, 1024, cfg.Chunking.ChunkSize)
	assert.Equal(t, 50, cfg.Chunking.Overlap)
	assert.Equal(t, "redis", cfg.Embedding.Cache)
	assert.InDelta(t, 2.5, cfg.Ai.RequestsPerSec, 1e-9)
	assert.False(t, cfg.Ai.AnalysisEnabled)
	assert.True(t, cfg.IsProduction())
}
