package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"research-rag-be/internal/dto"
	"research-rag-be/internal/pkg/logger"
	"research-rag-be/internal/pkg/serverutils"
	"research-rag-be/pkg/rag/retrieval"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const searchModule = "SEARCH_SERVICE"

type ISearchService interface {
	Search(ctx context.Context, userId uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error)
	CacheInvalidator
}

type searchService struct {
	engine   *retrieval.Engine
	defaultK int
	cache    *gocache.Cache
	markdown goldmark.Markdown
	logger   logger.ILogger
}

// NewSearchService caches responses per user and query for cacheTTL; a
// non-positive TTL disables the cache.
func NewSearchService(engine *retrieval.Engine, defaultTopK int, cacheTTL time.Duration, log logger.ILogger) ISearchService {
	s := &searchService{
		engine:   engine,
		defaultK: defaultTopK,
		markdown: goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough)),
		logger:   log,
	}
	if cacheTTL > 0 {
		s.cache = gocache.New(cacheTTL, 2*cacheTTL)
	}
	return s
}

func searchCacheKey(userId uuid.UUID, query string, topK int) string {
	return fmt.Sprintf("%s|%d|%s", userId, topK, strings.ToLower(strings.TrimSpace(query)))
}

func (s *searchService) Search(ctx context.Context, userId uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	topK := req.TopK
	if topK <= 0 {
		topK = s.defaultK
	}

	key := searchCacheKey(userId, req.Query, topK)
	if s.cache != nil {
		if hit, ok := s.cache.Get(key); ok {
			return hit.(*dto.SearchResponse), nil
		}
	}

	res, err := s.engine.Search(ctx, userId, req.Query, topK)
	if err != nil {
		if errors.Is(err, retrieval.ErrEmptyQuery) {
			return nil, serverutils.BadRequest("query must not be empty")
		}
		return nil, serverutils.Internal(err)
	}

	out := &dto.SearchResponse{
		Query:           res.Query,
		Results:         res.Results,
		Count:           len(res.Results),
		LLMResponse:     res.Answer,
		LLMResponseHTML: s.renderMarkdown(res.Answer),
		Message:         res.Message,
		Degraded:        res.Degraded,
		Model:           res.Model,
	}

	s.logger.Info(searchModule, "Search completed", map[string]interface{}{
		"user_id":  userId.String(),
		"results":  out.Count,
		"degraded": out.Degraded,
	})

	// degraded answers are retried on the next request
	if s.cache != nil && !out.Degraded {
		s.cache.Set(key, out, gocache.DefaultExpiration)
	}
	return out, nil
}

func (s *searchService) renderMarkdown(md string) string {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(md), &buf); err != nil {
		s.logger.Warn(searchModule, "Markdown render failed", map[string]interface{}{"error": err.Error()})
		return ""
	}
	return buf.String()
}

// InvalidateUser drops every cached search of the user.
func (s *searchService) InvalidateUser(userId string) {
	if s.cache == nil {
		return
	}
	prefix := userId + "|"
	for key := range s.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			s.cache.Delete(key)
		}
	}
}
