package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/futig/knowledge-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/patrickmn/go-cache"
)

type Embedder interface {
	Embed(ctx context.Context, text string) (entity.EmbeddingVector, error)
}

// CachedEmbedder memoizes embeddings of repeated texts for ttl.
// Failed calls are not cached.
type CachedEmbedder struct {
	next  Embedder
	cache *cache.Cache
}

func NewCachedEmbedder(next Embedder, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) (entity.EmbeddingVector, error) {
	key := cacheKey(text)
	if v, ok := c.cache.Get(key); ok {
		ctxzap.Debug(ctx, "embedding cache hit")
		return v.(entity.EmbeddingVector), nil
	}

	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(key, vec)
	return vec, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
