// Package cache implements the time-boxed page cache over the home
// listing: one fixed key, whole-response granularity, short TTL.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/microblog/pkg/logger"
)

// IndexKey is the single cache key. Query string, pagination and the
// requesting user are deliberately NOT part of it: every visitor within
// the window sees the same bytes.
const IndexKey = "page_cache:index"

// DefaultTTL matches the original deployment's 20 second window.
const DefaultTTL = 20 * time.Second

// CachedPage is the stored response snapshot.
type CachedPage struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// PageCache is injected into the router rather than used as ambient
// state so tests can point it at miniredis and clear it explicitly.
type PageCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPageCache(rdb *redis.Client, ttl time.Duration) *PageCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PageCache{rdb: rdb, ttl: ttl}
}

func (c *PageCache) Get(ctx context.Context) (*CachedPage, bool) {
	data, err := c.rdb.Get(ctx, IndexKey).Bytes()
	if err != nil {
		return nil, false
	}
	var page CachedPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, false
	}
	return &page, true
}

func (c *PageCache) Set(ctx context.Context, page *CachedPage) {
	payload, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, IndexKey, payload, c.ttl).Err(); err != nil {
		logger.Warn("page cache set failed", zap.Error(err))
	}
}

// Clear drops the cached page so the next request recomputes. Exposed
// for collaborators (admin actions, tests).
func (c *PageCache) Clear(ctx context.Context) error {
	return c.rdb.Del(ctx, IndexKey).Err()
}

type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// Middleware serves a cached snapshot when one exists and records the
// handler's output otherwise. Two concurrent misses may both recompute;
// the writes are idempotent so the race is benign.
func (c *PageCache) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if page, ok := c.Get(ctx.Request.Context()); ok {
			ctx.Data(page.Status, page.ContentType, page.Body)
			ctx.Abort()
			return
		}
		w := &captureWriter{ResponseWriter: ctx.Writer}
		ctx.Writer = w
		ctx.Next()
		if w.Status() != http.StatusOK {
			return
		}
		c.Set(ctx.Request.Context(), &CachedPage{
			Status:      w.Status(),
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.buf.Bytes(),
		})
	}
}
