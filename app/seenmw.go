// app/seenmw.go
package app

import (
	"context"
	"net/http"
	"sync"
	"time"

	"invensys/clock"
	"invensys/db"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SeenGate reports whether a user's last_seen_at is due for another write.
type SeenGate interface {
	Due(ctx context.Context, userID string) bool
}

// NewSeenGate shares the throttle across instances through Redis; without
// Redis it falls back to a per-process window.
func NewSeenGate(rdb *redis.Client, clk clock.Clock, window time.Duration) SeenGate {
	if window <= 0 {
		window = 5 * time.Minute
	}
	if rdb != nil {
		return &redisSeenGate{rdb: rdb, window: window}
	}
	return &memSeenGate{clock: clk, window: window, next: make(map[string]time.Time)}
}

type redisSeenGate struct {
	rdb    *redis.Client
	window time.Duration
}

func lastSeenKey(userID string) string { return "invensys:lastseen:" + userID }

func (g *redisSeenGate) Due(ctx context.Context, userID string) bool {
	ok, err := g.rdb.SetNX(ctx, lastSeenKey(userID), 1, g.window).Result()
	return err == nil && ok
}

type memSeenGate struct {
	mu     sync.Mutex
	clock  clock.Clock
	window time.Duration
	next   map[string]time.Time
}

func (g *memSeenGate) Due(_ context.Context, userID string) bool {
	now := g.clock.Now()
	g.mu.Lock()
	defer g.mu.Unlock()
	if until, ok := g.next[userID]; ok && now.Before(until) {
		return false
	}
	g.next[userID] = now.Add(g.window)
	return true
}

// TouchLastSeen records activity after the handler ran. Rejected (5xx)
// requests and anonymous calls are skipped; write failures are only logged.
func TouchLastSeen(repo *db.Repo, gate SeenGate, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		uid := c.GetString("userID")
		if uid == "" || c.Writer.Status() >= http.StatusInternalServerError {
			return
		}
		ctx := c.Request.Context()
		if !gate.Due(ctx, uid) {
			return
		}
		if err := repo.TouchUserSeen(ctx, uid); err != nil {
			log.Debug("last seen update failed", zap.String("user_id", uid), zap.Error(err))
		}
	}
}
