package cache

import (
	"context"
	"encoding/json"
	"time"

	"coinboard/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisClient is the subset of go-redis used by the layered cache.
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// Layered is the orchestrator-facing cache: an in-process memory level with
// an optional Redis second level so replicas share warm entries. A nil Redis
// client degrades to memory-only; Redis errors degrade to misses.
type Layered struct {
	mem *Memory
	rdb RedisClient
	ttl TTLTable
	log zerolog.Logger
}

// NewLayered creates a layered cache. rdb may be nil.
func NewLayered(ttl TTLTable, rdb RedisClient, log zerolog.Logger) *Layered {
	if ttl == nil {
		ttl = DefaultTTLTable()
	}
	return &Layered{
		mem: NewMemory(ttl),
		rdb: rdb,
		ttl: ttl,
		log: log,
	}
}

// Get returns a fresh payload for (category, params), trying memory first
// and Redis second. Redis hits are promoted into memory.
func (l *Layered) Get(ctx context.Context, category domain.Category, params domain.Params) (any, bool) {
	if payload, ok := l.mem.Get(category, params); ok {
		return payload, true
	}
	if l.rdb == nil {
		return nil, false
	}

	key := NormalizeKey(category, params)
	data, err := l.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("redis cache read failed")
		return nil, false
	}

	payload := json.RawMessage(data)
	l.mem.Put(category, params, payload)
	return payload, true
}

// Put stores a payload in both levels. Redis write failures are logged and
// ignored; the memory level is authoritative for this process.
func (l *Layered) Put(ctx context.Context, category domain.Category, params domain.Params, payload any) {
	l.mem.Put(category, params, payload)
	if l.rdb == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		l.log.Warn().Err(err).Str("category", string(category)).Msg("cache payload not serializable")
		return
	}
	key := NormalizeKey(category, params)
	if err := l.rdb.Set(ctx, key, data, l.ttl.TTLFor(category)).Err(); err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("redis cache write failed")
	}
}
