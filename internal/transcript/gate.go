package transcript

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/set-night/avquote/internal/domain"
)

// Gate admits at most one in-flight reply per session across requests (and,
// with the redis driver, across replicas).
type Gate interface {
	// Acquire returns domain.ErrReplyInFlight when the session is busy.
	Acquire(ctx context.Context, sessionID string) (release func(context.Context) error, err error)
}

type memoryLease struct {
	token   string
	expires time.Time
}

type MemoryGate struct {
	mu     sync.Mutex
	leases map[string]memoryLease
	ttl    time.Duration
	now    func() time.Time
}

func NewMemoryGate(ttl time.Duration) *MemoryGate {
	return &MemoryGate{leases: make(map[string]memoryLease), ttl: ttl, now: time.Now}
}

func (g *MemoryGate) Acquire(ctx context.Context, sessionID string) (func(context.Context) error, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if l, ok := g.leases[sessionID]; ok && now.Before(l.expires) {
		return nil, domain.ErrReplyInFlight
	}
	token := uuid.NewString()
	g.leases[sessionID] = memoryLease{token: token, expires: now.Add(g.ttl)}

	return func(context.Context) error {
		g.mu.Lock()
		defer g.mu.Unlock()
		if l, ok := g.leases[sessionID]; ok && l.token == token {
			delete(g.leases, sessionID)
		}
		return nil
	}, nil
}

const gateKeyPrefix = "avquote:reply:"

// releaseScript deletes the key only while it still holds our token, so a
// lease that expired and was re-acquired elsewhere is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisGate struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisGate(client *redis.Client, ttl time.Duration) *RedisGate {
	return &RedisGate{client: client, ttl: ttl}
}

func (g *RedisGate) Acquire(ctx context.Context, sessionID string) (func(context.Context) error, error) {
	key := gateKeyPrefix + sessionID
	token := uuid.NewString()

	ok, err := g.client.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire reply gate: %w", err)
	}
	if !ok {
		return nil, domain.ErrReplyInFlight
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, g.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
			return fmt.Errorf("release reply gate: %w", err)
		}
		return nil
	}, nil
}
