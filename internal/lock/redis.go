package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Redis provider defaults. The TTL is a crash guard only: well-behaved
// callers always release explicitly.
const (
	defaultLockTTL  = 45 * time.Minute
	defaultLockPoll = 100 * time.Millisecond
	releaseTimeout  = 5 * time.Second
)

// releaseScript deletes the key only if it still holds our owner token, so a
// provider never releases a lock it lost to TTL expiry.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisProvider is a Provider backed by Redis SET NX with owner tokens.
// Acquire polls until the key is free, matching the blocking, unbounded-wait
// lock semantics of the commit protocol.
type RedisProvider struct {
	client *redis.Client
	ttl    time.Duration
	poll   time.Duration

	mu     sync.Mutex
	tokens map[string]string
}

// NewRedisProvider creates a Redis-backed lock provider.
func NewRedisProvider(client *redis.Client) *RedisProvider {
	return &RedisProvider{
		client: client,
		ttl:    defaultLockTTL,
		poll:   defaultLockPoll,
		tokens: make(map[string]string),
	}
}

// Acquire blocks until the named lock is held or ctx is done.
func (p *RedisProvider) Acquire(ctx context.Context, name string) error {
	token := uuid.NewString()
	key := p.key(name)

	for {
		ok, err := p.client.SetNX(ctx, key, token, p.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquiring lock %q: %w", name, err)
		}
		if ok {
			p.mu.Lock()
			p.tokens[name] = token
			p.mu.Unlock()
			return nil
		}

		select {
		case <-time.After(p.poll):
		case <-ctx.Done():
			return fmt.Errorf("acquiring lock %q: %w", name, ctx.Err())
		}
	}
}

// Release releases the named lock if this provider still owns it.
func (p *RedisProvider) Release(name string) {
	p.mu.Lock()
	token, ok := p.tokens[name]
	delete(p.tokens, name)
	p.mu.Unlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	releaseScript.Run(ctx, p.client, []string{p.key(name)}, token)
}

func (p *RedisProvider) key(name string) string {
	return "reviewd:lock:" + name
}
