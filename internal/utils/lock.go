package utils

import (
	"context" // Context for Redis operations
	"errors"  // Sentinel error
	"sync"    // In-process fallback
	"time"    // Lock lifetime

	"github.com/google/uuid"       // Lock owner tokens
	"github.com/redis/go-redis/v9" // Redis client
)

// ErrLockHeld is returned when another holder owns the lock
var ErrLockHeld = errors.New("lock held")

// Locker hands out exclusive, non-blocking locks keyed by string
type Locker interface {
	// Acquire takes the lock or fails with ErrLockHeld. The returned func releases it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// releaseScript deletes the key only if it still carries our owner token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker with SET NX PX
type RedisLocker struct {
	rdb *redis.Client
}

// NewLocker returns a Redis locker, or an in-process one when rdb is nil
func NewLocker(rdb *redis.Client) Locker {
	if rdb == nil {
		return NewMemoryLocker()
	}
	return &RedisLocker{rdb: rdb}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	owner := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key, owner, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return func() {
		// Release with a fresh context so a cancelled request still frees the lock
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(rctx, l.rdb, []string{key}, owner).Err()
	}, nil
}

// MemoryLocker implements Locker inside one process
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: map[string]bool{}}
}

func (l *MemoryLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, ErrLockHeld
	}
	l.held[key] = true
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}
