package assistant

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Guard — per-event замок генерации: не более одной сессии на событие
type Guard interface {
	TryAcquire(ctx context.Context, eventID uuid.UUID) (bool, error)
	Release(ctx context.Context, eventID uuid.UUID) error
}

// RedisGuard держит замок как ключ с TTL; TTL страхует от вечного замка,
// если процесс упал, не освободив его
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{client: client, ttl: ttl}
}

func (g *RedisGuard) key(eventID uuid.UUID) string {
	return "genlock:" + eventID.String()
}

func (g *RedisGuard) TryAcquire(ctx context.Context, eventID uuid.UUID) (bool, error) {
	return g.client.SetNX(ctx, g.key(eventID), 1, g.ttl).Result()
}

func (g *RedisGuard) Release(ctx context.Context, eventID uuid.UUID) error {
	return g.client.Del(ctx, g.key(eventID)).Err()
}

// MemoryGuard — внутрипроцессная реализация для dev-режима и тестов
type MemoryGuard struct {
	mu    sync.Mutex
	locks map[uuid.UUID]bool
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{locks: make(map[uuid.UUID]bool)}
}

func (g *MemoryGuard) TryAcquire(_ context.Context, eventID uuid.UUID) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.locks[eventID] {
		return false, nil
	}
	g.locks[eventID] = true
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, eventID uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.locks, eventID)
	return nil
}
