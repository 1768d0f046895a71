package services

import (
	"context"
	"fmt"
	"sync"

	"credibly/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StaleAggregateQueue holds ratees whose stored aggregate may be out of date.
// Members are unique; pushing an id that is already queued is a no-op.
type StaleAggregateQueue interface {
	Push(ctx context.Context, ids ...primitive.ObjectID) error
	Pop(ctx context.Context, max int) ([]primitive.ObjectID, error)
	Len(ctx context.Context) (int64, error)
}

// setStore is the subset of the Redis cache the queue needs.
type setStore interface {
	SAdd(ctx context.Context, key string, members ...interface{}) error
	SPopN(ctx context.Context, key string, count int64) ([]string, error)
	SCard(ctx context.Context, key string) (int64, error)
}

type redisStaleQueue struct {
	store setStore
	key   string
}

// NewRedisStaleQueue keeps the queue in a Redis set so it survives restarts
// and is shared between instances.
func NewRedisStaleQueue(store setStore) StaleAggregateQueue {
	return &redisStaleQueue{store: store, key: utils.CacheStaleAggregates}
}

func (q *redisStaleQueue) Push(ctx context.Context, ids ...primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id.Hex()
	}
	if err := q.store.SAdd(ctx, q.key, members...); err != nil {
		return fmt.Errorf("failed to queue stale aggregates: %w", err)
	}
	return nil
}

func (q *redisStaleQueue) Pop(ctx context.Context, max int) ([]primitive.ObjectID, error) {
	members, err := q.store.SPopN(ctx, q.key, int64(max))
	if err != nil {
		return nil, fmt.Errorf("failed to pop stale aggregates: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(members))
	for _, member := range members {
		id, err := primitive.ObjectIDFromHex(member)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (q *redisStaleQueue) Len(ctx context.Context) (int64, error) {
	return q.store.SCard(ctx, q.key)
}

type memoryStaleQueue struct {
	mu  sync.Mutex
	ids map[primitive.ObjectID]struct{}
}

// NewMemoryStaleQueue is the in-process queue used when Redis is disabled.
// Its contents are lost on restart; POST /admin/aggregates/rebuild recovers.
func NewMemoryStaleQueue() StaleAggregateQueue {
	return &memoryStaleQueue{ids: make(map[primitive.ObjectID]struct{})}
}

func (q *memoryStaleQueue) Push(_ context.Context, ids ...primitive.ObjectID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, id := range ids {
		q.ids[id] = struct{}{}
	}
	return nil
}

func (q *memoryStaleQueue) Pop(_ context.Context, max int) ([]primitive.ObjectID, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	ids := make([]primitive.ObjectID, 0, max)
	for id := range q.ids {
		if len(ids) >= max {
			break
		}
		ids = append(ids, id)
		delete(q.ids, id)
	}
	return ids, nil
}

func (q *memoryStaleQueue) Len(_ context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.ids)), nil
}
