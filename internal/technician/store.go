package technician

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("technician not found")

// Store holds the latest record per technician. Upsert must replace the
// record atomically; records of different technicians are independent.
type Store interface {
	Upsert(ctx context.Context, rec Record) error
	Get(ctx context.Context, technicianID string) (Record, error)
	List(ctx context.Context) ([]Record, error)
}

type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]Record{}}
}

func (m *MemoryStore) Upsert(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.TechnicianID] = rec
	return nil
}

func (m *MemoryStore) Get(_ context.Context, technicianID string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[technicianID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *MemoryStore) List(_ context.Context) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out, nil
}

const (
	redisKeyPrefix = "technician:location:"
	redisIndexKey  = "technician:location:index"
)

// RedisStore keeps one JSON blob per technician key, so each publish is a
// single atomic SET. The index set backs List for multi-instance deployments.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Upsert(ctx context.Context, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, redisKeyPrefix+rec.TechnicianID, payload, 0).Err(); err != nil {
		return err
	}
	return r.client.SAdd(ctx, redisIndexKey, rec.TechnicianID).Err()
}

func (r *RedisStore) Get(ctx context.Context, technicianID string) (Record, error) {
	payload, err := r.client.Get(ctx, redisKeyPrefix+technicianID).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}

	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (r *RedisStore) List(ctx context.Context) ([]Record, error) {
	ids, err := r.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		rec, err := r.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
