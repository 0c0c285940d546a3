package store

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps closure records in Redis, one key per segment. Keys are
// namespaced so multiple builds can share one instance. Records carry no
// TTL; a build's closures live until the build is deleted.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and namespaces all keys under the given
// namespace. The connection is verified with a ping.
func NewRedisStore(ctx context.Context, addr, namespace string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &RedisStore{
		client: client,
		prefix: "streamnet:" + namespace + ":",
	}, nil
}

func (s *RedisStore) key(id int64) string {
	return s.prefix + strconv.FormatInt(id, 10)
}

// Put encodes and stores one closure.
func (s *RedisStore) Put(ctx context.Context, id int64, ancestors []int64) error {
	record, err := Encode(ancestors)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(id), record, 0).Err()
}

// Get fetches and decodes the closure of one segment.
func (s *RedisStore) Get(ctx context.Context, id int64) ([]int64, error) {
	record, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return Decode(record)
}

// Close releases the client connection.
func (s *RedisStore) Close() error { return s.client.Close() }

var (
	_ Writer = (*RedisStore)(nil)
	_ Reader = (*RedisStore)(nil)
)
