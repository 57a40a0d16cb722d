package codes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/go-authcode-server/internal/errors"
	"github.com/jrsteele09/go-authcode-server/ticket"
	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

type RedisOptions struct {
	Addr      string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
}

type redisEntry struct {
	Ticket   string `json:"ticket"`
	IssuedAt int64  `json:"issued_at"` // unix milliseconds
}

// RedisStore shares codes between instances. Entries are written with the
// code TTL so Redis evicts stale ones itself.
type RedisStore struct {
	entryCodec
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, ro RedisOptions, codec ticket.Codec, opts ...Option) (*RedisStore, error) {
	if ro.Addr == "" {
		return nil, errors.New("[NewRedisStore] redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     ro.Addr,
		Username: ro.Username,
		Password: ro.Password,
		DB:       ro.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("[NewRedisStore] failed to connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, ro.KeyPrefix, codec, opts...), nil
}

// NewRedisStoreWithClient wraps an existing client, e.g. one backed by miniredis.
func NewRedisStoreWithClient(client redis.UniversalClient, keyPrefix string, codec ticket.Codec, opts ...Option) *RedisStore {
	return &RedisStore{
		entryCodec: newEntryCodec(codec, opts),
		client:     client,
		keyPrefix:  keyPrefix,
	}
}

func (s *RedisStore) key(code string) string {
	return s.keyPrefix + "code:" + code
}

func (s *RedisStore) Issue(ctx context.Context, t *ticket.Ticket) (string, error) {
	encoded, err := s.encode(t)
	if err != nil {
		return "", fmt.Errorf("[RedisStore Issue] %w", err)
	}

	data, err := json.Marshal(redisEntry{Ticket: encoded, IssuedAt: s.nowFunc().UnixMilli()})
	if err != nil {
		return "", fmt.Errorf("[RedisStore Issue] %w", err)
	}

	for range maxIssueAttempts {
		code, err := GenerateCode(s.codeLength)
		if err != nil {
			return "", fmt.Errorf("[RedisStore Issue] %w", err)
		}
		ok, err := s.client.SetNX(ctx, s.key(code), data, s.ttl).Result()
		if err != nil {
			return "", fmt.Errorf("[RedisStore Issue] %w", err)
		}
		if ok {
			return code, nil
		}
	}
	return "", fmt.Errorf("[RedisStore Issue] %w", errCodeCollision)
}

func (s *RedisStore) Redeem(ctx context.Context, code string) (*ticket.Ticket, error) {
	if code == "" {
		return nil, apperrors.ErrCodeNotFound
	}

	data, err := s.client.GetDel(ctx, s.key(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[RedisStore Redeem] %w", err)
	}

	var entry redisEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, apperrors.Join(apperrors.ErrMalformedTicket, err)
	}
	return s.decode(entry.Ticket, time.UnixMilli(entry.IssuedAt))
}

// Cleanup is a no-op: every key carries the code TTL.
func (s *RedisStore) Cleanup(_ context.Context) (int, error) {
	return 0, nil
}

// Health pings the Redis server.
func (s *RedisStore) Health(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
