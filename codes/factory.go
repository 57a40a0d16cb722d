package codes

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-authcode-server/internal/config"
	"github.com/jrsteele09/go-authcode-server/ticket"
)

// Open builds the Store selected by cfg.
func Open(ctx context.Context, cfg config.StoreConfig, codec ticket.Codec, opts ...Option) (Store, error) {
	switch cfg.GetCodeStore() {
	case config.StoreMemory:
		return NewMemoryStore(codec, opts...), nil
	case config.StoreRedis:
		s, err := NewRedisStore(ctx, RedisOptions{
			Addr:      cfg.GetRedisAddr(),
			Username:  cfg.GetRedisUsername(),
			Password:  cfg.GetRedisPassword(),
			DB:        cfg.GetRedisDB(),
			KeyPrefix: cfg.GetRedisKeyPrefix(),
		}, codec, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreSQLite, config.StorePostgres:
		if cfg.GetDatabaseDSN() == "" {
			return nil, fmt.Errorf("[codes Open] DATABASE_DSN is required for %s", cfg.GetCodeStore())
		}
		s, err := NewSQLStore(ctx, string(cfg.GetCodeStore()), cfg.GetDatabaseDSN(), codec, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("[codes Open] unknown code store %q", cfg.GetCodeStore())
	}
}
