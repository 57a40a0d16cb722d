package config

type StoreType string

const (
	StoreMemory   StoreType = "memory"
	StoreRedis    StoreType = "redis"
	StoreSQLite   StoreType = "sqlite"
	StorePostgres StoreType = "postgres"
)

// StoreConfig selects the authorization code store backend.
type StoreConfig interface {
	GetCodeStore() StoreType
	GetRedisAddr() string
	GetRedisUsername() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisKeyPrefix() string
	GetDatabaseDSN() string
}

type Store struct {
	CodeStore      string `env:"CODE_STORE" envDefault:"memory"`
	RedisAddr      string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisUsername  string `env:"REDIS_USERNAME"`
	RedisPassword  string `env:"REDIS_PASSWORD"`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`
	RedisKeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"authcode:"`
	DatabaseDSN    string `env:"DATABASE_DSN"`
}

var _ StoreConfig = Store{}

func (s Store) GetCodeStore() StoreType {
	if s.CodeStore == "" {
		return StoreMemory
	}
	return StoreType(s.CodeStore)
}

func (s Store) GetRedisAddr() string {
	return s.RedisAddr
}

func (s Store) GetRedisUsername() string {
	return s.RedisUsername
}

func (s Store) GetRedisPassword() string {
	return s.RedisPassword
}

func (s Store) GetRedisDB() int {
	return s.RedisDB
}

func (s Store) GetRedisKeyPrefix() string {
	return s.RedisKeyPrefix
}

// GetDatabaseDSN is a file path for sqlite or a connection URL for postgres.
func (s Store) GetDatabaseDSN() string {
	if s.DatabaseDSN == "" && s.GetCodeStore() == StoreSQLite {
		return "./data/codes.db"
	}
	return s.DatabaseDSN
}
