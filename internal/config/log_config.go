package config

import "time"

type LogConfig interface {
	GetLogLevel() string
	GetLogFile() string
	GetLogMaxAge() time.Duration
	GetLogRotationTime() time.Duration
}

type Logging struct {
	Level        string        `env:"LOG_LEVEL" envDefault:"info"`
	File         string        `env:"LOG_FILE"`
	MaxAge       time.Duration `env:"LOG_MAX_AGE" envDefault:"168h"`
	RotationTime time.Duration `env:"LOG_ROTATION_TIME" envDefault:"24h"`
}

var _ LogConfig = Logging{}

func (l Logging) GetLogLevel() string {
	return l.Level
}

// GetLogFile is an optional rotatelogs pattern, e.g. "./logs/server.%Y%m%d.log".
func (l Logging) GetLogFile() string {
	return l.File
}

func (l Logging) GetLogMaxAge() time.Duration {
	return l.MaxAge
}

func (l Logging) GetLogRotationTime() time.Duration {
	return l.RotationTime
}
