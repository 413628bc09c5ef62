package config

import (
	"fmt"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server         ServerConfig
	Mongo          MongoConfig
	Redis          RedisConfig
	JWT            JWTConfig
	GoogleCalendar GoogleCalendarConfig
	LogLevel       string
}

type ServerConfig struct {
	Host string
	Port int
}

type MongoConfig struct {
	URI    string
	DBName string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTTLMinutes  int
	RefreshTTLMinutes int
}

// GoogleCalendarConfig configures the calendar sync client. Published events
// live on the public calendar, drafts on the private one.
type GoogleCalendarConfig struct {
	CredentialsFile   string
	PublicCalendarID  string
	PrivateCalendarID string
	Timezone          string
}

var (
	instance *Config
	mu       sync.RWMutex
)

// Load reads .env (when present) and the environment into the process config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 7070)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB_NAME", "eventcms")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_ACCESS_TTL_MINUTES", 15)
	v.SetDefault("JWT_REFRESH_TTL_MINUTES", 60*24*14)
	v.SetDefault("GCAL_TIMEZONE", "America/New_York")
	v.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Mongo: MongoConfig{
			URI:    v.GetString("MONGO_URI"),
			DBName: v.GetString("MONGO_DB_NAME"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:            v.GetString("JWT_SECRET"),
			AccessTTLMinutes:  v.GetInt("JWT_ACCESS_TTL_MINUTES"),
			RefreshTTLMinutes: v.GetInt("JWT_REFRESH_TTL_MINUTES"),
		},
		GoogleCalendar: GoogleCalendarConfig{
			CredentialsFile:   v.GetString("GCAL_CREDENTIALS_FILE"),
			PublicCalendarID:  v.GetString("GCAL_PUBLIC_CALENDAR_ID"),
			PrivateCalendarID: v.GetString("GCAL_PRIVATE_CALENDAR_ID"),
			Timezone:          v.GetString("GCAL_TIMEZONE"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	mu.Lock()
	instance = cfg
	mu.Unlock()

	return cfg, nil
}

// Get returns the loaded config; it panics when called before Load.
func Get() *Config {
	cfg, ok := GetSafe()
	if !ok {
		panic("config: Get called before Load")
	}
	return cfg
}

func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		return nil, false
	}
	return instance, true
}
