package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Addr      string `envconfig:"ADDR" default:":8080"`
	DBDriver  string `envconfig:"DB_DRIVER" default:"sqlite3"`
	DBSource  string `envconfig:"DB_SOURCE" default:"pigeon.db"`
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`
	UploadDir string `envconfig:"UPLOAD_DIR" default:"uploads"`
	// TOKEN_TTL bounds how long an issued login token stays valid.
	TokenTTL time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	// PING_INTERVAL/PONG_TIMEOUT drive the liveness monitor.
	PingInterval time.Duration `envconfig:"PING_INTERVAL" default:"5s"`
	PongTimeout  time.Duration `envconfig:"PONG_TIMEOUT" default:"1s"`
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads .env if present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
