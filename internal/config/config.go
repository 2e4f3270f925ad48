package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/treasurehunt.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	JWTSecret string        `env:"JWT_SECRET,notEmpty"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"168h"`

	AdminEmail        string `env:"ADMIN_EMAIL" envDefault:"admin@treasurehunt.local"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH" envDefault:"$2a$10$trCdqP4npsbw0R1vQxVwXeT1HebzRmP01SXaNGPz1eSAZ7mpcL0Uu"`

	// Empty disables the cross-instance event relay.
	RedisURL string `env:"REDIS_URL"`

	Round1MaxQualifying int           `env:"ROUND1_MAX_QUALIFYING" envDefault:"50"`
	Round2MaxQualifying int           `env:"ROUND2_MAX_QUALIFYING" envDefault:"30"`
	Round3MaxQualifying int           `env:"ROUND3_MAX_QUALIFYING" envDefault:"10"`
	CodeEvalTimeout     time.Duration `env:"CODE_EVAL_TIMEOUT" envDefault:"2s"`

	SeedDemo bool   `env:"SEED_DEMO" envDefault:"false"`
	WebDir   string `env:"WEB_DIR"`

	// Host patterns allowed to open the admin websocket from another origin,
	// e.g. "admin.example.com" or "*.example.com". Same-host requests are
	// always allowed.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

// RoundCaps returns the qualification caps in round order.
func (c *Config) RoundCaps() [3]int {
	return [3]int{c.Round1MaxQualifying, c.Round2MaxQualifying, c.Round3MaxQualifying}
}

// Load reads an optional .env file and then the environment. Variables
// already set in the environment win over the file.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	return &cfg, nil
}
