package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"horse.fit/staylens/internal/language"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" default:""`
	DBMinConns  int32  `envconfig:"DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"8"`

	DataDir      string `envconfig:"DATA_DIR" default:""`
	ReviewSample int    `envconfig:"REVIEW_SAMPLE" default:"2000"`

	TranslationProvider     string `envconfig:"TRANSLATION_PROVIDER" default:"google"`
	TranslationTargetLang   string `envconfig:"TRANSLATION_TARGET_LANG" default:"en"`
	TranslationMaxChars     int    `envconfig:"TRANSLATION_MAX_CHARS" default:"10000"`
	TranslationBatchSize    int    `envconfig:"TRANSLATION_BATCH_SIZE" default:"120"`
	TranslationEndpoint     string `envconfig:"TRANSLATION_ENDPOINT" default:""`
	TranslationModel        string `envconfig:"TRANSLATION_MODEL" default:""`
	GoogleTranslateAPIKey   string `envconfig:"GOOGLE_TRANSLATE_API_KEY" default:""`
	GoogleTranslateEndpoint string `envconfig:"GOOGLE_TRANSLATE_ENDPOINT" default:""`

	APITokenHash string `envconfig:"API_TOKEN_HASH" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBMinConns < 0 {
		return fmt.Errorf("DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) cannot exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.ReviewSample < 0 {
		return fmt.Errorf("REVIEW_SAMPLE must be >= 0")
	}
	if c.TranslationMaxChars < 1 {
		return fmt.Errorf("TRANSLATION_MAX_CHARS must be >= 1")
	}
	if c.TranslationBatchSize < 1 {
		return fmt.Errorf("TRANSLATION_BATCH_SIZE must be >= 1")
	}
	if language.NormalizeCode(c.TranslationTargetLang) == "" {
		return fmt.Errorf("TRANSLATION_TARGET_LANG must be a valid language code")
	}
	if hash := strings.TrimSpace(c.APITokenHash); hash != "" && !strings.HasPrefix(hash, "$2") {
		return fmt.Errorf("API_TOKEN_HASH must be a bcrypt hash")
	}
	return nil
}

// HasDatabase reports whether the translation cache is configured.
func (c *Config) HasDatabase() bool {
	return c != nil && strings.TrimSpace(c.DatabaseURL) != ""
}
