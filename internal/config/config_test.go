package config

import "testing"

func validConfig() Config {
	return Config{
		Environment:           "local",
		LogLevel:              "info",
		DBMinConns:            1,
		DBMaxConns:            8,
		ReviewSample:          2000,
		TranslationProvider:   "google",
		TranslationTargetLang: "en",
		TranslationMaxChars:   10000,
		TranslationBatchSize:  120,
	}
}

func TestValidate_AcceptsDefaults(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.HasDatabase() {
		t.Fatalf("did not expect database without DATABASE_URL")
	}
}

func TestValidate_RejectsBatchLimits(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.TranslationMaxChars = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected TRANSLATION_MAX_CHARS error")
	}

	cfg = validConfig()
	cfg.TranslationBatchSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected TRANSLATION_BATCH_SIZE error")
	}
}

func TestValidate_RejectsConnBounds(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.DBMinConns = 9
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected min > max error")
	}
}

func TestValidate_RejectsTargetLang(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.TranslationTargetLang = "e1"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected target language error")
	}
}

func TestValidate_RejectsPlainTokenHash(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.APITokenHash = "not-a-hash"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected API_TOKEN_HASH error")
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("TRANSLATION_MAX_CHARS", "500")
	t.Setenv("TRANSLATION_BATCH_SIZE", "7")
	t.Setenv("DATABASE_URL", "postgres://localhost/staylens")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TranslationMaxChars != 500 || cfg.TranslationBatchSize != 7 {
		t.Fatalf("unexpected limits: %+v", cfg)
	}
	if !cfg.HasDatabase() {
		t.Fatalf("expected database to be configured")
	}
}
