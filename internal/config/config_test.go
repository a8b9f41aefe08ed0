package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PredictionStore != StoreMemory {
		t.Fatalf("expected memory store by default, got %q", cfg.PredictionStore)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.CacheTTL != time.Minute {
		t.Fatalf("unexpected CacheTTL: %s", cfg.CacheTTL)
	}
	if cfg.WikipediaPage == "" || cfg.WikipediaSection == "" {
		t.Fatalf("expected wikipedia page defaults, got %q section %q", cfg.WikipediaPage, cfg.WikipediaSection)
	}
}

func TestLoad_PredictionStoreValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PREDICTION_STORE", "redis")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid PREDICTION_STORE")
	}
}

func TestLoad_GitHubStoreRequiresRepoAndToken(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PREDICTION_STORE", StoreGitHub)
	t.Setenv("GITHUB_OWNER", "")
	t.Setenv("GITHUB_REPO", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PREDICTION_STORE=github without a repo")
	}

	t.Setenv("GITHUB_OWNER", "someone")
	t.Setenv("GITHUB_REPO", "quiniela-data")
	t.Setenv("GITHUB_TOKEN", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PREDICTION_STORE=github without a token")
	}

	t.Setenv("GITHUB_TOKEN", "ghp_token")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.GitHubLabel != "prediccion" {
		t.Fatalf("unexpected GitHubLabel: %q", cfg.GitHubLabel)
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_WikipediaConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("WIKIPEDIA_ENABLED", "true")
	t.Setenv("WIKIPEDIA_PAGE", "Torneo_Clausura_2025_(México)")
	t.Setenv("WIKIPEDIA_SECTION", "14")
	t.Setenv("WIKIPEDIA_TIMEOUT", "25s")
	t.Setenv("SEASON_YEAR", "2025")
	t.Setenv("KNOWN_DATE_PHRASES", "por definir, fecha pendiente")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.WikipediaEnabled {
		t.Fatalf("expected WikipediaEnabled=true")
	}
	if cfg.WikipediaPage != "Torneo_Clausura_2025_(México)" {
		t.Fatalf("unexpected WikipediaPage: %q", cfg.WikipediaPage)
	}
	if cfg.WikipediaTimeout != 25*time.Second {
		t.Fatalf("unexpected WikipediaTimeout: %s", cfg.WikipediaTimeout)
	}
	if cfg.SeasonYear != 2025 {
		t.Fatalf("unexpected SeasonYear: %d", cfg.SeasonYear)
	}
	if len(cfg.KnownDatePhrases) != 2 {
		t.Fatalf("unexpected KnownDatePhrases: %v", cfg.KnownDatePhrases)
	}
}

func TestLoad_SeasonYearValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SEASON_YEAR", "1024")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for out-of-range SEASON_YEAR")
	}
}
