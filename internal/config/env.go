package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable names recognized as overrides. Values set in the
// process environment (including those loaded from .env) win over the
// YAML document, matching how deployment pipelines inject per-site values.
const (
	EnvBaseURL   = "SITEGEN_BASE_URL"
	EnvOutputDir = "SITEGEN_OUTPUT_DIR"
	EnvCacheDir  = "SITEGEN_CACHE_DIR"
	EnvDrafts    = "SITEGEN_INCLUDE_DRAFTS"
	EnvPageSize  = "SITEGEN_PAGE_SIZE"
)

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv(EnvCacheDir); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv(EnvDrafts); v != "" {
		cfg.IncludeDrafts = parseBool(v)
	}
	if v := os.Getenv(EnvPageSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PageSize = n
		}
	}
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
