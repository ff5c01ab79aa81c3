package config

import (
	"os"
	"strconv"
	"strings"
)

// GetAllSettings returns a map of all dynamic settings currently loaded in memory.
func GetAllSettings() map[string]any {
	if Global == nil {
		return map[string]any{}
	}
	return map[string]any{
		"summary_provider":           Global.Summary.Provider,
		"summary_model":              Global.Summary.Model,
		"summary_debounce_ms":        Global.Summary.DebounceMs,
		"summary_max_retries":        Global.Summary.MaxRetries,
		"summary_cache_capacity":     Global.Summary.CacheCapacity,
		"summary_min_content_length": Global.Summary.MinEligibleContentLength,
		"summary_retry_hourly_quota": Global.Summary.RetryHourlyQuota,
		"app_debug":                  Global.App.Debug,
		"app_version":                Global.App.Version,
	}
}

// Helpers
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		vLower := strings.ToLower(v)
		return vLower == "1" || vLower == "true" || vLower == "yes" || vLower == "on"
	}
	return fallback
}
