package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/fraudradar/fraud-radar/internal/config"
	"github.com/fraudradar/fraud-radar/internal/detect"
	"github.com/fraudradar/fraud-radar/internal/llm"
	"github.com/fraudradar/fraud-radar/internal/service"
	"github.com/fraudradar/fraud-radar/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/fraudradar/radar.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadThresholds reads detection thresholds from config, falling back to the
// defaults for any unset field.
func loadThresholds() detect.Thresholds {
	t := detect.DefaultThresholds()

	if v := viper.GetInt("detection.split_min_count"); v > 0 {
		t.SplitMinCount = v
	}
	if viper.IsSet("detection.night_start_hour") {
		t.NightStartHour = viper.GetInt("detection.night_start_hour")
	}
	if viper.IsSet("detection.night_end_hour") {
		t.NightEndHour = viper.GetInt("detection.night_end_hour")
	}
	if v := viper.GetFloat64("detection.round_amount_floor"); v > 0 {
		t.RoundAmountFloor = v
	}
	if v := viper.GetFloat64("detection.round_amount_multiple"); v > 0 {
		t.RoundAmountMultiple = v
	}
	t.EnforceRules = viper.GetBool("detection.enforce_rules")

	return t
}

// initAssistant builds the LLM client from config. Returns nil when no API
// key is configured, so callers can degrade gracefully.
func initAssistant() (service.Assistant, error) {
	apiKey := viper.GetString("assistant.api_key")
	if apiKey == "" {
		return nil, nil
	}

	cfg := llm.Config{
		Provider:          viper.GetString("assistant.provider"),
		APIKey:            apiKey,
		Model:             viper.GetString("assistant.model"),
		Temperature:       viper.GetFloat64("assistant.temperature"),
		MaxTokens:         viper.GetInt("assistant.max_tokens"),
		RequestsPerMinute: viper.GetInt("assistant.requests_per_minute"),
		MaxRetries:        viper.GetInt("assistant.max_retries"),
	}
	if ttl := viper.GetDuration("assistant.cache_ttl"); ttl > 0 {
		cfg.CacheTTL = ttl
	}
	if timeout := viper.GetDuration("assistant.timeout"); timeout > 0 {
		cfg.Timeout = timeout
	} else {
		cfg.Timeout = 5 * time.Second
	}

	return llm.NewAssistant(cfg)
}
