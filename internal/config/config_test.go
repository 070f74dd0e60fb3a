package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/flavourai/backend/internal/config"
)

var envKeys = []string{
	"FLAVOUR_RECIPES_PATH", "FLAVOUR_REVIEWS_PATH", "SEARCH_TOP_N",
	"CLASSIFIER_MAX_FEATURES", "CLASSIFIER_MAX_ITER",
	"CLASSIFIER_LEARNING_RATE", "CLASSIFIER_L2", "CLASSIFIER_TOLERANCE",
	"MODEL_CACHE_ENABLED", "MODEL_CACHE_SIZE",
	"SERVER_ADDR", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "LOG_LEVEL",
}

// clearEnv blanks every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultConfig(t *testing.T) {
	clearEnv(t)

	cfg := config.Load()

	assert.Equal(t, "./data/recipes.csv", cfg.Data.RecipesPath)
	assert.Equal(t, "./data/reviews.csv", cfg.Data.ReviewsPath)
	assert.Equal(t, 10, cfg.Search.TopN)
	assert.Equal(t, 500, cfg.Classifier.MaxFeatures)
	assert.Equal(t, 1000, cfg.Classifier.MaxIter)
	assert.Equal(t, 1.0, cfg.Classifier.LearningRate)
	assert.Equal(t, 1e-4, cfg.Classifier.Tolerance)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 16, cfg.Cache.Size)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearEnv(t)
	envVars := map[string]string{
		"FLAVOUR_RECIPES_PATH":     "/srv/recipes.csv",
		"SEARCH_TOP_N":             "5",
		"CLASSIFIER_MAX_ITER":      "250",
		"CLASSIFIER_TOLERANCE":     "0.001",
		"CLASSIFIER_LEARNING_RATE": "0.1",
		"MODEL_CACHE_ENABLED":      "false",
		"SERVER_WRITE_TIMEOUT":     "1m",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg := config.Load()

	assert.Equal(t, "/srv/recipes.csv", cfg.Data.RecipesPath)
	assert.Equal(t, 5, cfg.Search.TopN)
	assert.Equal(t, 250, cfg.Classifier.MaxIter)
	assert.Equal(t, 0.001, cfg.Classifier.Tolerance)
	assert.Equal(t, 0.1, cfg.Classifier.LearningRate)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Minute, cfg.Server.WriteTimeout)
}

func TestGetIntEnv(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue int
		expected     int
	}{
		{"Valid int", "42", 10, 42},
		{"Invalid int", "not_a_number", 10, 10},
		{"Negative int", "-5", 10, -5},
		{"Zero", "0", 10, 0},
		{"Unset", "", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.envValue)
			assert.Equal(t, tt.expected, config.GetIntEnv("TEST_INT", tt.defaultValue))
		})
	}
}

func TestGetFloatEnv(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue float64
		expected     float64
	}{
		{"Decimal", "0.25", 1, 0.25},
		{"Exponent", "1e-3", 1, 0.001},
		{"Invalid", "abc", 1, 1},
		{"Unset", "", 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_FLOAT", tt.envValue)
			assert.Equal(t, tt.expected, config.GetFloatEnv("TEST_FLOAT", tt.defaultValue))
		})
	}
}

func TestGetBoolEnv(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		expected     bool
	}{
		{"True string", "true", false, true},
		{"False string", "false", true, false},
		{"1 (true)", "1", false, true},
		{"Invalid bool", "invalid", true, true},
		{"Unset", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.envValue)
			assert.Equal(t, tt.expected, config.GetBoolEnv("TEST_BOOL", tt.defaultValue))
		})
	}
}

func TestGetDurationEnv(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue time.Duration
		expected     time.Duration
	}{
		{"Seconds", "5s", time.Second, 5 * time.Second},
		{"Combined", "1h30m", time.Second, 90 * time.Minute},
		{"Invalid", "invalid", 5 * time.Second, 5 * time.Second},
		{"Unset", "", 10 * time.Second, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.envValue)
			assert.Equal(t, tt.expected, config.GetDurationEnv("TEST_DURATION", tt.defaultValue))
		})
	}
}

func TestGetStringEnv(t *testing.T) {
	t.Setenv("TEST_STRING", "value")
	assert.Equal(t, "value", config.GetStringEnv("TEST_STRING", "default"))
	t.Setenv("TEST_STRING", "")
	assert.Equal(t, "default", config.GetStringEnv("TEST_STRING", "default"))
}
