package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the configuration for the recommender service
type Config struct {
	Data       DataConfig
	Search     SearchConfig
	Classifier ClassifierConfig
	Cache      CacheConfig
	Server     ServerConfig
	LogLevel   string
}

// DataConfig locates the source tables
type DataConfig struct {
	RecipesPath string
	ReviewsPath string
}

// SearchConfig holds ranking limits shared by both retrieval modes
type SearchConfig struct {
	TopN int
}

// ClassifierConfig holds nutrient classifier training parameters
type ClassifierConfig struct {
	MaxFeatures  int
	MaxIter      int
	LearningRate float64
	L2           float64
	Tolerance    float64
}

// CacheConfig controls memoisation of fitted models
type CacheConfig struct {
	Enabled bool
	Size    int
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Data: DataConfig{
			RecipesPath: GetStringEnv("FLAVOUR_RECIPES_PATH", "./data/recipes.csv"),
			ReviewsPath: GetStringEnv("FLAVOUR_REVIEWS_PATH", "./data/reviews.csv"),
		},
		Search: SearchConfig{
			TopN: GetIntEnv("SEARCH_TOP_N", 10),
		},
		Classifier: ClassifierConfig{
			MaxFeatures:  GetIntEnv("CLASSIFIER_MAX_FEATURES", 500),
			MaxIter:      GetIntEnv("CLASSIFIER_MAX_ITER", 1000),
			LearningRate: GetFloatEnv("CLASSIFIER_LEARNING_RATE", 1.0),
			L2:           GetFloatEnv("CLASSIFIER_L2", 1e-4),
			Tolerance:    GetFloatEnv("CLASSIFIER_TOLERANCE", 1e-4),
		},
		Cache: CacheConfig{
			Enabled: GetBoolEnv("MODEL_CACHE_ENABLED", true),
			Size:    GetIntEnv("MODEL_CACHE_SIZE", 16),
		},
		Server: ServerConfig{
			Addr:         GetStringEnv("SERVER_ADDR", ":8080"),
			ReadTimeout:  GetDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: GetDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		LogLevel: GetStringEnv("LOG_LEVEL", "info"),
	}
}

func GetStringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
