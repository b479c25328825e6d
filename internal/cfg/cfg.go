// Package cfg loads runtime settings for the fraud scorer from a YAML
// file and/or environment variables. A .env file is honored when present.
package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	ModelPath      string
	DataPath       string
	AlertThreshold float64
	FetchTimeout   time.Duration
	Debug          bool
}

type ConfigFile struct {
	Model struct {
		Path         string `yaml:"path"`
		FetchTimeout string `yaml:"fetchTimeout"`
	} `yaml:"model"`

	Alert struct {
		Threshold float64 `yaml:"threshold"`
	} `yaml:"alert"`

	System struct {
		DataPath string `yaml:"dataPath"`
		Debug    bool   `yaml:"debug"`
	} `yaml:"system"`
}

func Load() (Settings, error) {
	// Optional .env file for local runs
	_ = godotenv.Load()

	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromYAML(configPath)
	}

	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	fetchTimeout, err := time.ParseDuration(config.Model.FetchTimeout)
	if err != nil {
		fetchTimeout = 10 * time.Second
	}

	threshold := config.Alert.Threshold
	if threshold == 0 {
		threshold = 0.5
	}

	settings := Settings{
		ModelPath:      getEnvOrDefault("MODEL_PATH", config.Model.Path),
		DataPath:       getEnvOrDefault("DATA_PATH", config.System.DataPath),
		AlertThreshold: getFloatOrDefault("ALERT_THRESHOLD", threshold),
		FetchTimeout:   getDurationOrDefault("FETCH_TIMEOUT", fetchTimeout),
		Debug:          getBoolOrDefault("DEBUG", config.System.Debug),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		ModelPath:      getEnvOrDefault("MODEL_PATH", "model.json"),
		DataPath:       os.Getenv("DATA_PATH"), // optional
		AlertThreshold: getFloatOrDefault("ALERT_THRESHOLD", 0.5),
		FetchTimeout:   getDurationOrDefault("FETCH_TIMEOUT", 10*time.Second),
		Debug:          getBoolOrDefault("DEBUG", false),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

// validateSettings performs validation of configuration values
func validateSettings(settings *Settings) error {
	if settings.ModelPath == "" {
		return fmt.Errorf("model path cannot be empty")
	}

	if settings.AlertThreshold <= 0 || settings.AlertThreshold >= 1 {
		return fmt.Errorf("alert threshold must be between 0 and 1, got %f", settings.AlertThreshold)
	}

	if settings.FetchTimeout < time.Second || settings.FetchTimeout > time.Minute {
		return fmt.Errorf("fetch timeout must be between 1s and 1m, got %v", settings.FetchTimeout)
	}

	return nil
}
