// Package config loads server configuration from YAML or JSON files.
// The upstream API credential is deliberately never part of the file:
// it comes from the OPENAI_API_KEY environment variable only.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// APIKeyEnv names the environment variable carrying the credential for
// the remote completion API.
const APIKeyEnv = "OPENAI_API_KEY"

type Config struct {
	Server Server `json:"server" yaml:"server"`
	OpenAI OpenAI `json:"openai" yaml:"openai"`
	OCR    OCR    `json:"ocr" yaml:"ocr"`
}

type Server struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

type OpenAI struct {
	BaseURL     string  `json:"base_url" yaml:"base_url"`
	Model       string  `json:"model" yaml:"model"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens"`
}

type OCR struct {
	Languages []string `json:"languages" yaml:"languages"`
}

func Default() *Config {
	return &Config{
		Server: Server{
			Host: "localhost",
			Port: 8080,
		},
		OpenAI: OpenAI{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o",
			Temperature: 0.2,
			MaxTokens:   2048,
		},
		OCR: OCR{
			Languages: []string{"jpn", "eng"},
		},
	}
}

// APIKey returns the completion API credential from the environment, or
// an empty string when it is not configured.
func APIKey() string {
	return os.Getenv(APIKeyEnv)
}

func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	ext := filepath.Ext(path)

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return config, nil
}

func (c *Config) Save(path string) error {
	ext := filepath.Ext(path)
	var data []byte
	var err error

	switch ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal config to YAML: %w", err)
		}
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
