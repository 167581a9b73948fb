package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Project struct {
		Root             string   `yaml:"root"`
		Modules          []string `yaml:"modules"`
		IgnoreSubmodules []string `yaml:"ignore_submodules"`
		SkipReexports    []string `yaml:"skip_reexports"`
	} `yaml:"project"`
	Docs struct {
		Dir        string `yaml:"dir"`
		MkdocsFile string `yaml:"mkdocs_file"`
	} `yaml:"docs"`
	LLM struct {
		Backend    string  `yaml:"backend"`
		Model      string  `yaml:"model"`
		APIKey     string  `yaml:"api_key"`
		BaseURL    string  `yaml:"base_url"`
		SampleRate float64 `yaml:"sample_rate"`
	} `yaml:"llm"`
	Links struct {
		TimeoutSeconds int      `yaml:"timeout_seconds"`
		MaxConcurrent  int      `yaml:"max_concurrent"`
		SkipDomains    []string `yaml:"skip_domains"`
	} `yaml:"links"`
}

func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, err
	}

	// 3. Override with Environment Variables if present
	if apiKey := os.Getenv("DOCDRIFT_LLM_API_KEY"); apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if backend := os.Getenv("DOCDRIFT_LLM_BACKEND"); backend != "" {
		cfg.LLM.Backend = backend
	}

	return &cfg, nil
}
