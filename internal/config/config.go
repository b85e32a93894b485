package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Style identifies the docstring convention used for generated text.
type Style string

const (
	StyleGoogle Style = "google"
	StyleNumPy  Style = "numpy"
	StyleRest   Style = "restructuredtext"
)

// DefaultConfigFile is the config file looked up when no path is given.
const DefaultConfigFile = "docstringinator.yaml"

type LLMConfig struct {
	Provider    string  `yaml:"provider" validate:"oneof=openai anthropic ollama gemini"`
	Model       string  `yaml:"model" validate:"required"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Temperature float64 `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `yaml:"max_tokens" validate:"gte=0"`
	TimeoutSecs int     `yaml:"timeout" validate:"gt=0"`
}

type FormatConfig struct {
	Style        Style `yaml:"style" validate:"oneof=google numpy restructuredtext"`
	MaxLineLen   int   `yaml:"max_line_length" validate:"gt=0"`
	MinDocLen    int   `yaml:"min_docstring_length" validate:"gte=0"`
	IncludeTypes bool  `yaml:"include_type_hints"`
}

type ProcessingConfig struct {
	DryRun          bool     `yaml:"dry_run"`
	BackupFiles     bool     `yaml:"backup_files"`
	MaxFileSize     int64    `yaml:"max_file_size" validate:"gt=0"`
	ImproveExisting bool     `yaml:"improve_existing"`
	SkipPrivate     bool     `yaml:"skip_private"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
	IncludePatterns []string `yaml:"include_patterns"`
	ExcludeNames    []string `yaml:"exclude_names"`
}

type OutputConfig struct {
	Verbose  bool `yaml:"verbose"`
	ShowDiff bool `yaml:"show_diff"`
}

// Config is the single immutable configuration value threaded through a run.
type Config struct {
	LLM        LLMConfig        `yaml:"llm"`
	Format     FormatConfig     `yaml:"format"`
	Processing ProcessingConfig `yaml:"processing"`
	Output     OutputConfig     `yaml:"output"`
}

// Default returns the configuration used when no file or overrides are given.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4",
			Temperature: 0.1,
			TimeoutSecs: 30,
		},
		Format: FormatConfig{
			Style:        StyleGoogle,
			MaxLineLen:   88,
			MinDocLen:    20,
			IncludeTypes: true,
		},
		Processing: ProcessingConfig{
			BackupFiles:     true,
			MaxFileSize:     1_000_000,
			ImproveExisting: true,
			SkipPrivate:     true,
			ExcludePatterns: []string{"*/tests/*", "*/migrations/*", "*/venv/*", "*/__pycache__/*"},
			IncludePatterns: []string{"*.py"},
			ExcludeNames:    []string{"test_*"},
		},
		Output: OutputConfig{
			Verbose:  true,
			ShowDiff: true,
		},
	}
}

// Load reads configuration from a YAML file, layering .env and environment
// variable overrides on top of the defaults. A missing file is not an error
// when path is empty; the defaults are used instead.
func Load(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	explicit := path != ""
	if path == "" {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if explicit || !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid yaml in %s: %w", path, err)
	}

	// 3. Override with environment variables if present
	if provider := os.Getenv("DOCSTRINGINATOR_PROVIDER"); provider != "" {
		cfg.LLM.Provider = provider
	}
	if model := os.Getenv("DOCSTRINGINATOR_MODEL"); model != "" {
		cfg.LLM.Model = model
	}
	if key := os.Getenv("DOCSTRINGINATOR_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case "gemini":
			cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
	if base := os.Getenv("OLLAMA_BASE_URL"); base != "" && cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = base
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks structural constraints and provider requirements.
func Validate(cfg *Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	switch cfg.LLM.Provider {
	case "openai", "anthropic", "gemini":
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("api key required for provider %s", cfg.LLM.Provider)
		}
	}
	return nil
}

// WriteDefault writes a default config file. Existing files are left alone.
func WriteDefault(path string) error {
	if path == "" {
		path = DefaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
