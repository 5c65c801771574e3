package config

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     string `yaml:"port" validate:"required,numeric"`
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`

	Store   StoreConfig   `yaml:"store" validate:"required"`
	Backend BackendConfig `yaml:"backend" validate:"required"`
}

type StoreConfig struct {
	ProjectID string `yaml:"project_id" validate:"required"`
	// Location is a region hint kept for compatibility with older
	// deployments. Nothing reads it for generation.
	Location     string `yaml:"location"`
	EmulatorHost string `yaml:"emulator_host" validate:"omitempty,hostname_port"`
	Collection   string `yaml:"collection" validate:"required"`
	// Fixture switches to the in-memory store seeded from a JSON file.
	Fixture string `yaml:"fixture"`
}

type BackendConfig struct {
	UseMock   bool `yaml:"use_mock"`
	UseOllama bool `yaml:"use_ollama"`

	GoogleAPIKey string `yaml:"google_api_key"`
	GoogleModel  string `yaml:"google_model" validate:"required"`

	OllamaBaseURL string `yaml:"ollama_base_url" validate:"required,url"`
	OllamaModel   string `yaml:"ollama_model" validate:"required"`

	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

const (
	DefaultPort          = "8000"
	DefaultLocation      = "us-central1"
	DefaultCollection    = "stories"
	DefaultGoogleModel   = "gemini-2.0-flash-exp"
	DefaultOllamaBaseURL = "http://localhost:11434"
	DefaultOllamaModel   = "phi4-mini"
	DefaultTimeout       = 5 * time.Minute
)

// Load reads .env, the optional YAML file named by STORYAGENT_CONFIG and
// the process environment, in increasing order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := new(Config)
	if path := os.Getenv("STORYAGENT_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	setString(&c.Port, "PORT")
	setString(&c.LogLevel, "LOG_LEVEL")

	setString(&c.Store.ProjectID, "GOOGLE_CLOUD_PROJECT")
	setString(&c.Store.Location, "VERTEX_AI_LOCATION")
	setString(&c.Store.EmulatorHost, "FIRESTORE_EMULATOR_HOST")
	setString(&c.Store.Collection, "STORIES_COLLECTION")
	setString(&c.Store.Fixture, "STORE_FIXTURE")

	setBool(&c.Backend.UseMock, "USE_MOCK")
	setBool(&c.Backend.UseOllama, "USE_OLLAMA")
	setString(&c.Backend.GoogleAPIKey, "GOOGLE_AI_STUDIO_API_KEY")
	setString(&c.Backend.GoogleModel, "GOOGLE_AI_STUDIO_MODEL")
	setString(&c.Backend.OllamaBaseURL, "OLLAMA_BASE_URL")
	setString(&c.Backend.OllamaModel, "OLLAMA_MODEL")

	if v := os.Getenv("GENERATION_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid GENERATION_TIMEOUT %q: %w", v, err)
		}
		c.Backend.Timeout = d
	}
	return nil
}

func (c *Config) applyDefaults() {
	c.Port = cmp.Or(c.Port, DefaultPort)
	c.LogLevel = strings.ToLower(cmp.Or(c.LogLevel, "info"))
	c.Store.Location = cmp.Or(c.Store.Location, DefaultLocation)
	c.Store.Collection = cmp.Or(c.Store.Collection, DefaultCollection)
	c.Backend.GoogleModel = cmp.Or(c.Backend.GoogleModel, DefaultGoogleModel)
	c.Backend.OllamaBaseURL = strings.TrimRight(cmp.Or(c.Backend.OllamaBaseURL, DefaultOllamaBaseURL), "/")
	c.Backend.OllamaModel = cmp.Or(c.Backend.OllamaModel, DefaultOllamaModel)
	c.Backend.Timeout = cmp.Or(c.Backend.Timeout, DefaultTimeout)
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				if fe.Field() == "ProjectID" {
					return errors.New("GOOGLE_CLOUD_PROJECT environment variable must be set")
				}
			}
		}
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// setString overrides dst only when the variable is present, so a YAML value
// survives an unset variable.
func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// setBool accepts "true" case-insensitively; any other non-empty value is false.
func setBool(dst *bool, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	*dst = strings.EqualFold(strings.TrimSpace(v), "true")
}
