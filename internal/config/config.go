// Package config loads the search settings from an optional file and the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/naka-gawa/github-search/internal/gateway"
	"github.com/naka-gawa/github-search/internal/usecase"
)

// Config holds every tunable of a search run. Zero values read from a file or
// the environment fall back to the env-default; use command line flags to set
// an explicit zero.
type Config struct {
	Token            string        `yaml:"token" env:"GITHUB_TOKEN" env-description:"GitHub access token"`
	Keywords         string        `yaml:"keywords" env:"GITHUB_SEARCH_KEYWORDS" env-default:"partial( NOT is:fork language:Python" env-description:"comma separated search keywords"`
	MaxItems         int           `yaml:"max_items" env:"GITHUB_SEARCH_MAX_ITEMS" env-default:"1000" env-description:"results processed per keyword"`
	MinStars         int           `yaml:"min_stars" env:"GITHUB_SEARCH_MIN_STARS" env-default:"100" env-description:"stars a repository has to exceed"`
	PacingDelay      time.Duration `yaml:"pacing_delay" env:"GITHUB_SEARCH_PACING_DELAY" env-default:"2s" env-description:"pause after every fetched result"`
	CooldownDelay    time.Duration `yaml:"cooldown_delay" env:"GITHUB_SEARCH_COOLDOWN_DELAY" env-default:"60s" env-description:"pause after a rate limit"`
	KeywordDelay     time.Duration `yaml:"keyword_delay" env:"GITHUB_SEARCH_KEYWORD_DELAY" env-default:"120s" env-description:"pause between keywords"`
	RateLimitPolicy  string        `yaml:"rate_limit_policy" env:"GITHUB_SEARCH_RATE_LIMIT_POLICY" env-default:"accept" env-description:"accept or skip rate limited results"`
	MetadataBackend  string        `yaml:"metadata_backend" env:"GITHUB_SEARCH_METADATA_BACKEND" env-default:"rest" env-description:"rest or graphql"`
	APIBaseURL       string        `yaml:"api_base_url" env:"GITHUB_SEARCH_API_URL" env-description:"GitHub Enterprise REST base URL"`
	SingleSleepLimit time.Duration `yaml:"single_sleep_limit" env:"GITHUB_SEARCH_SINGLE_SLEEP_LIMIT" env-default:"1h" env-description:"longest secondary rate limit sleep in the transport"`
	OutputDir        string        `yaml:"output_dir" env:"GITHUB_SEARCH_OUTPUT_DIR" env-default:"." env-description:"directory of the HTML report"`
}

// Load reads path (YAML, TOML, JSON or .env, picked by extension) when given,
// then applies environment variables and defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
		return &cfg, nil
	}
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the settings that do not need the network.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxItems <= 0 {
		errs = append(errs, fmt.Errorf("max_items must be positive, got %d", c.MaxItems))
	}
	if c.MinStars < 0 {
		errs = append(errs, fmt.Errorf("min_stars must not be negative, got %d", c.MinStars))
	}
	if c.PacingDelay < 0 || c.CooldownDelay < 0 || c.KeywordDelay < 0 {
		errs = append(errs, errors.New("delays must not be negative"))
	}
	if _, err := usecase.ParseRateLimitPolicy(c.RateLimitPolicy); err != nil {
		errs = append(errs, err)
	}
	if c.MetadataBackend != gateway.BackendREST && c.MetadataBackend != gateway.BackendGraphQL {
		errs = append(errs, fmt.Errorf("unknown metadata backend %q", c.MetadataBackend))
	}
	if _, err := usecase.ParseKeywords(c.Keywords); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SearchConfig converts the settings for the search orchestrator.
func (c *Config) SearchConfig() usecase.Config {
	return usecase.Config{
		MaxItems:        c.MaxItems,
		MinStars:        c.MinStars,
		RateLimitPolicy: usecase.RateLimitPolicy(c.RateLimitPolicy),
		Delay: usecase.FixedDelays(usecase.Delays{
			Pacing:   c.PacingDelay,
			Cooldown: c.CooldownDelay,
			Keyword:  c.KeywordDelay,
		}),
	}
}

// GatewayOptions converts the settings for the GitHub gateway.
func (c *Config) GatewayOptions() gateway.Options {
	return gateway.Options{
		BaseURL:          c.APIBaseURL,
		MetadataBackend:  c.MetadataBackend,
		SingleSleepLimit: c.SingleSleepLimit,
	}
}
