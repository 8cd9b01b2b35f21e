package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the environment-backed settings surface. Every gameplay default
// that used to live as a scattered magic number is named here.
type Config struct {
	Port string `env:"PORT" envDefault:"8081"`

	// Text-generation service. The placeholder key keeps the server running
	// with local fallback cards instead of failing startup.
	GenAIBaseURL string        `env:"GENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	GenAIAPIKey  string        `env:"GENAI_API_KEY" envDefault:"your-api-key"`
	GenAIModel   string        `env:"GENAI_MODEL" envDefault:"gpt-4o-mini"`
	GenTimeout   time.Duration `env:"GEN_TIMEOUT" envDefault:"8s"`

	StartingHealth  int `env:"STARTING_HEALTH" envDefault:"100"`
	StartingStamina int `env:"STARTING_STAMINA" envDefault:"50"`
	StartingMagic   int `env:"STARTING_MAGIC" envDefault:"50"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
