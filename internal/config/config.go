package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/places.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"../web/dist"`

	// Generative service.
	GenAIBaseURL    string `env:"GENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	GenAIAPIKey     string `env:"GENAI_API_KEY"`
	GenAITextModel  string `env:"GENAI_TEXT_MODEL" envDefault:"gpt-4o"`
	GenAIImageModel string `env:"GENAI_IMAGE_MODEL" envDefault:"gpt-image-1"`

	// Generated images are stored on disk and served under /images/.
	ImageDir string `env:"IMAGE_DIR" envDefault:"data/images"`

	// Pause between generation kickoffs in a batch request.
	BatchDelay time.Duration `env:"BATCH_DELAY" envDefault:"2s"`

	// Initial admin account, seeded once on an empty database.
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
