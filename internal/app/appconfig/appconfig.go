package appconfig

import (
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/kvv-bao/profiler/internal/app/appcontext"
	"github.com/kvv-bao/profiler/internal/pkg/projectpath"
)

const envPrefix = "profiler"

func loadDotEnv() {
	err := godotenv.Load(filepath.Join(projectpath.Root, ".env"))
	if err != nil {
		log.Warn().Err(err).Msg("failed to load .env file")
	}
}

func Parse(ctx appcontext.Ctx) (*Config, error) {
	loadDotEnv()

	var config ConfigSpec
	err := envconfig.Process(envPrefix, &config)
	if err != nil {
		_ = envconfig.Usage(envPrefix, &config)
		return nil, fmt.Errorf("failed to parse configuration: %w. More info on how to configure this service is located at https://pkg.go.dev/github.com/kvv-bao/profiler/internal/app/appconfig#ConfigSpec", err)
	}

	if _, err := config.ProfileTreeConfig(); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return &Config{
		ConfigSpec: config,
		AppContext: ctx,
	}, nil
}

// ParseProfile parses only the profile tree settings, for commands that run without any infrastructure.
func ParseProfile() (*ProfileSpec, error) {
	loadDotEnv()

	var ps ProfileSpec
	if err := envconfig.Process(envPrefix, &ps); err != nil {
		_ = envconfig.Usage(envPrefix, &ps)
		return nil, fmt.Errorf("failed to parse profile configuration: %w", err)
	}

	if _, err := ps.ProfileTreeConfig(); err != nil {
		return nil, fmt.Errorf("failed to parse profile configuration: %w", err)
	}
	return &ps, nil
}
