package diagnosis

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/roivaz/appliance-diag/internal/appliance"
	"github.com/roivaz/appliance-diag/internal/config"
	"github.com/roivaz/appliance-diag/internal/generation"
	"github.com/roivaz/appliance-diag/internal/prompt"
)

func LoadConfig() (Config, error) {
	mode, err := appliance.ParseRequestMode(config.RequestMode())
	if err != nil {
		return Config{}, err
	}
	return Config{
		Mode:            mode,
		Profile:         config.PromptProfile(),
		MaxPromptTokens: config.MaxPromptTokens(),
	}, nil
}

// NewFromConfig wires the profile catalogue, generation client and service
// from the process configuration.
func NewFromConfig(ctx context.Context, log logr.Logger) (*Service, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	cfg.Logger = log

	catalog, err := prompt.LoadCatalog(config.ProfilesFile())
	if err != nil {
		return nil, err
	}

	genCfg, err := generation.LoadConfig()
	if err != nil {
		return nil, err
	}
	genCfg.Logger = log
	client, err := generation.New(ctx, genCfg)
	if err != nil {
		return nil, fmt.Errorf("init generation client: %w", err)
	}

	return NewService(cfg, catalog, client)
}
