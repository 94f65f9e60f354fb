package commons

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"comandero/internal/config"
)

// LoadConfig reads the YAML config file. Deployments that configure through
// the environment use config.Load instead; main tries this first and falls
// back.
func LoadConfig(path string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}
