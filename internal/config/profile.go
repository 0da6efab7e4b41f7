package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/aloft-etl/internal/forecast"
)

// LoadProfile reads the model profile YAML at path. An empty path yields the
// built-in profile. Fields left out of the file take their defaults.
func LoadProfile(path string) (forecast.Profile, error) {
	if path == "" {
		return forecast.DefaultProfile(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return forecast.Profile{}, fmt.Errorf("read MODEL_PROFILE_FILE: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes, defaults, and validates a model profile document.
func ParseProfile(data []byte) (forecast.Profile, error) {
	var p forecast.Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return forecast.Profile{}, fmt.Errorf("decode model profile: %w", err)
	}
	if err := p.ApplyDefaults(); err != nil {
		return forecast.Profile{}, err
	}
	return p, nil
}
