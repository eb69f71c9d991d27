package client

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
	ThemePlain = "plain"

	DensityComfortable = "comfortable"
	DensityCompact     = "compact"
)

// Settings are the client's cosmetic and connection preferences. They never change behaviour
// of the controller, only how its state is presented and where it connects.
type Settings struct {
	APIURL    string `yaml:"api_url"`
	TokenFile string `yaml:"token_file"`
	Theme     string `yaml:"theme"`
	Density   string `yaml:"density"`
}

func DefaultSettings() Settings {
	return Settings{
		APIURL:    "http://localhost:5000",
		TokenFile: DefaultTokenPath(),
		Theme:     ThemeLight,
		Density:   DensityComfortable,
	}
}

// LoadSettings reads a YAML file over the defaults. An empty path or a missing file yields the defaults.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse settings file: %w", err)
	}
	return s, s.Validate()
}

func (s Settings) Validate() error {
	switch s.Theme {
	case ThemeLight, ThemeDark, ThemePlain:
	default:
		return fmt.Errorf("unknown theme %q", s.Theme)
	}
	switch s.Density {
	case DensityComfortable, DensityCompact:
	default:
		return fmt.Errorf("unknown density %q", s.Density)
	}
	if s.APIURL == "" {
		return errors.New("api_url is empty")
	}
	return nil
}
