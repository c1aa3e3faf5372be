package main

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultOutputDir    = "docs"
	defaultImageModel   = "dall-e-3"
	defaultImageBaseURL = "https://models.inference.ai.azure.com"
)

// Embedded default configuration
//
//go:embed config/subjects.yaml
var defaultSubjectsConfig string

// Settings represents the YAML configuration structure
type Settings struct {
	OutputDirectory   string          `yaml:"output_directory"`
	FetchDelaySeconds int             `yaml:"fetch_delay_seconds"`
	Subjects          []SubjectConfig `yaml:"subjects"`
	Image             ImageSettings   `yaml:"image"`
}

// ImageSettings configures the image generation API. The credential itself
// comes from the --api-key flag or the GITHUB_TOKEN environment variable,
// never from the file.
type ImageSettings struct {
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// FetchDelay returns the pause between subject fetches
func (s *Settings) FetchDelay() time.Duration {
	return time.Duration(s.FetchDelaySeconds) * time.Second
}

// loadSettings loads settings from a YAML file, or the embedded defaults
// when path is empty
func loadSettings(path string) (*Settings, error) {
	if path == "" {
		return parseSettings([]byte(defaultSubjectsConfig))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings file %s: %w", path, err)
	}

	settings, err := parseSettings(data)
	if err != nil {
		return nil, fmt.Errorf("settings file %s: %w", path, err)
	}
	return settings, nil
}

func parseSettings(data []byte) (*Settings, error) {
	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parsing settings YAML: %w", err)
	}

	if len(settings.Subjects) == 0 {
		return nil, fmt.Errorf("no subjects configured")
	}
	for i, subject := range settings.Subjects {
		if subject.Name == "" || subject.URL == "" || subject.Selector == "" {
			return nil, fmt.Errorf("subject %d: name, url and selector are required", i)
		}
	}

	if settings.OutputDirectory == "" {
		settings.OutputDirectory = defaultOutputDir
	}
	if settings.FetchDelaySeconds < 0 {
		settings.FetchDelaySeconds = 0
	}
	if settings.Image.Model == "" {
		settings.Image.Model = defaultImageModel
	}
	if settings.Image.BaseURL == "" {
		settings.Image.BaseURL = defaultImageBaseURL
	}

	return &settings, nil
}
