package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/japaniel/shengci/pkg/quiz"
	"github.com/japaniel/shengci/pkg/vocab"
)

// Store backends for the difficult and mastered word sets.
const (
	StoreSQLite = "sqlite"
	StoreJSON   = "json"
)

// Config is the on-disk configuration. Zero fields take defaults.
type Config struct {
	BaseURL    string     `yaml:"base_url"`
	Extensions []string   `yaml:"extensions"`
	Store      string     `yaml:"store"`
	DBPath     string     `yaml:"db_path"`
	StatePath  string     `yaml:"state_path"`
	Furigana   bool       `yaml:"furigana"`
	Quiz       QuizConfig `yaml:"quiz"`
}

// QuizConfig holds quiz defaults.
type QuizConfig struct {
	Type     string `yaml:"type"`
	Options  int    `yaml:"options"`
	Limit    int    `yaml:"limit"`
	Language string `yaml:"language"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:    "books",
		Extensions: []string{"tsv", "csv"},
		Store:      StoreSQLite,
		DBPath:     "shengci.db",
		StatePath:  "shengci-state.json",
		Quiz: QuizConfig{
			Type:     string(quiz.ChineseToMeaning),
			Options:  4,
			Language: string(vocab.English),
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated fields and ranges.
func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite, StoreJSON:
	default:
		return fmt.Errorf("store must be %q or %q, got %q", StoreSQLite, StoreJSON, c.Store)
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("base_url must be non-empty")
	}
	if _, err := quiz.ParseType(c.Quiz.Type); err != nil {
		return err
	}
	if _, ok := vocab.ParseLanguage(c.Quiz.Language); !ok {
		return fmt.Errorf("unknown quiz language %q", c.Quiz.Language)
	}
	if c.Quiz.Options < 2 {
		return fmt.Errorf("quiz options must be at least 2, got %d", c.Quiz.Options)
	}
	if c.Quiz.Limit < 0 {
		return fmt.Errorf("quiz limit must not be negative")
	}
	return nil
}
