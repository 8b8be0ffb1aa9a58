// Package config loads ambient application settings from a YAML file: the
// devserver's host/port, the demo maze to load at startup, the RNG seed used
// to make Q-Learning runs reproducible, and how often the devserver publishes
// training snapshots to connected clients. It deliberately does NOT expose
// qlearn's hyperparameters (alpha, gamma, epsilon0, lambda) — those are fixed
// per package doc, not tunable.
package config

import (
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// OuterConfig is the top-level envelope viper unmarshals into: a kind tag
// plus an opaque def blob, re-marshaled to YAML and unmarshaled again into
// the concrete Config. This two-stage dance exists so the config file can
// carry a "kind" discriminator without needing a matching Go type per kind
// up front.
type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// Config holds the devserver's and CLI's ambient settings. viper lowercases
// every key it reads, so the yaml tags are all lowercase; the config file may
// spell a key in any case (e.g. demoMazePath).
type Config struct {
	// Host/Port are the devserver's listen address.
	Host string `yaml:"host"`
	Port string `yaml:"port"`

	// DemoMazePath is a text maze file loaded at startup when no maze is
	// supplied on the command line.
	DemoMazePath string `yaml:"demomazepath"`

	// Seed seeds the Q-Learning RNG. A zero value means "use a
	// time-seeded RNG" (non-reproducible); any nonzero value makes
	// training deterministic.
	Seed int64 `yaml:"seed"`

	// PublishIntervalEpisodes controls how often, in episodes, the
	// devserver's trainer pushes a Q-value snapshot to connected
	// websocket clients.
	PublishIntervalEpisodes int `yaml:"publishintervalepisodes"`
}

// defaults supplies every field the config file's def blob omits. A missing
// config file is an error from FromYaml, not a fall-back to these values.
func defaults() Config {
	return Config{
		Host:                    "",
		Port:                    "8080",
		DemoMazePath:            "",
		Seed:                    0,
		PublishIntervalEpisodes: 1000,
	}
}

// FromYaml reads and decodes the config file at path, via viper's
// kind/def envelope, the same two-stage unmarshal the training config loader
// uses: read the outer shape with viper, re-marshal its def blob, then
// unmarshal that blob into the concrete Config. Missing fields keep their
// default value.
func FromYaml(path string) (*Config, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))

	if err := vp.ReadInConfig(); err != nil {
		return nil, err
	}

	outer := &OuterConfig{}
	if err := vp.Unmarshal(outer); err != nil {
		return nil, err
	}

	spec, err := yaml.Marshal(outer.Def)
	if err != nil {
		return nil, err
	}

	cfg := defaults()
	if err := yaml.Unmarshal(spec, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
