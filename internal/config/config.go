package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the declarative seed configuration. All sections are optional;
// an empty document renders empty but valid scripts.
type Config struct {
	Admin     *AdminSpec               `yaml:"admin"`
	Users     OrderedMap[UserSpec]     `yaml:"users"`
	Databases OrderedMap[DatabaseSpec] `yaml:"databases"`
	Renames   map[string]string        `yaml:"renames"`
	Scripts   []ScriptSpec             `yaml:"scripts"`
}

func Load(r io.Reader) (*Config, error) {
	cfg := new(Config)

	dec := yaml.NewDecoder(r)
	if err := dec.Decode(cfg); err != nil {
		if err == io.EOF {
			return cfg, nil
		}
		return nil, err
	}

	for i := range cfg.Scripts {
		s := &cfg.Scripts[i]
		switch s.Phase {
		case "":
			s.Phase = PhaseInit
		case PhaseInit, PhaseBoot, PhaseAll:
		default:
			return nil, fmt.Errorf("script #%d: unknown phase %q", i+1, s.Phase)
		}
	}

	return cfg, nil
}

// LoadFile reads the configuration from a file path, or from stdin when the
// path is "-".
func LoadFile(path string) (*Config, error) {
	if path == "-" {
		return Load(os.Stdin)
	}

	fi, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fi.Close()

	return Load(fi)
}

func LoadString(doc string) (*Config, error) {
	return Load(strings.NewReader(doc))
}
