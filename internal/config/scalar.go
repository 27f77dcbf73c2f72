package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type ScalarKind int

const (
	ScalarLiteral ScalarKind = iota
	ScalarEnv
	ScalarFile
	ScalarSecret
	ScalarEncrypted
)

func (k ScalarKind) String() string {
	switch k {
	case ScalarEnv:
		return "env"
	case ScalarFile:
		return "file"
	case ScalarSecret:
		return "secret"
	case ScalarEncrypted:
		return "encrypted"
	}
	return "literal"
}

// Scalar is a value specification: either a literal string or a reference
// to be resolved later (environment variable, file, named secret, or an
// age-encrypted payload). A plain YAML scalar decodes as a literal; the
// reference forms are spelled as a single-key mapping.
type Scalar struct {
	Kind ScalarKind
	Raw  string
}

func Literal(s string) Scalar {
	return Scalar{Kind: ScalarLiteral, Raw: s}
}

func (s Scalar) IsZero() bool {
	return s == Scalar{}
}

func (s *Scalar) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*s = Scalar{}
			return nil
		}
		*s = Scalar{Kind: ScalarLiteral, Raw: node.Value}
		return nil
	case yaml.MappingNode:
		var m struct {
			Value     *string `yaml:"value"`
			Env       *string `yaml:"env"`
			File      *string `yaml:"file"`
			Secret    *string `yaml:"secret"`
			Encrypted *string `yaml:"encrypted"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}

		var set int
		for kind, v := range map[ScalarKind]*string{
			ScalarLiteral:   m.Value,
			ScalarEnv:       m.Env,
			ScalarFile:      m.File,
			ScalarSecret:    m.Secret,
			ScalarEncrypted: m.Encrypted,
		} {
			if v == nil {
				continue
			}
			set++
			*s = Scalar{Kind: kind, Raw: *v}
		}
		if set != 1 {
			return fmt.Errorf("value spec must set exactly one of value, env, file, secret or encrypted, got %d", set)
		}
		return nil
	}

	return fmt.Errorf("unsupported value spec of type %s", node.Tag)
}
