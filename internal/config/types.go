package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Entry is one named item of a configuration section.
type Entry[T any] struct {
	Name string
	Spec T
}

// OrderedMap decodes a YAML mapping while keeping document order, so two runs
// over the same configuration render byte-identical output.
type OrderedMap[T any] []Entry[T]

func (m *OrderedMap[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*m = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected a mapping, got %s", node.Tag)
	}

	out := make(OrderedMap[T], 0, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		var name string
		if err := node.Content[i].Decode(&name); err != nil {
			return err
		}

		var spec T
		if err := node.Content[i+1].Decode(&spec); err != nil {
			return fmt.Errorf("%q: %w", name, err)
		}

		out = append(out, Entry[T]{Name: name, Spec: spec})
	}
	*m = out

	return nil
}

// StringList accepts a single string where a list is expected.
type StringList []string

func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if node.Tag == "!!null" {
			*l = nil
			return nil
		}
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	}

	var out []string
	if err := node.Decode(&out); err != nil {
		return err
	}
	*l = out

	return nil
}

type AdminSpec struct {
	Username Scalar `yaml:"username"`
	Password Scalar `yaml:"password"`
	// Force also applies the admin password change to the init script.
	// Some base images set the admin password through their own first-boot
	// mechanism that must not be clobbered.
	Force bool `yaml:"force"`
}

type UserSpec struct {
	Password Scalar
	Roles    []string
	Hosts    StringList
}

// A user accepts either a bare password value or the full form with roles
// and hosts. A mapping counts as the full form only when it carries one of
// the known keys, so {env: DB_PASS} still reads as a password spec.
func (u *UserSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode && hasAnyKey(node, "password", "roles", "hosts") {
		var m struct {
			Password Scalar     `yaml:"password"`
			Roles    []string   `yaml:"roles"`
			Hosts    StringList `yaml:"hosts"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		*u = UserSpec{Password: m.Password, Roles: m.Roles, Hosts: m.Hosts}
		return nil
	}

	return node.Decode(&u.Password)
}

type DatabaseSpec struct {
	Owner      string
	Force      bool
	Charset    string
	Collate    string
	Comment    string
	Flags      []string
	Privileges Privileges
	Schemas    OrderedMap[SchemaSpec]
}

// A database accepts a bare owner string, a list of grantees or the full
// mapping form.
func (d *DatabaseSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*d = DatabaseSpec{}
			return nil
		}
		if node.Tag != "!!str" {
			return fmt.Errorf("unsupported %s database value %q", node.Tag, node.Value)
		}
		*d = DatabaseSpec{Owner: node.Value}
		return nil

	case yaml.SequenceNode:
		var p Privileges
		if err := p.UnmarshalYAML(node); err != nil {
			return err
		}
		*d = DatabaseSpec{Privileges: p}
		return nil

	case yaml.MappingNode:
		var m struct {
			Owner      string                 `yaml:"owner"`
			Force      bool                   `yaml:"force"`
			Charset    string                 `yaml:"charset"`
			Collate    string                 `yaml:"collate"`
			Comment    string                 `yaml:"comment"`
			Flags      StringList             `yaml:"flags"`
			Privileges Privileges             `yaml:"privileges"`
			Schemas    OrderedMap[SchemaSpec] `yaml:"schemas"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		*d = DatabaseSpec{
			Owner:      m.Owner,
			Force:      m.Force,
			Charset:    m.Charset,
			Collate:    m.Collate,
			Comment:    m.Comment,
			Flags:      m.Flags,
			Privileges: m.Privileges,
			Schemas:    m.Schemas,
		}
		return nil
	}

	return fmt.Errorf("unsupported %s database value", node.Tag)
}

type SchemaSpec struct {
	Privileges Privileges
}

// A schema value is either {privileges: ...} or the grant declaration itself.
func (s *SchemaSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode && hasAnyKey(node, "privileges") {
		var m struct {
			Privileges Privileges `yaml:"privileges"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		s.Privileges = m.Privileges
		return nil
	}

	return node.Decode(&s.Privileges)
}

type Phase string

const (
	PhaseInit Phase = "init"
	PhaseBoot Phase = "boot"
	PhaseAll  Phase = "all"
)

type ScriptSpec struct {
	Phase   Phase      `yaml:"phase"`
	OnlyFor StringList `yaml:"onlyFor"`
	Query   string     `yaml:"query"`
	File    string     `yaml:"file"`
	URL     string     `yaml:"url"`
	DB      string     `yaml:"db"`
	User    string     `yaml:"user"`
}

func hasAnyKey(node *yaml.Node, keys ...string) bool {
	for i := 0; i < len(node.Content); i += 2 {
		for _, k := range keys {
			if node.Content[i].Value == k {
				return true
			}
		}
	}
	return false
}
