package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Grant is one grantee with its canonical privilege list: tokens uppercased,
// deduplicated, with the "*" shortcut already expanded to ALL.
type Grant struct {
	Grantee    string
	Privileges []string
}

// Privileges preserves the declaration order of grantees so rendered output
// is deterministic.
type Privileges []Grant

// A grant declaration accepts a bare owner string, a list of grantees or a
// mapping of grantee to privilege (string or list). All shapes decode into
// the same canonical form.
func (p *Privileges) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*p = nil
			return nil
		}
		if node.Tag != "!!str" {
			return fmt.Errorf("privileges: unsupported %s value %q", node.Tag, node.Value)
		}
		*p = Privileges{{Grantee: node.Value, Privileges: canonTokens([]string{"*"})}}
		return nil

	case yaml.SequenceNode:
		var grantees []string
		if err := node.Decode(&grantees); err != nil {
			return fmt.Errorf("privileges: %w", err)
		}
		var out Privileges
		for _, g := range grantees {
			out = append(out, Grant{Grantee: g, Privileges: canonTokens([]string{"*"})})
		}
		*p = out
		return nil

	case yaml.MappingNode:
		var out Privileges
		for i := 0; i < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]

			var grantee string
			if err := key.Decode(&grantee); err != nil {
				return fmt.Errorf("privileges: %w", err)
			}

			var tokens []string
			switch val.Kind {
			case yaml.ScalarNode:
				if val.Tag != "!!str" {
					return fmt.Errorf("privileges for %q: unsupported %s value", grantee, val.Tag)
				}
				tokens = []string{val.Value}
			case yaml.SequenceNode:
				if err := val.Decode(&tokens); err != nil {
					return fmt.Errorf("privileges for %q: %w", grantee, err)
				}
			default:
				return fmt.Errorf("privileges for %q: unsupported %s value", grantee, val.Tag)
			}

			out = append(out, Grant{Grantee: grantee, Privileges: canonTokens(tokens)})
		}
		*p = out
		return nil
	}

	return fmt.Errorf("privileges: unsupported %s value", node.Tag)
}

// NormalizePrivileges decodes a raw grant declaration node, naming the owning
// object in any error.
func NormalizePrivileges(node *yaml.Node, kind, name string) (Privileges, error) {
	if node == nil {
		return nil, nil
	}

	var p Privileges
	if err := p.UnmarshalYAML(node); err != nil {
		return nil, fmt.Errorf("%s %q: %w", kind, name, err)
	}
	return p, nil
}

func canonTokens(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "*" {
			t = "ALL"
		}
		if len(t) == 0 || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
