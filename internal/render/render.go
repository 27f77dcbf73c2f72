package render

import (
	"fmt"
	"io"

	"github.com/arenadata/dbinit/internal/config"
)

// Streams are the open output files of one run: Init is executed once on
// first boot, Boot on every restart. A nil writer drops that phase.
type Streams struct {
	Init io.Writer
	Boot io.Writer
}

func (s Streams) write(phase config.Phase, text string) error {
	for _, w := range s.writers(phase) {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, text); err != nil {
			return err
		}
	}
	return nil
}

func (s Streams) writers(phase config.Phase) []io.Writer {
	switch phase {
	case config.PhaseInit:
		return []io.Writer{s.Init}
	case config.PhaseBoot:
		return []io.Writer{s.Boot}
	}
	return []io.Writer{s.Init, s.Boot}
}

type Options struct {
	DropUsers     bool
	DropDatabases bool
}

// Admin is the resolved admin-password block.
type Admin struct {
	Username string
	Password string
	// Force also writes the password change to the init script.
	Force bool
}

// User is a resolved user entry; grantee remapping has already happened.
type User struct {
	Password string
	Roles    []string
	Hosts    []string
}

type Database struct {
	Owner      string
	Force      bool
	Charset    string
	Collate    string
	Comment    string
	Flags      []string
	Privileges config.Privileges
}

type Schema struct {
	Privileges config.Privileges
}

type Query struct {
	Phase config.Phase
	Label string
	DB    string
	User  string
	SQL   string
}

// Renderer emits dialect-correct SQL for the canonical entities. Concrete
// implementations own the output streams for the duration of a run.
type Renderer interface {
	// Alias is the primary dialect name, used for output file naming.
	Alias() string
	// Compatible reports whether any requested alias matches this dialect.
	// An empty request means unconstrained.
	Compatible(names []string) bool
	// DefaultAdminUser is the engine's stock superuser account.
	DefaultAdminUser() string

	AdminPassword(a Admin) error
	User(name string, u User) error
	Database(name string, d Database) error
	Schema(db, name string, s Schema) error
	Query(q Query) error
}

// ForTarget selects a renderer by any of its dialect aliases.
func ForTarget(name string, out Streams, opts Options) (Renderer, error) {
	for _, r := range []Renderer{
		newPostgres(out, opts),
		newMySQL(out, opts),
	} {
		if r.Compatible([]string{name}) {
			return r, nil
		}
	}

	return nil, fmt.Errorf("unknown target dialect %q", name)
}

// AliasFor resolves a requested target name to its primary dialect alias
// without opening any output, so callers can fail fast and name files first.
func AliasFor(name string) (string, error) {
	r, err := ForTarget(name, Streams{}, Options{})
	if err != nil {
		return "", err
	}
	return r.Alias(), nil
}

func intersects(names, aliases []string) bool {
	if len(names) == 0 {
		return true
	}
	for _, n := range names {
		for _, a := range aliases {
			if n == a {
				return true
			}
		}
	}
	return false
}
