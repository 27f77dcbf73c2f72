package render

import (
	"strings"

	"github.com/arenadata/dbinit/internal/config"
)

type postgres struct {
	out  Streams
	opts Options
}

var pgAliases = []string{"postgres", "postgresql", "psql", "pgsql"}

func newPostgres(out Streams, opts Options) Renderer {
	return &postgres{out: out, opts: opts}
}

func (p *postgres) Alias() string { return "postgres" }

func (p *postgres) DefaultAdminUser() string { return "postgres" }

func (p *postgres) Compatible(names []string) bool {
	return intersects(names, pgAliases)
}

func (p *postgres) AdminPassword(a Admin) error {
	stmt := "ALTER USER " + pgIdent(a.Username) + " WITH PASSWORD " + sqlString(a.Password) + ";\n"

	if a.Force {
		if err := p.out.write(config.PhaseInit, stmt); err != nil {
			return err
		}
	}
	return p.out.write(config.PhaseBoot, stmt)
}

func (p *postgres) User(name string, u User) error {
	var b strings.Builder
	if p.opts.DropUsers {
		b.WriteString("DROP USER IF EXISTS " + pgIdent(name) + ";\n")
	}

	// caller-supplied PASSWORD roles are dropped so the resolved password
	// always wins
	roles := make([]string, 0, len(u.Roles)+1)
	for _, r := range u.Roles {
		if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(r)), "PASSWORD") {
			continue
		}
		roles = append(roles, r)
	}
	roles = append(roles, "PASSWORD "+sqlString(u.Password))

	b.WriteString("CREATE USER " + pgIdent(name) + " WITH " + strings.Join(roles, " ") + ";\n")
	if err := p.out.write(config.PhaseInit, b.String()); err != nil {
		return err
	}

	// re-assert the password on every restart, the user may already exist
	return p.out.write(config.PhaseBoot,
		"ALTER USER "+pgIdent(name)+" WITH PASSWORD "+sqlString(u.Password)+";\n")
}

func (p *postgres) Database(name string, d Database) error {
	var b strings.Builder

	if p.opts.DropDatabases {
		b.WriteString("DROP DATABASE IF EXISTS " + pgIdent(name))
		if d.Force {
			b.WriteString(" WITH (FORCE)")
		}
		b.WriteString(";\n")
	}

	b.WriteString("CREATE DATABASE " + pgIdent(name))
	if len(d.Owner) > 0 {
		b.WriteString(" OWNER " + pgIdent(d.Owner))
	}
	for _, f := range d.Flags {
		b.WriteString(" " + f)
	}
	b.WriteString(";\n")

	for _, g := range d.Privileges {
		b.WriteString("GRANT " + strings.Join(g.Privileges, ", ") +
			" ON DATABASE " + pgIdent(name) + " TO " + pgIdent(g.Grantee) + ";\n")
	}

	// the owner's blanket grant goes last so it cannot be narrowed by an
	// explicit grant issued after it
	if len(d.Owner) > 0 {
		b.WriteString("GRANT ALL ON DATABASE " + pgIdent(name) +
			" TO " + pgIdent(d.Owner) + " WITH GRANT OPTION;\n")
	}

	return p.out.write(config.PhaseInit, b.String())
}

func (p *postgres) Schema(db, name string, s Schema) error {
	var b strings.Builder
	b.WriteString("\\connect " + pgIdent(db) + "\n")
	b.WriteString("CREATE SCHEMA IF NOT EXISTS " + pgIdent(name) + ";\n")

	for _, g := range s.Privileges {
		b.WriteString("GRANT " + strings.Join(g.Privileges, ", ") +
			" ON SCHEMA " + pgIdent(name) + " TO " + pgIdent(g.Grantee) + ";\n")
	}

	return p.out.write(config.PhaseInit, b.String())
}

func (p *postgres) Query(q Query) error {
	var b strings.Builder
	b.WriteString("-- BEGIN " + q.Label + "\n")

	switch {
	case len(q.User) > 0:
		// the session-authorization bracket pins the executing role; a
		// connection switch would reset it, so db is ignored here
		b.WriteString("SET SESSION AUTHORIZATION " + pgIdent(q.User) + ";\n")
		b.WriteString(terminate(q.SQL))
		b.WriteString("RESET SESSION AUTHORIZATION;\n")
	case len(q.DB) > 0:
		b.WriteString("\\connect " + pgIdent(q.DB) + "\n")
		b.WriteString(terminate(q.SQL))
	default:
		b.WriteString(terminate(q.SQL))
	}

	b.WriteString("-- END " + q.Label + "\n")

	return p.out.write(q.Phase, b.String())
}

// terminate appends the statement terminator to a verbatim query body. The
// body is pre-formed SQL and is never escaped.
func terminate(sql string) string {
	sql = strings.TrimRight(sql, " \t\r\n")
	if !strings.HasSuffix(sql, ";") {
		sql += ";"
	}
	return sql + "\n"
}
