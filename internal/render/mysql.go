package render

import (
	"fmt"
	"strings"

	"github.com/arenadata/dbinit/internal/config"

	log "github.com/sirupsen/logrus"
)

type mysql struct {
	out  Streams
	opts Options
}

var myAliases = []string{"mysql", "mariadb"}

const (
	defaultUserHost  = "%"
	defaultAdminHost = "localhost"
)

func newMySQL(out Streams, opts Options) Renderer {
	return &mysql{out: out, opts: opts}
}

func (m *mysql) Alias() string { return "mysql" }

func (m *mysql) DefaultAdminUser() string { return "root" }

func (m *mysql) Compatible(names []string) bool {
	return intersects(names, myAliases)
}

func (m *mysql) AdminPassword(a Admin) error {
	acc, err := account(a.Username, defaultAdminHost)
	if err != nil {
		return err
	}

	stmt := "ALTER USER IF EXISTS " + acc + " IDENTIFIED BY " + sqlString(a.Password) + ";\n" +
		"FLUSH PRIVILEGES;\n"

	// the init emission is gated: some images set the root password through
	// their own first-boot mechanism
	if a.Force {
		if err := m.out.write(config.PhaseInit, stmt); err != nil {
			return err
		}
	}
	return m.out.write(config.PhaseBoot, stmt)
}

func (m *mysql) User(name string, u User) error {
	if len(u.Roles) > 0 {
		log.Warnf("user %q: roles are not supported on mysql, ignoring", name)
	}

	hosts := u.Hosts
	if len(hosts) == 0 {
		hosts = []string{defaultUserHost}
	}

	var init, boot strings.Builder
	for _, host := range hosts {
		acc, err := account(name+"@"+host, defaultUserHost)
		if err != nil {
			return err
		}

		if m.opts.DropUsers {
			init.WriteString("DROP USER IF EXISTS " + acc + ";\n")
		}
		init.WriteString("CREATE USER " + acc + " IDENTIFIED BY " + sqlString(u.Password) + ";\n")
		boot.WriteString("ALTER USER IF EXISTS " + acc + " IDENTIFIED BY " + sqlString(u.Password) + ";\n")
	}
	init.WriteString("FLUSH PRIVILEGES;\n")
	boot.WriteString("FLUSH PRIVILEGES;\n")

	if err := m.out.write(config.PhaseInit, init.String()); err != nil {
		return err
	}
	return m.out.write(config.PhaseBoot, boot.String())
}

func (m *mysql) Database(name string, d Database) error {
	var b strings.Builder

	if m.opts.DropDatabases {
		b.WriteString("DROP DATABASE IF EXISTS " + myIdent(name) + ";\n")
	}

	b.WriteString("CREATE DATABASE " + myIdent(name))
	if len(d.Charset) > 0 {
		b.WriteString(" CHARACTER SET " + d.Charset)
	}
	if len(d.Collate) > 0 {
		b.WriteString(" COLLATE " + d.Collate)
	}
	if len(d.Comment) > 0 {
		b.WriteString(" COMMENT " + sqlString(d.Comment))
	}
	for _, f := range d.Flags {
		b.WriteString(" " + f)
	}
	b.WriteString(";\n")

	for _, g := range d.Privileges {
		acc, err := account(g.Grantee, defaultUserHost)
		if err != nil {
			return err
		}
		b.WriteString("GRANT " + strings.Join(g.Privileges, ", ") +
			" ON " + myIdent(name) + ".* TO " + acc + ";\n")
	}

	if len(d.Owner) > 0 {
		acc, err := account(d.Owner, defaultUserHost)
		if err != nil {
			return err
		}
		b.WriteString("GRANT ALL ON " + myIdent(name) + ".* TO " + acc + " WITH GRANT OPTION;\n")
	}

	b.WriteString("FLUSH PRIVILEGES;\n")

	return m.out.write(config.PhaseInit, b.String())
}

func (m *mysql) Schema(db, name string, _ Schema) error {
	return m.out.write(config.PhaseInit,
		fmt.Sprintf("-- schemas are not supported on mysql, skipping %s.%s\n", db, name))
}

func (m *mysql) Query(q Query) error {
	if len(q.User) > 0 {
		log.Warnf("%s: session impersonation is not supported on mysql, ignoring user %q", q.Label, q.User)
	}

	var b strings.Builder
	b.WriteString("-- BEGIN " + q.Label + "\n")
	if len(q.DB) > 0 {
		b.WriteString("USE " + myIdent(q.DB) + ";\n")
	}
	b.WriteString(terminate(q.SQL))
	b.WriteString("-- END " + q.Label + "\n")

	return m.out.write(q.Phase, b.String())
}

// account renders a 'user'@'host' address. The spec may carry its own host
// part; more than one @ is malformed.
func account(spec, defHost string) (string, error) {
	user, host := spec, defHost
	if idx := strings.Index(spec, "@"); idx >= 0 {
		user, host = spec[:idx], spec[idx+1:]
		if strings.Contains(host, "@") {
			return "", fmt.Errorf("malformed user@host spec %q", spec)
		}
	}
	if len(user) == 0 {
		return "", fmt.Errorf("malformed user@host spec %q: empty user", spec)
	}

	return sqlString(user) + "@" + sqlString(host), nil
}
