package assemble

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/arenadata/dbinit/internal/config"
	"github.com/arenadata/dbinit/internal/render"
	"github.com/arenadata/dbinit/pkg/secrets"
	"github.com/arenadata/dbinit/utils"

	log "github.com/sirupsen/logrus"
)

type Options struct {
	Target        string
	OutputDir     string
	SecretsRoot   string
	AgeKeyFile    string
	DropUsers     bool
	DropDatabases bool
	Wrapper       bool
	TemplateDir   string
}

// a hung fetch otherwise hangs the whole run
var httpClient = &http.Client{Timeout: 30 * time.Second}

// Run walks the configuration tree in document order (admin, users,
// databases, scripts) and renders it into the init and boot scripts.
func Run(cfg *config.Config, opts Options) error {
	alias, err := render.AliasFor(opts.Target)
	if err != nil {
		return err
	}

	res := &secrets.Resolver{Root: opts.SecretsRoot}
	if ok, _ := utils.FileExists(opts.AgeKeyFile); ok {
		if res.Age, err = secrets.NewFromKeyFile(opts.AgeKeyFile); err != nil {
			return fmt.Errorf("read age key %s: %w", opts.AgeKeyFile, err)
		}
	}

	out, err := openOutput(opts.OutputDir, alias)
	if err != nil {
		return err
	}
	closed := false
	defer func() {
		if !closed {
			_ = out.Close(false)
		}
	}()

	r, err := render.ForTarget(opts.Target, out.streams(), render.Options{
		DropUsers:     opts.DropUsers,
		DropDatabases: opts.DropDatabases,
	})
	if err != nil {
		return err
	}

	run := &run{cfg: cfg, res: res, r: r, renames: make(map[string]string)}

	adminUser, adminPass, err := run.admin()
	if err != nil {
		return err
	}
	if err = run.users(); err != nil {
		return err
	}
	if err = run.databases(); err != nil {
		return err
	}
	if err = run.scripts(); err != nil {
		return err
	}

	closed = true
	if err = out.Close(true); err != nil {
		return err
	}

	if opts.Wrapper {
		return emitWrapper(opts, alias, adminUser, adminPass)
	}
	return nil
}

// run carries the per-invocation state: the rename table is populated by the
// users section only and consumed by later grantee lookups.
type run struct {
	cfg     *config.Config
	res     *secrets.Resolver
	r       render.Renderer
	renames map[string]string
}

func (x *run) admin() (user, pass string, err error) {
	user = x.r.DefaultAdminUser()

	a := x.cfg.Admin
	if a == nil {
		return user, "", nil
	}

	if !a.Username.IsZero() {
		if user, err = x.res.Resolve(a.Username, x.r.DefaultAdminUser()); err != nil {
			return "", "", err
		}
	}
	if a.Password.IsZero() {
		return user, "", nil
	}
	if pass, err = x.res.Resolve(a.Password, ""); err != nil {
		return "", "", err
	}

	return user, pass, x.r.AdminPassword(render.Admin{
		Username: user,
		Password: pass,
		Force:    a.Force,
	})
}

func (x *run) users() error {
	for _, e := range x.cfg.Users {
		name := e.Name
		if nn, ok := x.cfg.Renames[name]; ok && len(nn) > 0 {
			log.Infof("user %q is renamed to %q", name, nn)
			x.renames[name] = nn
			name = nn
		}
		if len(name) == 0 {
			return fmt.Errorf("user with empty name")
		}

		pass, err := x.res.Resolve(e.Spec.Password, "")
		if err != nil {
			return fmt.Errorf("user %q: %w", name, err)
		}

		if err = x.r.User(name, render.User{
			Password: pass,
			Roles:    e.Spec.Roles,
			Hosts:    e.Spec.Hosts,
		}); err != nil {
			return fmt.Errorf("user %q: %w", name, err)
		}
	}
	return nil
}

func (x *run) databases() error {
	for _, e := range x.cfg.Databases {
		d := e.Spec

		if err := x.r.Database(e.Name, render.Database{
			Owner:      x.remap(d.Owner),
			Force:      d.Force,
			Charset:    d.Charset,
			Collate:    d.Collate,
			Comment:    d.Comment,
			Flags:      d.Flags,
			Privileges: x.remapGrantees(d.Privileges),
		}); err != nil {
			return fmt.Errorf("database %q: %w", e.Name, err)
		}

		for _, s := range d.Schemas {
			if err := x.r.Schema(e.Name, s.Name, render.Schema{
				Privileges: x.remapGrantees(s.Spec.Privileges),
			}); err != nil {
				return fmt.Errorf("schema %q.%q: %w", e.Name, s.Name, err)
			}
		}
	}
	return nil
}

func (x *run) scripts() error {
	for i, s := range x.cfg.Scripts {
		label := fmt.Sprintf("script #%d", i+1)

		if !x.r.Compatible(s.OnlyFor) {
			log.Debugf("%s is not for %s, skipping", label, x.r.Alias())
			continue
		}

		body, ok, err := scriptBody(s)
		if err != nil {
			return fmt.Errorf("%s: %w", label, err)
		}
		if !ok {
			log.Warnf("%s has none of query, file or url, skipping", label)
			continue
		}

		if err = x.r.Query(render.Query{
			Phase: s.Phase,
			Label: label,
			DB:    s.DB,
			User:  x.remap(s.User),
			SQL:   body,
		}); err != nil {
			return fmt.Errorf("%s: %w", label, err)
		}
	}
	return nil
}

func (x *run) remap(name string) string {
	if nn, ok := x.renames[name]; ok {
		return nn
	}
	return name
}

func (x *run) remapGrantees(p config.Privileges) config.Privileges {
	if len(p) == 0 {
		return nil
	}
	out := make(config.Privileges, len(p))
	for i, g := range p {
		out[i] = config.Grant{Grantee: x.remap(g.Grantee), Privileges: g.Privileges}
	}
	return out
}

// scriptBody resolves the SQL text of a script entry: inline query first,
// then file, then url. A listed source that cannot be read is a hard
// dependency failure.
func scriptBody(s config.ScriptSpec) (string, bool, error) {
	switch {
	case len(s.Query) > 0:
		return s.Query, true, nil

	case len(s.File) > 0:
		b, err := os.ReadFile(os.ExpandEnv(s.File))
		if err != nil {
			return "", false, err
		}
		return string(b), true, nil

	case len(s.URL) > 0:
		resp, err := httpClient.Get(s.URL)
		if err != nil {
			return "", false, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return "", false, fmt.Errorf("fetch %s: %s", s.URL, resp.Status)
		}
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", false, err
		}
		return string(b), true, nil
	}

	return "", false, nil
}
