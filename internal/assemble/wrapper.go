package assemble

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arenadata/dbinit/assets"
)

const (
	initRunnerName = "dbinit.runner"
	bootRunnerName = "dbscript.runner"

	initLauncherName = "000-dbinit.sh"
	bootLauncherName = "000-db.sh"
)

// emitWrapper copies the dialect runner template next to each generated SQL
// file and writes a launcher that sources it with the SQL file name, the
// admin username and the base64-encoded admin password. The encoding only
// makes the password safe to pass through shell arguments.
func emitWrapper(opts Options, alias, adminUser, adminPass string) error {
	tpl, err := runnerTemplate(opts.TemplateDir, alias)
	if err != nil {
		return err
	}

	encPass := base64.StdEncoding.EncodeToString([]byte(adminPass))

	for _, t := range []struct {
		dir, runner, launcher string
	}{
		{InitDir, initRunnerName, initLauncherName},
		{BootDir, bootRunnerName, bootLauncherName},
	} {
		dir := filepath.Join(opts.OutputDir, t.dir)

		if err := os.WriteFile(filepath.Join(dir, t.runner), tpl, 0o750); err != nil {
			return err
		}

		launcher := fmt.Sprintf("#!/bin/sh\n. \"$(dirname \"$0\")/%s\" %q %q %q\n",
			t.runner, sqlFileName(alias), adminUser, encPass)
		if err := os.WriteFile(filepath.Join(dir, t.launcher), []byte(launcher), 0o755); err != nil {
			return err
		}
	}

	return nil
}

func runnerTemplate(dir, alias string) ([]byte, error) {
	if len(dir) > 0 {
		return os.ReadFile(filepath.Join(dir, alias+".runner"))
	}

	tpl, ok := assets.Runner(alias)
	if !ok {
		return nil, fmt.Errorf("no runner template for dialect %q", alias)
	}
	return tpl, nil
}
