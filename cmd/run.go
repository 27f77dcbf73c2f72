package cmd

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/arenadata/dbinit/internal/render"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <sql-file>",
	Short: "Execute a generated SQL script against a live server",
	Args:  cobra.ExactArgs(1),
	Run:   runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("target", "t", "", "Target dialect (postgres, mysql or an alias)")
	runCmd.Flags().String("dsn", "", "Connection string for the admin account")

	_ = runCmd.MarkFlagRequired("target")
	_ = runCmd.MarkFlagRequired("dsn")
}

func runScript(cmd *cobra.Command, args []string) {
	logger := log.WithField("command", "run")

	driver, err := render.AliasFor(getString(cmd, "target"))
	if err != nil {
		logger.Fatal(err)
	}

	script, err := os.ReadFile(args[0])
	if err != nil {
		logger.Fatal(err)
	}

	db, err := sql.Open(driver, getString(cmd, "dsn"))
	if err != nil {
		logger.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	if err = db.PingContext(cmd.Context()); err != nil {
		logger.Fatal(err)
	}

	for i, stmt := range splitStatements(string(script)) {
		if _, err = db.ExecContext(cmd.Context(), stmt); err != nil {
			logger.Fatalf("statement #%d: %v", i+1, err)
		}
	}
}

// splitStatements breaks a generated script at semicolons ending a line.
// The generator always terminates statements that way; psql backslash
// directives cannot run through a driver and are dropped with a warning.
func splitStatements(script string) []string {
	var stmts []string
	var cur strings.Builder

	flush := func() {
		if s := strings.TrimSpace(cur.String()); len(s) > 0 && !isCommentOnly(s) {
			stmts = append(stmts, s)
		}
		cur.Reset()
	}

	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), `\`) {
			log.Warnf("skipping psql directive %q", strings.TrimSpace(line))
			continue
		}
		fmt.Fprintln(&cur, line)
		if strings.HasSuffix(strings.TrimRight(line, " \t\r"), ";") {
			flush()
		}
	}
	flush()

	return stmts
}

func isCommentOnly(s string) bool {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 0 && !strings.HasPrefix(line, "--") {
			return false
		}
	}
	return true
}
