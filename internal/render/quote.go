package render

import "strings"

// All identifier and literal escaping funnels through this file so the
// injection-safety of rendered SQL stays auditable in one place.

// pgIdent double-quotes a Postgres identifier, doubling interior quotes.
func pgIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// myIdent back-quotes a MySQL identifier, doubling interior back-quotes.
func myIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// sqlString single-quotes a string literal, doubling interior quotes. Both
// dialects share this form.
func sqlString(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}
