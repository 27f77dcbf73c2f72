package assets

import (
	_ "embed"
)

//go:embed postgres.runner
var postgresRunner []byte

//go:embed mysql.runner
var mysqlRunner []byte

// Runner returns the embedded default runner template for a dialect alias.
func Runner(alias string) ([]byte, bool) {
	switch alias {
	case "postgres":
		return postgresRunner, true
	case "mysql":
		return mysqlRunner, true
	}
	return nil, false
}
