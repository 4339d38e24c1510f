// Package migration holds the ledger schema as golang-migrate files.
package migration

import "embed"

//go:embed *.sql
var FS embed.FS
