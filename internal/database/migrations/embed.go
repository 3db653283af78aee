// Package migrations содержит SQL-миграции схемы PostgreSQL.
package migrations

import "embed"

// FS встроенные файлы миграций в формате golang-migrate.
//
//go:embed *.sql
var FS embed.FS
