// Package migrations embeds the versioned schema scripts. They are applied
// through the runner in internal/platform/postgres.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
