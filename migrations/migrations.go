// Package migrations embeds the versioned MySQL schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
