package migrations

import (
	"embed"
)

//go:embed *.sql
var embedMigrations embed.FS

// GetMigrations returns the goose migrations for the play history database.
// Files sit at the root of the returned FS.
func GetMigrations() embed.FS {
	return embedMigrations
}
