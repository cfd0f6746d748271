package imeicheck

import "embed"

// MigrationsFS holds the SQL migrations, one directory per database driver.
//
//go:embed migrations
var MigrationsFS embed.FS
