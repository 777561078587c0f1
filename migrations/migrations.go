package migrations

import "embed"

// FS holds the versioned schema for every supported driver, one directory
// per dialect (postgres/, sqlite/).
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
