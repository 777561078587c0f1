// Package seeder loads demo projects and exported skills so a fresh database
// has a catalog to browse. Seeders must be idempotent.
package seeder

import (
	"context"

	"skill-catalog/internal/database"
)

type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}

// Names lists the seeder names in run order.
func Names(seeders []Seeder) []string {
	out := make([]string, 0, len(seeders))
	for _, s := range seeders {
		if s != nil {
			out = append(out, s.Name())
		}
	}
	return out
}
