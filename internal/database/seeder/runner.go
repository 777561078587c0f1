package seeder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"skill-catalog/internal/database"
	"skill-catalog/internal/pkg/logger"
)

var ErrUnknownSeeder = errors.New("unknown seeder")

// Runner applies Seeders in order. When Only is set, just the named seeders
// run, still in their registered order.
type Runner struct {
	Seeders []Seeder
	Only    []string
	Logger  *logger.Logger
}

func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}

	selected, err := r.selected()
	if err != nil {
		return err
	}

	log := logger.OrNop(r.Logger).With("component", "seeder")
	for _, s := range selected {
		start := time.Now()
		if err := s.Run(ctx, db); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		log.Info("seeder applied", "seeder", s.Name(), "duration", time.Since(start))
	}
	return nil
}

func (r Runner) selected() ([]Seeder, error) {
	want := map[string]bool{}
	for _, n := range r.Only {
		if n = strings.TrimSpace(n); n != "" {
			want[n] = true
		}
	}

	out := make([]Seeder, 0, len(r.Seeders))
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		if len(want) > 0 {
			if !want[s.Name()] {
				continue
			}
			delete(want, s.Name())
		}
		out = append(out, s)
	}
	for n := range want {
		return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownSeeder, n, strings.Join(Names(r.Seeders), ", "))
	}
	return out, nil
}
