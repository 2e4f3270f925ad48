package server

import (
	"context"
	"fmt"
	"log/slog"
)

var demoTeams = []struct {
	name    string
	members []string
}{
	{"Code Breakers", []string{"Alice", "Bob"}},
	{"Link Hunters", []string{"Carol", "Dave", "Erin"}},
	{"Cipher Punks", []string{"Frank", "Grace"}},
}

// SeedDemo registers the demo teams if no team exists.
// Idempotent: does nothing once any team is registered.
func SeedDemo(ctx context.Context, logger *slog.Logger, store Store) error {
	existing, err := store.ListTeams(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, d := range demoTeams {
		if _, err := store.CreateTeam(ctx, d.name, d.members); err != nil {
			return fmt.Errorf("seeding team %q: %w", d.name, err)
		}
	}
	logger.Info("seeded demo teams", "count", len(demoTeams))
	return nil
}
