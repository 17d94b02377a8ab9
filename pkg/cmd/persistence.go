package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/textflow/pkg/persistence"
	"github.com/dukex/textflow/pkg/persistence/file"
	"github.com/dukex/textflow/pkg/persistence/postgresql"
	"github.com/dukex/textflow/pkg/persistence/redis"
)

var supportedPersistenceProviders = []string{"file", "postgres", "postgresql", "redis", "rediss"}

// NewSettingsStore opens the settings store named by settingsURL. URLs without
// a known scheme are treated as a file store directory.
func NewSettingsStore(ctx context.Context, logger *slog.Logger, settingsURL string) (persistence.SettingsStore, error) {
	provider := parsePersistenceProvider(settingsURL)

	switch provider {
	case "postgres", "postgresql":
		store, err := postgresql.NewPersistence(ctx, logger, settingsURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres settings store: %w", err)
		}

		return store, nil
	case "redis", "rediss":
		store, err := redis.NewPersistence(ctx, logger, settingsURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open redis settings store: %w", err)
		}

		return store, nil
	default:
		return file.NewPersistence(settingsURL), nil
	}
}

func parsePersistenceProvider(settingsURL string) string {
	parts := strings.Split(settingsURL, "://")

	provider := parts[0]
	for _, supported := range supportedPersistenceProviders {
		if provider == supported {
			return provider
		}
	}

	return "file"
}
