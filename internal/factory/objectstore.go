package factory

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/taxwise/taxwise-server/internal/config"
	"github.com/taxwise/taxwise-server/internal/objectstore"
)

// NewObjectStore returns the fetcher selected by cfg.ObjectStoreDriver.
func NewObjectStore(cfg *config.Config, log zerolog.Logger) (objectstore.Fetcher, error) {
	switch cfg.ObjectStoreDriver {
	case "http":
		if cfg.ObjectStoreURL == "" {
			return nil, fmt.Errorf("TAXWISE_OBJECT_STORE_URL is required when OBJECT_STORE_DRIVER=http")
		}
		log.Info().Str("driver", "http").Str("url", cfg.ObjectStoreURL).Bool("token", cfg.ObjectStoreToken != "").Msg("object store ready")
		return objectstore.NewHTTPStore(cfg.ObjectStoreURL, cfg.ObjectStoreToken, cfg.FetchTimeout()), nil
	case "dir":
		log.Info().Str("driver", "dir").Str("dir", cfg.ObjectStoreDir).Msg("object store ready")
		return objectstore.NewDirStore(cfg.ObjectStoreDir, cfg.FetchTimeout()), nil
	default:
		return nil, fmt.Errorf("unknown OBJECT_STORE_DRIVER: %s", cfg.ObjectStoreDriver)
	}
}
