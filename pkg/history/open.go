package history

import (
	"context"

	"github.com/matzehuels/flowlayout/pkg/config"
	"github.com/matzehuels/flowlayout/pkg/errors"
)

// Open returns the store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.History) (Store, error) {
	switch cfg.Backend {
	case config.BackendNone:
		return Discard(), nil
	case config.BackendFile, "":
		if cfg.Path == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "history.path is not set and no data directory is available")
		}
		return NewFileStore(cfg.Path, cfg.MaxEntries), nil
	case config.BackendSQL:
		s, err := OpenSQL(ctx, cfg.Driver, cfg.DSN, cfg.MaxEntries)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendMongo:
		s, err := OpenMongo(ctx, MongoOptions{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
			MaxEntries: cfg.MaxEntries,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unknown history backend %q", cfg.Backend)
}
