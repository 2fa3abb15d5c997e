package cli

import (
	"context"

	"github.com/roach88/dblog/internal/dblog"
	"github.com/roach88/dblog/internal/store"
)

// storeConnector opens SQLite stores with the given options.
func storeConnector(opts store.Options) dblog.Connector {
	return dblog.ConnectorFunc(func(ctx context.Context, locator string) (dblog.Conn, error) {
		s, err := store.Open(ctx, locator, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}
