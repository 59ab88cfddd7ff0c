package commands

import (
	"context"
	"database/sql"

	"github.com/teranos/crossview/am"
	"github.com/teranos/crossview/am/geotime"
	"github.com/teranos/crossview/dataset"
	"github.com/teranos/crossview/db"
	"github.com/teranos/crossview/errors"
	"github.com/teranos/crossview/logger"
)

// resolveDatabasePath returns dbPath, or the configured path when empty
func resolveDatabasePath(cfg *am.Config, dbPath string) string {
	if dbPath != "" {
		return dbPath
	}
	return cfg.GetDatabasePath()
}

// openDatabase opens and migrates the database at dbPath
func openDatabase(dbPath string) (*sql.DB, error) {
	database, err := db.OpenWithMigrations(dbPath, logger.Logger)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", dbPath)
	}
	return database, nil
}

// loadDataset reads every transaction and builds the shared index.
// Timestamps without an offset are read in database.timezone.
func loadDataset(ctx context.Context, cfg *am.Config, database *sql.DB) (*dataset.Dataset, error) {
	loc, err := geotime.LoadLocation(cfg.Database.Timezone)
	if err != nil {
		return nil, errors.Wrap(err, "database.timezone")
	}
	data, err := dataset.NewRepository(database, loc).Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load transactions")
	}
	return data, nil
}
