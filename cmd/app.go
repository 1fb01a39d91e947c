package cmd

import (
	"fmt"

	"didp/core/config"
	"didp/core/database"
	"didp/core/loader"
	"didp/core/logger"
	"didp/core/storage"
	"didp/feature/exports"
	"didp/feature/imports"
	"didp/feature/matching"
	"didp/feature/processes"
	"didp/feature/relationships"
	"didp/feature/scripts"
	"didp/feature/sqlexec"
	"didp/feature/tables"
	"didp/feature/valuemapping"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// models lists every table the service owns.
func models() []any {
	var out []any
	out = append(out, tables.Models()...)
	out = append(out, valuemapping.Models()...)
	out = append(out, relationships.Models()...)
	out = append(out, matching.Models()...)
	out = append(out, processes.Models()...)
	return out
}

// application is the wired service graph shared by the server and the CLI.
type application struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	archive *storage.Archive

	tables    *tables.Feature
	mappings  *valuemapping.Feature
	relations *relationships.Feature
	matching  *matching.Feature
	imports   *imports.Feature
	exports   *exports.Feature
	sql       *sqlexec.Feature
	scripts   *scripts.Feature
	processes *processes.Feature
}

// bootstrap loads configuration, connects the row store, migrates it and
// wires every feature. The archive is only connected when enabled.
func bootstrap() (*application, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(db, models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	var archive *storage.Archive
	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		archive = storage.NewArchive(client, cfg.Storage.Bucket)
		logg.Info("Archive storage enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	a := &application{cfg: cfg, logger: logg, db: db, archive: archive}
	a.tables = tables.NewFeature(db, logg)
	tbl := a.tables.Service()
	a.mappings = valuemapping.NewFeature(db, logg)
	a.relations = relationships.NewFeature(db, tbl, logg)
	a.matching = matching.NewFeature(db, tbl, a.mappings.Service(), logg)
	a.imports = imports.NewFeature(tbl, archive, cfg.Imports, logg)
	a.exports = exports.NewFeature(tbl, a.matching.Service(), archive, logg)
	a.sql = sqlexec.NewFeature(tbl, cfg.SQL, logg)
	a.scripts = scripts.NewFeature(tbl, cfg.Scripts, logg)
	a.processes = processes.NewFeature(db, &processes.Runner{
		Matcher: a.matching.Service(),
		SQL:     a.sql.Service(),
		Scripts: a.scripts.Service(),
		Tables:  tbl,
	}, logg)
	return a, nil
}

// features registers every feature in mount order.
func (a *application) features() *loader.Manager {
	mgr := loader.NewManager(a.logger)
	mgr.Register(a.tables)
	mgr.Register(a.mappings)
	mgr.Register(a.relations)
	mgr.Register(a.matching)
	mgr.Register(a.imports)
	mgr.Register(a.exports)
	mgr.Register(a.sql)
	mgr.Register(a.scripts)
	mgr.Register(a.processes)
	return mgr
}
