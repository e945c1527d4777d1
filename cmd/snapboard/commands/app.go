package commands

import (
	"fmt"

	"github.com/wonny/snapboard/internal/dashboard"
	"github.com/wonny/snapboard/internal/dashconfig"
	"github.com/wonny/snapboard/internal/snapshot"
	"github.com/wonny/snapboard/internal/source"
	"github.com/wonny/snapboard/pkg/config"
	"github.com/wonny/snapboard/pkg/database"
	"github.com/wonny/snapboard/pkg/logger"
	"github.com/wonny/snapboard/pkg/metrics"
	"github.com/wonny/snapboard/pkg/redis"
)

// app is the wired dependency graph shared by the api and dashboard commands
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *database.DB
	redis   *redis.Client
	metrics *metrics.Recorder
	loader  *dashconfig.Loader
	service *dashboard.Service
}

// newApp loads config and wires source → dashboard service
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dashboardConfig != "" {
		cfg.Dashboard.ConfigPath = dashboardConfig
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	a := &app{cfg: cfg, log: logger.New(cfg)}

	if cfg.MetricsEnabled {
		a.metrics = metrics.New()
	}

	if cfg.Source.Backend == config.BackendPostgres {
		a.db, err = database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.log.Info("Connected to database")
	}

	reader, err := source.New(cfg, a.db, a.log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create table reader: %w", err)
	}
	reader = source.Instrument(reader, a.metrics, a.log)

	a.redis, err = redis.New(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	a.loader, err = dashconfig.NewLoader(cfg.Dashboard.ConfigPath, a.log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load dashboard config: %w", err)
	}
	dashCfg, hash := a.loader.Config()

	var cache dashboard.Cache
	if a.redis.Enabled() {
		cache = redis.NewCache(a.redis, "snapboard")
	}

	a.service, err = dashboard.NewService(reader, dashCfg, snapshot.NewEngine(), cache, a.metrics, a.log, dashboard.Options{
		FetchTimeout: cfg.Source.FetchTimeout,
		CacheTTL:     cfg.Dashboard.CacheTTL,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create dashboard service: %w", err)
	}

	a.log.WithFields(map[string]interface{}{
		"backend":     cfg.Source.Backend,
		"config":      cfg.Dashboard.ConfigPath,
		"config_hash": hash,
	}).Info("Dashboard service ready")

	return a, nil
}

// Close releases connections
func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
