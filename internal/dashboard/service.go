package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/snapboard/internal/contracts"
	"github.com/wonny/snapboard/internal/dashconfig"
	"github.com/wonny/snapboard/internal/snapshot"
	"github.com/wonny/snapboard/pkg/logger"
	"github.com/wonny/snapboard/pkg/metrics"
	"github.com/wonny/snapboard/pkg/redis"
)

// Cache stores built dashboards. *redis.Cache satisfies it.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Options tunes a Service
type Options struct {
	FetchTimeout time.Duration // overall deadline across all table reads of one build
	CacheTTL     time.Duration
}

// Service builds dashboards from the configured tables
// ⭐ SSOT: 테이블 조회 → 파생 지표 조립은 여기서만
type Service struct {
	reader  contracts.TableReader
	engine  *snapshot.Engine
	cache   Cache
	metrics *metrics.Recorder
	logger  *logger.Logger
	opts    Options
	now     func() time.Time

	mu        sync.RWMutex
	cfg       *dashconfig.Config
	hash      string
	layout    contracts.MatrixLayout
	hasMatrix bool
	last      *Dashboard
	listeners []func(*Dashboard)
}

// NewService creates a dashboard service. cache and rec may be nil.
func NewService(
	reader contracts.TableReader,
	cfg *dashconfig.Config,
	engine *snapshot.Engine,
	cache Cache,
	rec *metrics.Recorder,
	log *logger.Logger,
	opts Options,
) (*Service, error) {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}

	s := &Service{
		reader:  reader,
		engine:  engine,
		cache:   cache,
		metrics: rec,
		logger:  log.WithComponent("dashboard"),
		opts:    opts,
		now:     time.Now,
	}
	if err := s.UpdateConfig(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateConfig swaps the dashboard config. The matrix layout is resolved here, once.
func (s *Service) UpdateConfig(cfg *dashconfig.Config) error {
	hash, err := dashconfig.Hash(cfg)
	if err != nil {
		return fmt.Errorf("hash dashboard config: %w", err)
	}
	layout, hasMatrix, err := cfg.MatrixLayout()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cfg, s.hash = cfg, hash
	s.layout, s.hasMatrix = layout, hasMatrix
	s.mu.Unlock()

	s.logger.WithFields(map[string]interface{}{
		"hash":   hash,
		"tables": cfg.Tables(),
	}).Info("Dashboard config applied")
	return nil
}

// OnBuild registers a listener called after every completed build
func (s *Service) OnBuild(fn func(*Dashboard)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Latest returns the most recent in-process build, or nil before the first one
func (s *Service) Latest() *Dashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// ConfigHash returns the hash of the active config
func (s *Service) ConfigHash() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hash
}

// Get returns the cached dashboard for the active config, building it on a miss.
// refresh bypasses the cache read.
func (s *Service) Get(ctx context.Context, refresh bool) *Dashboard {
	key := redis.DashboardKey(s.ConfigHash())

	if !refresh && s.cache != nil {
		var cached Dashboard
		hit, err := s.cache.Get(ctx, key, &cached)
		switch {
		case err != nil:
			s.metrics.ObserveCache("error")
			s.logger.WithError(err).Warn("Dashboard cache read failed")
		case hit:
			s.metrics.ObserveCache("hit")
			return &cached
		default:
			s.metrics.ObserveCache("miss")
		}
	}

	return s.Refresh(ctx)
}

// Refresh builds a new dashboard and stores it in the cache
func (s *Service) Refresh(ctx context.Context) *Dashboard {
	d := s.Build(ctx)

	if s.cache != nil {
		if err := s.cache.Set(ctx, redis.DashboardKey(d.ConfigHash), d, s.opts.CacheTTL); err != nil {
			s.logger.WithError(err).Warn("Dashboard cache write failed")
		}
	}
	return d
}

// RefreshAsync refreshes in the background. A panic is logged, not propagated.
func (s *Service) RefreshAsync(ctx context.Context) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.WithField("panic", fmt.Sprint(r)).Error("Dashboard refresh panicked")
			}
		}()
		s.Refresh(ctx)
	}()
}

// Build runs one derivation pass. It always returns a dashboard;
// failures are reported per section.
func (s *Service) Build(ctx context.Context) *Dashboard {
	start := time.Now()

	s.mu.RLock()
	cfg, hash := s.cfg, s.hash
	layout, hasMatrix := s.layout, s.hasMatrix
	s.mu.RUnlock()

	fetched := s.fetchTables(ctx, cfg.Tables())

	d := &Dashboard{
		ConfigHash: hash,
		Panels:     make([]PanelSection, 0, len(cfg.Panels)),
	}

	snaps, err := s.portfolio(fetched[cfg.Portfolio.Table], cfg.Portfolio)
	d.Holdings = s.holdingsSection(snaps, err)
	d.Series = s.seriesSection(snaps, err)

	for _, panel := range cfg.Panels {
		d.Panels = append(d.Panels, s.panelSection(panel, fetched[panel.Table]))
	}

	if hasMatrix {
		ema := s.emaSection(cfg.EmaMatrix, layout, fetched[cfg.EmaMatrix.Table])
		d.Ema = &ema
	}

	d.GeneratedAt = s.now().UTC()
	s.record(d, time.Since(start))

	s.mu.Lock()
	s.last = d
	listeners := make([]func(*Dashboard), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(d)
	}
	return d
}

func (s *Service) record(d *Dashboard, elapsed time.Duration) {
	s.metrics.ObserveSection(SectionHoldings, string(d.Holdings.Status))
	s.metrics.ObserveSection(SectionSeries, string(d.Series.Status))
	for _, p := range d.Panels {
		s.metrics.ObserveSection(SectionPanel, string(p.Status))
	}
	if d.Ema != nil {
		s.metrics.ObserveSection(SectionEma, string(d.Ema.Status))
	}
	s.metrics.ObserveBuild(elapsed, d.GeneratedAt)

	s.logger.WithFields(map[string]interface{}{
		"duration": elapsed,
		"degraded": d.Degraded(),
		"hash":     d.ConfigHash,
	}).Info("Dashboard built")
}
