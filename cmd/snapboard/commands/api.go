package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/snapboard/internal/api"
	"github.com/wonny/snapboard/internal/api/handlers"
	"github.com/wonny/snapboard/internal/dashboard"
	"github.com/wonny/snapboard/internal/dashconfig"
	"github.com/wonny/snapboard/internal/scheduler"
	"github.com/wonny/snapboard/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `대시보드 API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 주기적 대시보드 재계산 (REFRESH_SCHEDULE)
- WebSocket으로 재계산 결과 푸시

Endpoints:
  GET  /health                       - Health check
  GET  /metrics                      - Prometheus metrics
  GET  /api/dashboard                - 전체 대시보드 (?refresh=true)
  GET  /api/dashboard/holdings       - 최신 보유 현황 + 비중
  GET  /api/dashboard/series         - 총 자산 추이
  GET  /api/dashboard/panels         - 분류 패널 목록
  GET  /api/dashboard/panels/{name}  - 단일 패널
  GET  /api/dashboard/ema            - EMA 매트릭스
  GET  /ws/dashboard                 - 대시보드 스트림

Example:
  go run ./cmd/snapboard api
  go run ./cmd/snapboard api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default is $PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Snapboard API Server ===")

	// 1. Wire config, source and dashboard service
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}
	log := a.log

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Stream hub, fed by every build
	hub := api.NewHub(a.metrics, log)
	go hub.Run(ctx)
	a.service.OnBuild(hub.Publish)

	// 3. Hot reload of the dashboard YAML
	a.loader.OnChange(func(cfg *dashconfig.Config, hash string) {
		if err := a.service.UpdateConfig(cfg); err != nil {
			log.WithError(err).WithField("config_hash", hash).Error("Rejected dashboard config")
			return
		}
		a.service.RefreshAsync(ctx)
	})
	if a.cfg.Dashboard.Watch {
		stop, err := a.loader.Watch()
		if err != nil {
			return fmt.Errorf("watch dashboard config: %w", err)
		}
		defer stop()
	}

	// 4. Periodic refresh
	var sched *scheduler.Scheduler
	if a.cfg.Dashboard.RefreshSchedule != "" {
		sched = scheduler.New(log, scheduler.WithRetry(1, 5*time.Second))
		if err := sched.AddJob(dashboard.NewRefreshJob(a.service, a.cfg.Dashboard.RefreshSchedule)); err != nil {
			return fmt.Errorf("schedule refresh: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	// warm the cache and the stream before the first request
	a.service.RefreshAsync(ctx)

	// 5. Router + server
	deps := api.RouterDeps{
		Dashboard: handlers.NewDashboardHandler(a.service, log),
		Stream:    hub,
		Metrics:   a.metrics,
	}
	if a.redis.Enabled() {
		deps.Limiter = redis.NewRateLimiter(a.redis, "snapboard")
		deps.RateLimit = redis.APIRateLimit
	}
	server := api.New(a.cfg, log, api.NewRouter(deps, log))

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/dashboard")
	fmt.Println("  GET  /ws/dashboard")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
