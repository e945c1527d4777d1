package commands

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/snapboard/internal/dashconfig"
	"github.com/wonny/snapboard/internal/source"
	"github.com/wonny/snapboard/pkg/config"
	"github.com/wonny/snapboard/pkg/database"
)

// testDBCmd represents the test-db command
var testDBCmd = &cobra.Command{
	Use:   "test-db",
	Short: "PostgreSQL 연결 테스트",
	Long: `데이터베이스 연결을 테스트하고 풀 통계를 표시합니다.

이 명령어는:
- config에서 DATABASE_URL 로드
- 데이터베이스 연결 생성
- Ping 테스트
- Health Check 실행
- 대시보드가 읽는 테이블 행 수 확인
- Connection Pool 통계 표시

Example:
  go run ./cmd/snapboard test-db
  go run ./cmd/snapboard test-db --dashboard-config configs/dashboard.yaml`,
	RunE: runTestDB,
}

func init() {
	rootCmd.AddCommand(testDBCmd)
}

func runTestDB(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Snapboard Database Connection Test ===")

	// Load configuration
	fmt.Println("Loading configuration...")
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("❌ Failed to load config: %w", err)
	}
	if dashboardConfig != "" {
		cfg.Dashboard.ConfigPath = dashboardConfig
	}
	fmt.Printf("✅ Config loaded (ENV: %s)\n", cfg.Env)
	fmt.Printf("   Database URL: %s\n\n", maskPassword(cfg.Database.URL))

	// Create database connection
	fmt.Println("Connecting to database...")
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("❌ Failed to connect to database: %w", err)
	}
	defer db.Close()
	fmt.Println("✅ Database connection established")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Get health status
	fmt.Println("Getting health status...")
	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("❌ Health check failed: %w", err)
	}

	fmt.Println("✅ Health Check Results:")
	fmt.Printf("   Healthy: %v\n", status.Healthy)
	fmt.Printf("   Response Time: %v\n", status.ResponseTime)
	fmt.Printf("   Timestamp: %v\n\n", status.Timestamp.Format(time.RFC3339))

	// Source tables
	dashCfg, _, err := dashconfig.Load(cfg.Dashboard.ConfigPath)
	if err != nil {
		fmt.Printf("⚠️  Skipping table check: %v\n\n", err)
	} else {
		fmt.Println("📋 Source Tables:")
		reader := source.NewPostgresReader(db.Pool)
		for _, table := range dashCfg.Tables() {
			rows, err := reader.FetchAll(ctx, table)
			if err != nil {
				fmt.Printf("   ❌ %-22s %v\n", table, err)
				continue
			}
			fmt.Printf("   ✅ %-22s %d rows\n", table, len(rows))
		}
		fmt.Println()
	}

	// Pool statistics
	fmt.Println("📊 Connection Pool Statistics:")
	fmt.Printf("   Max Connections: %d\n", status.Stats.MaxConns)
	fmt.Printf("   Total Connections: %d\n", status.Stats.TotalConns)
	fmt.Printf("   Acquired Connections: %d\n", status.Stats.AcquiredConns)
	fmt.Printf("   Idle Connections: %d\n", status.Stats.IdleConns)
	fmt.Printf("   Acquire Count: %d\n", status.Stats.AcquireCount)
	fmt.Printf("   Acquire Duration: %v\n", status.Stats.AcquireDuration)

	fmt.Println("\n✅ All tests passed!")
	return nil
}

// maskPassword hides the password in a database URL for display
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}
