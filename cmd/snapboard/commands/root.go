package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	dashboardConfig string
	verbose         bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "snapboard",
	Short: "Snapboard - 포트폴리오 스냅샷 대시보드 엔진",
	Long: `Snapboard Unified CLI

포트폴리오 스냅샷과 지표 테이블을 읽어 파생 지표를 계산합니다.
최신 보유 현황, 총 자산 추이, 임계값 분류, EMA 매트릭스.

Usage:
  go run ./cmd/snapboard [command]

Examples:
  go run ./cmd/snapboard api
  go run ./cmd/snapboard dashboard
  go run ./cmd/snapboard config-check configs/dashboard.yaml
  go run ./cmd/snapboard test-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&dashboardConfig, "dashboard-config", "", "dashboard YAML (default is $DASHBOARD_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
