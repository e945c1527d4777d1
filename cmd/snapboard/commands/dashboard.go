package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// dashboardCmd represents the dashboard command
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "대시보드 1회 계산 후 출력",
	Long: `설정된 테이블을 한 번 읽어 대시보드를 계산하고 출력합니다.

섹션별로 독립 계산되며, 실패한 섹션은 상태와 함께 표시됩니다.
캐시는 사용하지 않습니다.

Example:
  go run ./cmd/snapboard dashboard
  go run ./cmd/snapboard dashboard --json
  go run ./cmd/snapboard dashboard --strict`,
	RunE: runDashboard,
}

var (
	dashboardJSON   bool
	dashboardStrict bool
)

func init() {
	rootCmd.AddCommand(dashboardCmd)

	dashboardCmd.Flags().BoolVar(&dashboardJSON, "json", false, "JSON 출력")
	dashboardCmd.Flags().BoolVar(&dashboardStrict, "strict", false, "섹션 하나라도 실패하면 exit 1")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Source.FetchTimeout+5*time.Second)
	defer cancel()

	d := a.service.Build(ctx)

	if dashboardJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encode dashboard: %w", err)
		}
	} else {
		printDashboard(os.Stdout, d)
	}

	if dashboardStrict && d.Degraded() {
		return fmt.Errorf("dashboard degraded")
	}
	return nil
}
