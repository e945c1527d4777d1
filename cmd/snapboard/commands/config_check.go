package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/snapboard/internal/dashconfig"
)

// configCheckCmd represents the config-check command
var configCheckCmd = &cobra.Command{
	Use:   "config-check [path]",
	Short: "대시보드 YAML 검증",
	Long: `대시보드 설정 파일을 파싱/검증하고 요약을 출력합니다.
DB 연결 없이 실행됩니다.

이 명령어는:
- YAML 파싱 (알 수 없는 필드 거부)
- 기본값 적용 후 검증
- EMA 매트릭스 레이아웃 해석
- 설정 해시 출력

Example:
  go run ./cmd/snapboard config-check
  go run ./cmd/snapboard config-check configs/dashboard.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigCheck,
}

func init() {
	rootCmd.AddCommand(configCheckCmd)
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	path := dashboardConfig
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		path = os.Getenv("DASHBOARD_CONFIG")
	}
	if path == "" {
		path = "configs/dashboard.yaml"
	}

	return checkConfig(printer{w: cmd.OutOrStdout()}, path)
}

func checkConfig(p printer, path string) error {
	p.header("Dashboard Config Check")
	p.keyValue("File", path, 8)

	cfg, _, err := dashconfig.Load(path)
	if err != nil {
		var verr dashconfig.ValidationError
		if errors.As(err, &verr) {
			p.warning(fmt.Sprintf("%s: %s", verr.Field, verr.Message))
		}
		return fmt.Errorf("❌ invalid dashboard config: %w", err)
	}

	hash, err := dashconfig.Hash(cfg)
	if err != nil {
		return fmt.Errorf("❌ hash config: %w", err)
	}
	p.keyValue("Hash", hash, 8)
	p.keyValue("Tables", strings.Join(cfg.Tables(), ", "), 8)
	p.keyValue("Panels", fmt.Sprintf("%d", len(cfg.Panels)), 8)

	layout, ok, err := cfg.MatrixLayout()
	if err != nil {
		return fmt.Errorf("❌ ema matrix: %w", err)
	}
	if ok {
		p.keyValue("EMA", fmt.Sprintf("%d entities × %d timeframes (%s)",
			layout.EntityCount(), len(layout.Timeframes), strings.Join(layout.Timeframes, ", ")), 8)
	} else {
		p.keyValue("EMA", "not configured", 8)
	}

	fmt.Fprintln(p.w)
	p.success("Config OK")
	return nil
}
