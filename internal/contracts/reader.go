package contracts

import "context"

// TableReader fetches every row of a named source table.
// Rows may arrive in any order; calls for distinct tables are independent.
// ⭐ SSOT: 외부 저장소 접근 인터페이스
type TableReader interface {
	FetchAll(ctx context.Context, table string) ([]Record, error)
}
