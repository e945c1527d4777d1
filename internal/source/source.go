package source

import (
	"fmt"

	"github.com/wonny/snapboard/internal/contracts"
	"github.com/wonny/snapboard/pkg/config"
	"github.com/wonny/snapboard/pkg/database"
	"github.com/wonny/snapboard/pkg/httputil"
	"github.com/wonny/snapboard/pkg/logger"
)

// New builds the table reader selected by SOURCE_BACKEND.
// db is required for the postgres backend and ignored otherwise.
func New(cfg *config.Config, db *database.DB, log *logger.Logger) (contracts.TableReader, error) {
	switch cfg.Source.Backend {
	case config.BackendPostgres:
		if db == nil || db.Pool == nil {
			return nil, fmt.Errorf("postgres backend requires a database pool")
		}
		return NewPostgresReader(db.Pool), nil

	case config.BackendREST:
		client := NewRESTClient(httputil.NewWithTimeout(log, cfg.Source.FetchTimeout), cfg.Supabase)
		return NewRESTReader(client, cfg.Supabase.URL, cfg.Supabase.PageSize), nil

	default:
		return nil, fmt.Errorf("unknown source backend %q", cfg.Source.Backend)
	}
}
