package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/wonny/snapboard/internal/contracts"
	"github.com/wonny/snapboard/pkg/config"
	"github.com/wonny/snapboard/pkg/httputil"
)

// RESTReader reads whole tables from a PostgREST endpoint (Supabase),
// paging with limit/offset until a short page.
type RESTReader struct {
	client   *httputil.Client
	baseURL  string
	pageSize int
}

// NewRESTReader creates a PostgREST table reader.
// The client should already carry the apikey/Authorization headers (see NewRESTClient).
func NewRESTReader(client *httputil.Client, baseURL string, pageSize int) *RESTReader {
	if pageSize <= 0 {
		pageSize = 1000
	}
	return &RESTReader{client: client, baseURL: baseURL, pageSize: pageSize}
}

// NewRESTClient configures the shared HTTP client for Supabase
func NewRESTClient(client *httputil.Client, cfg config.SupabaseConfig) *httputil.Client {
	return client.
		WithHeader("apikey", cfg.Key).
		WithHeader("Authorization", "Bearer "+cfg.Key).
		WithHeader("Accept", "application/json").
		WithRateLimit(cfg.RPS)
}

// FetchAll implements contracts.TableReader
func (r *RESTReader) FetchAll(ctx context.Context, table string) ([]contracts.Record, error) {
	var records []contracts.Record

	for offset := 0; ; offset += r.pageSize {
		var page []contracts.Record
		if _, err := r.client.GetJSON(ctx, r.pageURL(table, offset), &page); err != nil {
			return nil, fmt.Errorf("failed to fetch %s (offset %d): %w", table, offset, err)
		}

		records = append(records, page...)
		if len(page) < r.pageSize {
			break
		}
	}

	if records == nil {
		records = []contracts.Record{}
	}
	return records, nil
}

func (r *RESTReader) pageURL(table string, offset int) string {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("limit", strconv.Itoa(r.pageSize))
	q.Set("offset", strconv.Itoa(offset))
	return fmt.Sprintf("%s/rest/v1/%s?%s", r.baseURL, url.PathEscape(table), q.Encode())
}
