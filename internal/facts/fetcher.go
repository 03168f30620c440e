package facts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// ErrFetchAborted reports that the fetch was cancelled before completion,
// usually because a newer filter change superseded it.
var ErrFetchAborted = errors.New("facts: fetch aborted")

// DefaultPageSize matches the warehouse gateway's maximum page.
const DefaultPageSize = 1000

// Store is the paged persistence surface the fetcher drives.
type Store interface {
	FetchPage(ctx context.Context, q Query, offset, limit int) ([]Row, error)
}

// Metrics counts fetch traffic on the private registry.
type Metrics struct {
	pagesTotal  *prometheus.CounterVec
	rowsTotal   prometheus.Counter
	abortsTotal prometheus.Counter
}

// NewMetrics registers the fetch counters.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	pages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "finsight_fact_pages_total",
		Help: "Fact pages fetched per analysis version.",
	}, []string{"version"})
	rowsC := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "finsight_fact_rows_total",
		Help: "Fact rows fetched across all versions.",
	})
	aborts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "finsight_fact_fetch_aborts_total",
		Help: "Fact fetches cancelled before completion.",
	})
	if reg != nil {
		reg.MustRegister(pages, rowsC, aborts)
	}
	return &Metrics{pagesTotal: pages, rowsTotal: rowsC, abortsTotal: aborts}
}

func (m *Metrics) page(version string, rows int) {
	if m == nil {
		return
	}
	m.pagesTotal.WithLabelValues(version).Inc()
	m.rowsTotal.Add(float64(rows))
}

func (m *Metrics) abort() {
	if m == nil {
		return
	}
	m.abortsTotal.Inc()
}

// Fetcher loads fact rows for a set of per-version queries, paging each
// version concurrently and aggregating into a single lookup.
type Fetcher struct {
	store    Store
	pageSize int
	metrics  *Metrics
	logger   *slog.Logger
}

// NewFetcher constructs a fetcher. A non-positive pageSize falls back to
// DefaultPageSize.
func NewFetcher(store Store, pageSize int, metrics *Metrics, logger *slog.Logger) *Fetcher {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{store: store, pageSize: pageSize, metrics: metrics, logger: logger}
}

// Fetch runs one paged loop per version concurrently. Each version fills
// its own buffer; buffers are only merged after every loop finishes, so a
// failed or cancelled fetch never leaves a partial result behind.
func (f *Fetcher) Fetch(ctx context.Context, queries []Query) (Lookup, error) {
	if f == nil || f.store == nil {
		return nil, fmt.Errorf("facts fetcher not initialised")
	}
	active := make([]Query, 0, len(queries))
	for _, q := range queries {
		if !q.Empty() {
			active = append(active, q)
		}
	}
	if len(active) == 0 {
		return Lookup{}, nil
	}

	buffers := make([][]Row, len(active))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range active {
		g.Go(func() error {
			rows, err := f.fetchVersion(gctx, q)
			if err != nil {
				return err
			}
			buffers[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			f.metrics.abort()
			return nil, ErrFetchAborted
		}
		return nil, err
	}

	lookup := Lookup{}
	for _, rows := range buffers {
		lookup.Merge(Aggregate(rows))
	}
	return lookup, nil
}

func (f *Fetcher) fetchVersion(ctx context.Context, q Query) ([]Row, error) {
	started := time.Now()
	var rows []Row
	for offset := 0; ; offset += f.pageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := f.store.FetchPage(ctx, q, offset, f.pageSize)
		if err != nil {
			return nil, err
		}
		f.metrics.page(q.VersionCode, len(page))
		rows = append(rows, page...)
		if len(page) < f.pageSize {
			break
		}
	}
	f.logger.Debug("fact version fetched",
		slog.String("version", q.VersionCode),
		slog.Int("rows", len(rows)),
		slog.Duration("elapsed", time.Since(started)))
	return rows, nil
}

// QueriesFor expands a version-to-dates grouping into fetch queries, in a
// stable order for deterministic tests.
func QueriesFor(grouped map[string][]time.Time, accountIDs []int64, entityIDs []string) []Query {
	codes := make([]string, 0, len(grouped))
	for code := range grouped {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	queries := make([]Query, 0, len(codes))
	for _, code := range codes {
		queries = append(queries, Query{
			VersionCode: code,
			Dates:       grouped[code],
			AccountIDs:  accountIDs,
			EntityIDs:   entityIDs,
		})
	}
	return queries
}
