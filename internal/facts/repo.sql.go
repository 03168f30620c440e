package facts

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads raw fact pages from the warehouse table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a fact repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FetchPage returns one page of fact rows for the query, ordered so that
// successive offsets partition the result deterministically. A page
// shorter than limit signals the last page.
func (r *Repository) FetchPage(ctx context.Context, q Query, offset, limit int) ([]Row, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("facts repo not initialised")
	}
	const query = `
		SELECT id_tckt, date, value
		FROM f_tckt_v2
		WHERE p_anal = $1
		  AND date = ANY($2)
		  AND entity = ANY($3)
		  AND ($4::bigint[] IS NULL OR id_tckt = ANY($4))
		ORDER BY id_tckt, date, entity
		OFFSET $5 LIMIT $6`
	var accountFilter []int64
	if len(q.AccountIDs) > 0 {
		accountFilter = q.AccountIDs
	}
	rows, err := r.pool.Query(ctx, query, q.VersionCode, q.Dates, q.EntityIDs, accountFilter, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("facts: fetch page: %w", err)
	}
	defer rows.Close()

	out := make([]Row, 0, limit)
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.AccountID, &row.Date, &row.Value); err != nil {
			return nil, fmt.Errorf("facts: scan row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("facts: iterate rows: %w", err)
	}
	return out, nil
}
