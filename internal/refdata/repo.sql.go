package refdata

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finsight-vn/finsight/internal/period"
)

// Repository loads the immutable reference tables backing every report:
// account definitions, analysis versions, the unit hierarchy and the fact
// date dimension.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a reference-data repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Accounts returns the account definitions for one statement, ordered by
// sequence id ascending. That order is load-bearing: it fixes sibling
// display order in the built tree.
func (r *Repository) Accounts(ctx context.Context, stmt period.Statement) ([]Account, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("refdata repo not initialised")
	}
	const query = `
		SELECT stt, chi_tieu_lv1, chi_tieu_lv2, chi_tieu_lv3, chi_tieu_lv4
		FROM d_account
		WHERE ten_bao_cao = $1
		ORDER BY stt`
	rows, err := r.pool.Query(ctx, query, string(stmt))
	if err != nil {
		return nil, fmt.Errorf("refdata: accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		acc := Account{Statement: stmt}
		if err := rows.Scan(&acc.SequenceID, &acc.Level1, &acc.Level2, &acc.Level3, &acc.Level4); err != nil {
			return nil, fmt.Errorf("refdata: scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("refdata: accounts rows: %w", err)
	}
	return accounts, nil
}

// AnalysisVersions returns every analysis version, ordered by display name.
func (r *Repository) AnalysisVersions(ctx context.Context) ([]period.AnalysisVersion, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("refdata repo not initialised")
	}
	const query = `SELECT p_anal, filter_display FROM d_p_anal ORDER BY filter_display`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("refdata: analysis versions: %w", err)
	}
	defer rows.Close()

	var versions []period.AnalysisVersion
	for rows.Next() {
		var v period.AnalysisVersion
		if err := rows.Scan(&v.Code, &v.DisplayName); err != nil {
			return nil, fmt.Errorf("refdata: scan version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("refdata: version rows: %w", err)
	}
	return versions, nil
}

// UnitHierarchy returns the two-level entity grouping. Rows arrive flat and
// are grouped by the mid-level id, preserving name order from the query.
func (r *Repository) UnitHierarchy(ctx context.Context) ([]UnitGroup, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("refdata repo not initialised")
	}
	const query = `
		SELECT id_lv2_, name_lv2_, id_lv3_entity, name_lv3_
		FROM d_donvi
		WHERE id_lv2_ IS NOT NULL AND id_lv3_entity IS NOT NULL
		ORDER BY name_lv2_, name_lv3_`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("refdata: unit hierarchy: %w", err)
	}
	defer rows.Close()

	var groups []UnitGroup
	index := make(map[string]int)
	for rows.Next() {
		var groupID, groupName, entityID, entityName string
		if err := rows.Scan(&groupID, &groupName, &entityID, &entityName); err != nil {
			return nil, fmt.Errorf("refdata: scan unit row: %w", err)
		}
		if strings.TrimSpace(groupID) == "" || strings.TrimSpace(entityID) == "" {
			continue
		}
		i, ok := index[groupID]
		if !ok {
			i = len(groups)
			index[groupID] = i
			groups = append(groups, UnitGroup{ID: groupID, Name: groupName})
		}
		groups[i].Entities = append(groups[i].Entities, UnitEntity{ID: entityID, Name: entityName})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("refdata: unit rows: %w", err)
	}
	return groups, nil
}

// AvailableYears lists the distinct years present in the fact date
// dimension, newest first.
func (r *Repository) AvailableYears(ctx context.Context) ([]int, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("refdata repo not initialised")
	}
	const query = `SELECT DISTINCT year FROM d_date_tckt WHERE year IS NOT NULL ORDER BY year DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("refdata: available years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("refdata: scan year: %w", err)
		}
		years = append(years, y)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("refdata: year rows: %w", err)
	}
	return years, nil
}
