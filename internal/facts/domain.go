package facts

import (
	"time"
)

// Row is one raw fact as stored: an account's balance for one entity on
// one month-start date under one analysis version. Value is nil when the
// warehouse carries an explicit null, which is distinct from zero.
type Row struct {
	AccountID int64
	Date      time.Time
	Value     *float64
}

// Key identifies one aggregated cell: all entity rows for an account and
// date collapse into it.
type Key struct {
	AccountID int64
	Date      time.Time
}

// Query selects the fact rows one statement view needs for a single
// analysis version.
type Query struct {
	VersionCode string
	AccountIDs  []int64
	Dates       []time.Time
	EntityIDs   []string
}

// Empty reports whether the query can match nothing by construction.
func (q Query) Empty() bool {
	return q.VersionCode == "" || len(q.Dates) == 0 || len(q.EntityIDs) == 0
}

// Aggregate sums rows across entities into per-account, per-date cells.
// Null rows do not create a cell and do not zero an existing one, so a
// cell exists only when at least one entity reported a value.
func Aggregate(rows []Row) map[Key]float64 {
	totals := make(map[Key]float64, len(rows))
	for _, r := range rows {
		if r.Value == nil {
			continue
		}
		k := Key{AccountID: r.AccountID, Date: r.Date}
		totals[k] += *r.Value
	}
	return totals
}

// Lookup wraps the aggregated cells with the null-aware accessor the tree
// builder consumes.
type Lookup map[Key]float64

// Value returns the aggregated cell when present; absent cells stay nil.
func (l Lookup) Value(accountID int64, date time.Time) *float64 {
	if l == nil {
		return nil
	}
	v, ok := l[Key{AccountID: accountID, Date: date}]
	if !ok {
		return nil
	}
	return &v
}

// Sum adds the cells of several accounts on one date. Nil when none of
// them reported.
func (l Lookup) Sum(accountIDs []int64, date time.Time) *float64 {
	var total float64
	found := false
	for _, id := range accountIDs {
		if v := l.Value(id, date); v != nil {
			total += *v
			found = true
		}
	}
	if !found {
		return nil
	}
	return &total
}

// Merge folds another aggregation in. Versions never overlap on dates, so
// a straight add is safe.
func (l Lookup) Merge(other map[Key]float64) {
	for k, v := range other {
		l[k] += v
	}
}
