package refdata

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/finsight-vn/finsight/internal/period"
)

// Store is the persistence surface the service relies on.
type Store interface {
	Accounts(ctx context.Context, stmt period.Statement) ([]Account, error)
	AnalysisVersions(ctx context.Context) ([]period.AnalysisVersion, error)
	UnitHierarchy(ctx context.Context) ([]UnitGroup, error)
	AvailableYears(ctx context.Context) ([]int, error)
}

// Service exposes cache-aware reference-data lookups and the
// indicator-to-account resolver.
type Service struct {
	store  Store
	cache  *Cache
	logger *slog.Logger
}

// NewService wires a Store with the cache helper.
func NewService(store Store, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, cache: cache, logger: logger}
}

// Accounts returns the account definitions for a statement.
func (s *Service) Accounts(ctx context.Context, stmt period.Statement) ([]Account, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		return s.store.Accounts(ctx, stmt)
	}
	var accounts []Account
	if err := s.fetch(ctx, keyAccounts(string(stmt)), &accounts, loader); err != nil {
		return nil, err
	}
	return accounts, nil
}

// Catalog returns the loaded analysis versions wrapped in the scope
// partition. An empty catalog means not-ready, never an error.
func (s *Service) Catalog(ctx context.Context) (period.Catalog, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		return s.store.AnalysisVersions(ctx)
	}
	var versions []period.AnalysisVersion
	if err := s.fetch(ctx, keyVersions(), &versions, loader); err != nil {
		return period.Catalog{}, err
	}
	return period.NewCatalog(versions), nil
}

// UnitHierarchy returns the grouped reporting entities.
func (s *Service) UnitHierarchy(ctx context.Context) ([]UnitGroup, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		return s.store.UnitHierarchy(ctx)
	}
	var groups []UnitGroup
	if err := s.fetch(ctx, keyUnits(), &groups, loader); err != nil {
		return nil, err
	}
	return groups, nil
}

// AvailableYears returns the fact years, newest first.
func (s *Service) AvailableYears(ctx context.Context) ([]int, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		return s.store.AvailableYears(ctx)
	}
	var years []int
	if err := s.fetch(ctx, keyYears(), &years, loader); err != nil {
		return nil, err
	}
	return years, nil
}

// ResolveIndicator maps an indicator label to the sequence ids feeding it.
// No match is a warning, not an error: consumers render "no data".
func (s *Service) ResolveIndicator(ctx context.Context, stmt period.Statement, label string) ([]int64, error) {
	accounts, err := s.Accounts(ctx, stmt)
	if err != nil {
		return nil, err
	}
	ids := MatchSequenceIDs(accounts, label)
	if len(ids) == 0 {
		s.logger.Warn("no accounts match indicator",
			slog.String("statement", string(stmt)),
			slog.String("indicator", label))
	}
	return ids, nil
}

// Warm pre-populates every reference cache entry. Used by the background
// warmup job after a version bump.
func (s *Service) Warm(ctx context.Context) error {
	for _, stmt := range []period.Statement{period.StatementBalanceSheet, period.StatementIncome, period.StatementCashFlow} {
		if _, err := s.Accounts(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := s.Catalog(ctx); err != nil {
		return err
	}
	if _, err := s.UnitHierarchy(ctx); err != nil {
		return err
	}
	_, err := s.AvailableYears(ctx)
	return err
}

func (s *Service) fetch(ctx context.Context, keyBase string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		return reencode(value, dest)
	}
	key, err := s.cache.BuildKey(ctx, keyBase)
	if err != nil {
		return err
	}
	return s.cache.FetchJSON(ctx, key, dest, loader)
}

func reencode(value, dest interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
