// Package store persists the fund and stock collections behind a uniform
// CRUD contract with interchangeable backends: a single JSON document on
// disk, a local SQLite file, and Supabase-hosted Postgres tables.
//
// The contract is deliberately forgiving: list operations return an empty
// slice instead of an error, create returns nil on failure, and update and
// delete return false. Failures are logged where they happen; callers treat
// a degraded result as "no data" and never crash on a broken backend. This
// also means a caller cannot distinguish "record not found" from "backend
// unreachable" — known, accepted behaviour.
package store

import (
	"context"

	"cartera/internal/domain"
)

// FundStore is the CRUD contract for the fund collection.
type FundStore interface {
	// ListFunds returns all funds ordered by id ascending. It never
	// fails: an empty or unreachable store yields an empty slice.
	ListFunds(ctx context.Context) []domain.Fund

	// CreateFund assigns the next id, normalizes the record, and
	// persists it. It returns the stored fund, or nil on failure.
	CreateFund(ctx context.Context, f domain.Fund) *domain.Fund

	// UpdateFund replaces every field of the fund matching id (the id
	// itself is immutable). It returns false when no record matches or
	// persistence fails.
	UpdateFund(ctx context.Context, id int64, f domain.Fund) bool

	// DeleteFund removes the fund matching id. Deleting an id that does
	// not exist is not an error.
	DeleteFund(ctx context.Context, id int64) bool
}

// StockStore is the CRUD contract for the stock collection.
type StockStore interface {
	ListStocks(ctx context.Context) []domain.Stock
	CreateStock(ctx context.Context, s domain.Stock) *domain.Stock
	UpdateStock(ctx context.Context, id int64, s domain.Stock) bool
	DeleteStock(ctx context.Context, id int64) bool
}

// Store combines both collections behind one backend.
type Store interface {
	FundStore
	StockStore

	// Close releases backend resources.
	Close() error
}
