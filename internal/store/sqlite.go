package store

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"cartera/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ Store = (*SQLiteStore)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS fondos (
	id           INTEGER PRIMARY KEY,
	nombre       TEXT NOT NULL,
	ticker       TEXT NOT NULL,
	tipo         TEXT NOT NULL,
	valor_compra TEXT NOT NULL,
	cantidad     TEXT NOT NULL,
	fecha_compra TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS acciones (
	id            INTEGER PRIMARY KEY,
	nombre        TEXT NOT NULL,
	ticker        TEXT NOT NULL,
	sector        TEXT NOT NULL,
	precio_compra TEXT NOT NULL,
	num_acciones  INTEGER NOT NULL,
	fecha_compra  TEXT NOT NULL
);`

// SQLiteStore implements Store on a local SQLite file. Decimal columns are
// stored as text so values round-trip without float drift.
type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
}

// NewSQLiteStore opens (or creates) the database at dbPath and ensures the
// schema exists.
func NewSQLiteStore(dbPath string, log *slog.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, log: log.With("store", "sqlite")}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// ---------------------------------------------------------------------------
// Funds
// ---------------------------------------------------------------------------

func (s *SQLiteStore) ListFunds(ctx context.Context) []domain.Fund {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, nombre, ticker, tipo, valor_compra, cantidad, fecha_compra
		 FROM fondos ORDER BY id`)
	if err != nil {
		s.log.Error("listing funds", "error", err)
		return []domain.Fund{}
	}
	defer rows.Close()

	funds := []domain.Fund{}
	for rows.Next() {
		var f domain.Fund
		var valor, cantidad string
		if err := rows.Scan(&f.ID, &f.Name, &f.Ticker, &f.Type, &valor, &cantidad, &f.PurchaseDate); err != nil {
			s.log.Error("scanning fund row", "error", err)
			return []domain.Fund{}
		}
		f.PurchaseValue, _ = decimal.NewFromString(valor)
		f.Quantity, _ = decimal.NewFromString(cantidad)
		funds = append(funds, f)
	}
	if err := rows.Err(); err != nil {
		s.log.Error("listing funds", "error", err)
		return []domain.Fund{}
	}
	return funds
}

func (s *SQLiteStore) CreateFund(ctx context.Context, f domain.Fund) *domain.Fund {
	f.Normalize()
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO fondos (id, nombre, ticker, tipo, valor_compra, cantidad, fecha_compra)
		 SELECT COALESCE(MAX(id), 0) + 1, ?, ?, ?, ?, ?, ? FROM fondos
		 RETURNING id`,
		f.Name, f.Ticker, string(f.Type), f.PurchaseValue.String(), f.Quantity.String(), f.PurchaseDate,
	).Scan(&f.ID)
	if err != nil {
		s.log.Error("creating fund", "ticker", f.Ticker, "error", err)
		return nil
	}
	return &f
}

func (s *SQLiteStore) UpdateFund(ctx context.Context, id int64, f domain.Fund) bool {
	f.Normalize()
	res, err := s.db.ExecContext(ctx,
		`UPDATE fondos SET nombre = ?, ticker = ?, tipo = ?, valor_compra = ?, cantidad = ?, fecha_compra = ?
		 WHERE id = ?`,
		f.Name, f.Ticker, string(f.Type), f.PurchaseValue.String(), f.Quantity.String(), f.PurchaseDate, id)
	if err != nil {
		s.log.Error("updating fund", "id", id, "error", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) DeleteFund(ctx context.Context, id int64) bool {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM fondos WHERE id = ?`, id); err != nil {
		s.log.Error("deleting fund", "id", id, "error", err)
		return false
	}
	return true
}

// ---------------------------------------------------------------------------
// Stocks
// ---------------------------------------------------------------------------

func (s *SQLiteStore) ListStocks(ctx context.Context) []domain.Stock {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, nombre, ticker, sector, precio_compra, num_acciones, fecha_compra
		 FROM acciones ORDER BY id`)
	if err != nil {
		s.log.Error("listing stocks", "error", err)
		return []domain.Stock{}
	}
	defer rows.Close()

	stocks := []domain.Stock{}
	for rows.Next() {
		var st domain.Stock
		var precio string
		if err := rows.Scan(&st.ID, &st.Name, &st.Ticker, &st.Sector, &precio, &st.NumShares, &st.PurchaseDate); err != nil {
			s.log.Error("scanning stock row", "error", err)
			return []domain.Stock{}
		}
		st.PurchasePrice, _ = decimal.NewFromString(precio)
		stocks = append(stocks, st)
	}
	if err := rows.Err(); err != nil {
		s.log.Error("listing stocks", "error", err)
		return []domain.Stock{}
	}
	return stocks
}

func (s *SQLiteStore) CreateStock(ctx context.Context, st domain.Stock) *domain.Stock {
	st.Normalize()
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO acciones (id, nombre, ticker, sector, precio_compra, num_acciones, fecha_compra)
		 SELECT COALESCE(MAX(id), 0) + 1, ?, ?, ?, ?, ?, ? FROM acciones
		 RETURNING id`,
		st.Name, st.Ticker, st.Sector, st.PurchasePrice.String(), st.NumShares, st.PurchaseDate,
	).Scan(&st.ID)
	if err != nil {
		s.log.Error("creating stock", "ticker", st.Ticker, "error", err)
		return nil
	}
	return &st
}

func (s *SQLiteStore) UpdateStock(ctx context.Context, id int64, st domain.Stock) bool {
	st.Normalize()
	res, err := s.db.ExecContext(ctx,
		`UPDATE acciones SET nombre = ?, ticker = ?, sector = ?, precio_compra = ?, num_acciones = ?, fecha_compra = ?
		 WHERE id = ?`,
		st.Name, st.Ticker, st.Sector, st.PurchasePrice.String(), st.NumShares, st.PurchaseDate, id)
	if err != nil {
		s.log.Error("updating stock", "id", id, "error", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) DeleteStock(ctx context.Context, id int64) bool {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM acciones WHERE id = ?`, id); err != nil {
		s.log.Error("deleting stock", "id", id, "error", err)
		return false
	}
	return true
}
