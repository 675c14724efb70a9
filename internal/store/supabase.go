package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cartera/internal/domain"
)

// Compile-time interface check.
var _ Store = (*SupabaseStore)(nil)

// SupabaseStore implements Store against the two hosted Postgres tables of
// a Supabase project. Each operation is a single statement filtered by id.
// Network and auth failures after startup degrade to the shared store
// contract instead of propagating.
type SupabaseStore struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewSupabaseStore connects to the project database and verifies
// connectivity. Connection failure here is a startup configuration error
// and is returned to the caller.
func NewSupabaseStore(ctx context.Context, projectURL, key string, log *slog.Logger) (*SupabaseStore, error) {
	dsn, err := supabaseDSN(projectURL, key)
	if err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// Register shopspring decimal so numeric columns scan losslessly.
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &SupabaseStore{pool: pool, log: log.With("store", "supabase")}, nil
}

// supabaseDSN turns the configured endpoint and key into a Postgres DSN.
// A postgresql:// URL is used as-is (the key fills a missing password); the
// project's https:// URL maps to its direct database host.
func supabaseDSN(projectURL, key string) (string, error) {
	switch {
	case strings.HasPrefix(projectURL, "postgres://"), strings.HasPrefix(projectURL, "postgresql://"):
		u, err := url.Parse(projectURL)
		if err != nil {
			return "", fmt.Errorf("parsing SUPABASE_URL: %w", err)
		}
		if _, has := u.User.Password(); !has {
			user := u.User.Username()
			if user == "" {
				user = "postgres"
			}
			u.User = url.UserPassword(user, key)
		}
		return u.String(), nil
	case strings.HasPrefix(projectURL, "https://"):
		host := strings.TrimPrefix(projectURL, "https://")
		host = strings.TrimSuffix(host, "/")
		return fmt.Sprintf("postgresql://postgres:%s@db.%s:5432/postgres", url.QueryEscape(key), host), nil
	default:
		return "", fmt.Errorf("SUPABASE_URL %q is neither a postgresql:// DSN nor an https:// project URL", projectURL)
	}
}

// Close releases the connection pool.
func (s *SupabaseStore) Close() error {
	s.pool.Close()
	return nil
}

// ---------------------------------------------------------------------------
// Funds
// ---------------------------------------------------------------------------

func (s *SupabaseStore) ListFunds(ctx context.Context) []domain.Fund {
	rows, err := s.pool.Query(ctx,
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
		if err := rows.Scan(&f.ID, &f.Name, &f.Ticker, &f.Type, &f.PurchaseValue, &f.Quantity, &f.PurchaseDate); err != nil {
			s.log.Error("scanning fund row", "error", err)
			return []domain.Fund{}
		}
		funds = append(funds, f)
	}
	if err := rows.Err(); err != nil {
		s.log.Error("listing funds", "error", err)
		return []domain.Fund{}
	}
	return funds
}

func (s *SupabaseStore) CreateFund(ctx context.Context, f domain.Fund) *domain.Fund {
	f.Normalize()
	err := s.pool.QueryRow(ctx,
		`INSERT INTO fondos (id, nombre, ticker, tipo, valor_compra, cantidad, fecha_compra)
		 SELECT COALESCE(MAX(id), 0) + 1, $1, $2, $3, $4, $5, $6 FROM fondos
		 RETURNING id`,
		f.Name, f.Ticker, string(f.Type), f.PurchaseValue, f.Quantity, f.PurchaseDate,
	).Scan(&f.ID)
	if err != nil {
		s.log.Error("creating fund", "ticker", f.Ticker, "error", err)
		return nil
	}
	return &f
}

func (s *SupabaseStore) UpdateFund(ctx context.Context, id int64, f domain.Fund) bool {
	f.Normalize()
	tag, err := s.pool.Exec(ctx,
		`UPDATE fondos SET nombre = $1, ticker = $2, tipo = $3, valor_compra = $4, cantidad = $5, fecha_compra = $6
		 WHERE id = $7`,
		f.Name, f.Ticker, string(f.Type), f.PurchaseValue, f.Quantity, f.PurchaseDate, id)
	if err != nil {
		s.log.Error("updating fund", "id", id, "error", err)
		return false
	}
	return tag.RowsAffected() > 0
}

func (s *SupabaseStore) DeleteFund(ctx context.Context, id int64) bool {
	if _, err := s.pool.Exec(ctx, `DELETE FROM fondos WHERE id = $1`, id); err != nil {
		s.log.Error("deleting fund", "id", id, "error", err)
		return false
	}
	return true
}

// ---------------------------------------------------------------------------
// Stocks
// ---------------------------------------------------------------------------

func (s *SupabaseStore) ListStocks(ctx context.Context) []domain.Stock {
	rows, err := s.pool.Query(ctx,
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
		if err := rows.Scan(&st.ID, &st.Name, &st.Ticker, &st.Sector, &st.PurchasePrice, &st.NumShares, &st.PurchaseDate); err != nil {
			s.log.Error("scanning stock row", "error", err)
			return []domain.Stock{}
		}
		stocks = append(stocks, st)
	}
	if err := rows.Err(); err != nil {
		s.log.Error("listing stocks", "error", err)
		return []domain.Stock{}
	}
	return stocks
}

func (s *SupabaseStore) CreateStock(ctx context.Context, st domain.Stock) *domain.Stock {
	st.Normalize()
	err := s.pool.QueryRow(ctx,
		`INSERT INTO acciones (id, nombre, ticker, sector, precio_compra, num_acciones, fecha_compra)
		 SELECT COALESCE(MAX(id), 0) + 1, $1, $2, $3, $4, $5, $6 FROM acciones
		 RETURNING id`,
		st.Name, st.Ticker, st.Sector, st.PurchasePrice, st.NumShares, st.PurchaseDate,
	).Scan(&st.ID)
	if err != nil {
		s.log.Error("creating stock", "ticker", st.Ticker, "error", err)
		return nil
	}
	return &st
}

func (s *SupabaseStore) UpdateStock(ctx context.Context, id int64, st domain.Stock) bool {
	st.Normalize()
	tag, err := s.pool.Exec(ctx,
		`UPDATE acciones SET nombre = $1, ticker = $2, sector = $3, precio_compra = $4, num_acciones = $5, fecha_compra = $6
		 WHERE id = $7`,
		st.Name, st.Ticker, st.Sector, st.PurchasePrice, st.NumShares, st.PurchaseDate, id)
	if err != nil {
		s.log.Error("updating stock", "id", id, "error", err)
		return false
	}
	return tag.RowsAffected() > 0
}

func (s *SupabaseStore) DeleteStock(ctx context.Context, id int64) bool {
	if _, err := s.pool.Exec(ctx, `DELETE FROM acciones WHERE id = $1`, id); err != nil {
		s.log.Error("deleting stock", "id", id, "error", err)
		return false
	}
	return true
}
