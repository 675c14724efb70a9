package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"cartera/internal/domain"
)

// Compile-time interface check.
var _ Store = (*JSONStore)(nil)

// document is the on-disk layout: one JSON object holding both collections.
type document struct {
	Funds  []domain.Fund  `json:"fondos"`
	Stocks []domain.Stock `json:"acciones"`
}

// JSONStore keeps both collections in a single JSON document. Every
// mutation reads the whole document, changes it in memory, and rewrites it
// through a temp file and rename, so a crashed write never leaves a
// half-written document behind. Writes are last-write-wins; there is no
// cross-record transaction.
type JSONStore struct {
	path string
	mu   sync.Mutex
	log  *slog.Logger
}

// NewJSONStore creates a JSONStore persisting to path. The parent
// directory is created if needed; the file itself appears on first write.
func NewJSONStore(path string, log *slog.Logger) (*JSONStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &JSONStore{path: path, log: log.With("store", "json")}, nil
}

// Close is a no-op; the document is not held open between operations.
func (s *JSONStore) Close() error { return nil }

// load reads the document from disk. A missing or corrupt file is treated
// as the empty two-collection document.
func (s *JSONStore) load() document {
	var doc document
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("reading document, starting empty", "error", err)
		}
		return doc
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		s.log.Warn("corrupt document, starting empty", "error", err)
		return document{}
	}
	return doc
}

// save atomically replaces the document on disk.
func (s *JSONStore) save(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "cartera-*.json")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, s.path)
}

// ---------------------------------------------------------------------------
// Funds
// ---------------------------------------------------------------------------

func (s *JSONStore) ListFunds(_ context.Context) []domain.Fund {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.load()
	if doc.Funds == nil {
		return []domain.Fund{}
	}
	return doc.Funds
}

func (s *JSONStore) CreateFund(_ context.Context, f domain.Fund) *domain.Fund {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	f.Normalize()
	f.ID = domain.NextID(fundIDs(doc.Funds))
	doc.Funds = append(doc.Funds, f)

	if err := s.save(doc); err != nil {
		s.log.Error("creating fund", "ticker", f.Ticker, "error", err)
		return nil
	}
	return &f
}

func (s *JSONStore) UpdateFund(_ context.Context, id int64, f domain.Fund) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	for i := range doc.Funds {
		if doc.Funds[i].ID != id {
			continue
		}
		f.Normalize()
		f.ID = id
		doc.Funds[i] = f
		if err := s.save(doc); err != nil {
			s.log.Error("updating fund", "id", id, "error", err)
			return false
		}
		return true
	}
	return false
}

func (s *JSONStore) DeleteFund(_ context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	kept := doc.Funds[:0]
	removed := false
	for _, f := range doc.Funds {
		if f.ID == id {
			removed = true
			continue
		}
		kept = append(kept, f)
	}
	if !removed {
		return true // idempotent
	}
	doc.Funds = kept
	if err := s.save(doc); err != nil {
		s.log.Error("deleting fund", "id", id, "error", err)
		return false
	}
	return true
}

// ---------------------------------------------------------------------------
// Stocks
// ---------------------------------------------------------------------------

func (s *JSONStore) ListStocks(_ context.Context) []domain.Stock {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.load()
	if doc.Stocks == nil {
		return []domain.Stock{}
	}
	return doc.Stocks
}

func (s *JSONStore) CreateStock(_ context.Context, st domain.Stock) *domain.Stock {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	st.Normalize()
	st.ID = domain.NextID(stockIDs(doc.Stocks))
	doc.Stocks = append(doc.Stocks, st)

	if err := s.save(doc); err != nil {
		s.log.Error("creating stock", "ticker", st.Ticker, "error", err)
		return nil
	}
	return &st
}

func (s *JSONStore) UpdateStock(_ context.Context, id int64, st domain.Stock) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	for i := range doc.Stocks {
		if doc.Stocks[i].ID != id {
			continue
		}
		st.Normalize()
		st.ID = id
		doc.Stocks[i] = st
		if err := s.save(doc); err != nil {
			s.log.Error("updating stock", "id", id, "error", err)
			return false
		}
		return true
	}
	return false
}

func (s *JSONStore) DeleteStock(_ context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	kept := doc.Stocks[:0]
	removed := false
	for _, st := range doc.Stocks {
		if st.ID == id {
			removed = true
			continue
		}
		kept = append(kept, st)
	}
	if !removed {
		return true
	}
	doc.Stocks = kept
	if err := s.save(doc); err != nil {
		s.log.Error("deleting stock", "id", id, "error", err)
		return false
	}
	return true
}

func fundIDs(funds []domain.Fund) []int64 {
	ids := make([]int64, len(funds))
	for i, f := range funds {
		ids[i] = f.ID
	}
	return ids
}

func stockIDs(stocks []domain.Stock) []int64 {
	ids := make([]int64, len(stocks))
	for i, s := range stocks {
		ids[i] = s.ID
	}
	return ids
}
