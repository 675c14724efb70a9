package httpapi

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"cartera/internal/domain"
	"cartera/internal/market"
	"cartera/internal/store"
)

func testServer(t *testing.T) (*httptest.Server, *market.StaticProvider) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	st, err := store.NewJSONStore(filepath.Join(t.TempDir(), "cartera.json"), log)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	provider := market.NewStaticProvider()
	gw := market.NewService(provider, market.Options{CacheTTL: time.Minute, RateLimitPerMin: 6000}, log)

	ts := httptest.NewServer(NewServer(st, gw, log).Handler())
	t.Cleanup(ts.Close)
	return ts, provider
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

func sampleFund() domain.Fund {
	return domain.Fund{
		Name:          "Vanguard S&P 500",
		Ticker:        "voo",
		Type:          domain.FundTypeVariable,
		PurchaseValue: decimal.NewFromInt(100),
		Quantity:      decimal.NewFromInt(10),
		PurchaseDate:  domain.NewDate(2024, time.January, 15),
	}
}

func TestFundCRUD(t *testing.T) {
	ts, _ := testServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/funds", sampleFund())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	created := decodeBody[domain.Fund](t, resp)
	if created.ID != 1 {
		t.Errorf("created id = %d, want 1", created.ID)
	}
	if created.Ticker != "VOO" {
		t.Errorf("created ticker = %q, want uppercased", created.Ticker)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/funds", nil)
	funds := decodeBody[[]domain.Fund](t, resp)
	if len(funds) != 1 {
		t.Fatalf("got %d funds, want 1", len(funds))
	}

	updated := sampleFund()
	updated.Name = "Vanguard Global"
	resp = doJSON(t, http.MethodPut, ts.URL+"/api/funds/1", updated)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/funds", nil)
	funds = decodeBody[[]domain.Fund](t, resp)
	if funds[0].Name != "Vanguard Global" {
		t.Errorf("name after update = %q", funds[0].Name)
	}

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/funds/1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/funds", nil)
	if funds = decodeBody[[]domain.Fund](t, resp); len(funds) != 0 {
		t.Errorf("got %d funds after delete, want 0", len(funds))
	}
}

func TestCreateFundValidation(t *testing.T) {
	ts, _ := testServer(t)

	f := sampleFund()
	f.Name = ""
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/funds", f)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	// The rejected create must not have written anything.
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/funds", nil)
	if funds := decodeBody[[]domain.Fund](t, resp); len(funds) != 0 {
		t.Errorf("invalid create persisted %d funds", len(funds))
	}
}

func TestUpdateMissingFundIsBadGateway(t *testing.T) {
	ts, _ := testServer(t)

	resp := doJSON(t, http.MethodPut, ts.URL+"/api/funds/99", sampleFund())
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/funds/abc", sampleFund())
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("non-numeric id status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestStockCreateDefaultsSector(t *testing.T) {
	ts, _ := testServer(t)

	s := domain.Stock{
		Name:          "Apple",
		Ticker:        "aapl",
		PurchasePrice: decimal.NewFromInt(150),
		NumShares:     4,
		PurchaseDate:  domain.NewDate(2024, time.March, 1),
	}
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/stocks", s)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	created := decodeBody[domain.Stock](t, resp)
	if created.Sector != domain.DefaultSector {
		t.Errorf("sector = %q, want %q", created.Sector, domain.DefaultSector)
	}
}

func TestFundsTableEndpoint(t *testing.T) {
	ts, provider := testServer(t)
	provider.Set("VOO", market.Quote{
		Price:     decimal.NewFromInt(120),
		PrevClose: decimal.NewFromInt(118),
		AsOf:      time.Now(),
	}, nil)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/funds", sampleFund())
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/funds/table", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("table status = %d", resp.StatusCode)
	}
	var table struct {
		Rows []struct {
			Name         string `json:"nombre"`
			CurrentValue string `json:"valor_actual"`
		} `json:"rows"`
		Empty bool `json:"empty"`
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		t.Fatalf("decoding table: %v", err)
	}
	if table.Empty {
		t.Error("table with one fund marked empty")
	}
	if len(table.Rows) != 2 {
		t.Fatalf("got %d rows, want fund + TOTAL", len(table.Rows))
	}
	last := table.Rows[len(table.Rows)-1]
	if last.Name != "TOTAL" {
		t.Errorf("last row = %q, want TOTAL", last.Name)
	}
	if last.CurrentValue != "€1,200.00" {
		t.Errorf("total value = %q", last.CurrentValue)
	}
}

func TestEmptyTableEndpoint(t *testing.T) {
	ts, _ := testServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/stocks/table", nil)
	var table struct {
		Empty bool `json:"empty"`
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		t.Fatalf("decoding table: %v", err)
	}
	if !table.Empty {
		t.Error("empty store should produce an empty-marked table")
	}
}

func TestStocksChartEndpoint(t *testing.T) {
	ts, provider := testServer(t)
	provider.Set("AAPL", market.Quote{
		Price:     decimal.NewFromInt(150),
		PrevClose: decimal.NewFromInt(149),
		AsOf:      time.Now(),
	}, nil)

	s := domain.Stock{
		Name:          "Apple",
		Ticker:        "AAPL",
		Sector:        "Tecnología",
		PurchasePrice: decimal.NewFromInt(100),
		NumShares:     2,
		PurchaseDate:  domain.NewDate(2024, time.March, 1),
	}
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/stocks", s)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/charts/stocks/sectors", nil)
	slices := decodeBody[[]struct {
		Label string  `json:"label"`
		Value float64 `json:"value"`
	}](t, resp)
	if len(slices) != 1 {
		t.Fatalf("got %d slices, want 1", len(slices))
	}
	if slices[0].Label != "Tecnología" || slices[0].Value != 300 {
		t.Errorf("slice = %+v, want Tecnología/300", slices[0])
	}
}

func TestStockDistributionAndPerformanceEndpoints(t *testing.T) {
	ts, provider := testServer(t)
	provider.Set("AAPL", market.Quote{
		Price:     decimal.NewFromInt(150),
		PrevClose: decimal.NewFromInt(149),
		AsOf:      time.Now(),
	}, nil)

	for _, s := range []domain.Stock{
		{
			Name:          "Apple",
			Ticker:        "AAPL",
			Sector:        "Tecnología",
			PurchasePrice: decimal.NewFromInt(100),
			NumShares:     2,
			PurchaseDate:  domain.NewDate(2024, time.March, 1),
		},
		{
			Name:          "Desconocida",
			Ticker:        "NOPE",
			PurchasePrice: decimal.NewFromInt(50),
			NumShares:     3,
			PurchaseDate:  domain.NewDate(2024, time.March, 1),
		},
	} {
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/stocks", s)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create status = %d", resp.StatusCode)
		}
		resp.Body.Close()
	}

	type slice struct {
		Label string  `json:"label"`
		Value float64 `json:"value"`
	}

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/charts/stocks/distribution", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("distribution status = %d, want 200", resp.StatusCode)
	}
	dist := decodeBody[[]slice](t, resp)
	if len(dist) != 2 {
		t.Fatalf("got %d distribution slices, want every holding", len(dist))
	}
	if dist[0].Label != "Apple (AAPL)" || dist[0].Value != 300 {
		t.Errorf("slice = %+v, want Apple (AAPL)/300", dist[0])
	}
	if dist[1].Label != "Desconocida (NOPE)" || dist[1].Value != 0 {
		t.Errorf("slice = %+v, want Desconocida (NOPE)/0", dist[1])
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/charts/stocks/performance", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("performance status = %d, want 200", resp.StatusCode)
	}
	perf := decodeBody[[]slice](t, resp)
	if len(perf) != 1 {
		t.Fatalf("got %d performance slices, want only priced holdings", len(perf))
	}
	if perf[0].Label != "AAPL" || perf[0].Value != 50 {
		t.Errorf("slice = %+v, want AAPL/50", perf[0])
	}
}

func TestFundDistributionEndpoint(t *testing.T) {
	ts, provider := testServer(t)
	provider.Set("VOO", market.Quote{
		Price:     decimal.NewFromInt(120),
		PrevClose: decimal.NewFromInt(118),
		AsOf:      time.Now(),
	}, nil)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/funds", sampleFund())
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/charts/funds/distribution", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("distribution status = %d, want 200", resp.StatusCode)
	}
	dist := decodeBody[[]struct {
		Label string  `json:"label"`
		Value float64 `json:"value"`
	}](t, resp)
	if len(dist) != 1 {
		t.Fatalf("got %d slices, want 1", len(dist))
	}
	if dist[0].Label != "Vanguard S&P 500 (VOO)" || dist[0].Value != 1200 {
		t.Errorf("slice = %+v", dist[0])
	}
}

func TestRequestIDHeader(t *testing.T) {
	ts, _ := testServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/funds", nil)
	resp.Body.Close()
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("response missing X-Request-ID")
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/funds", nil)
	req.Header.Set("X-Request-ID", "test-id-1")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Request-ID"); got != "test-id-1" {
		t.Errorf("request id = %q, want caller's preserved", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts, _ := testServer(t)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/funds", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", resp.StatusCode)
	}
	if origin := resp.Header.Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("allow-origin = %q", origin)
	}
	if methods := resp.Header.Get("Access-Control-Allow-Methods"); !strings.Contains(methods, "POST") {
		t.Errorf("allow-methods = %q, missing POST", methods)
	}
}
