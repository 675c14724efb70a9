// Package cartera provides a Go SDK for the cartera-server API.
package cartera

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Fund is an investment fund holding as the API represents it.
type Fund struct {
	ID            int64           `json:"id"`
	Name          string          `json:"nombre"`
	Ticker        string          `json:"ticker"`
	Type          string          `json:"tipo"`
	PurchaseValue decimal.Decimal `json:"valor_compra"`
	Quantity      decimal.Decimal `json:"cantidad"`
	PurchaseDate  string          `json:"fecha_compra"`
}

// Stock is an individual stock holding as the API represents it.
type Stock struct {
	ID            int64           `json:"id"`
	Name          string          `json:"nombre"`
	Ticker        string          `json:"ticker"`
	Sector        string          `json:"sector"`
	PurchasePrice decimal.Decimal `json:"precio_compra"`
	NumShares     int64           `json:"num_acciones"`
	PurchaseDate  string          `json:"fecha_compra"`
}

// TableRow is one formatted dashboard row. All money and percent columns
// are pre-formatted strings; unavailable market data reads "N/A".
type TableRow struct {
	ID           int64  `json:"id"`
	Name         string `json:"nombre"`
	Ticker       string `json:"ticker"`
	Category     string `json:"categoria"`
	PurchaseCost string `json:"valor_compra"`
	Quantity     string `json:"cantidad"`
	CurrentPrice string `json:"precio_actual"`
	CurrentValue string `json:"valor_actual"`
	DailyChange  string `json:"cambio_diario"`
	YTDChange    string `json:"cambio_ytd"`
	GainLoss     string `json:"ganancia_perdida"`
	PurchaseDate string `json:"fecha_compra"`
}

// Table is a formatted collection view with a trailing TOTAL row.
type Table struct {
	Rows  []TableRow `json:"rows"`
	Empty bool       `json:"empty"`
}

// ChartSlice is one category of a value-distribution chart.
type ChartSlice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Client talks to a cartera-server instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ListFunds retrieves all funds.
func (c *Client) ListFunds(ctx context.Context) ([]Fund, error) {
	var funds []Fund
	if err := c.do(ctx, http.MethodGet, "/api/funds", nil, &funds); err != nil {
		return nil, err
	}
	return funds, nil
}

// CreateFund creates a fund and returns it with its assigned id.
func (c *Client) CreateFund(ctx context.Context, f Fund) (*Fund, error) {
	var created Fund
	if err := c.do(ctx, http.MethodPost, "/api/funds", f, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateFund replaces the fund with the given id.
func (c *Client) UpdateFund(ctx context.Context, id int64, f Fund) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/funds/%d", id), f, nil)
}

// DeleteFund removes the fund with the given id.
func (c *Client) DeleteFund(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/funds/%d", id), nil, nil)
}

// ListStocks retrieves all stocks.
func (c *Client) ListStocks(ctx context.Context) ([]Stock, error) {
	var stocks []Stock
	if err := c.do(ctx, http.MethodGet, "/api/stocks", nil, &stocks); err != nil {
		return nil, err
	}
	return stocks, nil
}

// CreateStock creates a stock and returns it with its assigned id.
func (c *Client) CreateStock(ctx context.Context, s Stock) (*Stock, error) {
	var created Stock
	if err := c.do(ctx, http.MethodPost, "/api/stocks", s, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateStock replaces the stock with the given id.
func (c *Client) UpdateStock(ctx context.Context, id int64, s Stock) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/stocks/%d", id), s, nil)
}

// DeleteStock removes the stock with the given id.
func (c *Client) DeleteStock(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/stocks/%d", id), nil, nil)
}

// FundsTable retrieves the formatted funds table, TOTAL row included.
func (c *Client) FundsTable(ctx context.Context) (*Table, error) {
	var table Table
	if err := c.do(ctx, http.MethodGet, "/api/funds/table", nil, &table); err != nil {
		return nil, err
	}
	return &table, nil
}

// StocksTable retrieves the formatted stocks table, TOTAL row included.
func (c *Client) StocksTable(ctx context.Context) (*Table, error) {
	var table Table
	if err := c.do(ctx, http.MethodGet, "/api/stocks/table", nil, &table); err != nil {
		return nil, err
	}
	return &table, nil
}

// FundTypeChart retrieves fund value grouped by type.
func (c *Client) FundTypeChart(ctx context.Context) ([]ChartSlice, error) {
	var slices []ChartSlice
	if err := c.do(ctx, http.MethodGet, "/api/charts/funds/types", nil, &slices); err != nil {
		return nil, err
	}
	return slices, nil
}

// FundDistributionChart retrieves current value per fund.
func (c *Client) FundDistributionChart(ctx context.Context) ([]ChartSlice, error) {
	var slices []ChartSlice
	if err := c.do(ctx, http.MethodGet, "/api/charts/funds/distribution", nil, &slices); err != nil {
		return nil, err
	}
	return slices, nil
}

// FundPerformanceChart retrieves gain percent per priced fund.
func (c *Client) FundPerformanceChart(ctx context.Context) ([]ChartSlice, error) {
	var slices []ChartSlice
	if err := c.do(ctx, http.MethodGet, "/api/charts/funds/performance", nil, &slices); err != nil {
		return nil, err
	}
	return slices, nil
}

// StockSectorChart retrieves stock value grouped by sector.
func (c *Client) StockSectorChart(ctx context.Context) ([]ChartSlice, error) {
	var slices []ChartSlice
	if err := c.do(ctx, http.MethodGet, "/api/charts/stocks/sectors", nil, &slices); err != nil {
		return nil, err
	}
	return slices, nil
}

// StockDistributionChart retrieves current value per stock.
func (c *Client) StockDistributionChart(ctx context.Context) ([]ChartSlice, error) {
	var slices []ChartSlice
	if err := c.do(ctx, http.MethodGet, "/api/charts/stocks/distribution", nil, &slices); err != nil {
		return nil, err
	}
	return slices, nil
}

// StockPerformanceChart retrieves gain percent per priced stock.
func (c *Client) StockPerformanceChart(ctx context.Context) ([]ChartSlice, error) {
	var slices []ChartSlice
	if err := c.do(ctx, http.MethodGet, "/api/charts/stocks/performance", nil, &slices); err != nil {
		return nil, err
	}
	return slices, nil
}
