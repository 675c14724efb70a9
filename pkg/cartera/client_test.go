package cartera

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewClient(t *testing.T) {
	c := NewClient("http://localhost:8080/")

	if c == nil {
		t.Fatal("expected non-nil client")
	}
	if c.baseURL != "http://localhost:8080" {
		t.Errorf("baseURL = %q, want trailing slash trimmed", c.baseURL)
	}
	if c.httpClient == nil {
		t.Fatal("expected non-nil httpClient")
	}
}

func TestClientCreateAndListFunds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/funds" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodPost:
			var f Fund
			if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
				t.Fatalf("decoding request: %v", err)
			}
			f.ID = 1
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(f)
		case http.MethodGet:
			json.NewEncoder(w).Encode([]Fund{{ID: 1, Name: "Vanguard", Ticker: "VOO"}})
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	created, err := c.CreateFund(context.Background(), Fund{
		Name:          "Vanguard",
		Ticker:        "VOO",
		Type:          "RV",
		PurchaseValue: decimal.NewFromInt(100),
		Quantity:      decimal.NewFromInt(10),
		PurchaseDate:  "2024-01-15",
	})
	if err != nil {
		t.Fatalf("CreateFund: %v", err)
	}
	if created.ID != 1 {
		t.Errorf("created id = %d, want 1", created.ID)
	}

	funds, err := c.ListFunds(context.Background())
	if err != nil {
		t.Fatalf("ListFunds: %v", err)
	}
	if len(funds) != 1 || funds[0].Ticker != "VOO" {
		t.Errorf("funds = %+v", funds)
	}
}

func TestClientSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "nombre is required"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.CreateFund(context.Background(), Fund{})
	if err == nil {
		t.Fatal("expected error from 400 response")
	}
	if got := err.Error(); got != "POST /api/funds: nombre is required (status 400)" {
		t.Errorf("error = %q", got)
	}
}

func TestClientFundsTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/funds/table" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Table{Rows: []TableRow{
			{ID: 1, Name: "Vanguard", CurrentValue: "€1,200.00"},
			{Name: "TOTAL", CurrentValue: "€1,200.00"},
		}})
	}))
	defer srv.Close()

	table, err := NewClient(srv.URL).FundsTable(context.Background())
	if err != nil {
		t.Fatalf("FundsTable: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("got %d rows", len(table.Rows))
	}
	if table.Rows[1].Name != "TOTAL" {
		t.Errorf("last row = %q, want TOTAL", table.Rows[1].Name)
	}
}
