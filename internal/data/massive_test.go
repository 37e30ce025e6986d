package data

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
)

func testMassiveProvider(srv *httptest.Server) *massiveDataProvider {
	return &massiveDataProvider{
		APIKey:  "test",
		Client:  resty.New(),
		BaseURL: srv.URL,
	}
}

func TestMassiveProviderGetBarsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"internal error"}`))
	}))
	defer srv.Close()

	p := testMassiveProvider(srv)
	_, err := p.GetBars("AAPL", time.Now().AddDate(0, 0, -5), time.Now(), 1, "day")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestMassiveProviderGetBarsDecodesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"results": [
				{"t": 1735689600000, "o":1,"h":1.5,"l":0.5,"c":1.2,"v":100}
			]
		}`))
	}))
	defer srv.Close()

	p := testMassiveProvider(srv)
	bars, err := p.GetBars("AAPL", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), 1, "day")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 1 {
		t.Fatalf("expected 1 bar, got %d", len(bars))
	}
	if bars[0].Close != 1.2 {
		t.Errorf("bar close = %v, want 1.2", bars[0].Close)
	}
}

func TestMassiveProviderGetContractsFollowsPagination(t *testing.T) {
	callCount := 0
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		w.Header().Set("Content-Type", "application/json")
		if callCount == 1 {
			w.Write([]byte(`{
				"results": [{"expiration_date":"2025-01-17","strike_price":580,"contract_type":"call"}],
				"next_url": "` + srv.URL + `/page2"
			}`))
			return
		}
		w.Write([]byte(`{
			"results": [{"expiration_date":"2025-02-21","strike_price":580,"contract_type":"call"}]
		}`))
	}))
	defer srv.Close()

	p := testMassiveProvider(srv)
	contracts, err := p.GetContracts("AAPL", 580, time.Time{}, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contracts) != 2 {
		t.Fatalf("expected 2 contracts across both pages, got %d", len(contracts))
	}
}

func TestMassiveProviderRoundToNearestStrikeFallsBackOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := testMassiveProvider(srv)
	asOf := 581.39
	got := p.RoundToNearestStrike("SPY", time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), asOf)
	if got != asOf {
		t.Errorf("RoundToNearestStrike on provider error = %v, want unchanged %v", got, asOf)
	}
}
