package buda

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"spreadwatch/internal/config"
	"spreadwatch/internal/exchange/common"
	"spreadwatch/internal/infra/log"
)

func newTestAdapter(t *testing.T, h http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := config.Config{}
	cfg.Upstream.BaseURL = srv.URL + "/api/v2"
	cfg.Upstream.TimeoutSeconds = 2
	return New(cfg, log.Nop())
}

func TestFetchOrderBook(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/markets/btc-clp/order_book" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"order_book":{"market_id":"BTC-CLP","asks":[["100.5","1.2"],["101","3"]],"bids":[["100.0","0.5"]]}}`))
	})

	book, err := a.FetchOrderBook(context.Background(), "btc-clp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(book.Asks) != 2 || len(book.Bids) != 1 {
		t.Fatalf("unexpected book sizes asks=%d bids=%d", len(book.Asks), len(book.Bids))
	}
	if book.Asks[0].Price.String() != "100.5" || book.Bids[0].Price.String() != "100" {
		t.Fatalf("unexpected top of book %s / %s", book.Asks[0].Price, book.Bids[0].Price)
	}
}

func TestFetchOrderBookEmptySidesAreNotAnError(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"order_book":{"asks":[],"bids":[["1","1"]]}}`))
	})
	book, err := a.FetchOrderBook(context.Background(), "eth-clp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(book.Asks) != 0 || len(book.Bids) != 1 {
		t.Fatalf("unexpected book %+v", book)
	}
}

func TestFetchOrderBookFailures(t *testing.T) {
	tests := []struct {
		name string
		h    http.HandlerFunc
	}{
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not found","code":"not_found"}`))
		}},
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"order_book":`)) }},
		{"missing order_book", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{}`)) }},
		{"missing bids", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"order_book":{"asks":[["1","1"]]}}`))
		}},
		{"bad level", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"order_book":{"asks":[["x","1"]],"bids":[]}}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(t, tt.h)
			_, err := a.FetchOrderBook(context.Background(), "btc-clp")
			if !errors.Is(err, common.ErrUpstreamUnavailable) {
				t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
			}
		})
	}
}

func TestFetchOrderBookTimeout(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := a.FetchOrderBook(ctx, "btc-clp"); !errors.Is(err, common.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable on timeout, got %v", err)
	}
}

func TestFetchAllMarkets(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/markets" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"markets":[
			{"id":"BTC-CLP","name":"btc-clp","base_currency":"BTC","quote_currency":"CLP","minimum_order_amount":["0.001","BTC"]},
			{"id":"ETH-BTC","name":"eth-btc","base_currency":"ETH","quote_currency":"BTC"}]}`))
	})
	markets, err := a.FetchAllMarkets(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(markets) != 2 || markets[0].ID != "BTC-CLP" || markets[1].QuoteCurrency != "BTC" {
		t.Fatalf("unexpected markets %+v", markets)
	}
}

func TestFetchAllMarketsFailure(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) })
	_, err := a.FetchAllMarkets(context.Background())
	if !errors.Is(err, common.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if err.Error() == "" {
		t.Fatalf("expected a readable reason")
	}
}
