package common

import (
	"context"
	"errors"

	"spreadwatch/internal/orderbook"
)

// ErrUpstreamUnavailable wraps every failure talking to the exchange:
// transport errors, non-2xx statuses and undecodable bodies.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// Market is the subset of upstream market metadata the service uses.
type Market struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	BaseCurrency  string `json:"base_currency"`
	QuoteCurrency string `json:"quote_currency"`
}

// MarketDataClient reads public market data from an exchange.
// Implementations hold no state between calls and never retry.
type MarketDataClient interface {
	FetchOrderBook(ctx context.Context, marketID string) (orderbook.Book, error)
	FetchAllMarkets(ctx context.Context) ([]Market, error)
}
