package buda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"spreadwatch/internal/config"
	"spreadwatch/internal/exchange/common"
	"spreadwatch/internal/infra/log"
	"spreadwatch/internal/infra/metrics"
	"spreadwatch/internal/infra/network"
	"spreadwatch/internal/orderbook"
)

const maxBodyBytes = 8 << 20

// Adapter talks to the public Buda.com REST API (v2).
type Adapter struct {
	baseURL string
	http    *http.Client
	logger  log.Logger
}

func New(cfg config.Config, logger log.Logger) *Adapter {
	timeout := time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second
	return &Adapter{
		baseURL: cfg.Upstream.BaseURL,
		http:    network.NewHTTPClient(timeout),
		logger:  logger.With().Str("exchange", "buda").Logger(),
	}
}

func (a *Adapter) Name() string { return "buda" }

// FetchOrderBook returns the current book for marketID. A response without
// both order_book.asks and order_book.bids is treated as unavailable.
func (a *Adapter) FetchOrderBook(ctx context.Context, marketID string) (orderbook.Book, error) {
	var body struct {
		OrderBook *struct {
			Asks *[]orderbook.Level `json:"asks"`
			Bids *[]orderbook.Level `json:"bids"`
		} `json:"order_book"`
	}
	path := "/markets/" + url.PathEscape(marketID) + "/order_book"
	if err := a.get(ctx, "order_book", path, &body); err != nil {
		return orderbook.Book{}, fmt.Errorf("order book %s: %w", marketID, err)
	}
	if body.OrderBook == nil || body.OrderBook.Asks == nil || body.OrderBook.Bids == nil {
		return orderbook.Book{}, fmt.Errorf("order book %s: %w: missing asks or bids", marketID, common.ErrUpstreamUnavailable)
	}
	return orderbook.Book{Asks: *body.OrderBook.Asks, Bids: *body.OrderBook.Bids}, nil
}

// FetchAllMarkets returns every market listed upstream. Pagination is not followed.
func (a *Adapter) FetchAllMarkets(ctx context.Context) ([]common.Market, error) {
	var body struct {
		Markets *[]common.Market `json:"markets"`
	}
	if err := a.get(ctx, "markets", "/markets", &body); err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}
	if body.Markets == nil {
		return nil, fmt.Errorf("list markets: %w: missing markets field", common.ErrUpstreamUnavailable)
	}
	return *body.Markets, nil
}

func (a *Adapter) get(ctx context.Context, endpoint, path string, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.UpstreamLatencyMs.WithLabelValues(endpoint).Observe(float64(time.Since(start).Milliseconds()))
		outcome := "ok"
		if err != nil {
			outcome = "error"
			a.logger.Debug().Err(err).Str("endpoint", endpoint).Str("path", path).Msg("upstream request failed")
		}
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrUpstreamUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return fmt.Errorf("%w: status %d", common.ErrUpstreamUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %w", common.ErrUpstreamUnavailable, err)
	}
	return nil
}
