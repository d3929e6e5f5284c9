package spread

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"spreadwatch/internal/exchange/common"
	"spreadwatch/internal/infra/log"
	"spreadwatch/internal/infra/metrics"
	"spreadwatch/internal/orderbook"
)

// Service derives spreads from upstream order books and owns the alert slot.
type Service struct {
	client      common.MarketDataClient
	logger      log.Logger
	concurrency int
	alert       alertSlot
}

// New returns a Service with an unset alert. concurrency bounds the parallel
// per-market lookups of GetAllSpreads; values below 1 mean sequential.
func New(client common.MarketDataClient, logger log.Logger, concurrency int) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{client: client, logger: logger, concurrency: concurrency}
}

// ComputeSpread returns best ask minus best bid. The first level of each side
// is taken as the best price exactly as delivered upstream.
func ComputeSpread(book orderbook.Book) (decimal.Decimal, error) {
	ask, okAsk := book.BestAsk()
	bid, okBid := book.BestBid()
	if !okAsk || !okBid {
		return decimal.Zero, ErrUnavailable
	}
	return ask.Price.Sub(bid.Price), nil
}

// GetSpread fetches the book for marketID and computes its spread.
func (s *Service) GetSpread(ctx context.Context, marketID string) (decimal.Decimal, error) {
	book, err := s.client.FetchOrderBook(ctx, marketID)
	if err != nil {
		metrics.SpreadsUnavailableTotal.Inc()
		return decimal.Zero, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	sp, err := ComputeSpread(book)
	if err != nil {
		metrics.SpreadsUnavailableTotal.Inc()
		return decimal.Zero, fmt.Errorf("market %s: %w", marketID, err)
	}
	metrics.SpreadsComputedTotal.Inc()
	metrics.LastSpread.WithLabelValues(marketID).Set(sp.InexactFloat64())
	return sp, nil
}

// GetAllSpreads returns the spread of every listed market that has one.
// Markets without a spread are left out; only a failed listing is an error.
func (s *Service) GetAllSpreads(ctx context.Context) (map[string]decimal.Decimal, error) {
	markets, err := s.client.FetchAllMarkets(ctx)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	out := make(map[string]decimal.Decimal, len(markets))
	g := &errgroup.Group{}
	g.SetLimit(s.concurrency)
	for _, m := range markets {
		g.Go(func() error {
			sp, err := s.GetSpread(ctx, m.ID)
			if err != nil {
				s.logger.Debug().Err(err).Str("market", m.ID).Msg("spread omitted")
				return nil
			}
			mu.Lock()
			out[m.ID] = sp
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SetAlert records the current spread of marketID as the alert, replacing any
// previous alert. The slot is left untouched on failure.
func (s *Service) SetAlert(ctx context.Context, marketID string) (string, error) {
	if marketID == "" {
		return "", ErrValidation
	}
	sp, err := s.GetSpread(ctx, marketID)
	if err != nil {
		return "", err
	}
	s.alert.store(marketID, sp)
	metrics.AlertsSetTotal.Inc()
	s.logger.Info().Str("market", marketID).Str("spread", sp.String()).Msg("alert spread set")
	return marketID, nil
}

// PollAlert compares the live spread of the alert market with the recorded one.
func (s *Service) PollAlert(ctx context.Context) (AlertStatus, error) {
	snap, ok := s.alert.load()
	if !ok {
		return AlertStatus{}, ErrNoAlert
	}
	current, err := s.GetSpread(ctx, snap.MarketID)
	if err != nil {
		return AlertStatus{}, err
	}
	st := compareSpreads(current, snap.Spread)
	metrics.AlertPollsTotal.WithLabelValues(string(st)).Inc()
	return AlertStatus{
		MarketID:      snap.MarketID,
		CurrentSpread: current,
		AlertSpread:   snap.Spread,
		Status:        st,
	}, nil
}

// Alert returns the recorded alert, if any.
func (s *Service) Alert() (AlertSnapshot, bool) { return s.alert.load() }

// ListMarkets passes the upstream market list through.
func (s *Service) ListMarkets(ctx context.Context) ([]common.Market, error) {
	return s.client.FetchAllMarkets(ctx)
}
