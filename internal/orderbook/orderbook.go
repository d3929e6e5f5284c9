package orderbook

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Level is one [price, amount] entry of a book side.
type Level struct {
	Price  decimal.Decimal
	Amount decimal.Decimal
}

// UnmarshalJSON accepts the upstream pair form, with either quoted or bare numbers.
func (l *Level) UnmarshalJSON(b []byte) error {
	var pair []decimal.Decimal
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("price level: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("price level: want [price, amount], got %d values", len(pair))
	}
	l.Price, l.Amount = pair[0], pair[1]
	return nil
}

func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{l.Price.String(), l.Amount.String()})
}

// Book is a point-in-time order book as delivered upstream.
// Asks are expected ascending and bids descending; the order is not checked.
type Book struct {
	Asks []Level `json:"asks"`
	Bids []Level `json:"bids"`
}

// BestAsk returns the first ask level.
func (b Book) BestAsk() (Level, bool) {
	if len(b.Asks) == 0 {
		return Level{}, false
	}
	return b.Asks[0], true
}

// BestBid returns the first bid level.
func (b Book) BestBid() (Level, bool) {
	if len(b.Bids) == 0 {
		return Level{}, false
	}
	return b.Bids[0], true
}
