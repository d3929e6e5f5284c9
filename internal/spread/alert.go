package spread

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Status compares a live spread against the recorded alert spread.
type Status string

const (
	StatusWithin Status = "within"
	StatusHigher Status = "higher"
	StatusLower  Status = "lower"
)

// compareSpreads uses exact equality; there is deliberately no tolerance band.
func compareSpreads(current, recorded decimal.Decimal) Status {
	switch current.Cmp(recorded) {
	case 0:
		return StatusWithin
	case 1:
		return StatusHigher
	default:
		return StatusLower
	}
}

// AlertSnapshot is a consistent copy of the alert slot.
type AlertSnapshot struct {
	MarketID string
	Spread   decimal.Decimal
}

// AlertStatus is the outcome of polling the alert against the live market.
type AlertStatus struct {
	MarketID      string
	CurrentSpread decimal.Decimal
	AlertSpread   decimal.Decimal
	Status        Status
}

// alertSlot holds at most one (market, spread) pair. It starts unset and
// every store overwrites the previous pair.
type alertSlot struct {
	mu       sync.RWMutex
	marketID string
	spread   decimal.Decimal
}

func (a *alertSlot) store(marketID string, s decimal.Decimal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.marketID = marketID
	a.spread = s
}

func (a *alertSlot) load() (AlertSnapshot, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.marketID == "" {
		return AlertSnapshot{}, false
	}
	return AlertSnapshot{MarketID: a.marketID, Spread: a.spread}, true
}
