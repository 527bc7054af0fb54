// Package burn maintains the network-wide burn history that drives dynamic
// interest-rate scaling. The tracker is a pure state-transition layer: callers
// supply every timestamp explicitly and the integration layer invokes
// RecordBurn for each successful burn, so replaying the same sequence of
// operations always reproduces identical state.
package burn

import (
	"errors"
	"math/big"

	"emberchain/native/numeric"
)

const (
	// SecondsPerDay converts the horizon constants below.
	SecondsPerDay int64 = 24 * 60 * 60
	// Horizon24h bounds the short rolling window.
	Horizon24h = SecondsPerDay
	// Horizon7d bounds the medium rolling window.
	Horizon7d = 7 * SecondsPerDay
	// Horizon30d bounds the long rolling window and the retention cut-off.
	Horizon30d = 30 * SecondsPerDay
)

// ErrMathOverflow is the single hard failure the tracker exposes: the lifetime
// burn total would exceed the 128-bit amount domain. Everything else saturates
// silently so burn events are never dropped.
var ErrMathOverflow = errors.New("burn history: lifetime total overflow")

// Window records one burn event at full granularity. Entries are kept
// insertion-ordered and pruned once they age past the 30-day horizon, which
// bounds the list by time rather than event count.
type Window struct {
	Start  int64    `json:"start"`
	Amount *big.Int `json:"amount"`
}

// History is the global burn aggregate. The three rolling totals are caches:
// they are recomputed from the retained windows on every update and are always
// reproducible by re-summing the window list against the matching horizon.
type History struct {
	TotalBurned *big.Int `json:"totalBurned"`
	Last24h     *big.Int `json:"last24h"`
	Last7d      *big.Int `json:"last7d"`
	Last30d     *big.Int `json:"last30d"`
	Windows     []Window `json:"windows"`
	LastUpdate  int64    `json:"lastUpdate"`
}

// NewHistory returns an empty history with all totals zeroed.
func NewHistory() *History {
	return &History{
		TotalBurned: big.NewInt(0),
		Last24h:     big.NewInt(0),
		Last7d:      big.NewInt(0),
		Last30d:     big.NewInt(0),
	}
}

// Clone produces a deep copy so read paths can serve snapshots without
// aliasing the writer's state.
func (h *History) Clone() *History {
	if h == nil {
		return NewHistory()
	}
	clone := &History{
		TotalBurned: numeric.Clamp(h.TotalBurned),
		Last24h:     numeric.Clamp(h.Last24h),
		Last7d:      numeric.Clamp(h.Last7d),
		Last30d:     numeric.Clamp(h.Last30d),
		LastUpdate:  h.LastUpdate,
	}
	if len(h.Windows) > 0 {
		clone.Windows = make([]Window, len(h.Windows))
		for i, w := range h.Windows {
			clone.Windows[i] = Window{Start: w.Start, Amount: numeric.Clamp(w.Amount)}
		}
	}
	return clone
}

// RecordBurn folds a burn event into the history: the event is appended as a
// new window, windows older than 30 days are pruned, the rolling totals are
// recomputed from the retained windows, and the lifetime total is advanced.
// Negative or nil amounts are treated as zero.
func RecordBurn(h *History, amount *big.Int, now int64) error {
	if h == nil {
		return nil
	}
	value := numeric.Clamp(amount)
	if numeric.AddWouldOverflow(h.TotalBurned, value) {
		return ErrMathOverflow
	}
	h.Windows = append(h.Windows, Window{Start: now, Amount: value})
	h.prune(now)
	h.recompute(now)
	h.TotalBurned = numeric.SatAdd(h.TotalBurned, value)
	h.LastUpdate = now
	return nil
}

// TimeWeightedBurn blends the rolling windows into a single magnitude:
// 50% of the 24h total, 30% of the 7d total and 20% of the 30d total. The
// windows overlap on purpose; the weighting rewards burns that are both
// recent and sustained rather than partitioning each burn into one bucket.
func TimeWeightedBurn(h *History) *big.Int {
	if h == nil {
		return big.NewInt(0)
	}
	weighted := percentOf(h.Last24h, 50)
	weighted = numeric.SatAdd(weighted, percentOf(h.Last7d, 30))
	return numeric.SatAdd(weighted, percentOf(h.Last30d, 20))
}

func percentOf(v *big.Int, pct uint64) *big.Int {
	product := numeric.SatMul(v, new(big.Int).SetUint64(pct))
	return numeric.Div(product, big.NewInt(100))
}

func (h *History) prune(now int64) {
	cutoff := now - Horizon30d
	retained := h.Windows[:0]
	for _, w := range h.Windows {
		if w.Start >= cutoff {
			retained = append(retained, w)
		}
	}
	h.Windows = retained
}

func (h *History) recompute(now int64) {
	last24h := big.NewInt(0)
	last7d := big.NewInt(0)
	last30d := big.NewInt(0)
	for _, w := range h.Windows {
		age := now - w.Start
		if age < 0 {
			age = 0
		}
		if age <= Horizon24h {
			last24h = numeric.SatAdd(last24h, w.Amount)
		}
		if age <= Horizon7d {
			last7d = numeric.SatAdd(last7d, w.Amount)
		}
		if age <= Horizon30d {
			last30d = numeric.SatAdd(last30d, w.Amount)
		}
	}
	h.Last24h = last24h
	h.Last7d = last7d
	h.Last30d = last30d
}
