package metrics

import (
	"math"
	"math/big"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type StakingMetrics struct {
	positionsOpened    *prometheus.CounterVec
	positionsWithdrawn *prometheus.CounterVec
	positionsCancelled *prometheus.CounterVec
	rewardsAccrued     *prometheus.CounterVec
	penaltiesCharged   *prometheus.CounterVec
	burnsRecorded      prometheus.Counter
	burnTotal          prometheus.Gauge
	rateLevel          *prometheus.GaugeVec
}

var (
	stakingOnce     sync.Once
	stakingRegistry *StakingMetrics
)

func Staking() *StakingMetrics {
	stakingOnce.Do(func() {
		stakingRegistry = &StakingMetrics{
			positionsOpened: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "staking_positions_opened_total",
				Help: "Count of opened staking positions by pool.",
			}, []string{"pool"}),
			positionsWithdrawn: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "staking_positions_withdrawn_total",
				Help: "Count of withdrawn staking positions by pool and timing.",
			}, []string{"pool", "timing"}),
			positionsCancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "staking_positions_cancelled_total",
				Help: "Count of cancelled staking positions by pool.",
			}, []string{"pool"}),
			rewardsAccrued: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "staking_rewards_accrued_base_units",
				Help: "Cumulative accrued rewards in base units by pool.",
			}, []string{"pool"}),
			penaltiesCharged: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "staking_penalties_charged_base_units",
				Help: "Cumulative penalties charged in base units by pool and kind.",
			}, []string{"pool", "kind"}),
			burnsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "burn_records_total",
				Help: "Count of burn records folded into the rolling history.",
			}),
			burnTotal: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "burn_lifetime_base_units",
				Help: "Lifetime burned amount in base units.",
			}),
			rateLevel: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "rates_current_level",
				Help: "Current dynamic rate level by pool.",
			}, []string{"pool"}),
		}
		prometheus.MustRegister(
			stakingRegistry.positionsOpened,
			stakingRegistry.positionsWithdrawn,
			stakingRegistry.positionsCancelled,
			stakingRegistry.rewardsAccrued,
			stakingRegistry.penaltiesCharged,
			stakingRegistry.burnsRecorded,
			stakingRegistry.burnTotal,
			stakingRegistry.rateLevel,
		)
	})
	return stakingRegistry
}

func (m *StakingMetrics) ObservePositionOpened(pool string) {
	if m == nil {
		return
	}
	m.positionsOpened.WithLabelValues(labelPool(pool)).Inc()
}

func (m *StakingMetrics) ObservePositionWithdrawn(pool string, early bool) {
	if m == nil {
		return
	}
	timing := "on_schedule"
	if early {
		timing = "early"
	}
	m.positionsWithdrawn.WithLabelValues(labelPool(pool), timing).Inc()
}

func (m *StakingMetrics) ObservePositionCancelled(pool string) {
	if m == nil {
		return
	}
	m.positionsCancelled.WithLabelValues(labelPool(pool)).Inc()
}

func (m *StakingMetrics) ObserveRewardsAccrued(pool string, delta *big.Int) {
	if m == nil {
		return
	}
	m.rewardsAccrued.WithLabelValues(labelPool(pool)).Add(bigToFloat(delta))
}

func (m *StakingMetrics) ObservePenalty(pool, kind string, amount *big.Int) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.penaltiesCharged.WithLabelValues(labelPool(pool), kind).Add(bigToFloat(amount))
}

func (m *StakingMetrics) ObserveBurnRecorded(lifetime *big.Int) {
	if m == nil {
		return
	}
	m.burnsRecorded.Inc()
	m.burnTotal.Set(bigToFloat(lifetime))
}

func (m *StakingMetrics) SetRateLevel(pool string, level uint32) {
	if m == nil {
		return
	}
	m.rateLevel.WithLabelValues(labelPool(pool)).Set(float64(level))
}

func labelPool(pool string) string {
	if pool == "" {
		return "unknown"
	}
	return pool
}

func bigToFloat(value *big.Int) float64 {
	if value == nil {
		return 0
	}
	floatVal, _ := new(big.Float).SetInt(value).Float64()
	if math.IsNaN(floatVal) || math.IsInf(floatVal, 0) {
		return 0
	}
	return floatVal
}
