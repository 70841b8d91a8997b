package bootstrap

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/jt828/promtext/pkg/observability"
	"github.com/shopspring/decimal"
)

var (
	workloadRoutes  = []string{"/v1/transfer", "/v1/deposit", "/v1/withdraw"}
	workloadMethods = []string{"Transfer", "Deposit", "Withdraw"}
	workloadTokens  = []string{"ETH", "SOL", "USDC"}
)

// Workload feeds LedgerMetrics with simulated transfers so the exporter has
// something to serve.
type Workload struct {
	metrics *LedgerMetrics
	period  time.Duration
	rng     *rand.Rand
	log     observability.Logger
}

func NewWorkload(metrics *LedgerMetrics, period time.Duration, seed uint64, log observability.Logger) *Workload {
	return &Workload{
		metrics: metrics,
		period:  period,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		log:     log,
	}
}

// Next builds one simulated transfer.
func (w *Workload) Next() Transfer {
	i := w.rng.IntN(len(workloadRoutes))
	// Two decimal places, 0.01 to 500.00.
	amount := decimal.New(w.rng.Int64N(50000)+1, -2)
	if workloadMethods[i] == "Withdraw" {
		amount = amount.Neg()
	}
	return Transfer{
		Route:   workloadRoutes[i],
		Method:  workloadMethods[i],
		Token:   workloadTokens[w.rng.IntN(len(workloadTokens))],
		Amount:  amount,
		Latency: time.Duration(w.rng.ExpFloat64() * float64(20*time.Millisecond)),
		Failed:  w.rng.IntN(20) == 0,
	}
}

// Run records one transfer per period until ctx is done. A zero period
// disables the workload.
func (w *Workload) Run(ctx context.Context) {
	if w.period <= 0 {
		return
	}
	w.metrics.SetReady(true)
	defer w.metrics.SetReady(false)

	ticker := time.NewTicker(w.period)
	defer ticker.Stop()

	w.log.Info("workload started", observability.Duration("period", w.period))
	for {
		select {
		case <-ctx.Done():
			w.log.Info("workload stopped")
			return
		case <-ticker.C:
			done := w.metrics.Begin()
			done(w.Next())
		}
	}
}
