package bootstrap

import (
	"cmp"
	"io"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jt828/promtext/pkg/exposition"
	"github.com/jt828/promtext/pkg/observability"
	"github.com/shopspring/decimal"
)

type TransferKey struct {
	Method string
	Status string
}

type RouteLabels struct {
	Route string `label:"route"`
}

var transferLatency = exposition.DefineHistogram[RouteLabels](exposition.ExponentialBucketBounds(0.001, 2.5, 8)...)

type Transfer struct {
	Route   string
	Method  string
	Token   string
	Amount  decimal.Decimal
	Latency time.Duration
	Failed  bool
}

// LedgerMetrics is the demo metric set served by the exporter: a plain
// counter, balances keyed by token, calls keyed by (method, status) and a
// latency histogram keyed by route.
type LedgerMetrics struct {
	transfers atomic.Uint64
	inFlight  atomic.Int64
	ready     atomic.Bool

	mu       sync.Mutex
	balances map[string]decimal.Decimal
	calls    map[TransferKey]uint64
	latency  *exposition.Histogram[RouteLabels]

	set *exposition.Set
}

func NewLedgerMetrics(prefix string, log observability.Logger) (*LedgerMetrics, error) {
	m := &LedgerMetrics{
		balances: make(map[string]decimal.Decimal),
		calls:    make(map[TransferKey]uint64),
		latency:  transferLatency.New(),
		set:      exposition.NewSet(exposition.WithPrefix(prefix), exposition.WithLogger(log)),
	}

	fields := []struct {
		field exposition.Field
		get   func() any
	}{
		{
			field: exposition.Field{Name: "transfers_total", Help: "Transfers processed", Kind: exposition.KindCounter},
			get:   func() any { return &m.transfers },
		},
		{
			field: exposition.Field{Name: "transfers_in_flight", Help: "Transfers currently being applied", Kind: exposition.KindGauge},
			get:   func() any { return &m.inFlight },
		},
		{
			field: exposition.Field{Name: "ready", Help: "Whether the ledger accepts transfers", Kind: exposition.KindGauge},
			get:   func() any { return &m.ready },
		},
		{
			field: exposition.Field{Name: "balance", Help: "Ledger balance by token", Kind: exposition.KindGauge, Label: "token"},
			get:   m.balanceSnapshot,
		},
		{
			field: exposition.Field{Name: "calls_total", Help: "Ledger calls by method and status", Kind: exposition.KindCounter},
			get:   m.callSnapshot,
		},
		{
			field: exposition.Field{Name: "transfer_latency_seconds", Help: "Transfer latency by route", Kind: exposition.KindHistogram},
			get:   func() any { return guardedHistogram{mu: &m.mu, h: m.latency} },
		},
	}
	for _, f := range fields {
		if err := m.set.Register(f.field, f.get); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *LedgerMetrics) Set() *exposition.Set {
	return m.set
}

// LedgerSetName addresses the ledger set over gRPC. It is independent of the
// metric name prefix, which may be empty.
const LedgerSetName = "ledger"

// Sources lists the renderable sets by the name clients request them under.
func (m *LedgerMetrics) Sources() map[string]io.WriterTo {
	return map[string]io.WriterTo{LedgerSetName: m.set}
}

func (m *LedgerMetrics) SetReady(ready bool) {
	m.ready.Store(ready)
}

// Begin marks a transfer as in flight; the returned func records it.
func (m *LedgerMetrics) Begin() func(Transfer) {
	m.inFlight.Add(1)
	return func(t Transfer) {
		m.inFlight.Add(-1)
		m.Record(t)
	}
}

func (m *LedgerMetrics) Record(t Transfer) {
	m.transfers.Add(1)

	status := "ok"
	if t.Failed {
		status = "failed"
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[TransferKey{Method: t.Method, Status: status}]++
	if !t.Failed {
		m.balances[t.Token] = m.balances[t.Token].Add(t.Amount)
	}
	m.latency.Observe(RouteLabels{Route: t.Route}, t.Latency.Seconds())
}

// balanceSnapshot copies the balances in token order.
func (m *LedgerMetrics) balanceSnapshot() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]exposition.Pair[string, decimal.Decimal], 0, len(m.balances))
	for _, token := range slices.Sorted(maps.Keys(m.balances)) {
		out = append(out, exposition.KV(token, m.balances[token]))
	}
	return out
}

func (m *LedgerMetrics) callSnapshot() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := slices.SortedFunc(maps.Keys(m.calls), func(a, b TransferKey) int {
		return cmp.Or(cmp.Compare(a.Method, b.Method), cmp.Compare(a.Status, b.Status))
	})
	out := make([]exposition.Pair[TransferKey, uint64], 0, len(keys))
	for _, k := range keys {
		out = append(out, exposition.KV(k, m.calls[k]))
	}
	return out
}

// guardedHistogram renders the latency histogram under the metrics lock,
// which Record also holds while observing.
type guardedHistogram struct {
	mu *sync.Mutex
	h  *exposition.Histogram[RouteLabels]
}

func (g guardedHistogram) RenderHistogram(w io.Writer, meta exposition.Metadata) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.h.RenderHistogram(w, meta)
}
