package exposition

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jt828/promtext/pkg/observability"
	"github.com/prometheus/common/model"
)

// Field describes one registered metric.
type Field struct {
	Name string
	Help string
	Kind Kind
	// Label names the single label of a collection whose keys are plain values.
	Label string
}

type registration struct {
	meta     Metadata
	label    string
	strategy Strategy
	get      func() any
}

// Set renders registered metrics, in registration order, as one exposition.
// Register during initialization; WriteTo may then be called at any time.
type Set struct {
	prefix string
	log    observability.Logger

	mu     sync.RWMutex
	fields []registration
	names  map[string]struct{}
}

type SetOption func(*Set)

// WithPrefix prepends prefix and an underscore to every metric name.
func WithPrefix(prefix string) SetOption {
	return func(s *Set) {
		s.prefix = prefix
	}
}

func WithLogger(log observability.Logger) SetOption {
	return func(s *Set) {
		if log != nil {
			s.log = log
		}
	}
}

func NewSet(opts ...SetOption) *Set {
	s := &Set{
		log:   observability.NopLogger(),
		names: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a metric whose current value is returned by get. The value's
// shape is classified once, here, and every configuration problem is reported
// before anything is rendered.
func (s *Set) Register(f Field, get func() any) error {
	if get == nil {
		return fmt.Errorf("%s: %w", f.Name, ErrMissingGetter)
	}
	name := f.Name
	if s.prefix != "" {
		name = s.prefix + "_" + f.Name
	}
	if !model.IsValidLegacyMetricName(name) {
		return fmt.Errorf("metric %q: %w", name, ErrInvalidName)
	}
	if f.Help == "" {
		return fmt.Errorf("%s: %w", name, ErrMissingHelp)
	}
	if !f.Kind.Valid() {
		return fmt.Errorf("%s: kind %q: %w", name, f.Kind, ErrUnknownKind)
	}

	v := get()
	strategy := Classify(v)
	if err := checkField(name, f, strategy); err != nil {
		return err
	}
	if strategy == StrategyStructKeyed {
		c, _ := AsCollection(v)
		if err := checkLabelType(c.KeyType(), false); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.names[name]; dup {
		return fmt.Errorf("%s: %w", name, ErrDuplicateMetric)
	}
	s.names[name] = struct{}{}
	s.fields = append(s.fields, registration{
		meta:     Metadata{Name: name, Help: f.Help, Kind: f.Kind},
		label:    f.Label,
		strategy: strategy,
		get:      get,
	})

	s.log.Debug("metric registered",
		observability.String("metric", name),
		observability.String("kind", string(f.Kind)),
		observability.String("strategy", strategy.String()),
	)
	return nil
}

func checkField(name string, f Field, strategy Strategy) error {
	if (strategy == StrategyHistogram) != (f.Kind == KindHistogram) {
		return fmt.Errorf("%s: %s value registered as %s: %w", name, strategy, f.Kind, ErrKindMismatch)
	}
	switch strategy {
	case StrategyHistogram:
		if f.Label != "" {
			return fmt.Errorf("%s: %w", name, ErrLabelOnHistogram)
		}
	case StrategyLabeled:
		if f.Label == "" {
			return fmt.Errorf("%s: %w", name, ErrMissingLabelName)
		}
		if !model.LabelName(f.Label).IsValidLegacy() || f.Label == "le" {
			return fmt.Errorf("label %q of %s: %w", f.Label, name, ErrInvalidName)
		}
	default:
		if f.Label != "" {
			return fmt.Errorf("%s: %s value: %w", name, strategy, ErrUnexpectedLabel)
		}
	}
	return nil
}

// MustRegister is like Register but panics on configuration errors.
func (s *Set) MustRegister(f Field, get func() any) {
	if err := s.Register(f, get); err != nil {
		panic(fmt.Sprintf("exposition: %v", err))
	}
}

func (s *Set) Counter(name, help string, get func() any) error {
	return s.Register(Field{Name: name, Help: help, Kind: KindCounter}, get)
}

func (s *Set) Gauge(name, help string, get func() any) error {
	return s.Register(Field{Name: name, Help: help, Kind: KindGauge}, get)
}

func (s *Set) Histogram(name, help string, get func() any) error {
	return s.Register(Field{Name: name, Help: help, Kind: KindHistogram}, get)
}

func (s *Set) LabeledCounter(name, help, label string, get func() any) error {
	return s.Register(Field{Name: name, Help: help, Kind: KindCounter, Label: label}, get)
}

func (s *Set) LabeledGauge(name, help, label string, get func() any) error {
	return s.Register(Field{Name: name, Help: help, Kind: KindGauge, Label: label}, get)
}

// Len returns the number of registered metrics.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fields)
}

// WriteTo renders every registered metric to w, stopping at the first write
// error. Output already written is left as is.
func (s *Set) WriteTo(w io.Writer) (int64, error) {
	s.mu.RLock()
	fields := s.fields
	s.mu.RUnlock()

	cw := &countingWriter{w: w}
	for _, r := range fields {
		if err := renderAs(cw, r.strategy, r.get(), r.meta, r.label); err != nil {
			s.log.Error("render failed", observability.String("metric", r.meta.Name), observability.Err(err))
			return cw.n, err
		}
	}
	return cw.n, nil
}

func (s *Set) String() string {
	var b strings.Builder
	_, _ = s.WriteTo(&b)
	return b.String()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
