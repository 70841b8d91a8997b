package exposition

import (
	"fmt"
	"io"
)

// Strategy is the serialization form chosen for a metric value.
type Strategy int

const (
	StrategyScalar Strategy = iota
	StrategyLabeled
	StrategyStructKeyed
	StrategyHistogram
)

func (s Strategy) String() string {
	switch s {
	case StrategyScalar:
		return "scalar"
	case StrategyLabeled:
		return "labeled"
	case StrategyStructKeyed:
		return "struct_keyed"
	case StrategyHistogram:
		return "histogram"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// HistogramRenderer is implemented by histogram-shaped values.
type HistogramRenderer interface {
	RenderHistogram(w io.Writer, meta Metadata) error
}

// Classify picks the strategy for v. Histograms win over collections,
// struct-keyed collections win over single-label ones, and anything else is
// rendered as a scalar.
func Classify(v any) Strategy {
	if _, ok := v.(HistogramRenderer); ok {
		return StrategyHistogram
	}
	if c, ok := AsCollection(v); ok {
		if isStructKey(c.KeyType()) {
			return StrategyStructKeyed
		}
		return StrategyLabeled
	}
	return StrategyScalar
}

// Render classifies v and writes it. labelName is only consulted for
// single-label collections.
func Render(w io.Writer, v any, meta Metadata, labelName string) error {
	return renderAs(w, Classify(v), v, meta, labelName)
}

func renderAs(w io.Writer, s Strategy, v any, meta Metadata, labelName string) error {
	switch s {
	case StrategyHistogram:
		h, ok := v.(HistogramRenderer)
		if !ok {
			return fmt.Errorf("%s: expected a histogram, got %T: %w", meta.Name, v, ErrKindMismatch)
		}
		return h.RenderHistogram(w, meta)
	case StrategyStructKeyed:
		return RenderStructKeyed(w, meta, v)
	case StrategyLabeled:
		return RenderLabeled(w, meta, labelName, v)
	default:
		return RenderScalar(w, meta, v)
	}
}
