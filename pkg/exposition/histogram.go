package exposition

import (
	"fmt"
	"io"
	"reflect"
	"slices"
	"strconv"
)

// HistogramData is the aggregate kept for one label set. Counts holds the
// per-bucket, non-cumulative counts.
type HistogramData struct {
	Counts []uint64
	Count  uint64
	Sum    float64
}

// Histogram counts observations into a fixed set of buckets, per label set.
//
// A Histogram does no locking of its own. Callers that observe from several
// goroutines, or render while observing, must serialize those calls.
type Histogram[L comparable] struct {
	buckets *Buckets
	data    map[L]*HistogramData
	order   []L
}

// NewHistogram creates an empty histogram over a validated bucket schema.
// L must be a LabelSet or a struct; NoLabels gives an unlabeled histogram.
// It panics when L has another shape or b is nil, both being programming errors.
func NewHistogram[L comparable](b *Buckets) *Histogram[L] {
	if b == nil {
		panic("exposition: nil buckets")
	}
	mustLabelType[L]()
	return &Histogram[L]{
		buckets: b,
		data:    make(map[L]*HistogramData),
	}
}

// Observe records value for label. The first bucket whose boundary is >= value
// is incremented; values above every boundary only count towards +Inf.
func (h *Histogram[L]) Observe(label L, value float64) {
	d, ok := h.data[label]
	if !ok {
		d = &HistogramData{Counts: make([]uint64, h.buckets.Len())}
		h.data[label] = d
		h.order = append(h.order, label)
	}
	d.Sum += value
	d.Count++
	if i := h.buckets.index(value); i >= 0 {
		d.Counts[i]++
	}
}

// Data returns a copy of the aggregate for label.
func (h *Histogram[L]) Data(label L) (HistogramData, bool) {
	d, ok := h.data[label]
	if !ok {
		return HistogramData{}, false
	}
	return HistogramData{Counts: slices.Clone(d.Counts), Count: d.Count, Sum: d.Sum}, true
}

// Labels returns the observed label sets in first-observation order.
func (h *Histogram[L]) Labels() []L {
	return slices.Clone(h.order)
}

func (h *Histogram[L]) Buckets() *Buckets {
	return h.buckets
}

func (h *Histogram[L]) Len() int {
	return len(h.order)
}

// RenderHistogram writes the _bucket, _sum and _count series of every label
// set. Bucket counts are made cumulative here; they are not stored that way.
func (h *Histogram[L]) RenderHistogram(w io.Writer, meta Metadata) error {
	meta.Kind = KindHistogram
	lw := newLineWriter(w)
	lw.header(meta)
	if h == nil {
		return lw.result(meta)
	}
	for _, label := range h.order {
		if lw.err != nil {
			break
		}
		d := h.data[label]
		labels := labelsOf(label)
		var cumulative uint64
		for i, bound := range h.buckets.bounds {
			cumulative += d.Counts[i]
			lw.bucket(meta.Name, labels, formatFloat(bound), cumulative)
		}
		lw.bucket(meta.Name, labels, "+Inf", d.Count)
		lw.sample(meta.Name, "_sum", labels, formatFloat(d.Sum))
		lw.sample(meta.Name, "_count", labels, strconv.FormatUint(d.Count, 10))
	}
	return lw.result(meta)
}

func mustLabelType[L comparable]() {
	t := reflect.TypeFor[L]()
	if !isLabelShape(t) {
		panic(fmt.Sprintf("exposition: %v: %v", t, ErrLabelShape))
	}
	if err := checkLabelType(t, true); err != nil {
		panic(fmt.Sprintf("exposition: %v", err))
	}
}

// HistogramDef declares a histogram type: a label shape plus a bucket schema
// validated once, shared by every instance made from it.
type HistogramDef[L comparable] struct {
	buckets *Buckets
}

// DefineHistogram validates bounds and the label type once and panics if
// either is invalid. Intended for package-level declarations:
//
//	var requestLatency = exposition.DefineHistogram[RouteLabels](0.1, 0.5, 1, 5)
func DefineHistogram[L comparable](bounds ...float64) *HistogramDef[L] {
	b := MustBuckets(bounds...)
	mustLabelType[L]()
	return &HistogramDef[L]{buckets: b}
}

func (d *HistogramDef[L]) New() *Histogram[L] {
	return &Histogram[L]{
		buckets: d.buckets,
		data:    make(map[L]*HistogramData),
	}
}

func (d *HistogramDef[L]) Buckets() *Buckets {
	return d.buckets
}
