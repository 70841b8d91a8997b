package exposition

import (
	"fmt"
	"io"
	"strconv"
)

// lineWriter assembles one exposition line at a time and hands it to the
// sink in a single Write. After the first failed write every later line is
// dropped and the error is kept.
type lineWriter struct {
	w   io.Writer
	buf []byte
	err error
}

func newLineWriter(w io.Writer) *lineWriter {
	return &lineWriter{w: w, buf: make([]byte, 0, 128)}
}

func (lw *lineWriter) flush() {
	if lw.err == nil {
		_, lw.err = lw.w.Write(lw.buf)
	}
	lw.buf = lw.buf[:0]
}

func (lw *lineWriter) header(meta Metadata) {
	lw.buf = append(lw.buf, "# HELP "...)
	lw.buf = append(lw.buf, meta.Name...)
	lw.buf = append(lw.buf, ' ')
	lw.buf = append(lw.buf, escapeHelp(meta.Help)...)
	lw.buf = append(lw.buf, '\n')
	lw.flush()

	lw.buf = append(lw.buf, "# TYPE "...)
	lw.buf = append(lw.buf, meta.Name...)
	lw.buf = append(lw.buf, ' ')
	lw.buf = append(lw.buf, string(meta.Kind)...)
	lw.buf = append(lw.buf, '\n')
	lw.flush()
}

func (lw *lineWriter) appendLabels(labels []Label) {
	for i, l := range labels {
		if i > 0 {
			lw.buf = append(lw.buf, ',')
		}
		lw.appendLabel(l.Key, l.Value)
	}
}

func (lw *lineWriter) appendLabel(key, value string) {
	lw.buf = append(lw.buf, key...)
	lw.buf = append(lw.buf, '=', '"')
	lw.buf = append(lw.buf, EscapeLabelValue(value)...)
	lw.buf = append(lw.buf, '"')
}

// sample writes `<name><suffix>{<labels>} <value>`.
func (lw *lineWriter) sample(name, suffix string, labels []Label, value string) {
	lw.buf = append(lw.buf, name...)
	lw.buf = append(lw.buf, suffix...)
	lw.buf = append(lw.buf, '{')
	lw.appendLabels(labels)
	lw.buf = append(lw.buf, '}', ' ')
	lw.buf = append(lw.buf, value...)
	lw.buf = append(lw.buf, '\n')
	lw.flush()
}

// bucket writes `<name>_bucket{<labels>,le="<le>"} <count>`.
func (lw *lineWriter) bucket(name string, labels []Label, le string, count uint64) {
	lw.buf = append(lw.buf, name...)
	lw.buf = append(lw.buf, "_bucket{"...)
	lw.appendLabels(labels)
	if len(labels) > 0 {
		lw.buf = append(lw.buf, ',')
	}
	lw.appendLabel("le", le)
	lw.buf = append(lw.buf, '}', ' ')
	lw.buf = strconv.AppendUint(lw.buf, count, 10)
	lw.buf = append(lw.buf, '\n')
	lw.flush()
}

func (lw *lineWriter) result(meta Metadata) error {
	if lw.err != nil {
		return fmt.Errorf("render %s: %w", meta.Name, lw.err)
	}
	return nil
}

// RenderScalar writes a metric with a single unlabeled sample.
func RenderScalar(w io.Writer, meta Metadata, v any) error {
	lw := newLineWriter(w)
	lw.header(meta)
	lw.buf = append(lw.buf, meta.Name...)
	lw.buf = append(lw.buf, ' ')
	lw.buf = append(lw.buf, FormatValue(v)...)
	lw.buf = append(lw.buf, '\n')
	lw.flush()
	return lw.result(meta)
}

// RenderLabeled writes one sample per key/value pair of collection, using the
// key's text as the value of labelName. Samples follow the collection's own
// iteration order.
func RenderLabeled(w io.Writer, meta Metadata, labelName string, collection any) error {
	if labelName == "" {
		return fmt.Errorf("%s: %w", meta.Name, ErrMissingLabelName)
	}
	c, ok := AsCollection(collection)
	if !ok {
		return fmt.Errorf("%s: %w", meta.Name, ErrNotCollection)
	}
	lw := newLineWriter(w)
	lw.header(meta)
	_ = c.EachPair(func(key, value any) error {
		lw.buf = append(lw.buf, meta.Name...)
		lw.buf = append(lw.buf, '{')
		lw.appendLabel(labelName, formatLabelValue(key))
		lw.buf = append(lw.buf, '}', ' ')
		lw.buf = append(lw.buf, FormatValue(value)...)
		lw.buf = append(lw.buf, '\n')
		lw.flush()
		return lw.err
	})
	return lw.result(meta)
}

// RenderStructKeyed writes one sample per key/value pair of collection, where
// each key expands into its own label set.
func RenderStructKeyed(w io.Writer, meta Metadata, collection any) error {
	c, ok := AsCollection(collection)
	if !ok {
		return fmt.Errorf("%s: %w", meta.Name, ErrNotCollection)
	}
	lw := newLineWriter(w)
	lw.header(meta)
	_ = c.EachPair(func(key, value any) error {
		lw.sample(meta.Name, "", labelsOf(key), FormatValue(value))
		return lw.err
	})
	return lw.result(meta)
}
