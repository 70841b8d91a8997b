package exposition_test

import (
	"bytes"
	"math"
	"sync/atomic"
	"testing"

	"github.com/jt828/promtext/pkg/exposition"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenStatus int

func (s tokenStatus) String() string {
	if s == 0 {
		return "active"
	}
	return "frozen"
}

type chainKey struct {
	Chain   string
	TokenID uint32
	Venue   string `label:"-"`
	secret  string
}

type quoted struct{ s string }

func (q quoted) String() string { return q.s }

type outcomeKey struct {
	Region  string
	Success bool
}

type shardLabels struct{ shard int }

func (s shardLabels) Labels() []exposition.Label {
	return []exposition.Label{{Key: "shard", Value: exposition.FormatValue(s.shard)}}
}

func TestRenderScalar(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "int", value: 42, want: "42"},
		{name: "uint64", value: uint64(math.MaxUint64), want: "18446744073709551615"},
		{name: "negative int", value: int16(-7), want: "-7"},
		{name: "float", value: 0.25, want: "0.25"},
		{name: "whole float", value: 1.0, want: "1"},
		{name: "float32", value: float32(0.1), want: "0.1"},
		{name: "NaN", value: math.NaN(), want: "NaN"},
		{name: "positive infinity", value: math.Inf(1), want: "+Inf"},
		{name: "negative infinity", value: math.Inf(-1), want: "-Inf"},
		{name: "true", value: true, want: "1"},
		{name: "false", value: false, want: "0"},
		{name: "decimal", value: decimal.RequireFromString("1234.5600"), want: "1234.56"},
		{name: "stringer", value: tokenStatus(1), want: "frozen"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			meta := exposition.Metadata{Name: "value", Help: "A value", Kind: exposition.KindGauge}

			err := exposition.RenderScalar(&buf, meta, tt.value)

			require.NoError(t, err)
			assert.Equal(t, "# HELP value A value\n# TYPE value gauge\nvalue "+tt.want+"\n", buf.String())
		})
	}

	t.Run("atomic counters", func(t *testing.T) {
		var u atomic.Uint64
		u.Add(9)
		var i atomic.Int32
		i.Store(-3)
		var b atomic.Bool
		b.Store(true)

		assert.Equal(t, "9", exposition.FormatValue(&u))
		assert.Equal(t, "-3", exposition.FormatValue(&i))
		assert.Equal(t, "1", exposition.FormatValue(&b))
	})

	t.Run("named numeric and pointer values", func(t *testing.T) {
		type shares uint16
		f := 2.5

		assert.Equal(t, "12", exposition.FormatValue(shares(12)))
		assert.Equal(t, "2.5", exposition.FormatValue(&f))
		assert.Equal(t, "0", exposition.FormatValue((*float64)(nil)))
	})

	t.Run("help text escapes backslash and newline", func(t *testing.T) {
		var buf bytes.Buffer
		meta := exposition.Metadata{Name: "value", Help: "line one\nC:\\path \"quoted\"", Kind: exposition.KindCounter}

		require.NoError(t, exposition.RenderScalar(&buf, meta, 1))
		assert.Equal(t, "# HELP value line one\\nC:\\\\path \"quoted\"\n# TYPE value counter\nvalue 1\n", buf.String())
	})
}

func TestRenderLabeled(t *testing.T) {
	meta := exposition.Metadata{Name: "events", Help: "Events by type", Kind: exposition.KindCounter}

	t.Run("pairs in source order", func(t *testing.T) {
		var buf bytes.Buffer
		events := []exposition.Pair[string, int]{exposition.KV("stake", 10), exposition.KV("unstake", 5)}

		err := exposition.RenderLabeled(&buf, meta, "event_type", events)

		require.NoError(t, err)
		assert.Equal(t, "# HELP events Events by type\n"+
			"# TYPE events counter\n"+
			"events{event_type=\"stake\"} 10\n"+
			"events{event_type=\"unstake\"} 5\n", buf.String())
	})

	t.Run("map with a single entry", func(t *testing.T) {
		var buf bytes.Buffer

		err := exposition.RenderLabeled(&buf, meta, "event_type", map[string]uint64{"claim": 3})

		require.NoError(t, err)
		assert.Equal(t, "# HELP events Events by type\n# TYPE events counter\nevents{event_type=\"claim\"} 3\n", buf.String())
	})

	t.Run("map renders every entry once", func(t *testing.T) {
		var buf bytes.Buffer
		events := map[string]int{"a": 1, "b": 2, "c": 3}

		require.NoError(t, exposition.RenderLabeled(&buf, meta, "event_type", events))

		families := parseExposition(t, buf.String())
		got := map[string]float64{}
		for _, m := range families["events"].GetMetric() {
			got[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
		}
		assert.Equal(t, map[string]float64{"a": 1, "b": 2, "c": 3}, got)
	})

	t.Run("key values are escaped", func(t *testing.T) {
		var buf bytes.Buffer
		events := []exposition.Pair[quoted, int]{exposition.KV(quoted{s: "say \"hi\"\n"}, 1)}

		require.NoError(t, exposition.RenderLabeled(&buf, meta, "event_type", events))
		assert.Contains(t, buf.String(), "events{event_type=\"say \\\"hi\\\"\\n\"} 1\n")
	})

	t.Run("empty collection renders only the header", func(t *testing.T) {
		var buf bytes.Buffer

		require.NoError(t, exposition.RenderLabeled(&buf, meta, "event_type", map[string]int{}))
		assert.Equal(t, "# HELP events Events by type\n# TYPE events counter\n", buf.String())
	})

	t.Run("boolean keys render as words", func(t *testing.T) {
		var buf bytes.Buffer
		events := []exposition.Pair[bool, int]{exposition.KV(true, 3), exposition.KV(false, 1)}

		require.NoError(t, exposition.RenderLabeled(&buf, meta, "success", events))
		assert.Contains(t, buf.String(), "events{success=\"true\"} 3\n")
		assert.Contains(t, buf.String(), "events{success=\"false\"} 1\n")
	})

	t.Run("nil pointer key renders an empty value", func(t *testing.T) {
		var buf bytes.Buffer
		events := []exposition.Pair[*string, int]{exposition.KV[*string](nil, 2)}

		require.NoError(t, exposition.RenderLabeled(&buf, meta, "event_type", events))
		assert.Contains(t, buf.String(), "events{event_type=\"\"} 2\n")
	})

	t.Run("missing label name", func(t *testing.T) {
		var buf bytes.Buffer

		err := exposition.RenderLabeled(&buf, meta, "", map[string]int{"a": 1})

		assert.ErrorIs(t, err, exposition.ErrMissingLabelName)
		assert.Zero(t, buf.Len())
	})

	t.Run("not a collection", func(t *testing.T) {
		err := exposition.RenderLabeled(&bytes.Buffer{}, meta, "event_type", 5)

		assert.ErrorIs(t, err, exposition.ErrNotCollection)
	})
}

func TestRenderStructKeyed(t *testing.T) {
	meta := exposition.Metadata{Name: "supply", Help: "Token supply", Kind: exposition.KindGauge}

	t.Run("fields become labels in declaration order", func(t *testing.T) {
		var buf bytes.Buffer
		supply := []exposition.Pair[chainKey, decimal.Decimal]{
			exposition.KV(chainKey{Chain: "eth", TokenID: 7, Venue: "x", secret: "y"}, decimal.NewFromInt(100)),
			exposition.KV(chainKey{Chain: "sol", TokenID: 9}, decimal.RequireFromString("0.5")),
		}

		err := exposition.RenderStructKeyed(&buf, meta, supply)

		require.NoError(t, err)
		assert.Equal(t, "# HELP supply Token supply\n"+
			"# TYPE supply gauge\n"+
			"supply{chain=\"eth\",token_id=\"7\"} 100\n"+
			"supply{chain=\"sol\",token_id=\"9\"} 0.5\n", buf.String())
	})

	t.Run("boolean fields render as words", func(t *testing.T) {
		var buf bytes.Buffer
		ops := []exposition.Pair[outcomeKey, int]{exposition.KV(outcomeKey{Region: "eu", Success: false}, 1)}

		require.NoError(t, exposition.RenderStructKeyed(&buf, meta, ops))
		assert.Contains(t, buf.String(), "supply{region=\"eu\",success=\"false\"} 1\n")
	})

	t.Run("label set keys", func(t *testing.T) {
		var buf bytes.Buffer

		require.NoError(t, exposition.RenderStructKeyed(&buf, meta, map[shardLabels]int{{shard: 3}: 8}))
		assert.Contains(t, buf.String(), "supply{shard=\"3\"} 8\n")
	})

	t.Run("empty label set renders braces", func(t *testing.T) {
		var buf bytes.Buffer

		require.NoError(t, exposition.RenderStructKeyed(&buf, meta, map[exposition.NoLabels]int{{}: 4}))
		assert.Contains(t, buf.String(), "supply{} 4\n")
	})
}

func TestRender_Dispatch(t *testing.T) {
	hist := exposition.NewHistogram[exposition.NoLabels](exposition.MustBuckets(1))

	tests := []struct {
		name  string
		value any
		want  exposition.Strategy
	}{
		{name: "histogram", value: hist, want: exposition.StrategyHistogram},
		{name: "struct keyed map", value: map[chainKey]int{}, want: exposition.StrategyStructKeyed},
		{name: "struct keyed pairs", value: []exposition.Pair[routeLabels, int]{}, want: exposition.StrategyStructKeyed},
		{name: "label set keyed map", value: map[shardLabels]int{}, want: exposition.StrategyStructKeyed},
		{name: "string keyed map", value: map[string]int{}, want: exposition.StrategyLabeled},
		{name: "stringer struct keyed pairs", value: []exposition.Pair[quoted, int]{}, want: exposition.StrategyLabeled},
		{name: "int keyed map pointer", value: &map[int]int{}, want: exposition.StrategyLabeled},
		{name: "int", value: 1, want: exposition.StrategyScalar},
		{name: "decimal", value: decimal.Zero, want: exposition.StrategyScalar},
		{name: "atomic", value: new(atomic.Int64), want: exposition.StrategyScalar},
		{name: "plain slice", value: []int{1, 2}, want: exposition.StrategyScalar},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exposition.Classify(tt.value))
		})
	}

	t.Run("render follows the classification", func(t *testing.T) {
		var buf bytes.Buffer
		meta := exposition.Metadata{Name: "requests", Help: "Total requests", Kind: exposition.KindCounter}

		require.NoError(t, exposition.Render(&buf, 42, meta, ""))
		assert.Equal(t, "# HELP requests Total requests\n# TYPE requests counter\nrequests 42\n", buf.String())
	})

	t.Run("histogram ignores the declared kind", func(t *testing.T) {
		var buf bytes.Buffer
		meta := exposition.Metadata{Name: "h", Help: "h", Kind: exposition.KindGauge}

		require.NoError(t, exposition.Render(&buf, hist, meta, ""))
		assert.Contains(t, buf.String(), "# TYPE h histogram\n")
	})

	t.Run("strategy names", func(t *testing.T) {
		assert.Equal(t, "struct_keyed", exposition.StrategyStructKeyed.String())
		assert.Equal(t, "Strategy(9)", exposition.Strategy(9).String())
	})
}

func TestRender_SinkFailure(t *testing.T) {
	meta := exposition.Metadata{Name: "events", Help: "Events by type", Kind: exposition.KindCounter}
	events := []exposition.Pair[string, int]{exposition.KV("a", 1), exposition.KV("b", 2), exposition.KV("c", 3)}

	t.Run("stops at the first failed write", func(t *testing.T) {
		w := &failingWriter{limit: 3}

		err := exposition.RenderLabeled(w, meta, "event_type", events)

		assert.ErrorIs(t, err, errSinkClosed)
		assert.ErrorContains(t, err, "render events")
		assert.Equal(t, 3, w.writes)
		assert.Equal(t, "# HELP events Events by type\n# TYPE events counter\nevents{event_type=\"a\"} 1\n", w.buf.String())
	})

	t.Run("scalar and histogram report failures", func(t *testing.T) {
		h := exposition.NewHistogram[exposition.NoLabels](exposition.MustBuckets(1))
		h.Observe(exposition.NoLabels{}, 0.5)

		assert.ErrorIs(t, exposition.RenderScalar(&failingWriter{}, meta, 1), errSinkClosed)
		assert.ErrorIs(t, h.RenderHistogram(&failingWriter{limit: 4}, meta), errSinkClosed)
	})
}
