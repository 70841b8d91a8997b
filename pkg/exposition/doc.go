// Package exposition renders plain Go values as Prometheus text exposition.
//
// Values are classified by shape rather than by declaration: a *Histogram
// renders as a histogram, a map or a slice of Pair renders as a labeled
// collection (one label named by the caller, or one label per field when the
// key is a struct or a LabelSet), and everything else renders as a single
// sample through FormatValue.
//
//	var latency = exposition.DefineHistogram[exposition.NoLabels](0.1, 0.5, 1)
//
//	set := exposition.NewSet(exposition.WithPrefix("myapp"))
//	set.MustRegister(exposition.Field{Name: "requests_total", Help: "Total requests", Kind: exposition.KindCounter},
//		func() any { return &requests })
//	set.MustRegister(exposition.Field{Name: "events", Help: "Events by type", Kind: exposition.KindCounter, Label: "event_type"},
//		func() any { return events })
//	_, err := set.WriteTo(w)
package exposition
