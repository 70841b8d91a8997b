package exposition

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/prometheus/common/model"
)

type Label struct {
	Key   string
	Value string
}

// LabelSet is implemented by keys that expand into several labels.
// Labels must be returned in a stable, declared order.
type LabelSet interface {
	Labels() []Label
}

// NoLabels is the label type of an unlabeled histogram.
type NoLabels struct{}

func (NoLabels) Labels() []Label { return nil }

var (
	labelSetType = reflect.TypeFor[LabelSet]()
	stringerType = reflect.TypeFor[fmt.Stringer]()
)

type labelField struct {
	name  string
	index []int
}

var labelFieldCache sync.Map // reflect.Type -> []labelField

// isLabelShape reports whether values of t can be decomposed into labels.
func isLabelShape(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Implements(labelSetType) {
		return true
	}
	return indirectType(t).Kind() == reflect.Struct
}

// isStructKey reports whether a collection key of type t renders as a
// multi-label set. Structs that only offer a String method and carry no
// label tags render as a single label instead.
func isStructKey(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Implements(labelSetType) {
		return true
	}
	st := indirectType(t)
	if st.Kind() != reflect.Struct {
		return false
	}
	if !t.Implements(stringerType) {
		return true
	}
	for i := 0; i < st.NumField(); i++ {
		if _, ok := st.Field(i).Tag.Lookup("label"); ok {
			return true
		}
	}
	return false
}

// checkLabelType validates the label names a key type expands into: each
// must be a legal label name and appear once. Histogram label types may not
// use le. Names of a LabelSet are taken from its zero value.
func checkLabelType(t reflect.Type, histogram bool) error {
	var names []string
	switch {
	case t.Implements(labelSetType):
		if t.Kind() == reflect.Pointer || t.Kind() == reflect.Interface {
			return nil
		}
		for _, l := range reflect.Zero(t).Interface().(LabelSet).Labels() {
			names = append(names, l.Key)
		}
	case indirectType(t).Kind() == reflect.Struct:
		for _, f := range structLabelFields(indirectType(t)) {
			names = append(names, f.name)
		}
	default:
		return nil
	}

	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if !model.LabelName(name).IsValidLegacy() {
			return fmt.Errorf("label %q of %v: %w", name, t, ErrInvalidName)
		}
		if histogram && name == "le" {
			return fmt.Errorf("label le of %v is reserved for histogram buckets: %w", t, ErrInvalidName)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("label %q of %v: %w", name, t, ErrDuplicateLabel)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// labelsOf decomposes a label key into its labels, in declaration order.
func labelsOf(key any) []Label {
	if ls, ok := key.(LabelSet); ok {
		return ls.Labels()
	}
	rv := reflect.ValueOf(key)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	fields := structLabelFields(rv.Type())
	labels := make([]Label, len(fields))
	for i, f := range fields {
		labels[i] = Label{Key: f.name, Value: formatLabelValue(rv.FieldByIndex(f.index).Interface())}
	}
	return labels
}

func structLabelFields(t reflect.Type) []labelField {
	if cached, ok := labelFieldCache.Load(t); ok {
		return cached.([]labelField)
	}
	fields := make([]labelField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, tagged := sf.Tag.Lookup("label")
		if name == "-" {
			continue
		}
		if !tagged || name == "" {
			name = snakeCase(sf.Name)
		}
		fields = append(fields, labelField{name: name, index: sf.Index})
	}
	labelFieldCache.Store(t, fields)
	return fields
}

func indirectType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// snakeCase turns a Go field name into a label name: StatusCode -> status_code,
// HTTPMethod -> http_method.
func snakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
