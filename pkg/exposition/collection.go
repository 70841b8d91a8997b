package exposition

import "reflect"

// Pair is one sample of an ordered collection. A []Pair[K, V] renders in
// slice order.
type Pair[K, V any] struct {
	Key   K
	Value V
}

func KV[K, V any](key K, value V) Pair[K, V] {
	return Pair[K, V]{Key: key, Value: value}
}

func (p Pair[K, V]) pair() (any, any) { return p.Key, p.Value }

func (Pair[K, V]) keyType() reflect.Type { return reflect.TypeFor[K]() }

type pairer interface {
	pair() (any, any)
	keyType() reflect.Type
}

var pairerType = reflect.TypeFor[pairer]()

// Collection is implemented by custom containers that render as labeled
// samples. Maps and slices of Pair are supported without it.
type Collection interface {
	// KeyType decides between the single-label and the multi-label form.
	KeyType() reflect.Type
	EachPair(fn func(key, value any) error) error
}

type mapCollection struct {
	rv reflect.Value
}

func (c mapCollection) KeyType() reflect.Type { return c.rv.Type().Key() }

func (c mapCollection) EachPair(fn func(key, value any) error) error {
	iter := c.rv.MapRange()
	for iter.Next() {
		if err := fn(iter.Key().Interface(), iter.Value().Interface()); err != nil {
			return err
		}
	}
	return nil
}

type pairSliceCollection struct {
	rv reflect.Value
}

func (c pairSliceCollection) KeyType() reflect.Type {
	return reflect.Zero(c.rv.Type().Elem()).Interface().(pairer).keyType()
}

func (c pairSliceCollection) EachPair(fn func(key, value any) error) error {
	for i := 0; i < c.rv.Len(); i++ {
		k, v := c.rv.Index(i).Interface().(pairer).pair()
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return nil
}

// AsCollection views v as a key/value collection when it has that shape.
func AsCollection(v any) (Collection, bool) {
	if c, ok := v.(Collection); ok {
		return c, true
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		return mapCollection{rv: rv}, true
	case reflect.Slice, reflect.Array:
		elem := rv.Type().Elem()
		if elem.Kind() == reflect.Struct && elem.Implements(pairerType) {
			return pairSliceCollection{rv: rv}, true
		}
	}
	return nil, false
}
