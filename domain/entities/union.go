package entities

import (
	"bytes"
	"fmt"
	"reflect"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// variant is implemented by every member of a tagged union.
// VariantName is the wire tag.
type variant interface {
	VariantName() string
}

// unionCodec encodes one closed tagged union whose members are struct values.
type unionCodec[T variant] struct {
	union string
	names []string
	types map[string]reflect.Type
}

func newUnionCodec[T variant](union string, variants ...T) *unionCodec[T] {
	c := &unionCodec[T]{
		union: union,
		types: make(map[string]reflect.Type, len(variants)),
	}
	for _, v := range variants {
		name := v.VariantName()
		if _, dup := c.types[name]; dup {
			panic(fmt.Sprintf("entities: duplicate %s variant %q", union, name))
		}
		typ := reflect.TypeOf(v)
		if typ.Kind() != reflect.Struct {
			panic(fmt.Sprintf("entities: %s variant %q must be a struct value, got %s", union, name, typ))
		}
		c.types[name] = typ
		c.names = append(c.names, name)
	}
	return c
}

// variantNames returns the registered names in declaration order.
func (c *unionCodec[T]) variantNames() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// zero returns the zero value of the named variant.
func (c *unionCodec[T]) zero(name string) (T, bool) {
	var none T
	typ, ok := c.types[name]
	if !ok {
		return none, false
	}
	return reflect.Zero(typ).Interface().(T), true
}

func (c *unionCodec[T]) marshal(v T) ([]byte, error) {
	if any(v) == nil {
		return nil, fmt.Errorf("%s: nil variant", c.union)
	}
	name := v.VariantName()
	typ, ok := c.types[name]
	if !ok || typ != reflect.TypeOf(v) {
		return nil, fmt.Errorf("%s: unregistered variant %T", c.union, v)
	}
	if typ.NumField() == 0 {
		return json.Marshal(name)
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", c.union, name, err)
	}
	tag, err := json.Marshal(name)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(tag) + len(payload) + 3)
	buf.WriteByte('{')
	buf.Write(tag)
	buf.WriteByte(':')
	buf.Write(payload)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *unionCodec[T]) unmarshal(data []byte) (T, error) {
	var none T
	data = bytes.TrimSpace(data)
	if len(data) == 0 || isNull(data) {
		return none, fmt.Errorf("%s: missing variant", c.union)
	}

	switch data[0] {
	case '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return none, fmt.Errorf("%s: %w", c.union, err)
		}
		typ, ok := c.types[name]
		if !ok {
			return none, fmt.Errorf("%s: unknown variant %q", c.union, name)
		}
		if typ.NumField() != 0 {
			return none, fmt.Errorf("%s: variant %q requires a payload", c.union, name)
		}
		return reflect.Zero(typ).Interface().(T), nil

	case '{':
		name, payload, err := readTagged(data)
		if err != nil {
			return none, fmt.Errorf("%s: %w", c.union, err)
		}
		typ, ok := c.types[name]
		if !ok {
			return none, fmt.Errorf("%s: unknown variant %q", c.union, name)
		}
		ptr := reflect.New(typ)
		if isNull(payload) {
			if typ.NumField() != 0 {
				return none, fmt.Errorf("%s: variant %q requires a payload", c.union, name)
			}
			return ptr.Elem().Interface().(T), nil
		}
		if err := json.Unmarshal(payload, ptr.Interface()); err != nil {
			return none, fmt.Errorf("%s %s: %w", c.union, name, err)
		}
		return ptr.Elem().Interface().(T), nil
	}

	return none, fmt.Errorf("%s: expected variant string or object, got %s", c.union, preview(data))
}

// readTagged reads an externally tagged object, which must hold exactly one
// key. Keys are walked in order so a repeated tag is an error rather than a
// silent overwrite.
func readTagged(data []byte) (string, []byte, error) {
	iter := json.BorrowIterator(data)
	defer json.ReturnIterator(iter)

	var (
		name    string
		payload []byte
		count   int
		extra   error
	)
	iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
		count++
		if count > 1 {
			extra = fmt.Errorf("expected exactly one variant tag, got %q after %q", key, name)
			return false
		}
		name = key
		payload = it.SkipAndReturnBytes()
		return true
	})
	if extra != nil {
		return "", nil, extra
	}
	if iter.Error != nil {
		return "", nil, iter.Error
	}
	if count != 1 {
		return "", nil, fmt.Errorf("expected exactly one variant tag, got %d", count)
	}
	if iter.WhatIsNext() != jsoniter.InvalidValue {
		return "", nil, fmt.Errorf("unexpected data after variant object")
	}
	return name, bytes.TrimSpace(payload), nil
}

func isNull(data []byte) bool {
	return bytes.Equal(data, []byte("null"))
}

// preview shortens raw input for error messages.
func preview(data []byte) string {
	const limit = 32
	if len(data) > limit {
		return fmt.Sprintf("%q...", data[:limit])
	}
	return fmt.Sprintf("%q", data)
}
