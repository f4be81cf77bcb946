/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements. See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package producer

import (
	"bytes"
	"github.com/go-errors/errors"
	"github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
	"math"
	"strconv"
)

type ValueKind uint8

const (
	NullKind ValueKind = iota
	BoolKind
	IntKind
	UintKind
	FloatKind
	StringKind
	BytesKind
	ArrayKind
	ObjectKind
)

var valueKindNames = []string{
	"null", "bool", "int", "uint", "float", "string", "bytes", "array", "object",
}

func (k ValueKind) String() string {
	if int(k) < len(valueKindNames) {
		return valueKindNames[k]
	}
	return "unknown"
}

// Value is an untyped value as sent by a producer. It is a tagged
// union over the value shapes JSON and msgpack can carry. Unsigned
// integers fitting into an int64 are always represented as IntKind.
type Value struct {
	kind   ValueKind
	b      bool
	i      int64
	u      uint64
	f      float64
	s      string
	raw    []byte
	array  []Value
	object map[string]Value
}

func NullValue() Value {
	return Value{kind: NullKind}
}

func BoolValue(b bool) Value {
	return Value{kind: BoolKind, b: b}
}

func IntValue(i int64) Value {
	return Value{kind: IntKind, i: i}
}

func UintValue(u uint64) Value {
	if u <= math.MaxInt64 {
		return IntValue(int64(u))
	}
	return Value{kind: UintKind, u: u}
}

func FloatValue(f float64) Value {
	return Value{kind: FloatKind, f: f}
}

func StringValue(s string) Value {
	return Value{kind: StringKind, s: s}
}

func BytesValue(raw []byte) Value {
	return Value{kind: BytesKind, raw: raw}
}

func ArrayValue(elements ...Value) Value {
	return Value{kind: ArrayKind, array: elements}
}

func ObjectValue(fields map[string]Value) Value {
	return Value{kind: ObjectKind, object: fields}
}

// ValueOf converts a decoded JSON or msgpack value into a Value.
func ValueOf(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return NullValue(), nil
	case Value:
		return t, nil
	case bool:
		return BoolValue(t), nil
	case int:
		return IntValue(int64(t)), nil
	case int8:
		return IntValue(int64(t)), nil
	case int16:
		return IntValue(int64(t)), nil
	case int32:
		return IntValue(int64(t)), nil
	case int64:
		return IntValue(t), nil
	case uint:
		return UintValue(uint64(t)), nil
	case uint8:
		return UintValue(uint64(t)), nil
	case uint16:
		return UintValue(uint64(t)), nil
	case uint32:
		return UintValue(uint64(t)), nil
	case uint64:
		return UintValue(t), nil
	case float32:
		return FloatValue(float64(t)), nil
	case float64:
		return FloatValue(t), nil
	case json.Number:
		return parseNumber(string(t))
	case string:
		return StringValue(t), nil
	case []byte:
		return BytesValue(t), nil
	case []any:
		elements := make([]Value, 0, len(t))
		for _, e := range t {
			element, err := ValueOf(e)
			if err != nil {
				return Value{}, err
			}
			elements = append(elements, element)
		}
		return ArrayValue(elements...), nil
	case map[string]any:
		fields := make(map[string]Value, len(t))
		for k, e := range t {
			field, err := ValueOf(e)
			if err != nil {
				return Value{}, err
			}
			fields[k] = field
		}
		return ObjectValue(fields), nil
	case map[any]any:
		fields := make(map[string]Value, len(t))
		for k, e := range t {
			key, ok := k.(string)
			if !ok {
				return Value{}, errors.Errorf("unsupported object key type %T", k)
			}
			field, err := ValueOf(e)
			if err != nil {
				return Value{}, err
			}
			fields[key] = field
		}
		return ObjectValue(fields), nil
	}
	return Value{}, errors.Errorf("unsupported value type %T", v)
}

func parseNumber(number string) (Value, error) {
	if i, err := strconv.ParseInt(number, 10, 64); err == nil {
		return IntValue(i), nil
	}
	if u, err := strconv.ParseUint(number, 10, 64); err == nil {
		return UintValue(u), nil
	}
	f, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return Value{}, errors.Errorf("number '%s' out of range", number)
	}
	return FloatValue(f), nil
}

func (v Value) Kind() ValueKind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == NullKind
}

func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == BoolKind
}

// AsInt64 succeeds only for integral values within the int64 range.
// Floating point numbers never convert, even when integral.
func (v Value) AsInt64() (int64, bool) {
	return v.i, v.kind == IntKind
}

// AsFloat64 succeeds for every numeric value.
func (v Value) AsFloat64() (float64, bool) {
	switch v.kind {
	case IntKind:
		return float64(v.i), true
	case UintKind:
		return float64(v.u), true
	case FloatKind:
		return v.f, true
	}
	return 0, false
}

func (v Value) AsString() (string, bool) {
	return v.s, v.kind == StringKind
}

// AsBytes succeeds for raw byte values and for arrays of
// integers in the range of a byte.
func (v Value) AsBytes() ([]byte, bool) {
	switch v.kind {
	case BytesKind:
		return v.raw, true
	case ArrayKind:
		raw := make([]byte, 0, len(v.array))
		for _, element := range v.array {
			i, ok := element.AsInt64()
			if !ok || i < 0 || i > math.MaxUint8 {
				return nil, false
			}
			raw = append(raw, byte(i))
		}
		return raw, true
	}
	return nil, false
}

// Interface returns the native Go representation of the value.
func (v Value) Interface() any {
	switch v.kind {
	case BoolKind:
		return v.b
	case IntKind:
		return v.i
	case UintKind:
		return v.u
	case FloatKind:
		return v.f
	case StringKind:
		return v.s
	case BytesKind:
		return v.raw
	case ArrayKind:
		elements := make([]any, 0, len(v.array))
		for _, e := range v.array {
			elements = append(elements, e.Interface())
		}
		return elements
	case ObjectKind:
		fields := make(map[string]any, len(v.object))
		for k, e := range v.object {
			fields[k] = e.Interface()
		}
		return fields
	}
	return nil
}

// jsonInterface differs from Interface for byte values only, JSON
// carries binary data as an array of integers.
func (v Value) jsonInterface() any {
	switch v.kind {
	case BytesKind:
		elements := make([]int, 0, len(v.raw))
		for _, b := range v.raw {
			elements = append(elements, int(b))
		}
		return elements
	case ArrayKind:
		elements := make([]any, 0, len(v.array))
		for _, e := range v.array {
			elements = append(elements, e.jsonInterface())
		}
		return elements
	case ObjectKind:
		fields := make(map[string]any, len(v.object))
		for k, e := range v.object {
			fields[k] = e.jsonInterface()
		}
		return fields
	}
	return v.Interface()
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.jsonInterface())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var raw any
	if err := decoder.Decode(&raw); err != nil {
		return err
	}

	value, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = value
	return nil
}

func (v Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(v.Interface())
}

func (v *Value) DecodeMsgpack(dec *msgpack.Decoder) error {
	raw, err := dec.DecodeInterface()
	if err != nil {
		return err
	}

	value, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = value
	return nil
}
