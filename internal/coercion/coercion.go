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

package coercion

import (
	"github.com/noctarius/conductor/spi/producer"
	"math"
	"time"
)

// float32Epsilon is the difference between 1 and the next larger float32.
const float32Epsilon = 1.1920929e-07

var timeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Coerce converts an untyped value into the parameter type of its column.
// Every combination of data type and value kind not listed is rejected
// with InvalidData, there is no conversion across types.
//
//	Int    -> int64
//	Float  -> float32
//	Time   -> time.Time (UTC)
//	String -> string
//	Binary -> []byte
//	Bool   -> bool
//	Double -> float64
func Coerce(
	value producer.Value, dataType producer.DataType,
) (any, error) {

	switch dataType {
	case producer.Int:
		if i, ok := value.AsInt64(); ok {
			return i, nil
		}

	case producer.Float:
		if f, ok := value.AsFloat64(); ok {
			return coerceFloat32(f)
		}

	case producer.Time:
		if s, ok := value.AsString(); ok {
			return coerceTime(s)
		}

	case producer.String:
		if s, ok := value.AsString(); ok {
			return s, nil
		}

	case producer.Binary:
		if raw, ok := value.AsBytes(); ok {
			return raw, nil
		}

	case producer.Bool:
		if b, ok := value.AsBool(); ok {
			return b, nil
		}

	case producer.Double:
		if f, ok := value.AsFloat64(); ok {
			return f, nil
		}

	default:
		return nil, producer.NewCodedError(producer.InvalidData, "unknown data type %d", uint8(dataType))
	}

	return nil, producer.NewCodedError(producer.InvalidData, "%s value can't be used as %s", value.Kind(), dataType)
}

// coerceFloat32 narrows f and rejects values which would overflow or
// silently lose their integral part.
func coerceFloat32(
	f float64,
) (any, error) {

	if math.IsNaN(f) {
		return nil, producer.NewCodedError(producer.InvalidData, "NaN can't be used as Float")
	}

	if f > math.MaxFloat32-float32Epsilon || f < -math.MaxFloat32+float32Epsilon {
		return nil, producer.NewCodedError(producer.InvalidData, "%g exceeds the range of Float", f)
	}

	narrowed := float32(f)
	if math.Trunc(f) == f && float64(narrowed) != f {
		return nil, producer.NewCodedError(producer.InvalidData, "%g isn't exactly representable as Float", f)
	}
	return narrowed, nil
}

func coerceTime(
	s string,
) (any, error) {

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return nil, producer.NewCodedError(producer.InvalidData, "'%s' isn't a date-time without time zone", s)
}
