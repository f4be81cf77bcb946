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
	"github.com/noctarius/conductor/spi/encoding"
	"github.com/noctarius/conductor/spi/producer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math"
	"testing"
	"time"
)

func jsonValue(t *testing.T, raw string) producer.Value {
	value := producer.Value{}
	require.NoError(t, encoding.JsonCodec().Unmarshal([]byte(raw), &value))
	return value
}

func assertInvalidData(t *testing.T, value producer.Value, dataType producer.DataType) {
	_, err := Coerce(value, dataType)
	require.Error(t, err, "%s as %s", value.Kind(), dataType)
	assert.Equal(t, producer.InvalidData, producer.CodeOf(err))
}

func Test_Coerce_Int(t *testing.T) {
	v, err := Coerce(jsonValue(t, "5"), producer.Int)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)

	v, err = Coerce(jsonValue(t, "-9223372036854775808"), producer.Int)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), v)

	assertInvalidData(t, jsonValue(t, "9223372036854775808"), producer.Int)
	assertInvalidData(t, jsonValue(t, "5.0"), producer.Int)
	assertInvalidData(t, jsonValue(t, "5.5"), producer.Int)
	assertInvalidData(t, jsonValue(t, `"5"`), producer.Int)
	assertInvalidData(t, jsonValue(t, "true"), producer.Int)
	assertInvalidData(t, jsonValue(t, "null"), producer.Int)
}

func Test_Coerce_Float(t *testing.T) {
	v, err := Coerce(jsonValue(t, "2.5"), producer.Float)
	require.NoError(t, err)
	assert.Equal(t, float32(2.5), v)

	v, err = Coerce(jsonValue(t, "7"), producer.Float)
	require.NoError(t, err)
	assert.Equal(t, float32(7), v)

	v, err = Coerce(jsonValue(t, "0.1"), producer.Float)
	require.NoError(t, err)
	assert.Equal(t, float32(0.1), v)

	assertInvalidData(t, jsonValue(t, "12345678901234.0"), producer.Float)
	assertInvalidData(t, jsonValue(t, "1e39"), producer.Float)
	assertInvalidData(t, jsonValue(t, "-1e39"), producer.Float)
	assertInvalidData(t, producer.FloatValue(math.Inf(1)), producer.Float)
	assertInvalidData(t, producer.FloatValue(math.NaN()), producer.Float)
	assertInvalidData(t, jsonValue(t, `"2.5"`), producer.Float)
}

func Test_Coerce_Double(t *testing.T) {
	v, err := Coerce(jsonValue(t, "12345678901234.0"), producer.Double)
	require.NoError(t, err)
	assert.Equal(t, 12345678901234.0, v)

	v, err = Coerce(jsonValue(t, "1e300"), producer.Double)
	require.NoError(t, err)
	assert.Equal(t, 1e300, v)

	v, err = Coerce(jsonValue(t, "3"), producer.Double)
	require.NoError(t, err)
	assert.Equal(t, float64(3), v)

	assertInvalidData(t, jsonValue(t, `"3"`), producer.Double)
	assertInvalidData(t, jsonValue(t, "[3]"), producer.Double)
}

func Test_Coerce_Time(t *testing.T) {
	v, err := Coerce(producer.StringValue("2023-04-01T12:30:45"), producer.Time)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 4, 1, 12, 30, 45, 0, time.UTC), v)

	v, err = Coerce(producer.StringValue("2023-04-01 12:30:45.123456"), producer.Time)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 4, 1, 12, 30, 45, 123456000, time.UTC), v)

	assertInvalidData(t, producer.StringValue("2023-04-01T12:30:45Z"), producer.Time)
	assertInvalidData(t, producer.StringValue("2023-04-01T12:30:45+02:00"), producer.Time)
	assertInvalidData(t, producer.StringValue("2023-04-01"), producer.Time)
	assertInvalidData(t, producer.StringValue("yesterday"), producer.Time)
	assertInvalidData(t, producer.IntValue(1680352245), producer.Time)
}

func Test_Coerce_String_Bool_Binary(t *testing.T) {
	v, err := Coerce(producer.StringValue("hello"), producer.String)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
	assertInvalidData(t, producer.IntValue(1), producer.String)

	v, err = Coerce(jsonValue(t, "false"), producer.Bool)
	require.NoError(t, err)
	assert.Equal(t, false, v)
	assertInvalidData(t, jsonValue(t, "0"), producer.Bool)
	assertInvalidData(t, producer.StringValue("true"), producer.Bool)

	v, err = Coerce(producer.BytesValue([]byte{0xde, 0xad}), producer.Binary)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad}, v)

	v, err = Coerce(jsonValue(t, "[222, 173]"), producer.Binary)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad}, v)

	assertInvalidData(t, jsonValue(t, "[256]"), producer.Binary)
	assertInvalidData(t, jsonValue(t, "[-1]"), producer.Binary)
	assertInvalidData(t, jsonValue(t, "[1.5]"), producer.Binary)
	assertInvalidData(t, producer.StringValue("3q0="), producer.Binary)
}

func Test_Coerce_Unknown_Data_Type(t *testing.T) {
	assertInvalidData(t, producer.IntValue(1), producer.DataType(99))
}
