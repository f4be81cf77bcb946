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
	"github.com/go-errors/errors"
	"github.com/vmihailenco/msgpack/v5"
	"strings"
)

// DataType is the closed set of column types a producer
// may use in its schema.
type DataType uint8

const (
	Int DataType = iota
	Float
	Time
	String
	Binary
	Bool
	Double
)

var dataTypeNames = map[DataType]string{
	Int:    "Int",
	Float:  "Float",
	Time:   "Time",
	String: "String",
	Binary: "Binary",
	Bool:   "Bool",
	Double: "Double",
}

var columnTypes = map[DataType]string{
	Int:    "long",
	Float:  "float",
	Time:   "timestamp",
	String: "string",
	Binary: "binary",
	Bool:   "boolean",
	Double: "double",
}

// DataTypes returns all supported data types in declaration order.
func DataTypes() []DataType {
	return []DataType{Int, Float, Time, String, Binary, Bool, Double}
}

// ColumnType returns the column type label of the underlying
// store for this data type. The mapping is total and fixed.
func (dt DataType) ColumnType() string {
	if t, ok := columnTypes[dt]; ok {
		return t
	}
	return "unknown"
}

func (dt DataType) Valid() bool {
	_, ok := dataTypeNames[dt]
	return ok
}

func (dt DataType) String() string {
	if n, ok := dataTypeNames[dt]; ok {
		return n
	}
	return "Unknown"
}

// ParseDataType resolves the wire name of a data type. Matching
// is case-insensitive to be lenient with hand-written schemas.
func ParseDataType(name string) (DataType, error) {
	for dt, n := range dataTypeNames {
		if strings.EqualFold(n, name) {
			return dt, nil
		}
	}
	return 0, errors.Errorf("unknown data type '%s'", name)
}

func (dt DataType) MarshalText() ([]byte, error) {
	if !dt.Valid() {
		return nil, errors.Errorf("unknown data type %d", uint8(dt))
	}
	return []byte(dt.String()), nil
}

func (dt *DataType) UnmarshalText(text []byte) error {
	v, err := ParseDataType(string(text))
	if err != nil {
		return err
	}
	*dt = v
	return nil
}

func (dt DataType) EncodeMsgpack(enc *msgpack.Encoder) error {
	if !dt.Valid() {
		return errors.Errorf("unknown data type %d", uint8(dt))
	}
	return enc.EncodeString(dt.String())
}

func (dt *DataType) DecodeMsgpack(dec *msgpack.Decoder) error {
	name, err := dec.DecodeString()
	if err != nil {
		return err
	}
	return dt.UnmarshalText([]byte(name))
}
