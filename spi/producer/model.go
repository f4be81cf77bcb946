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
	"github.com/samber/lo"
	"sort"
)

// TimestampColumn is the implicit, reserved time column
// of every producer data table.
const TimestampColumn = "ts"

// Schema maps column names to their data types.
type Schema map[string]DataType

// Columns returns the column names in lexical order.
func (s Schema) Columns() []string {
	columns := lo.Keys(s)
	sort.Strings(columns)
	return columns
}

func (s Schema) Contains(column string) bool {
	_, ok := s[column]
	return ok
}

func (s Schema) Clone() Schema {
	clone := make(Schema, len(s))
	for k, v := range s {
		clone[k] = v
	}
	return clone
}

// Registration contains the information required to
// register a producer.
type Registration struct {
	// Name is a human friendly label, it doesn't need to be unique.
	Name   string `json:"name" msgpack:"name"`
	Schema Schema `json:"schema" msgpack:"schema"`
	// CustomId lets devices without persistent storage use a
	// stable, caller chosen identifier.
	CustomId *string `json:"use_custom_id" msgpack:"use_custom_id"`
}

func NewRegistration(name string, schema Schema, customId *string) Registration {
	return Registration{
		Name:     name,
		Schema:   schema,
		CustomId: customId,
	}
}

func (r Registration) HasCustomId() bool {
	return r.CustomId != nil
}

// Emit is a single record submitted by a registered producer.
type Emit struct {
	ProducerId string `json:"uuid" msgpack:"uuid"`
	// Timestamp is given in microseconds since the Unix epoch.
	Timestamp *uint64          `json:"timestamp" msgpack:"timestamp"`
	Data      map[string]Value `json:"data" msgpack:"data"`
}

// Record is the catalog entry of a registered producer.
type Record struct {
	Name   string
	Id     string
	Schema Schema
}

type RegistrationResult struct {
	Error ErrorCode `json:"error" msgpack:"error"`
	Id    *string   `json:"uuid" msgpack:"uuid"`
}

func NewRegistrationResult(code ErrorCode, id string) RegistrationResult {
	if code != NoError {
		return RegistrationResult{Error: code}
	}
	return RegistrationResult{Error: NoError, Id: &id}
}

type EmitResult struct {
	Error ErrorCode `json:"error" msgpack:"error"`
}

// SchemaBuilder assembles a Schema column by column.
type SchemaBuilder struct {
	schema Schema
}

func NewSchemaBuilder() *SchemaBuilder {
	return &SchemaBuilder{
		schema: make(Schema),
	}
}

func (b *SchemaBuilder) Add(column string, dataType DataType) *SchemaBuilder {
	b.schema[column] = dataType
	return b
}

func (b *SchemaBuilder) AddInt(column string) *SchemaBuilder {
	return b.Add(column, Int)
}

func (b *SchemaBuilder) AddFloat(column string) *SchemaBuilder {
	return b.Add(column, Float)
}

func (b *SchemaBuilder) AddTime(column string) *SchemaBuilder {
	return b.Add(column, Time)
}

func (b *SchemaBuilder) AddString(column string) *SchemaBuilder {
	return b.Add(column, String)
}

func (b *SchemaBuilder) AddBinary(column string) *SchemaBuilder {
	return b.Add(column, Binary)
}

func (b *SchemaBuilder) AddBool(column string) *SchemaBuilder {
	return b.Add(column, Bool)
}

func (b *SchemaBuilder) AddDouble(column string) *SchemaBuilder {
	return b.Add(column, Double)
}

func (b *SchemaBuilder) Build() Schema {
	return b.schema.Clone()
}
