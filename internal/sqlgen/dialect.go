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

package sqlgen

import (
	"fmt"
	"github.com/go-errors/errors"
	"github.com/noctarius/conductor/spi/config"
	"github.com/noctarius/conductor/spi/producer"
)

// Dialect supplies the store specific parts of the generated statements.
type Dialect interface {
	Name() config.StoreDialect
	ColumnType(
		dataType producer.DataType,
	) string
	TimestampColumnType() string
	PartitionClause() string
	CatalogColumnTypes() (name, id, schema string)
	// SupportsUniqueConstraints reports whether the store rejects
	// duplicate catalog identifiers by itself.
	SupportsUniqueConstraints() bool
}

var (
	QuestDB     Dialect = questDb{}
	TimescaleDB Dialect = timescaleDb{}
)

func DialectFor(
	dialect config.StoreDialect,
) (Dialect, error) {

	switch dialect {
	case "", config.QuestDB:
		return QuestDB, nil
	case config.TimescaleDB:
		return TimescaleDB, nil
	}
	return nil, errors.Errorf("unsupported store dialect: %s", dialect)
}

type questDb struct{}

func (questDb) Name() config.StoreDialect {
	return config.QuestDB
}

func (questDb) ColumnType(
	dataType producer.DataType,
) string {

	return dataType.ColumnType()
}

func (questDb) TimestampColumnType() string {
	return "TIMESTAMP"
}

func (questDb) PartitionClause() string {
	return fmt.Sprintf("timestamp(%s)", producer.TimestampColumn)
}

func (questDb) CatalogColumnTypes() (name, id, schema string) {
	return "string", "string", "string"
}

func (questDb) SupportsUniqueConstraints() bool {
	return false
}

type timescaleDb struct{}

var timescaleColumnTypes = map[producer.DataType]string{
	producer.Int:    "BIGINT",
	producer.Float:  "REAL",
	producer.Time:   "TIMESTAMP",
	producer.String: "TEXT",
	producer.Binary: "BYTEA",
	producer.Bool:   "BOOLEAN",
	producer.Double: "DOUBLE PRECISION",
}

func (timescaleDb) Name() config.StoreDialect {
	return config.TimescaleDB
}

func (timescaleDb) ColumnType(
	dataType producer.DataType,
) string {

	return timescaleColumnTypes[dataType]
}

func (timescaleDb) TimestampColumnType() string {
	return "TIMESTAMP NOT NULL"
}

func (timescaleDb) PartitionClause() string {
	return fmt.Sprintf("WITH (tsdb.hypertable, tsdb.partition_column='%s')", producer.TimestampColumn)
}

func (timescaleDb) CatalogColumnTypes() (name, id, schema string) {
	return "TEXT NOT NULL", "TEXT PRIMARY KEY", "TEXT NOT NULL"
}

func (timescaleDb) SupportsUniqueConstraints() bool {
	return true
}
