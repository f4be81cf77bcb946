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
	"github.com/noctarius/conductor/spi/producer"
	"strings"
)

var ErrNoColumns = errors.New("insert statement requires at least one column")

// QuoteIdentifier quotes id as a SQL identifier, embedded double quotes
// are doubled.
func QuoteIdentifier(
	id string,
) string {

	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// BuildCreateTable generates the idempotent creation statement of a
// producer data table. The implicit ts column comes first, the schema
// columns follow in lexical order.
func BuildCreateTable(
	dialect Dialect, schema producer.Schema, tableName string,
) string {

	builder := strings.Builder{}
	builder.WriteString("CREATE TABLE IF NOT EXISTS ")
	builder.WriteString(QuoteIdentifier(tableName))
	builder.WriteString(" (")
	builder.WriteString(producer.TimestampColumn)
	builder.WriteString(" ")
	builder.WriteString(dialect.TimestampColumnType())

	for _, column := range schema.Columns() {
		builder.WriteString(", ")
		builder.WriteString(QuoteIdentifier(column))
		builder.WriteString(" ")
		builder.WriteString(dialect.ColumnType(schema[column]))
	}

	builder.WriteString(") ")
	builder.WriteString(dialect.PartitionClause())
	builder.WriteString(";")
	return builder.String()
}

// BuildInsert generates the positional insert statement for the given
// columns. Parameter $n binds the n-th column.
func BuildInsert(
	tableName string, orderedColumns []string,
) (string, error) {

	if len(orderedColumns) == 0 {
		return "", ErrNoColumns
	}

	columns := make([]string, 0, len(orderedColumns))
	parameters := make([]string, 0, len(orderedColumns))
	for i, column := range orderedColumns {
		columns = append(columns, QuoteIdentifier(column))
		parameters = append(parameters, fmt.Sprintf("$%d", i+1))
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		QuoteIdentifier(tableName), strings.Join(columns, ", "), strings.Join(parameters, ", "),
	), nil
}

func BuildCatalogTable(
	dialect Dialect, catalogTable string,
) string {

	nameType, idType, schemaType := dialect.CatalogColumnTypes()
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (name %s, uuid %s, schema %s);",
		QuoteIdentifier(catalogTable), nameType, idType, schemaType,
	)
}

func BuildCatalogInsert(
	catalogTable string,
) string {

	statement, _ := BuildInsert(catalogTable, []string{"name", "uuid", "schema"})
	return statement
}

func BuildCatalogLookup(
	catalogTable string,
) string {

	return fmt.Sprintf("SELECT name, uuid, schema FROM %s WHERE uuid = $1", QuoteIdentifier(catalogTable))
}
