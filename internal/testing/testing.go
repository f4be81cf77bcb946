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
package testing

import (
	"context"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/noctarius/conductor/internal/supporting"
)

// RandomProducerId returns an id that passes the identifier allow-list.
func RandomProducerId(prefix string) string {
	return prefix + supporting.RandomTextString(12)
}

func CountRows(
	ctx context.Context, pool *pgxpool.Pool, query string, args ...any,
) (int, error) {

	var count int
	if err := pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func CountHypertables(
	ctx context.Context, pool *pgxpool.Pool, tableName string,
) (int, error) {

	return CountRows(ctx, pool,
		"SELECT count(*) FROM timescaledb_information.hypertables WHERE hypertable_name = $1", tableName,
	)
}
