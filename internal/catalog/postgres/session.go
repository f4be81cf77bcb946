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

package postgres

import (
	"context"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"time"
)

type querier interface {
	Query(
		ctx context.Context, sql string, args ...any,
	) (pgx.Rows, error)
	QueryRow(
		ctx context.Context, sql string, args ...any,
	) pgx.Row
	Exec(
		ctx context.Context, sql string, args ...any,
	) (pgconn.CommandTag, error)
}

type rowFunction = func(
	row pgx.Row,
) error

// session binds a querier (the pool or a transaction) to the context of
// a single store round-trip.
type session struct {
	querier querier
	ctx     context.Context
}

func withTimeout(
	ctx context.Context, timeout time.Duration,
) (context.Context, context.CancelFunc) {

	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func (s *session) queryFunc(
	fn rowFunction, query string, args ...any,
) error {

	rows, err := s.querier.Query(s.ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}

	return rows.Err()
}

func (s *session) queryRow(
	query string, args ...any,
) pgx.Row {

	return s.querier.QueryRow(s.ctx, query, args...)
}

func (s *session) exec(
	query string, args ...any,
) (pgconn.CommandTag, error) {

	return s.querier.Exec(s.ctx, query, args...)
}
