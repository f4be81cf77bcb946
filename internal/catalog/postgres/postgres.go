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
	"fmt"
	"github.com/go-errors/errors"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/noctarius/conductor/internal/logging"
	"github.com/noctarius/conductor/internal/sqlgen"
	"github.com/noctarius/conductor/internal/supporting"
	"github.com/noctarius/conductor/internal/version"
	"github.com/noctarius/conductor/spi/catalog"
	"github.com/noctarius/conductor/spi/config"
	"github.com/noctarius/conductor/spi/producer"
	"time"
)

const defaultCatalogTable = "producers"

const countProducerQuery = "SELECT count(*) FROM %s WHERE uuid = $1"

func init() {
	catalog.RegisterCatalog(config.PostgresCatalog, func(c *config.Config) (catalog.Catalog, error) {
		return NewCatalogWithConfig(c)
	})
}

// Catalog stores producers in a catalog table of a PostgreSQL wire
// compatible store (QuestDB or TimescaleDB) and writes their rows into
// one table per producer.
type Catalog struct {
	logger          *logging.Logger
	poolConfig      *pgxpool.Config
	pool            *pgxpool.Pool
	dialect         sqlgen.Dialect
	catalogTable    string
	timeout         time.Duration
	lookupQuery     string
	countQuery      string
	insertStatement string
}

func NewCatalogWithConfig(
	c *config.Config,
) (*Catalog, error) {

	connection := config.GetOrDefault(c, config.PropertyStoreConnection, "")
	if connection == "" {
		return nil, errors.Errorf("store connection string is required (%s)", config.PropertyStoreConnection)
	}

	poolConfig, err := pgxpool.ParseConfig(connection)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	if password := config.GetOrDefault(c, config.PropertyStorePassword, ""); password != "" {
		poolConfig.ConnConfig.Password = password
	}

	if poolSize := config.GetOrDefault(c, config.PropertyStorePoolSize, int32(0)); poolSize > 0 {
		poolConfig.MaxConns = poolSize
	}

	dialect, err := sqlgen.DialectFor(config.GetOrDefault(c, config.PropertyStoreDialect, config.QuestDB))
	if err != nil {
		return nil, err
	}

	catalogTable := config.GetOrDefault(c, config.PropertyStoreCatalogTable, defaultCatalogTable)
	timeout := time.Second * time.Duration(config.GetOrDefault(c, config.PropertyStoreTimeout, 10))
	return NewCatalog(poolConfig, dialect, catalogTable, timeout)
}

func NewCatalog(
	poolConfig *pgxpool.Config, dialect sqlgen.Dialect, catalogTable string, timeout time.Duration,
) (*Catalog, error) {

	logger, err := logging.NewLogger("PostgresCatalog")
	if err != nil {
		return nil, err
	}

	return &Catalog{
		logger:          logger,
		poolConfig:      poolConfig,
		dialect:         dialect,
		catalogTable:    catalogTable,
		timeout:         timeout,
		lookupQuery:     sqlgen.BuildCatalogLookup(catalogTable),
		countQuery:      fmt.Sprintf(countProducerQuery, sqlgen.QuoteIdentifier(catalogTable)),
		insertStatement: sqlgen.BuildCatalogInsert(catalogTable),
	}, nil
}

func (c *Catalog) Start(
	ctx context.Context,
) error {

	pool, err := pgxpool.NewWithConfig(ctx, c.poolConfig)
	if err != nil {
		return errors.Wrap(err, 0)
	}
	c.pool = pool

	return c.newSession(ctx, func(session *session) error {
		if err := c.readServerVersion(session.ctx); err != nil {
			return err
		}

		if _, err := session.exec(sqlgen.BuildCatalogTable(c.dialect, c.catalogTable)); err != nil {
			return errors.Wrap(err, 0)
		}
		c.logger.Infof("Producer catalog table '%s' ready (%s)", c.catalogTable, c.dialect.Name())
		if !c.enforcesUniqueIds() {
			c.logger.Warnf(
				"Store dialect %s can't enforce unique producer ids, concurrent registrations "+
					"of the same custom id may both succeed", c.dialect.Name(),
			)
		}
		return nil
	})
}

// enforcesUniqueIds reports whether the store itself rejects a second
// catalog entry for an id, beyond the pre-check in Register.
func (c *Catalog) enforcesUniqueIds() bool {
	return c.dialect.SupportsUniqueConstraints()
}

func (c *Catalog) Stop() error {
	if c.pool != nil {
		c.pool.Close()
	}
	return nil
}

func (c *Catalog) Register(
	ctx context.Context, record producer.Record, createTable string,
) error {

	schema, err := catalog.EncodeSchema(record.Schema)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	err = pgx.BeginFunc(ctx, c.pool, func(tx pgx.Tx) error {
		s := &session{querier: tx, ctx: ctx}

		var count int64
		if err := s.queryRow(c.countQuery, record.Id).Scan(&count); err != nil {
			return errors.Wrap(err, 0)
		}
		if count > 0 {
			return producer.NewCodedError(producer.InvalidUuid, "producer '%s' is already registered", record.Id)
		}

		if _, err := s.exec(createTable); err != nil {
			return errors.Wrap(err, 0)
		}
		if _, err := s.exec(c.insertStatement, record.Name, record.Id, schema); err != nil {
			return errors.Wrap(err, 0)
		}
		return nil
	})

	if err == nil {
		return nil
	}

	var codedError *producer.CodedError
	if errors.As(err, &codedError) {
		return codedError
	}
	if isUniqueViolation(err) {
		return producer.NewCodedError(producer.InvalidUuid, "producer '%s' is already registered", record.Id)
	}
	return err
}

func (c *Catalog) Lookup(
	ctx context.Context, id string,
) (producer.Record, producer.ErrorCode) {

	if id == "" {
		return producer.Record{}, producer.InvalidUuid
	}

	type row struct {
		name   string
		id     string
		schema string
	}

	rows := make([]row, 0, 1)
	err := c.newSession(ctx, func(session *session) error {
		return session.queryFunc(func(r pgx.Row) error {
			var name, uuid, schema *string
			if err := r.Scan(&name, &uuid, &schema); err != nil {
				return errors.Wrap(err, 0)
			}
			rows = append(rows, row{
				name:   supporting.DerefOrDefault(name, ""),
				id:     supporting.DerefOrDefault(uuid, ""),
				schema: supporting.DerefOrDefault(schema, ""),
			})
			return nil
		}, c.lookupQuery, id)
	})

	if err != nil {
		if isUndefinedTable(err) {
			c.logger.Warnf("Producer catalog table '%s' doesn't exist", c.catalogTable)
		} else {
			c.logger.Errorf("Failed to look up producer '%s': %s", id, supporting.ErrorStack(err))
		}
		return producer.Record{}, producer.Unregistered
	}

	switch len(rows) {
	case 0:
		return producer.Record{}, producer.Unregistered
	case 1:
	default:
		c.logger.Errorf("Producer catalog has %d entries for '%s'", len(rows), id)
		return producer.Record{}, producer.InternalError
	}

	record, err := catalog.DecodeRecord(rows[0].name, rows[0].id, rows[0].schema)
	if err != nil {
		c.logger.Errorf("Catalog entry of producer '%s' is malformed: %s", id, err.Error())
		return producer.Record{}, producer.InternalError
	}
	return record, producer.NoError
}

func (c *Catalog) InsertRow(
	ctx context.Context, _ string, statement string, params []any,
) error {

	return c.newSession(ctx, func(session *session) error {
		if _, err := session.exec(statement, params...); err != nil {
			return errors.Wrap(err, 0)
		}
		return nil
	})
}

func (c *Catalog) newSession(
	ctx context.Context, fn func(session *session) error,
) error {

	if c.pool == nil {
		return errors.New("producer catalog isn't started")
	}

	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	return fn(&session{
		querier: c.pool,
		ctx:     ctx,
	})
}

func (c *Catalog) readServerVersion(
	ctx context.Context,
) error {

	connection, err := c.pool.Acquire(ctx)
	if err != nil {
		return errors.Wrap(err, 0)
	}
	defer connection.Release()

	version.StoreServerVersion = connection.Conn().PgConn().ParameterStatus("server_version")
	c.logger.Infof("Connected to store (server version: %s)", version.StoreServerVersion)
	return nil
}

func isUniqueViolation(
	err error,
) bool {

	var pgError *pgconn.PgError
	return errors.As(err, &pgError) && pgError.Code == pgerrcode.UniqueViolation
}

func isUndefinedTable(
	err error,
) bool {

	var pgError *pgconn.PgError
	return errors.As(err, &pgError) && pgError.Code == pgerrcode.UndefinedTable
}
