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

package memory

import (
	"context"
	"github.com/go-errors/errors"
	"github.com/noctarius/conductor/internal/logging"
	"github.com/noctarius/conductor/spi/catalog"
	"github.com/noctarius/conductor/spi/config"
	"github.com/noctarius/conductor/spi/producer"
	"sync"
)

func init() {
	catalog.RegisterCatalog(config.MemoryCatalog, func(_ *config.Config) (catalog.Catalog, error) {
		return NewCatalog()
	})
}

type entry struct {
	name        string
	id          string
	schema      string
	createTable string
}

// Catalog keeps producers and their rows in process memory. Entries go
// through the same serialized form as a store backed catalog.
type Catalog struct {
	mutex   sync.RWMutex
	logger  *logging.Logger
	entries map[string]entry
	rows    map[string][][]any
}

func NewCatalog() (*Catalog, error) {
	logger, err := logging.NewLogger("MemoryCatalog")
	if err != nil {
		return nil, err
	}

	return &Catalog{
		logger:  logger,
		entries: make(map[string]entry),
		rows:    make(map[string][][]any),
	}, nil
}

func (c *Catalog) Start(
	_ context.Context,
) error {

	c.logger.Infoln("Using in-memory producer catalog, registrations are lost on restart")
	return nil
}

func (c *Catalog) Stop() error {
	return nil
}

func (c *Catalog) Register(
	ctx context.Context, record producer.Record, createTable string,
) error {

	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, 0)
	}

	schema, err := catalog.EncodeSchema(record.Schema)
	if err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, present := c.entries[record.Id]; present {
		return producer.NewCodedError(producer.InvalidUuid, "producer '%s' is already registered", record.Id)
	}

	c.entries[record.Id] = entry{
		name:        record.Name,
		id:          record.Id,
		schema:      schema,
		createTable: createTable,
	}
	c.rows[record.Id] = make([][]any, 0)
	return nil
}

func (c *Catalog) Lookup(
	ctx context.Context, id string,
) (producer.Record, producer.ErrorCode) {

	if id == "" {
		return producer.Record{}, producer.InvalidUuid
	}

	if ctx.Err() != nil {
		return producer.Record{}, producer.Unregistered
	}

	c.mutex.RLock()
	e, present := c.entries[id]
	c.mutex.RUnlock()

	if !present {
		return producer.Record{}, producer.Unregistered
	}

	record, err := catalog.DecodeRecord(e.name, e.id, e.schema)
	if err != nil {
		c.logger.Errorf("Catalog entry of producer '%s' is malformed: %s", id, err.Error())
		return producer.Record{}, producer.InternalError
	}
	return record, producer.NoError
}

func (c *Catalog) InsertRow(
	ctx context.Context, producerId string, _ string, params []any,
) error {

	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, 0)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	rows, present := c.rows[producerId]
	if !present {
		return errors.Errorf("table of producer '%s' doesn't exist", producerId)
	}

	row := make([]any, len(params))
	copy(row, params)
	c.rows[producerId] = append(rows, row)
	return nil
}

// Rows returns the rows inserted for the producer, in insertion order.
func (c *Catalog) Rows(
	producerId string,
) [][]any {

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	rows := c.rows[producerId]
	result := make([][]any, len(rows))
	copy(result, rows)
	return result
}

// CreateTableStatement returns the statement the producer's table was
// registered with.
func (c *Catalog) CreateTableStatement(
	producerId string,
) (string, bool) {

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	e, present := c.entries[producerId]
	return e.createTable, present
}

// Corrupt replaces the serialized schema of a producer, simulating an
// inconsistent catalog.
func (c *Catalog) Corrupt(
	producerId string, schema string,
) {

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if e, present := c.entries[producerId]; present {
		e.schema = schema
		c.entries[producerId] = e
	}
}
