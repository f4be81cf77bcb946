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

package catalog

import (
	"context"
	"github.com/go-errors/errors"
	"github.com/noctarius/conductor/spi/config"
	"github.com/noctarius/conductor/spi/encoding"
	"github.com/noctarius/conductor/spi/producer"
	"github.com/noctarius/conductor/spi/registry"
)

// Catalog is the authoritative directory of registered producers and the
// gateway to their data tables. Implementations hold no schema cache,
// every Lookup is a round-trip to the underlying store.
type Catalog interface {
	Start(
		ctx context.Context,
	) error
	Stop() error
	// Register creates the producer's data table using createTable and
	// inserts the catalog entry as one unit. An identifier which is
	// already registered fails with a *producer.CodedError carrying
	// producer.InvalidUuid.
	Register(
		ctx context.Context, record producer.Record, createTable string,
	) error
	// Lookup fails with InvalidUuid for an empty id, Unregistered if no
	// entry exists or the store is unreachable, and InternalError if the
	// catalog is inconsistent.
	Lookup(
		ctx context.Context, id string,
	) (producer.Record, producer.ErrorCode)
	InsertRow(
		ctx context.Context, producerId string, statement string, params []any,
	) error
}

// Provider creates a Catalog from the configuration.
type Provider func(
	config *config.Config,
) (Catalog, error)

var catalogRegistry = registry.New[config.CatalogType, Provider]("CatalogType")

// RegisterCatalog registers a config.CatalogType to a Provider
// implementation which creates the Catalog when requested
func RegisterCatalog(
	name config.CatalogType, provider Provider,
) bool {

	return catalogRegistry.Register(name, provider)
}

// NewCatalog instantiates a new instance of the requested
// Catalog when available, otherwise returns an error.
func NewCatalog(
	name config.CatalogType, c *config.Config,
) (Catalog, error) {

	provider, err := catalogRegistry.Lookup(name)
	if err != nil {
		return nil, err
	}
	return provider(c)
}

var (
	schemaEncoder = encoding.NewJsonEncoder(false)
	schemaDecoder = encoding.NewJsonDecoder(false)
)

// EncodeSchema serializes the schema into its catalog column form.
func EncodeSchema(
	schema producer.Schema,
) (string, error) {

	data, err := schemaEncoder.Marshal(schema)
	if err != nil {
		return "", errors.Wrap(err, 0)
	}
	return string(data), nil
}

// DecodeRecord rebuilds a record from its catalog columns. Empty fields
// or a malformed schema are a catalog inconsistency.
func DecodeRecord(
	name, id, schema string,
) (producer.Record, error) {

	if name == "" || id == "" || schema == "" {
		return producer.Record{}, errors.Errorf("incomplete catalog entry for producer '%s'", id)
	}

	decoded := producer.Schema{}
	if err := schemaDecoder.Unmarshal([]byte(schema), &decoded); err != nil {
		return producer.Record{}, errors.Wrap(err, 0)
	}

	if len(decoded) == 0 {
		return producer.Record{}, errors.Errorf("empty schema in catalog entry for producer '%s'", id)
	}

	return producer.Record{
		Name:   name,
		Id:     id,
		Schema: decoded,
	}, nil
}
