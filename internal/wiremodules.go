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

package internal

import (
	_ "github.com/noctarius/conductor/internal/catalog/memory"
	_ "github.com/noctarius/conductor/internal/catalog/postgres"
	"github.com/noctarius/conductor/internal/eventing/eventemitting"
	_ "github.com/noctarius/conductor/internal/eventing/namingstrategies"
	_ "github.com/noctarius/conductor/internal/eventing/sinks/awskinesis"
	_ "github.com/noctarius/conductor/internal/eventing/sinks/awssqs"
	_ "github.com/noctarius/conductor/internal/eventing/sinks/http"
	_ "github.com/noctarius/conductor/internal/eventing/sinks/kafka"
	_ "github.com/noctarius/conductor/internal/eventing/sinks/nats"
	_ "github.com/noctarius/conductor/internal/eventing/sinks/redis"
	_ "github.com/noctarius/conductor/internal/eventing/sinks/stdout"
	"github.com/noctarius/conductor/internal/producers"
	"github.com/noctarius/conductor/internal/sqlgen"
	"github.com/noctarius/conductor/internal/stats"
	"github.com/noctarius/conductor/internal/transport/httpapi"
	"github.com/noctarius/conductor/internal/validation"
	"github.com/noctarius/conductor/spi/catalog"
	"github.com/noctarius/conductor/spi/config"
	"github.com/noctarius/conductor/spi/sink"
	"github.com/noctarius/conductor/spi/wiring"
)

var StaticModule = wiring.DefineModule(
	"Static", func(module wiring.Module) {
		module.Provide(stats.NewStatsService)

		module.Provide(func(c *config.Config) (sqlgen.Dialect, error) {
			return sqlgen.DialectFor(config.GetOrDefault(c, config.PropertyStoreDialect, config.QuestDB))
		})

		module.Provide(func(c *config.Config) (*validation.Validator, error) {
			return validation.NewValidator(config.GetOrDefault(c, config.PropertyProducersStrictIdentifiers, true))
		})

		module.Provide(func(
			c *config.Config, s sink.Sink, statsService *stats.Service,
		) (*eventemitting.EventEmitter, error) {

			// No sink configured, accepted records aren't published
			if s == nil {
				return nil, nil
			}
			return eventemitting.NewEventEmitterWithConfig(c, s, statsService.NewReporter("sink"))
		})

		module.Provide(func(
			catalog catalog.Catalog, validator *validation.Validator, dialect sqlgen.Dialect,
			eventEmitter *eventemitting.EventEmitter, statsService *stats.Service,
		) (*producers.Service, error) {

			var publisher producers.EventPublisher
			if eventEmitter != nil {
				publisher = eventEmitter
			}
			return producers.NewService(catalog, validator, dialect, publisher, statsService.NewReporter("producers"))
		})

		module.Provide(func(
			c *config.Config, service *producers.Service,
		) (*httpapi.Server, error) {

			return httpapi.NewServer(c, service)
		})
	},
)

var DynamicModule = wiring.DefineModule(
	"Dynamic", func(module wiring.Module) {
		module.Provide(func(c *config.Config) (catalog.Catalog, error) {
			name := config.GetOrDefault(c, config.PropertyCatalogType, config.PostgresCatalog)
			return catalog.NewCatalog(name, c)
		})

		module.Provide(func(c *config.Config) (sink.Sink, error) {
			name := config.GetOrDefault(c, config.PropertySink, config.None)
			if name == config.None {
				return nil, nil
			}
			return sink.NewSink(name, c)
		})
	},
)
