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
	"context"
	"github.com/noctarius/conductor/spi/client"
	"github.com/noctarius/conductor/spi/config"
	"github.com/noctarius/conductor/spi/producer"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func newTestConfig(
	sinkType config.SinkType,
) *config.Config {

	return &config.Config{
		Catalog: config.CatalogConfig{Type: config.MemoryCatalog},
		Http:    config.HttpConfig{Address: "127.0.0.1:0"},
		Stats:   config.StatsConfig{Enabled: lo.ToPtr(false)},
		Sink:    config.SinkConfig{Type: sinkType},
	}
}

func Test_Server_Lifecycle(t *testing.T) {
	for _, sinkType := range []config.SinkType{config.None, config.Stdout} {
		t.Run(string(sinkType), func(t *testing.T) {
			server, err := NewServer(newTestConfig(sinkType))
			require.NoError(t, err)
			assert.Equal(t, sinkType == config.None, server.eventEmitter == nil)

			ctx := context.Background()
			require.NoError(t, server.Start(ctx))
			defer func() {
				assert.NoError(t, server.Stop())
			}()

			c, err := client.New("http://" + server.HttpAddr())
			require.NoError(t, err)

			id, err := c.Register(ctx, "thermometer", producer.NewSchemaBuilder().AddDouble("temp").Build(), nil)
			require.NoError(t, err)
			require.NoError(t, c.Emit(ctx, id, time.Now(), map[string]any{"temp": 21.5}))

			registered, err := c.IsRegistered(ctx, id)
			require.NoError(t, err)
			assert.True(t, registered)
		})
	}
}

func Test_Server_Unknown_Catalog(t *testing.T) {
	c := newTestConfig(config.None)
	c.Catalog.Type = "cassandra"

	_, err := NewServer(c)
	assert.ErrorContains(t, err, "cassandra")
}

func Test_Server_Unknown_Sink(t *testing.T) {
	_, err := NewServer(newTestConfig("carrier-pigeon"))
	assert.ErrorContains(t, err, "carrier-pigeon")
}
