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
	"github.com/noctarius/conductor/spi/catalog"
	"github.com/noctarius/conductor/spi/config"
	"github.com/noctarius/conductor/spi/producer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func Test_Register_And_Lookup(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	record := producer.Record{Name: "n", Id: "p1", Schema: producer.Schema{"x": producer.Int}}
	require.NoError(t, c.Register(ctx, record, `CREATE TABLE IF NOT EXISTS "p1" (ts TIMESTAMP, "x" long) timestamp(ts);`))

	found, code := c.Lookup(ctx, "p1")
	assert.Equal(t, producer.NoError, code)
	assert.Equal(t, record, found)

	statement, present := c.CreateTableStatement("p1")
	assert.True(t, present)
	assert.Contains(t, statement, `"p1"`)
}

func Test_Duplicate_Registration(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)
	ctx := context.Background()

	record := producer.Record{Name: "n", Id: "p1", Schema: producer.Schema{"x": producer.Int}}
	require.NoError(t, c.Register(ctx, record, ""))

	err = c.Register(ctx, record, "")
	require.Error(t, err)
	assert.Equal(t, producer.InvalidUuid, producer.CodeOf(err))
}

func Test_Lookup_Failures(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)
	ctx := context.Background()

	_, code := c.Lookup(ctx, "")
	assert.Equal(t, producer.InvalidUuid, code)

	_, code = c.Lookup(ctx, "missing")
	assert.Equal(t, producer.Unregistered, code)

	record := producer.Record{Name: "n", Id: "p1", Schema: producer.Schema{"x": producer.Int}}
	require.NoError(t, c.Register(ctx, record, ""))
	c.Corrupt("p1", `{"x":"Decimal"}`)

	_, code = c.Lookup(ctx, "p1")
	assert.Equal(t, producer.InternalError, code)
}

func Test_Insert_Row(t *testing.T) {
	c, err := NewCatalog()
	require.NoError(t, err)
	ctx := context.Background()

	assert.Error(t, c.InsertRow(ctx, "p1", "", []any{int64(1)}))

	record := producer.Record{Name: "n", Id: "p1", Schema: producer.Schema{"x": producer.Int}}
	require.NoError(t, c.Register(ctx, record, ""))

	params := []any{int64(1)}
	require.NoError(t, c.InsertRow(ctx, "p1", "", params))
	params[0] = int64(2)

	assert.Equal(t, [][]any{{int64(1)}}, c.Rows("p1"))
}

func Test_Registered_As_Provider(t *testing.T) {
	c, err := catalog.NewCatalog(config.MemoryCatalog, &config.Config{})
	require.NoError(t, err)
	assert.IsType(t, &Catalog{}, c)
}
