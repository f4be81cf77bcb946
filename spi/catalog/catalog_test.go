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
	"github.com/noctarius/conductor/spi/config"
	"github.com/noctarius/conductor/spi/producer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func Test_Schema_Round_Trip(t *testing.T) {
	schema := producer.Schema{"x": producer.Int, "seen": producer.Time}
	encoded, err := EncodeSchema(schema)
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":"Int","seen":"Time"}`, encoded)

	record, err := DecodeRecord("n", "id-1", encoded)
	require.NoError(t, err)
	assert.Equal(t, producer.Record{Name: "n", Id: "id-1", Schema: schema}, record)
}

func Test_Decode_Record_Rejects_Malformed_Entries(t *testing.T) {
	_, err := DecodeRecord("", "id", `{"x":"Int"}`)
	assert.Error(t, err)

	_, err = DecodeRecord("n", "", `{"x":"Int"}`)
	assert.Error(t, err)

	_, err = DecodeRecord("n", "id", "")
	assert.Error(t, err)

	_, err = DecodeRecord("n", "id", `{"x":"Decimal"}`)
	assert.Error(t, err)

	_, err = DecodeRecord("n", "id", `{}`)
	assert.Error(t, err)

	_, err = DecodeRecord("n", "id", `not json`)
	assert.Error(t, err)
}

func Test_Catalog_Registry(t *testing.T) {
	name := config.CatalogType("registry-test")
	assert.True(t, RegisterCatalog(name, func(_ *config.Config) (Catalog, error) {
		return nil, nil
	}))
	assert.False(t, RegisterCatalog(name, func(_ *config.Config) (Catalog, error) {
		return nil, nil
	}))

	_, err := NewCatalog(name, &config.Config{})
	assert.NoError(t, err)

	_, err = NewCatalog("unknown", &config.Config{})
	assert.Error(t, err)
}
