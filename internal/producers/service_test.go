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

package producers

import (
	"context"
	"github.com/go-errors/errors"
	"github.com/noctarius/conductor/internal/catalog/memory"
	"github.com/noctarius/conductor/internal/sqlgen"
	"github.com/noctarius/conductor/internal/validation"
	"github.com/noctarius/conductor/spi/producer"
	"github.com/noctarius/conductor/spi/sink"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"math"
	"sync"
	"testing"
	"time"
)

type recordingPublisher struct {
	mutex  sync.Mutex
	events []sink.Event
}

func (r *recordingPublisher) Offer(
	event sink.Event,
) bool {

	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.events = append(r.events, event)
	return true
}

type failingInsertCatalog struct {
	*memory.Catalog
}

func (f failingInsertCatalog) InsertRow(
	_ context.Context, _ string, _ string, _ []any,
) error {

	return errors.New("connection reset by peer")
}

type failingRegisterCatalog struct {
	*memory.Catalog
}

func (f failingRegisterCatalog) Register(
	_ context.Context, _ producer.Record, _ string,
) error {

	return errors.New("disk full")
}

type ServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	catalog   *memory.Catalog
	publisher *recordingPublisher
	service   *Service
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func (sts *ServiceTestSuite) SetupTest() {
	c, err := memory.NewCatalog()
	sts.Require().NoError(err)

	validator, err := validation.NewValidator(true)
	sts.Require().NoError(err)

	sts.ctx = context.Background()
	sts.catalog = c
	sts.publisher = &recordingPublisher{}
	sts.service, err = NewService(c, validator, sqlgen.QuestDB, sts.publisher, nil)
	sts.Require().NoError(err)
}

func (sts *ServiceTestSuite) register(
	schema producer.Schema, customId *string,
) producer.RegistrationResult {

	return sts.service.Register(sts.ctx, producer.NewRegistration("n", schema, customId))
}

func (sts *ServiceTestSuite) mustRegister(
	schema producer.Schema,
) string {

	result := sts.register(schema, nil)
	sts.Require().Equal(producer.NoError, result.Error)
	sts.Require().NotNil(result.Id)
	return *result.Id
}

func (sts *ServiceTestSuite) Test_Round_Trip() {
	id := sts.mustRegister(producer.Schema{"x": producer.Int})
	sts.NotEmpty(id)

	result := sts.service.Emit(sts.ctx, producer.Emit{
		ProducerId: id,
		Timestamp:  lo.ToPtr(uint64(1700000000000000)),
		Data:       map[string]producer.Value{"x": producer.IntValue(5)},
	})
	sts.Equal(producer.NoError, result.Error)

	rows := sts.catalog.Rows(id)
	sts.Require().Len(rows, 1)
	sts.Equal(time.UnixMicro(1700000000000000).UTC(), rows[0][0])
	sts.Equal(int64(5), rows[0][1])
	sts.True(sts.service.CheckRegistered(sts.ctx, id))
}

func (sts *ServiceTestSuite) Test_Register_Generates_Table() {
	id := sts.mustRegister(producer.Schema{"x": producer.Int, "label": producer.String})

	statement, present := sts.catalog.CreateTableStatement(id)
	sts.True(present)
	sts.Equal(
		`CREATE TABLE IF NOT EXISTS "`+id+`" (ts TIMESTAMP, "label" string, "x" long) timestamp(ts);`,
		statement,
	)
}

func (sts *ServiceTestSuite) Test_Register_With_Custom_Id() {
	result := sts.register(producer.Schema{"x": producer.Int}, lo.ToPtr("sensor-1"))
	sts.Equal(producer.NoError, result.Error)
	sts.Require().NotNil(result.Id)
	sts.Equal("sensor-1", *result.Id)

	result = sts.register(producer.Schema{"y": producer.Int}, lo.ToPtr("sensor-1"))
	sts.Equal(producer.InvalidUuid, result.Error)
	sts.Nil(result.Id)
}

func (sts *ServiceTestSuite) Test_Register_Validation_Failures() {
	cases := []struct {
		name     string
		schema   producer.Schema
		expected producer.ErrorCode
	}{
		{"empty schema", producer.Schema{}, producer.NoMembers},
		{"reserved ts", producer.Schema{"ts": producer.Time, "a.b": producer.Int}, producer.TimestampDefined},
		{"dotted column", producer.Schema{"a.b": producer.Int}, producer.InvalidColumnNames},
		{"quoted column", producer.Schema{`a"b`: producer.Int}, producer.InvalidColumnNames},
	}

	for _, c := range cases {
		result := sts.register(c.schema, nil)
		sts.Equal(c.expected, result.Error, c.name)
		sts.Nil(result.Id, c.name)
	}

	result := sts.service.Register(sts.ctx, producer.NewRegistration("", producer.Schema{"a.b": producer.Int}, nil))
	sts.Equal(producer.NameInvalid, result.Error)
}

func (sts *ServiceTestSuite) Test_Emit_Unregistered() {
	result := sts.service.Emit(sts.ctx, producer.Emit{
		ProducerId: "0f5b8a4e-3b0e-4c1a-9a3e-7d2f0c1b2a3d",
		Data:       map[string]producer.Value{"x": producer.IntValue(5)},
	})
	sts.Equal(producer.Unregistered, result.Error)
	sts.False(sts.service.CheckRegistered(sts.ctx, "0f5b8a4e-3b0e-4c1a-9a3e-7d2f0c1b2a3d"))
}

func (sts *ServiceTestSuite) Test_Emit_Empty_Id() {
	result := sts.service.Emit(sts.ctx, producer.Emit{
		Data: map[string]producer.Value{"x": producer.IntValue(5)},
	})
	sts.Equal(producer.InvalidUuid, result.Error)
	sts.False(sts.service.CheckRegistered(sts.ctx, ""))
}

func (sts *ServiceTestSuite) Test_Emit_Float_Range() {
	floatId := sts.mustRegister(producer.Schema{"v": producer.Float})
	doubleId := sts.mustRegister(producer.Schema{"v": producer.Double})

	data := map[string]producer.Value{"v": producer.FloatValue(12345678901234.0)}

	result := sts.service.Emit(sts.ctx, producer.Emit{ProducerId: floatId, Data: data})
	sts.Equal(producer.InvalidData, result.Error)
	sts.Empty(sts.catalog.Rows(floatId))

	result = sts.service.Emit(sts.ctx, producer.Emit{ProducerId: doubleId, Data: data})
	sts.Equal(producer.NoError, result.Error)
	rows := sts.catalog.Rows(doubleId)
	sts.Require().Len(rows, 1)
	sts.Equal(12345678901234.0, rows[0][1])
}

func (sts *ServiceTestSuite) Test_Emit_Key_Set_Mismatch() {
	id := sts.mustRegister(producer.Schema{"x": producer.Int, "y": producer.Int})

	result := sts.service.Emit(sts.ctx, producer.Emit{
		ProducerId: id,
		Data: map[string]producer.Value{
			"x": producer.IntValue(1), "y": producer.IntValue(2), "z": producer.IntValue(3),
		},
	})
	sts.Equal(producer.InvalidColumnNames, result.Error)

	result = sts.service.Emit(sts.ctx, producer.Emit{
		ProducerId: id,
		Data:       map[string]producer.Value{"x": producer.IntValue(1)},
	})
	sts.Equal(producer.InvalidSchema, result.Error)
	sts.Empty(sts.catalog.Rows(id))
	sts.Empty(sts.publisher.events)
}

func (sts *ServiceTestSuite) Test_Emit_Type_Mismatch() {
	id := sts.mustRegister(producer.Schema{"x": producer.Int})

	result := sts.service.Emit(sts.ctx, producer.Emit{
		ProducerId: id,
		Data:       map[string]producer.Value{"x": producer.StringValue("five")},
	})
	sts.Equal(producer.InvalidData, result.Error)
}

func (sts *ServiceTestSuite) Test_Emit_Timestamp_Out_Of_Range() {
	id := sts.mustRegister(producer.Schema{"x": producer.Int})

	result := sts.service.Emit(sts.ctx, producer.Emit{
		ProducerId: id,
		Timestamp:  lo.ToPtr(uint64(math.MaxInt64) + 1),
		Data:       map[string]producer.Value{"x": producer.IntValue(1)},
	})
	sts.Equal(producer.InvalidData, result.Error)
}

func (sts *ServiceTestSuite) Test_Emit_Defaults_Timestamp_To_Now() {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	sts.service.clock = func() time.Time {
		return now
	}

	id := sts.mustRegister(producer.Schema{"x": producer.Int})
	result := sts.service.Emit(sts.ctx, producer.Emit{
		ProducerId: id,
		Data:       map[string]producer.Value{"x": producer.IntValue(1)},
	})
	sts.Equal(producer.NoError, result.Error)
	sts.Equal(now, sts.catalog.Rows(id)[0][0])
}

func (sts *ServiceTestSuite) Test_Emit_Publishes_Accepted_Records() {
	id := sts.mustRegister(producer.Schema{"temp": producer.Double, "room": producer.String})

	result := sts.service.Emit(sts.ctx, producer.Emit{
		ProducerId: id,
		Timestamp:  lo.ToPtr(uint64(1000000)),
		Data: map[string]producer.Value{
			"temp": producer.FloatValue(21.5), "room": producer.StringValue("kitchen"),
		},
	})
	sts.Require().Equal(producer.NoError, result.Error)

	sts.Require().Len(sts.publisher.events, 1)
	event := sts.publisher.events[0]
	sts.Equal(id, event.ProducerId)
	sts.Equal("n", event.ProducerName)
	sts.Equal(time.Unix(1, 0).UTC(), event.Timestamp)
	sts.Equal(map[string]any{"temp": 21.5, "room": "kitchen"}, event.Data)
}

func (sts *ServiceTestSuite) Test_Emit_Malformed_Catalog_Entry() {
	id := sts.mustRegister(producer.Schema{"x": producer.Int})
	sts.catalog.Corrupt(id, "{}")

	result := sts.service.Emit(sts.ctx, producer.Emit{
		ProducerId: id,
		Data:       map[string]producer.Value{"x": producer.IntValue(1)},
	})
	sts.Equal(producer.InternalError, result.Error)
	sts.False(sts.service.CheckRegistered(sts.ctx, id))
}

func Test_Emit_Store_Failure_Is_Internal_Error(t *testing.T) {
	c, err := memory.NewCatalog()
	require.NoError(t, err)
	validator, err := validation.NewValidator(true)
	require.NoError(t, err)

	publisher := &recordingPublisher{}
	service, err := NewService(failingInsertCatalog{c}, validator, sqlgen.QuestDB, publisher, nil)
	require.NoError(t, err)

	ctx := context.Background()
	registration := service.Register(ctx, producer.NewRegistration("n", producer.Schema{"x": producer.Int}, nil))
	require.Equal(t, producer.NoError, registration.Error)

	result := service.Emit(ctx, producer.Emit{
		ProducerId: *registration.Id,
		Data:       map[string]producer.Value{"x": producer.IntValue(1)},
	})
	assert.Equal(t, producer.InternalError, result.Error)
	assert.Empty(t, publisher.events)
}

func Test_Register_Store_Failure_Is_Internal_Error(t *testing.T) {
	c, err := memory.NewCatalog()
	require.NoError(t, err)
	validator, err := validation.NewValidator(true)
	require.NoError(t, err)

	service, err := NewService(failingRegisterCatalog{c}, validator, sqlgen.QuestDB, nil, nil)
	require.NoError(t, err)

	result := service.Register(context.Background(), producer.NewRegistration("n", producer.Schema{"x": producer.Int}, nil))
	assert.Equal(t, producer.InternalError, result.Error)
	assert.Nil(t, result.Id)
}

func Test_Concurrent_Registration_With_Custom_Id(t *testing.T) {
	c, err := memory.NewCatalog()
	require.NoError(t, err)
	validator, err := validation.NewValidator(true)
	require.NoError(t, err)

	service, err := NewService(c, validator, sqlgen.QuestDB, nil, nil)
	require.NoError(t, err)

	const attempts = 16
	results := make(chan producer.RegistrationResult, attempts)

	start := make(chan struct{})
	wg := sync.WaitGroup{}
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results <- service.Register(
				context.Background(),
				producer.NewRegistration("n", producer.Schema{"x": producer.Int}, lo.ToPtr("sensor-1")),
			)
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	successes := 0
	for result := range results {
		if result.Error == producer.NoError {
			successes++
		} else {
			assert.Equal(t, producer.InvalidUuid, result.Error)
		}
	}
	assert.Equal(t, 1, successes)
}
