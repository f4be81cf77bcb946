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
	"github.com/noctarius/conductor/internal/coercion"
	"github.com/noctarius/conductor/internal/identity"
	"github.com/noctarius/conductor/internal/logging"
	"github.com/noctarius/conductor/internal/sqlgen"
	"github.com/noctarius/conductor/internal/stats"
	"github.com/noctarius/conductor/internal/supporting"
	"github.com/noctarius/conductor/internal/validation"
	"github.com/noctarius/conductor/spi/catalog"
	"github.com/noctarius/conductor/spi/producer"
	"github.com/noctarius/conductor/spi/sink"
	"math"
	"time"
)

// EventPublisher receives the records of accepted emits.
type EventPublisher interface {
	Offer(event sink.Event) bool
}

// Service implements the producer operations on top of a catalog. It
// holds no producer state itself, every operation goes to the catalog.
type Service struct {
	logger    *logging.Logger
	catalog   catalog.Catalog
	validator *validation.Validator
	dialect   sqlgen.Dialect
	publisher EventPublisher
	reporter  *stats.Reporter
	clock     func() time.Time
}

// NewService creates the producer service. The publisher and reporter
// are optional.
func NewService(
	catalog catalog.Catalog, validator *validation.Validator, dialect sqlgen.Dialect,
	publisher EventPublisher, reporter *stats.Reporter,
) (*Service, error) {

	logger, err := logging.NewLogger("ProducerService")
	if err != nil {
		return nil, err
	}

	return &Service{
		logger:    logger,
		catalog:   catalog,
		validator: validator,
		dialect:   dialect,
		publisher: publisher,
		reporter:  reporter,
		clock:     time.Now,
	}, nil
}

func (s *Service) Register(
	ctx context.Context, registration producer.Registration,
) producer.RegistrationResult {

	code, id := s.register(ctx, registration)
	s.count("register", code)
	return producer.NewRegistrationResult(code, id)
}

func (s *Service) register(
	ctx context.Context, registration producer.Registration,
) (producer.ErrorCode, string) {

	if code := s.validator.ValidateRegistration(registration); code != producer.NoError {
		return code, ""
	}

	id, err := identity.Assign(registration)
	if err != nil {
		s.logger.Errorf("Failed to assign producer identifier: %s", supporting.ErrorStack(err))
		return producer.InternalError, ""
	}

	record := producer.Record{
		Name:   registration.Name,
		Id:     id,
		Schema: registration.Schema,
	}
	createTable := sqlgen.BuildCreateTable(s.dialect, registration.Schema, id)

	start := time.Now()
	err = s.catalog.Register(ctx, record, createTable)
	s.observe("store.register", start)
	if err != nil {
		code := producer.CodeOf(err)
		if code == producer.InternalError {
			s.logger.Errorf("Failed to persist producer '%s': %s", id, supporting.ErrorStack(err))
		} else {
			s.logger.Infof("Registration of producer '%s' rejected: %s", id, err.Error())
		}
		return code, ""
	}

	s.logger.Verbosef("Registered producer '%s' (%s) with %d columns", id, record.Name, len(record.Schema))
	return producer.NoError, id
}

func (s *Service) Emit(
	ctx context.Context, emit producer.Emit,
) producer.EmitResult {

	code := s.emit(ctx, emit)
	s.count("emit", code)
	return producer.EmitResult{Error: code}
}

func (s *Service) emit(
	ctx context.Context, emit producer.Emit,
) producer.ErrorCode {

	start := time.Now()
	record, code := s.catalog.Lookup(ctx, emit.ProducerId)
	s.observe("store.lookup", start)
	if code != producer.NoError {
		return code
	}

	if code := validation.ValidateEmit(emit.Data, record.Schema); code != producer.NoError {
		return code
	}

	timestamp, ok := s.timestamp(emit.Timestamp)
	if !ok {
		return producer.InvalidData
	}

	columns := record.Schema.Columns()
	params := make([]any, 0, len(columns)+1)
	params = append(params, timestamp)
	data := make(map[string]any, len(columns))
	for _, column := range columns {
		value, err := coercion.Coerce(emit.Data[column], record.Schema[column])
		if err != nil {
			s.logger.Debugf("Emit to producer '%s' rejected: %s", record.Id, err.Error())
			return producer.CodeOf(err)
		}
		params = append(params, value)
		data[column] = value
	}

	statement, err := sqlgen.BuildInsert(record.Id, append([]string{producer.TimestampColumn}, columns...))
	if err != nil {
		s.logger.Errorf("Failed to build insert for producer '%s': %s", record.Id, err.Error())
		return producer.InternalError
	}

	start = time.Now()
	err = s.catalog.InsertRow(ctx, record.Id, statement, params)
	s.observe("store.insert", start)
	if err != nil {
		s.logger.Errorf("Failed to insert row of producer '%s': %s", record.Id, supporting.ErrorStack(err))
		return producer.InternalError
	}

	if s.publisher != nil {
		s.publisher.Offer(sink.Event{
			ProducerId:   record.Id,
			ProducerName: record.Name,
			Timestamp:    timestamp,
			Data:         data,
		})
	}
	return producer.NoError
}

// CheckRegistered reports whether the producer can be looked up. Any
// lookup failure counts as not registered.
func (s *Service) CheckRegistered(
	ctx context.Context, id string,
) bool {

	_, code := s.catalog.Lookup(ctx, id)
	return code == producer.NoError
}

func (s *Service) timestamp(
	micros *uint64,
) (time.Time, bool) {

	if micros == nil {
		return s.clock().UTC(), true
	}
	if *micros > math.MaxInt64 {
		return time.Time{}, false
	}
	return time.UnixMicro(int64(*micros)).UTC(), true
}

func (s *Service) count(
	operation string, code producer.ErrorCode,
) {

	if s.reporter != nil {
		s.reporter.Incr(operation, stats.Tag("result", code.String()))
	}
}

func (s *Service) observe(
	name string, start time.Time,
) {

	if s.reporter != nil {
		s.reporter.Observe(name, time.Since(start))
	}
}
