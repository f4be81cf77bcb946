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

package validation

import (
	"github.com/noctarius/conductor/internal/logging"
	"github.com/noctarius/conductor/spi/encoding"
	"github.com/noctarius/conductor/spi/producer"
)

type Validator struct {
	logger  *logging.Logger
	encoder *encoding.JsonEncoder
	strict  bool
}

func NewValidator(
	strict bool,
) (*Validator, error) {

	logger, err := logging.NewLogger("Validator")
	if err != nil {
		return nil, err
	}

	return &Validator{
		logger:  logger,
		encoder: encoding.NewJsonEncoder(false),
		strict:  strict,
	}, nil
}

// ValidateRegistration checks the registration and returns the first
// violation found. The order of the checks is fixed, clients rely on
// the resulting error code:
//
//  1. empty name: NameInvalid
//  2. empty or malformed custom id: InvalidUuid
//  3. reserved ts column: TimestampDefined
//  4. empty schema: NoMembers
//  5. malformed column name: InvalidColumnNames, unknown data type: InvalidSchema
//  6. more than MaxColumns columns: TooManyColumns
func (v *Validator) ValidateRegistration(
	registration producer.Registration,
) producer.ErrorCode {

	code := v.validateRegistration(registration)
	if code != producer.NoError {
		v.logRejection(registration, code)
	}
	return code
}

func (v *Validator) validateRegistration(
	registration producer.Registration,
) producer.ErrorCode {

	if registration.Name == "" {
		return producer.NameInvalid
	}

	if registration.HasCustomId() && !ValidIdentifier(*registration.CustomId, v.strict) {
		return producer.InvalidUuid
	}

	if registration.Schema.Contains(producer.TimestampColumn) {
		return producer.TimestampDefined
	}

	if len(registration.Schema) == 0 {
		return producer.NoMembers
	}

	for _, column := range registration.Schema.Columns() {
		if !validColumnName(column, v.strict) {
			return producer.InvalidColumnNames
		}
		if !registration.Schema[column].Valid() {
			return producer.InvalidSchema
		}
	}

	if len(registration.Schema) > producer.MaxColumns {
		return producer.TooManyColumns
	}
	return producer.NoError
}

func (v *Validator) logRejection(
	registration producer.Registration, code producer.ErrorCode,
) {

	serialized, err := v.encoder.Marshal(registration)
	if err != nil {
		v.logger.Warnf("Rejected producer registration with %s (not serializable: %s)", code, err.Error())
		return
	}
	v.logger.Warnf("Rejected producer registration with %s: %s", code, string(serialized))
}

// ValidateEmit compares the emitted field set with the registered schema.
// Both key sets must be equal. Unknown emitted columns are reported before
// missing registered columns.
func ValidateEmit(
	data map[string]producer.Value, schema producer.Schema,
) producer.ErrorCode {

	if len(schema) == 0 {
		return producer.NoMembers
	}

	for column := range data {
		if !schema.Contains(column) {
			return producer.InvalidColumnNames
		}
	}

	for column := range schema {
		if _, present := data[column]; !present {
			return producer.InvalidSchema
		}
	}
	return producer.NoError
}
