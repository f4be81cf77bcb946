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
	"github.com/noctarius/conductor/internal/supporting"
	"github.com/noctarius/conductor/spi/producer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"strings"
	"testing"
)

type RegistrationValidationTestSuite struct {
	suite.Suite
	strict  *Validator
	lenient *Validator
}

func TestRegistrationValidationTestSuite(t *testing.T) {
	suite.Run(t, new(RegistrationValidationTestSuite))
}

func (rvts *RegistrationValidationTestSuite) SetupSuite() {
	strict, err := NewValidator(true)
	require.NoError(rvts.T(), err)
	rvts.strict = strict

	lenient, err := NewValidator(false)
	require.NoError(rvts.T(), err)
	rvts.lenient = lenient
}

func (rvts *RegistrationValidationTestSuite) validate(
	name string, schema producer.Schema, customId *string,
) producer.ErrorCode {

	return rvts.strict.ValidateRegistration(producer.NewRegistration(name, schema, customId))
}

func (rvts *RegistrationValidationTestSuite) Test_Valid_Registration() {
	schema := producer.NewSchemaBuilder().AddInt("x").AddDouble("temp").Build()
	rvts.Equal(producer.NoError, rvts.validate("sensor", schema, nil))
	rvts.Equal(producer.NoError, rvts.validate("sensor", schema, supporting.AddrOf("station_7-a")))
}

func (rvts *RegistrationValidationTestSuite) Test_Empty_Name() {
	schema := producer.Schema{"x": producer.Int}
	rvts.Equal(producer.NameInvalid, rvts.validate("", schema, nil))
}

func (rvts *RegistrationValidationTestSuite) Test_Empty_Name_Before_Everything_Else() {
	schema := producer.Schema{"ts": producer.Int, "a.b": producer.Int}
	rvts.Equal(producer.NameInvalid, rvts.validate("", schema, supporting.AddrOf("")))
	rvts.Equal(producer.NameInvalid, rvts.validate("", producer.Schema{}, nil))
}

func (rvts *RegistrationValidationTestSuite) Test_Invalid_Custom_Id() {
	schema := producer.Schema{"x": producer.Int}
	for _, id := range []string{"", "a.b", `a"b`, "a b", "-leading", "ümlaut"} {
		rvts.Equal(producer.InvalidUuid, rvts.validate("n", schema, supporting.AddrOf(id)), id)
	}
}

func (rvts *RegistrationValidationTestSuite) Test_Invalid_Custom_Id_Before_Schema_Checks() {
	schema := producer.Schema{"ts": producer.Int}
	rvts.Equal(producer.InvalidUuid, rvts.validate("n", schema, supporting.AddrOf("a.b")))
	rvts.Equal(producer.InvalidUuid, rvts.validate("n", producer.Schema{}, supporting.AddrOf("")))
}

func (rvts *RegistrationValidationTestSuite) Test_Timestamp_Defined() {
	rvts.Equal(producer.TimestampDefined, rvts.validate("n", producer.Schema{"ts": producer.Time}, nil))
	rvts.Equal(producer.TimestampDefined, rvts.validate("n", producer.Schema{
		"ts":  producer.Int,
		"a.b": producer.Int,
		"x":   producer.Double,
	}, nil))
}

func (rvts *RegistrationValidationTestSuite) Test_No_Members() {
	rvts.Equal(producer.NoMembers, rvts.validate("n", producer.Schema{}, nil))
	rvts.Equal(producer.NoMembers, rvts.validate("n", nil, nil))
}

func (rvts *RegistrationValidationTestSuite) Test_Invalid_Column_Names() {
	for _, column := range []string{"a.b", `a"b`, ".", `"`} {
		schema := producer.Schema{"x": producer.Int, column: producer.Int}
		rvts.Equal(producer.InvalidColumnNames, rvts.validate("n", schema, nil), column)
	}
}

func (rvts *RegistrationValidationTestSuite) Test_Strict_Column_Names() {
	for _, column := range []string{"a b", "a;b", "a'b", "-x", strings.Repeat("c", MaxIdentifierLength+1)} {
		schema := producer.Schema{column: producer.Int}
		rvts.Equal(producer.InvalidColumnNames, rvts.validate("n", schema, nil), column)

		registration := producer.NewRegistration("n", schema, nil)
		rvts.Equal(producer.NoError, rvts.lenient.ValidateRegistration(registration), column)
	}
}

func (rvts *RegistrationValidationTestSuite) Test_Lenient_Still_Rejects_Quotes_And_Dots() {
	schema := producer.Schema{"a.b": producer.Int}
	rvts.Equal(producer.InvalidColumnNames, rvts.lenient.ValidateRegistration(producer.NewRegistration("n", schema, nil)))

	schema = producer.Schema{"": producer.Int}
	rvts.Equal(producer.InvalidColumnNames, rvts.lenient.ValidateRegistration(producer.NewRegistration("n", schema, nil)))

	id := supporting.AddrOf(`x"y`)
	schema = producer.Schema{"x": producer.Int}
	rvts.Equal(producer.InvalidUuid, rvts.lenient.ValidateRegistration(producer.NewRegistration("n", schema, id)))
}

func (rvts *RegistrationValidationTestSuite) Test_Unknown_Data_Type() {
	schema := producer.Schema{"x": producer.DataType(42)}
	rvts.Equal(producer.InvalidSchema, rvts.validate("n", schema, nil))
}

func Test_Valid_Identifier(t *testing.T) {
	assert.True(t, ValidIdentifier("8e2f1a3c-1b7e-4c7a-9f49-9e8f7b0c8d11", true))
	assert.True(t, ValidIdentifier("_hidden", true))
	assert.False(t, ValidIdentifier("", false))
	assert.False(t, ValidIdentifier("a.b", false))
	assert.True(t, ValidIdentifier("a b", false))
	assert.False(t, ValidIdentifier("a b", true))
}

func Test_Validate_Emit(t *testing.T) {
	schema := producer.Schema{"x": producer.Int, "y": producer.String}

	assert.Equal(t, producer.NoError, ValidateEmit(map[string]producer.Value{
		"x": producer.IntValue(1),
		"y": producer.StringValue("a"),
	}, schema))

	assert.Equal(t, producer.InvalidColumnNames, ValidateEmit(map[string]producer.Value{
		"x": producer.IntValue(1),
		"y": producer.StringValue("a"),
		"z": producer.IntValue(2),
	}, schema))

	assert.Equal(t, producer.InvalidSchema, ValidateEmit(map[string]producer.Value{
		"x": producer.IntValue(1),
	}, schema))

	assert.Equal(t, producer.InvalidSchema, ValidateEmit(map[string]producer.Value{}, schema))

	// unknown columns win over missing ones
	assert.Equal(t, producer.InvalidColumnNames, ValidateEmit(map[string]producer.Value{
		"z": producer.IntValue(2),
	}, schema))

	assert.Equal(t, producer.NoMembers, ValidateEmit(map[string]producer.Value{
		"x": producer.IntValue(1),
	}, producer.Schema{}))
}
