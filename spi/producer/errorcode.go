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

package producer

import (
	"fmt"
	"github.com/go-errors/errors"
)

// ErrorCode is the result code of every producer operation. The numeric
// values are part of the wire format and must never be reordered.
type ErrorCode uint8

const (
	// NoError indicates success. It exists for clients which
	// cannot represent optional values on the wire.
	NoError ErrorCode = iota
	// TimestampDefined means the schema used the reserved ts column.
	TimestampDefined
	// NoMembers means the schema (or the registered schema on emit) is empty.
	NoMembers
	// InvalidColumnNames means a column name has illegal characters
	// or an emit referenced a column which isn't registered.
	InvalidColumnNames
	// TooManyColumns means the schema exceeds the maximum column count.
	TooManyColumns
	// InternalError means a store failure or catalog inconsistency.
	InternalError
	// InvalidUuid means an empty, malformed or already taken identifier.
	InvalidUuid
	// NameInvalid means the producer name is empty.
	NameInvalid
	// Unregistered means there is no catalog entry for the identifier.
	Unregistered
	// InvalidData means a value couldn't be coerced to its declared type.
	InvalidData
	// InvalidSchema means the emitted field set doesn't match the registered schema.
	InvalidSchema
)

// MaxColumns is the maximum number of columns supported by the store.
const MaxColumns = 2_147_483_647

var errorCodeNames = []string{
	"NoError",
	"TimestampDefined",
	"NoMembers",
	"InvalidColumnNames",
	"TooManyColumns",
	"InternalError",
	"InvalidUuid",
	"NameInvalid",
	"Unregistered",
	"InvalidData",
	"InvalidSchema",
}

func ErrorCodes() []ErrorCode {
	codes := make([]ErrorCode, 0, len(errorCodeNames))
	for i := range errorCodeNames {
		codes = append(codes, ErrorCode(i))
	}
	return codes
}

func (ec ErrorCode) Valid() bool {
	return int(ec) < len(errorCodeNames)
}

func (ec ErrorCode) String() string {
	if ec.Valid() {
		return errorCodeNames[ec]
	}
	return fmt.Sprintf("ErrorCode(%d)", uint8(ec))
}

// Byte returns the stable wire identifier of the error code.
func (ec ErrorCode) Byte() byte {
	return byte(ec)
}

func ParseErrorCode(name string) (ErrorCode, error) {
	for i, n := range errorCodeNames {
		if n == name {
			return ErrorCode(i), nil
		}
	}
	return 0, errors.Errorf("unknown error code '%s'", name)
}

// CodedError carries an ErrorCode through code paths which
// use regular Go errors.
type CodedError struct {
	Code    ErrorCode
	Message string
}

func NewCodedError(code ErrorCode, format string, args ...any) *CodedError {
	return &CodedError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *CodedError) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf extracts the ErrorCode of err, falling back to
// InternalError for errors without one.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return NoError
	}
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return InternalError
}
