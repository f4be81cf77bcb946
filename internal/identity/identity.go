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

package identity

import (
	"github.com/go-errors/errors"
	"github.com/hashicorp/go-uuid"
	"github.com/noctarius/conductor/spi/producer"
)

// Assign returns the identifier of a new producer. A custom id is returned
// verbatim, it must have been validated before. Otherwise a random UUIDv4
// is generated. Uniqueness against the catalog isn't checked here.
func Assign(
	registration producer.Registration,
) (string, error) {

	if registration.HasCustomId() {
		return *registration.CustomId, nil
	}

	raw, err := uuid.GenerateRandomBytes(16)
	if err != nil {
		return "", errors.Wrap(err, 0)
	}

	// RFC 4122 version 4, variant 10
	raw[6] = (raw[6] & 0x0f) | 0x40
	raw[8] = (raw[8] & 0x3f) | 0x80

	id, err := uuid.FormatUUID(raw)
	if err != nil {
		return "", errors.Wrap(err, 0)
	}
	return id, nil
}
