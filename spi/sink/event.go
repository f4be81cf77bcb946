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

package sink

import (
	"time"
)

// Event is an accepted producer record, its data holds the coerced
// column values.
type Event struct {
	ProducerId   string
	ProducerName string
	Timestamp    time.Time
	Data         map[string]any
}

// Envelope is the published form of an Event.
type Envelope struct {
	Producer  string         `json:"producer"`
	Name      string         `json:"name"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

func NewEnvelope(
	event Event,
) Envelope {

	return Envelope{
		Producer:  event.ProducerId,
		Name:      event.ProducerName,
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
		Data:      event.Data,
	}
}
