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
	"context"
	"github.com/noctarius/conductor/spi/config"
	"time"
)

type Provider = func(config *config.Config) (Sink, error)

// Sink publishes accepted producer records to an external system. The key
// is the producer id, the envelope the JSON encoded record.
type Sink interface {
	Start() error
	Stop() error
	Emit(
		ctx context.Context, timestamp time.Time, topicName string, key, envelope []byte,
	) error
}

type SinkFunc func(ctx context.Context, timestamp time.Time, topicName string, key, envelope []byte) error

func (sf SinkFunc) Start() error {
	return nil
}

func (sf SinkFunc) Stop() error {
	return nil
}

func (sf SinkFunc) Emit(
	ctx context.Context, timestamp time.Time, topicName string, key, envelope []byte,
) error {

	return sf(ctx, timestamp, topicName, key, envelope)
}
