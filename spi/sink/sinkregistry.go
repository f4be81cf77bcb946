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
	"github.com/noctarius/conductor/spi/config"
	"github.com/noctarius/conductor/spi/registry"
)

var sinkRegistry = registry.New[config.SinkType, Provider]("SinkType")

// RegisterSink registers a config.SinkType to a Provider
// implementation which creates the Sink when requested
func RegisterSink(
	name config.SinkType, provider Provider,
) bool {

	return sinkRegistry.Register(name, provider)
}

// NewSink instantiates a new instance of the requested
// Sink when available, otherwise returns an error.
func NewSink(
	name config.SinkType, c *config.Config,
) (Sink, error) {

	provider, err := sinkRegistry.Lookup(name)
	if err != nil {
		return nil, err
	}
	return provider(c)
}

// SinkTypes returns the registered sink types in sorted order.
func SinkTypes() []config.SinkType {
	return sinkRegistry.Names()
}
