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

package eventfiltering

import (
	"github.com/noctarius/conductor/internal/supporting"
	spiconfig "github.com/noctarius/conductor/spi/config"
	"github.com/noctarius/conductor/spi/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func event(id, name string, data map[string]any) sink.Event {
	return sink.Event{
		ProducerId:   id,
		ProducerName: name,
		Timestamp:    time.Now(),
		Data:         data,
	}
}

func TestEventFilter_Evaluate(t *testing.T) {
	filter, err := NewEventFilter(map[string]spiconfig.EventFilterConfig{
		"warm": {
			Condition: "data.temp > 20.0",
		},
	})
	require.NoError(t, err)

	success, err := filter.Evaluate(event("p1", "thermometer", map[string]any{"temp": float32(22.5)}))
	require.NoError(t, err)
	assert.True(t, success)

	success, err = filter.Evaluate(event("p1", "thermometer", map[string]any{"temp": float32(18)}))
	require.NoError(t, err)
	assert.False(t, success)
}

func TestEventFilter_Default_Value_Inverts(t *testing.T) {
	filter, err := NewEventFilter(map[string]spiconfig.EventFilterConfig{
		"no-test-producers": {
			Condition:    `name startsWith "test"`,
			DefaultValue: supporting.AddrOf(false),
		},
	})
	require.NoError(t, err)

	success, err := filter.Evaluate(event("p1", "test-sensor", nil))
	require.NoError(t, err)
	assert.False(t, success)

	success, err = filter.Evaluate(event("p2", "sensor", nil))
	require.NoError(t, err)
	assert.True(t, success)
}

func TestEventFilter_Restricted_To_Producers(t *testing.T) {
	filter, err := NewEventFilter(map[string]spiconfig.EventFilterConfig{
		"only-p1": {
			Producers: []string{"p1"},
			Condition: "false",
		},
	})
	require.NoError(t, err)

	success, err := filter.Evaluate(event("p1", "a", nil))
	require.NoError(t, err)
	assert.False(t, success)

	success, err = filter.Evaluate(event("p2", "a", nil))
	require.NoError(t, err)
	assert.True(t, success)
}

func TestEventFilter_Errors(t *testing.T) {
	_, err := NewEventFilter(map[string]spiconfig.EventFilterConfig{
		"broken": {Condition: "data.temp >"},
	})
	assert.Error(t, err)

	filter, err := NewEventFilter(map[string]spiconfig.EventFilterConfig{
		"not-bool": {Condition: "producer"},
	})
	require.NoError(t, err)

	_, err = filter.Evaluate(event("p1", "a", nil))
	assert.Error(t, err)
}

func TestEventFilter_Accept_All(t *testing.T) {
	filter, err := NewEventFilter(nil)
	require.NoError(t, err)

	success, err := filter.Evaluate(event("p1", "a", nil))
	require.NoError(t, err)
	assert.True(t, success)
}
