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

package eventemitting

import (
	"github.com/cenkalti/backoff/v4"
	"github.com/noctarius/conductor/internal/eventing/eventfiltering"
	"github.com/noctarius/conductor/internal/eventing/namingstrategies"
	"github.com/noctarius/conductor/internal/supporting"
	inttest "github.com/noctarius/conductor/internal/testing"
	"github.com/noctarius/conductor/spi/config"
	"github.com/noctarius/conductor/spi/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func newTestEmitter(
	t *testing.T, s sink.Sink, filters map[string]config.EventFilterConfig, maxAttempts uint64,
) *EventEmitter {

	filter, err := eventfiltering.NewEventFilter(filters)
	require.NoError(t, err)

	emitter, err := NewEventEmitter(s, filter, &namingstrategies.ProducerIdNamingStrategy{}, nil, "conductor", maxAttempts)
	require.NoError(t, err)
	emitter.newBackOff = func() backoff.BackOff {
		return backoff.NewConstantBackOff(time.Millisecond)
	}
	return emitter
}

func testEvent(id string, temp float64) sink.Event {
	return sink.Event{
		ProducerId:   id,
		ProducerName: "thermometer",
		Timestamp:    time.Date(2024, 5, 6, 7, 8, 9, 100, time.UTC),
		Data:         map[string]any{"temp": temp},
	}
}

func Test_Publishes_Envelope(t *testing.T) {
	s := inttest.NewEventCollectorSink()
	emitter := newTestEmitter(t, s, nil, 3)
	require.NoError(t, emitter.Start())

	assert.True(t, emitter.Offer(testEvent("p1", 21.5)))
	require.NoError(t, emitter.Stop())

	events := s.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "conductor.p1", events[0].TopicName)
	assert.Equal(t, "p1", events[0].Key)
	assert.Equal(t, sink.Envelope{
		Producer:  "p1",
		Name:      "thermometer",
		Timestamp: "2024-05-06T07:08:09.0000001Z",
		Data:      map[string]any{"temp": 21.5},
	}, events[0].Envelope)
}

func Test_Retries_Failing_Sink(t *testing.T) {
	s := inttest.NewEventCollectorSink(inttest.WithFailures(2))
	emitter := newTestEmitter(t, s, nil, 3)
	require.NoError(t, emitter.Start())

	emitter.Offer(testEvent("p1", 1))
	require.NoError(t, emitter.Stop())

	assert.Equal(t, 1, s.NumOfEvents())
	assert.Equal(t, 3, s.Attempts())
}

func Test_Gives_Up_After_Max_Attempts(t *testing.T) {
	s := inttest.NewEventCollectorSink(inttest.WithFailures(100))
	emitter := newTestEmitter(t, s, nil, 2)
	require.NoError(t, emitter.Start())

	emitter.Offer(testEvent("p1", 1))
	emitter.Offer(testEvent("p2", 1))
	require.NoError(t, emitter.Stop())

	assert.Equal(t, 0, s.NumOfEvents())
	assert.Equal(t, 6, s.Attempts())
}

func Test_Filtered_Records_Are_Not_Published(t *testing.T) {
	s := inttest.NewEventCollectorSink()
	emitter := newTestEmitter(t, s, map[string]config.EventFilterConfig{
		"warm-only": {Condition: "data.temp > 20.0"},
	}, 1)
	require.NoError(t, emitter.Start())

	emitter.Offer(testEvent("p1", 25))
	emitter.Offer(testEvent("p2", 15))
	require.NoError(t, emitter.Stop())

	events := s.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "conductor.p1", events[0].TopicName)
}

func Test_Offer_Requires_Running_Emitter(t *testing.T) {
	s := inttest.NewEventCollectorSink()
	emitter := newTestEmitter(t, s, nil, 1)
	assert.False(t, emitter.Offer(testEvent("p1", 1)))

	require.NoError(t, emitter.Start())
	require.NoError(t, emitter.Stop())
	assert.False(t, emitter.Offer(testEvent("p1", 1)))
}

func Test_Emitter_From_Config(t *testing.T) {
	emitter, err := NewEventEmitterWithConfig(&config.Config{
		Sink: config.SinkConfig{
			Topic: config.SinkTopicConfig{
				Prefix:         "metrics",
				NamingStrategy: config.NamingStrategyConfig{Type: config.ProducerNameNaming},
			},
			Retries: config.SinkRetryConfig{MaxAttempts: 4},
			Filters: map[string]config.EventFilterConfig{
				"f": {Condition: "true", DefaultValue: supporting.AddrOf(true)},
			},
		},
	}, inttest.NewEventCollectorSink(), nil)
	require.NoError(t, err)
	assert.Equal(t, "metrics.thermometer.p1", emitter.TopicName(testEvent("p1", 1)))
	assert.Equal(t, uint64(4), emitter.maxAttempts)

	_, err = NewEventEmitterWithConfig(&config.Config{
		Sink: config.SinkConfig{
			Filters: map[string]config.EventFilterConfig{"f": {Condition: "(("}},
		},
	}, inttest.NewEventCollectorSink(), nil)
	assert.Error(t, err)

	_, err = NewEventEmitterWithConfig(&config.Config{
		Sink: config.SinkConfig{
			Topic: config.SinkTopicConfig{
				NamingStrategy: config.NamingStrategyConfig{Type: "unknown"},
			},
		},
	}, inttest.NewEventCollectorSink(), nil)
	assert.Error(t, err)
}
