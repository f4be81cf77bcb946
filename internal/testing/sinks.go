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
package testing

import (
	"context"
	"github.com/go-errors/errors"
	"github.com/goccy/go-json"
	"github.com/noctarius/conductor/spi/sink"
	"sync"
	"time"
)

var ErrSinkUnavailable = errors.New("sink unavailable")

type CollectedEvent struct {
	Timestamp time.Time
	TopicName string
	Key       string
	Envelope  sink.Envelope
}

// EventCollectorSink records every emitted envelope. Configured failures
// are returned before any event is collected.
type EventCollectorSink struct {
	mutex sync.Mutex

	failures int
	attempts int
	events   []CollectedEvent
	filter   func(timestamp time.Time, topicName string, envelope sink.Envelope) bool

	preHook  func(sink *EventCollectorSink)
	postHook func(sink *EventCollectorSink)
}

type EventCollectorSinkOption = func(eventCollectorSink *EventCollectorSink)

func WithFailures(failures int) EventCollectorSinkOption {
	return func(eventCollectorSink *EventCollectorSink) {
		eventCollectorSink.failures = failures
	}
}

func WithFilter(filter func(timestamp time.Time, topicName string, envelope sink.Envelope) bool) EventCollectorSinkOption {
	return func(eventCollectorSink *EventCollectorSink) {
		eventCollectorSink.filter = filter
	}
}

func WithPreHook(fn func(sink *EventCollectorSink)) EventCollectorSinkOption {
	return func(eventCollectorSink *EventCollectorSink) {
		eventCollectorSink.preHook = fn
	}
}

func WithPostHook(fn func(sink *EventCollectorSink)) EventCollectorSinkOption {
	return func(eventCollectorSink *EventCollectorSink) {
		eventCollectorSink.postHook = fn
	}
}

func NewEventCollectorSink(options ...EventCollectorSinkOption) *EventCollectorSink {
	eventCollectorSink := &EventCollectorSink{
		events: make([]CollectedEvent, 0),
	}
	for _, option := range options {
		option(eventCollectorSink)
	}
	return eventCollectorSink
}

func (t *EventCollectorSink) Start() error {
	return nil
}

func (t *EventCollectorSink) Stop() error {
	return nil
}

func (t *EventCollectorSink) Events() []CollectedEvent {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return append([]CollectedEvent{}, t.events...)
}

func (t *EventCollectorSink) NumOfEvents() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return len(t.events)
}

// Attempts returns the number of Emit calls, failed ones included.
func (t *EventCollectorSink) Attempts() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.attempts
}

func (t *EventCollectorSink) Emit(
	_ context.Context, timestamp time.Time, topicName string, key, envelope []byte,
) error {

	if t.preHook != nil {
		t.preHook(t)
	}

	t.mutex.Lock()
	t.attempts++
	if t.failures > 0 {
		t.failures--
		t.mutex.Unlock()
		return ErrSinkUnavailable
	}
	t.mutex.Unlock()

	var eventEnvelope sink.Envelope
	if err := json.Unmarshal(envelope, &eventEnvelope); err != nil {
		return err
	}
	if t.filter != nil {
		if !t.filter(timestamp, topicName, eventEnvelope) {
			return nil
		}
	}
	t.mutex.Lock()
	t.events = append(t.events, CollectedEvent{
		Timestamp: timestamp,
		TopicName: topicName,
		Key:       string(key),
		Envelope:  eventEnvelope,
	})
	t.mutex.Unlock()
	if t.postHook != nil {
		t.postHook(t)
	}
	return nil
}
