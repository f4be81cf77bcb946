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
	"context"
	"github.com/cenkalti/backoff/v4"
	"github.com/noctarius/conductor/internal/eventing/eventfiltering"
	"github.com/noctarius/conductor/internal/logging"
	"github.com/noctarius/conductor/internal/stats"
	"github.com/noctarius/conductor/internal/supporting"
	"github.com/noctarius/conductor/internal/version"
	"github.com/noctarius/conductor/internal/waiting"
	"github.com/noctarius/conductor/spi/config"
	"github.com/noctarius/conductor/spi/encoding"
	"github.com/noctarius/conductor/spi/namingstrategy"
	"github.com/noctarius/conductor/spi/sink"
	"sync"
	"time"
)

const (
	queueCapacity   = 4096
	shutdownTimeout = time.Second * 30
)

// EventEmitter publishes accepted producer records to the configured sink.
// Records are queued and published by a single background worker, a
// failing sink is retried with exponential backoff and never blocks or
// fails the emitting producer.
type EventEmitter struct {
	logger          *logging.Logger
	sink            sink.Sink
	filter          eventfiltering.EventFilter
	encoder         *encoding.JsonEncoder
	reporter        *stats.Reporter
	namingStrategy  namingstrategy.NamingStrategy
	topicPrefix     string
	maxAttempts     uint64
	newBackOff      func() backoff.BackOff
	queue           chan sink.Event
	shutdownAwaiter *waiting.ShutdownAwaiter
	mutex           sync.RWMutex
	running         bool
}

func NewEventEmitterWithConfig(
	c *config.Config, s sink.Sink, reporter *stats.Reporter,
) (*EventEmitter, error) {

	filter, err := eventfiltering.NewEventFilter(c.Sink.Filters)
	if err != nil {
		return nil, err
	}

	namingStrategyType := config.GetOrDefault(c, config.PropertyNamingStrategy, config.ProducerIdNaming)
	namingStrategy, err := namingstrategy.NewNamingStrategy(namingStrategyType, c)
	if err != nil {
		return nil, err
	}

	topicPrefix := config.GetOrDefault(c, config.PropertySinkTopicPrefix, version.BinName)
	maxAttempts := config.GetOrDefault(c, config.PropertySinkRetryMaxAttempts, uint64(8))
	return NewEventEmitter(s, filter, namingStrategy, reporter, topicPrefix, maxAttempts)
}

func NewEventEmitter(
	s sink.Sink, filter eventfiltering.EventFilter, namingStrategy namingstrategy.NamingStrategy,
	reporter *stats.Reporter, topicPrefix string, maxAttempts uint64,
) (*EventEmitter, error) {

	logger, err := logging.NewLogger("EventEmitter")
	if err != nil {
		return nil, err
	}

	return &EventEmitter{
		logger:         logger,
		sink:           s,
		filter:         filter,
		encoder:        encoding.NewJsonEncoder(true),
		reporter:       reporter,
		namingStrategy: namingStrategy,
		topicPrefix:    topicPrefix,
		maxAttempts:    maxAttempts,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
		queue:           make(chan sink.Event, queueCapacity),
		shutdownAwaiter: waiting.NewShutdownAwaiter(),
	}, nil
}

func (ee *EventEmitter) Start() error {
	if err := ee.sink.Start(); err != nil {
		return err
	}

	ee.mutex.Lock()
	ee.running = true
	ee.mutex.Unlock()

	go ee.run()
	return nil
}

// Stop publishes the records still queued and stops the sink.
func (ee *EventEmitter) Stop() error {
	ee.mutex.Lock()
	wasRunning := ee.running
	ee.running = false
	ee.mutex.Unlock()

	if wasRunning {
		ee.shutdownAwaiter.SignalShutdown()
		if err := ee.shutdownAwaiter.AwaitDone(shutdownTimeout); err != nil {
			ee.logger.Warnf("Event emitter didn't drain its queue in time")
		}
	}
	return ee.sink.Stop()
}

// Offer queues the record for publication. It never blocks, the record
// is dropped when the emitter isn't running or its queue is full.
func (ee *EventEmitter) Offer(
	event sink.Event,
) bool {

	ee.mutex.RLock()
	defer ee.mutex.RUnlock()

	if !ee.running {
		return false
	}

	select {
	case ee.queue <- event:
		return true
	default:
		ee.logger.Warnf("Event queue is full, dropping record of producer '%s'", event.ProducerId)
		ee.report("dropped")
		return false
	}
}

func (ee *EventEmitter) TopicName(
	event sink.Event,
) string {

	return ee.namingStrategy.EventTopicName(ee.topicPrefix, event.ProducerId, event.ProducerName)
}

func (ee *EventEmitter) run() {
	for {
		select {
		case event := <-ee.queue:
			ee.emit(event)

		case <-ee.shutdownAwaiter.AwaitShutdownChan():
			for {
				select {
				case event := <-ee.queue:
					ee.emit(event)
				default:
					ee.shutdownAwaiter.SignalDone()
					return
				}
			}
		}
	}
}

func (ee *EventEmitter) emit(
	event sink.Event,
) {

	accepted, err := ee.filter.Evaluate(event)
	if err != nil {
		ee.logger.Errorf("Failed to evaluate filters for producer '%s': %s", event.ProducerId, err.Error())
		ee.report("failed")
		return
	}
	if !accepted {
		ee.report("filtered")
		return
	}

	envelope, err := ee.encoder.Marshal(sink.NewEnvelope(event))
	if err != nil {
		ee.logger.Errorf("Failed to encode record of producer '%s': %s", event.ProducerId, err.Error())
		ee.report("failed")
		return
	}

	topicName := ee.TopicName(event)
	key := []byte(event.ProducerId)

	// Retryable operation
	operation := func() error {
		ee.logger.Tracef("Publishing record to %s: %s", topicName, string(envelope))
		return ee.sink.Emit(context.Background(), event.Timestamp, topicName, key, envelope)
	}

	// Run with backoff (it'll automatically reset before starting)
	if err := backoff.Retry(operation, backoff.WithMaxRetries(ee.newBackOff(), ee.maxAttempts)); err != nil {
		ee.logger.Errorf(
			"Giving up publishing record of producer '%s': %s", event.ProducerId, supporting.ErrorStack(err),
		)
		ee.report("failed")
		return
	}
	ee.report("published")
}

func (ee *EventEmitter) report(
	outcome string,
) {

	if ee.reporter != nil {
		ee.reporter.Incr("records", stats.Tag("outcome", outcome))
	}
}
