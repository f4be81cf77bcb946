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
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/go-errors/errors"
	"github.com/noctarius/conductor/spi/config"
	"github.com/noctarius/conductor/spi/sink"
	"github.com/samber/lo"
	"sort"
)

// EventFilter decides whether an accepted record is published. Filters
// aren't safe for concurrent use.
type EventFilter interface {
	Evaluate(event sink.Event) (bool, error)
}

type eventFilterFunc func(event sink.Event) (bool, error)

func (eff eventFilterFunc) Evaluate(event sink.Event) (bool, error) {
	return eff(event)
}

// NewEventFilter compiles the configured filter conditions. A condition
// sees the variables producer (id), name and data. Filters are evaluated
// in the order of their names, the first rejecting filter wins.
func NewEventFilter(filterDefinitions map[string]config.EventFilterConfig) (EventFilter, error) {
	if len(filterDefinitions) == 0 {
		return acceptAllFilter, nil
	}

	names := lo.Keys(filterDefinitions)
	sort.Strings(names)

	filters := make([]*eventFilter, 0, len(names))
	for _, name := range names {
		def := filterDefinitions[name]

		defaultValue := true
		if def.DefaultValue != nil {
			defaultValue = *def.DefaultValue
		}

		prog, err := expr.Compile(def.Condition)
		if err != nil {
			return nil, errors.Errorf("filter «%s» doesn't compile: %s", name, err.Error())
		}

		filters = append(filters, &eventFilter{
			name:         name,
			producers:    def.Producers,
			defaultValue: defaultValue,
			condition:    def.Condition,
			prog:         prog,
			vm:           &vm.VM{},
		})
	}
	return compositeFilter(filters), nil
}

var acceptAllFilter eventFilterFunc = func(_ sink.Event) (bool, error) {
	return true, nil
}

var compositeFilter = func(filters []*eventFilter) EventFilter {
	return eventFilterFunc(func(event sink.Event) (bool, error) {
		for _, filter := range filters {
			if !filter.enabled(event) {
				continue
			}
			success, err := filter.evaluate(event)
			if err != nil {
				return false, err
			}
			if !success {
				return false, nil
			}
		}
		return true, nil
	})
}

type eventFilter struct {
	name         string
	producers    []string
	defaultValue bool
	condition    string
	prog         *vm.Program
	vm           *vm.VM
}

// enabled restricts the filter to the listed producers, matched by id
// or name. Without a list the filter applies to every producer.
func (f *eventFilter) enabled(event sink.Event) bool {
	if len(f.producers) == 0 {
		return true
	}
	return lo.Contains(f.producers, event.ProducerId) || lo.Contains(f.producers, event.ProducerName)
}

func (f *eventFilter) evaluate(event sink.Event) (bool, error) {
	env := map[string]any{
		"producer": event.ProducerId,
		"name":     event.ProducerName,
		"data":     event.Data,
	}

	result, err := f.vm.Run(f.prog, env)
	if err != nil {
		return false, err
	}

	r, ok := result.(bool)
	if !ok {
		return false, errors.Errorf("result of filter «%s» isn't a boolean", f.condition)
	}

	if r {
		return f.defaultValue, nil
	}
	return !f.defaultValue, nil
}
