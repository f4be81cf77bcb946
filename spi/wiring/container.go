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

package wiring

import (
	"github.com/samber/do"
	"reflect"
)

type Container interface {
	// Service resolves the service of target's element type and
	// stores it in target.
	Service(target any) error
	// Shutdown calls Shutdown on every constructed service
	// implementing do.Shutdownable.
	Shutdown() error
}

func NewContainer(
	modules ...Module,
) (Container, error) {

	injector := do.New()
	for _, m := range modules {
		m.register(injector)
	}

	for _, m := range modules {
		if err := m.initialize(injector); err != nil {
			return nil, err
		}
	}

	return &container{
		injector: injector,
	}, nil
}

type container struct {
	injector *do.Injector
}

func (c *container) Service(
	target any,
) error {

	value := reflect.Indirect(reflect.ValueOf(target))
	service, err := do.InvokeNamed[any](c.injector, serviceName(value.Type()))
	if err != nil {
		return err
	}
	value.Set(reflect.ValueOf(service))
	return nil
}

func (c *container) Shutdown() error {
	return c.injector.Shutdown()
}
