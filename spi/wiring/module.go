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
	"github.com/go-errors/errors"
	"github.com/samber/do"
	"github.com/samber/lo"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// PostConstructable services are called back right after their
// constructor returned.
type PostConstructable interface {
	PostConstruct() error
}

type ProvideOption func(binding *binding)

// ForceInitialization constructs the service when the container is
// created instead of on first use.
func ForceInitialization() ProvideOption {
	return func(binding *binding) {
		binding.eager = true
	}
}

// Module is a named set of constructors. Every constructor provides the
// type of its first return value, its parameters are resolved from the
// container by type.
type Module interface {
	Provide(constructor any, options ...ProvideOption)
	Invoke(call any)
	register(injector *do.Injector)
	initialize(injector *do.Injector) error
}

func DefineModule(
	name string, definer func(module Module),
) Module {

	m := &module{name: name}
	definer(m)
	return m
}

type binding struct {
	serviceName string
	eager       bool
	provider    do.Provider[any]
	invoker     func(injector *do.Injector) error
}

type module struct {
	name     string
	bindings []*binding
}

func (m *module) Provide(
	constructor any, options ...ProvideOption,
) {

	fn := reflect.ValueOf(constructor)
	signature := fn.Type()
	if signature.Kind() != reflect.Func {
		panic(errors.Errorf("module %s: %s isn't a constructor", m.name, signature.String()))
	}

	returnsError := false
	switch signature.NumOut() {
	case 1:
	case 2:
		if !signature.Out(1).Implements(errorType) {
			panic(errors.Errorf("module %s: second return value of %s isn't an error", m.name, signature.String()))
		}
		returnsError = true
	default:
		panic(errors.Errorf("module %s: %s must return a service and optionally an error", m.name, signature.String()))
	}

	b := &binding{
		serviceName: serviceName(signature.Out(0)),
	}
	b.provider = func(injector *do.Injector) (any, error) {
		results, err := call(injector, fn)
		if err != nil {
			return nil, err
		}
		if returnsError && !results[1].IsNil() {
			return nil, results[1].Interface().(error)
		}

		service := results[0].Interface()
		if pc, ok := service.(PostConstructable); ok {
			if err := pc.PostConstruct(); err != nil {
				return nil, err
			}
		}
		return service, nil
	}

	for _, option := range options {
		option(b)
	}
	m.bindings = append(m.bindings, b)
}

func (m *module) Invoke(
	callable any,
) {

	fn := reflect.ValueOf(callable)
	signature := fn.Type()
	if signature.Kind() != reflect.Func {
		panic(errors.Errorf("module %s: %s isn't a function", m.name, signature.String()))
	}
	if signature.NumOut() > 1 || (signature.NumOut() == 1 && !signature.Out(0).Implements(errorType)) {
		panic(errors.Errorf("module %s: %s may only return an error", m.name, signature.String()))
	}

	m.bindings = append(m.bindings, &binding{
		invoker: func(injector *do.Injector) error {
			results, err := call(injector, fn)
			if err != nil {
				return err
			}
			if len(results) == 1 && !results[0].IsNil() {
				return results[0].Interface().(error)
			}
			return nil
		},
	})
}

// register makes the module's services known, a later module overrides
// services of earlier ones.
func (m *module) register(
	injector *do.Injector,
) {

	for _, b := range m.bindings {
		if b.provider == nil {
			continue
		}
		if lo.Contains(injector.ListProvidedServices(), b.serviceName) {
			do.OverrideNamed(injector, b.serviceName, b.provider)
		} else {
			do.ProvideNamed(injector, b.serviceName, b.provider)
		}
	}
}

func (m *module) initialize(
	injector *do.Injector,
) error {

	for _, b := range m.bindings {
		if b.invoker != nil {
			if err := b.invoker(injector); err != nil {
				return err
			}
		}
		if b.eager {
			if _, err := do.InvokeNamed[any](injector, b.serviceName); err != nil {
				return err
			}
		}
	}
	return nil
}

func call(
	injector *do.Injector, fn reflect.Value,
) ([]reflect.Value, error) {

	signature := fn.Type()
	params := make([]reflect.Value, signature.NumIn())
	for i := range params {
		paramType := signature.In(i)
		param, err := do.InvokeNamed[any](injector, serviceName(paramType))
		if err != nil {
			return nil, err
		}
		value := reflect.ValueOf(param)
		if !value.IsValid() {
			value = reflect.Zero(paramType)
		}
		params[i] = value
	}
	return fn.Call(params), nil
}

func serviceName(
	t reflect.Type,
) string {

	return t.String()
}
