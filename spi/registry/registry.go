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
package registry

import (
	"github.com/go-errors/errors"
	"github.com/samber/lo"
	"slices"
	"sync"
)

// Registry maps configured type names to the factories of pluggable
// components such as catalogs, sinks and naming strategies. Factories
// are registered from package init functions.
type Registry[K ~string, F any] struct {
	kind      string
	mutex     sync.RWMutex
	factories map[K]F
}

func New[K ~string, F any](
	kind string,
) *Registry[K, F] {

	return &Registry[K, F]{
		kind:      kind,
		factories: make(map[K]F),
	}
}

// Register binds the factory to name. The first registration wins, a
// later one for the same name returns false.
func (r *Registry[K, F]) Register(
	name K, factory F,
) bool {

	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, present := r.factories[name]; present {
		return false
	}
	r.factories[name] = factory
	return true
}

func (r *Registry[K, F]) Lookup(
	name K,
) (F, error) {

	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if factory, present := r.factories[name]; present {
		return factory, nil
	}
	var zero F
	return zero, errors.Errorf("%s '%s' doesn't exist", r.kind, name)
}

// Names returns the registered names in sorted order.
func (r *Registry[K, F]) Names() []K {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	names := lo.Keys(r.factories)
	slices.Sort(names)
	return names
}
