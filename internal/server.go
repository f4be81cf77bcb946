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

package internal

import (
	"context"
	"github.com/go-errors/errors"
	"github.com/noctarius/conductor/internal/eventing/eventemitting"
	"github.com/noctarius/conductor/internal/logging"
	"github.com/noctarius/conductor/internal/stats"
	"github.com/noctarius/conductor/internal/transport/httpapi"
	"github.com/noctarius/conductor/spi/catalog"
	"github.com/noctarius/conductor/spi/config"
	"github.com/noctarius/conductor/spi/wiring"
)

// Server owns the lifecycle of all conductor components.
type Server struct {
	logger       *logging.Logger
	catalog      catalog.Catalog
	statsService *stats.Service
	eventEmitter *eventemitting.EventEmitter
	httpServer   *httpapi.Server
}

func NewServer(
	c *config.Config,
) (*Server, error) {

	logger, err := logging.NewLogger("Server")
	if err != nil {
		return nil, err
	}

	configModule := wiring.DefineModule("Config", func(module wiring.Module) {
		module.Provide(func() *config.Config {
			return c
		})
	})

	container, err := wiring.NewContainer(configModule, StaticModule, DynamicModule)
	if err != nil {
		return nil, err
	}

	server := &Server{
		logger: logger,
	}

	if err := container.Service(&server.catalog); err != nil {
		return nil, err
	}
	if err := container.Service(&server.statsService); err != nil {
		return nil, err
	}
	if err := container.Service(&server.eventEmitter); err != nil {
		return nil, err
	}
	if err := container.Service(&server.httpServer); err != nil {
		return nil, err
	}
	return server, nil
}

// Start brings up the components in dependency order, the producer
// protocol is served last.
func (s *Server) Start(
	ctx context.Context,
) error {

	if err := s.statsService.Start(); err != nil {
		return err
	}
	if err := s.catalog.Start(ctx); err != nil {
		return err
	}
	if s.eventEmitter != nil {
		if err := s.eventEmitter.Start(); err != nil {
			return err
		}
	}
	if err := s.httpServer.Start(); err != nil {
		return err
	}
	s.logger.Infof("Conductor is ready to accept producers on %s", s.httpServer.Addr())
	return nil
}

// Stop shuts the components down in reverse order and reports the
// first failure.
func (s *Server) Stop() error {
	var stopErrors []error
	if err := s.httpServer.Stop(); err != nil {
		stopErrors = append(stopErrors, err)
	}
	if s.eventEmitter != nil {
		if err := s.eventEmitter.Stop(); err != nil {
			stopErrors = append(stopErrors, err)
		}
	}
	if err := s.catalog.Stop(); err != nil {
		stopErrors = append(stopErrors, err)
	}
	if err := s.statsService.Stop(); err != nil {
		stopErrors = append(stopErrors, err)
	}

	for _, err := range stopErrors {
		s.logger.Errorf("Error while stopping: %s", err.Error())
	}
	if len(stopErrors) > 0 {
		return errors.Wrap(stopErrors[0], 0)
	}
	return nil
}

// HttpAddr is the address the producer protocol is served on.
func (s *Server) HttpAddr() string {
	return s.httpServer.Addr()
}
