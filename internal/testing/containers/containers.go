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

package containers

import (
	"context"
	"fmt"
	"github.com/docker/go-connections/nat"
	"github.com/noctarius/conductor/internal/logging"
	"github.com/testcontainers/testcontainers-go"
)

type logConsumer struct {
	logger *logging.Logger
}

func (l *logConsumer) Accept(log testcontainers.Log) {
	if log.LogType == testcontainers.StderrLog {
		l.logger.Errorln(string(log.Content))
	} else {
		l.logger.Verbosef("%s", string(log.Content))
	}
}

func startContainer(
	name string, containerRequest testcontainers.ContainerRequest,
) (testcontainers.Container, error) {

	logger, err := logging.NewLogger("testcontainers")
	if err != nil {
		return nil, err
	}

	containerLogger, err := logging.NewLogger(fmt.Sprintf("testcontainers-%s", name))
	if err != nil {
		return nil, err
	}

	containerRequest.LogConsumerCfg = &testcontainers.LogConsumerConfig{
		Consumers: []testcontainers.LogConsumer{&logConsumer{logger: containerLogger}},
	}

	return testcontainers.GenericContainer(
		context.Background(),
		testcontainers.GenericContainerRequest{
			ContainerRequest: containerRequest,
			Started:          true,
			Logger:           logger,
		},
	)
}

func endpoint(
	container testcontainers.Container, port nat.Port,
) (string, int, error) {

	host, err := container.Host(context.Background())
	if err != nil {
		_ = container.Terminate(context.Background())
		return "", 0, err
	}

	mappedPort, err := container.MappedPort(context.Background(), port)
	if err != nil {
		_ = container.Terminate(context.Background())
		return "", 0, err
	}
	return host, mappedPort.Int(), nil
}
