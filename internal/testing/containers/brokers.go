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
	"fmt"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func SetupNatsContainer() (testcontainers.Container, string, error) {
	container, err := startContainer("nats", testcontainers.ContainerRequest{
		Image:        "nats:2.10-alpine",
		ExposedPorts: []string{"4222/tcp", "8222/tcp"},
		Cmd:          []string{"--js"},
		WaitingFor:   wait.NewLogStrategy("Server is ready"),
	})
	if err != nil {
		return nil, "", err
	}

	host, port, err := endpoint(container, "4222/tcp")
	if err != nil {
		return nil, "", err
	}
	return container, fmt.Sprintf("nats://%s:%d", host, port), nil
}

func SetupRedisContainer() (testcontainers.Container, string, error) {
	container, err := startContainer("redis", testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	})
	if err != nil {
		return nil, "", err
	}

	host, port, err := endpoint(container, "6379/tcp")
	if err != nil {
		return nil, "", err
	}
	return container, fmt.Sprintf("%s:%d", host, port), nil
}
