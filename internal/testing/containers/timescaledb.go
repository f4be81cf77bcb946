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
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/noctarius/conductor/internal/logging"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"time"
)

const (
	databaseName = "tsdb"
	postgresUser = "postgres"
	postgresPass = "postgres"
	tsdbUser     = "tsdb"
	tsdbPass     = "tsdb"
)

type ConfigProvider struct {
	host string
	port int
	user string
	pass string
	db   string
}

func (c *ConfigProvider) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", c.user, c.pass, c.host, c.port, c.db)
}

func (c *ConfigProvider) PoolConfig() (*pgxpool.Config, error) {
	return pgxpool.ParseConfig(c.ConnectionString())
}

// SetupTimescaleContainer starts a TimescaleDB server with a dedicated,
// non-superuser login owning the test database.
func SetupTimescaleContainer() (testcontainers.Container, *ConfigProvider, error) {
	container, err := startContainer("timescaledb", testcontainers.ContainerRequest{
		Image:        "timescale/timescaledb:latest-pg17",
		ExposedPorts: []string{"5432/tcp"},
		Cmd:          []string{"-c", "fsync=off"},
		WaitingFor:   wait.ForListeningPort("5432/tcp"),
		Env: map[string]string{
			"POSTGRES_DB":       databaseName,
			"POSTGRES_PASSWORD": postgresPass,
			"POSTGRES_USER":     postgresUser,
		},
	})
	if err != nil {
		return nil, nil, err
	}

	timescaledbLogger, err := logging.NewLogger("testcontainers-timescaledb")
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, nil, err
	}

	host, port, err := endpoint(container, "5432/tcp")
	if err != nil {
		return nil, nil, err
	}

	superuser := &ConfigProvider{host: host, port: port, user: postgresUser, pass: postgresPass, db: databaseName}
	config, err := pgx.ParseConfig(superuser.ConnectionString())
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, nil, err
	}

	var conn *pgx.Conn
	for i := 0; ; i++ {
		conn, err = pgx.ConnectConfig(context.Background(), config)
		if err == nil {
			break
		}
		if i == 9 {
			_ = container.Terminate(context.Background())
			return nil, nil, err
		}
		time.Sleep(time.Second)
	}
	defer conn.Close(context.Background())

	statements := []string{
		"CREATE EXTENSION IF NOT EXISTS timescaledb",
		fmt.Sprintf("CREATE ROLE %s LOGIN ENCRYPTED PASSWORD '%s'", tsdbUser, tsdbPass),
		fmt.Sprintf("GRANT ALL PRIVILEGES ON DATABASE %s TO %s", databaseName, tsdbUser),
		fmt.Sprintf("ALTER SCHEMA public OWNER TO %s", tsdbUser),
	}
	for _, statement := range statements {
		timescaledbLogger.Verbosef("Executing: %s", statement)
		if _, err := conn.Exec(context.Background(), statement); err != nil {
			_ = container.Terminate(context.Background())
			return nil, nil, err
		}
	}

	return container, &ConfigProvider{host: host, port: port, user: tsdbUser, pass: tsdbPass, db: databaseName}, nil
}

// SetupQuestDbContainer starts a QuestDB server with its PostgreSQL wire
// endpoint exposed.
func SetupQuestDbContainer() (testcontainers.Container, *ConfigProvider, error) {
	container, err := startContainer("questdb", testcontainers.ContainerRequest{
		Image:        "questdb/questdb:8.2.3",
		ExposedPorts: []string{"8812/tcp", "9000/tcp"},
		WaitingFor:   wait.ForListeningPort("8812/tcp"),
	})
	if err != nil {
		return nil, nil, err
	}

	host, port, err := endpoint(container, "8812/tcp")
	if err != nil {
		return nil, nil, err
	}
	return container, &ConfigProvider{host: host, port: port, user: "admin", pass: "quest", db: "qdb"}, nil
}
