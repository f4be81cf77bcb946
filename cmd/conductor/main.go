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

package main

import (
	"context"
	"fmt"
	"github.com/noctarius/conductor/internal"
	"github.com/noctarius/conductor/internal/logging"
	"github.com/noctarius/conductor/internal/supporting"
	"github.com/noctarius/conductor/internal/version"
	"github.com/noctarius/conductor/internal/waiting"
	spiconfig "github.com/noctarius/conductor/spi/config"
	"github.com/urfave/cli"
	"log"
	"os"
	"os/signal"
	"syscall"
)

var (
	configurationFile string
	verbose           bool
	withCaller        bool
	logToStdErr       bool
	versionOnly       bool
)

func main() {
	app := &cli.App{
		Name:  version.BinName,
		Usage: "Registration and ingestion service for time series producers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config,c",
				Value:       "",
				Usage:       "Load configuration from `FILE`",
				Destination: &configurationFile,
			},
			&cli.BoolFlag{
				Name:        "verbose",
				Usage:       "Show verbose output",
				Destination: &verbose,
			},
			&cli.BoolFlag{
				Name:        "caller",
				Usage:       "Collect caller information for log messages",
				Destination: &withCaller,
			},
			&cli.BoolFlag{
				Name:        "log-to-stderr",
				Usage:       "Redirects logging output to stderr, necessary when using StdOut as the sink",
				Destination: &logToStdErr,
			},
			&cli.BoolFlag{
				Name:        "version",
				Usage:       "Prints the version and exits",
				Destination: &versionOnly,
			},
		},
		Action: start,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func start(*cli.Context) error {
	fmt.Printf("%s version %s (git revision %s; branch %s)\n",
		version.BinName, version.Version, version.CommitHash, version.Branch,
	)

	if versionOnly {
		return nil
	}

	logging.WithCaller = withCaller
	logging.WithVerbose = verbose

	// No configuration file set? Try env variable!
	if configurationFile == "" {
		if cf, present := os.LookupEnv("CONDUCTOR_CONFIG"); present {
			fmt.Fprintf(os.Stderr, "Using configuration file from environment variable\n")
			configurationFile = cf
		}
	}

	config := &spiconfig.Config{}
	if configurationFile != "" {
		fmt.Fprintf(os.Stderr, "Loading configuration file: %s\n", configurationFile)
		c, err := spiconfig.Load(configurationFile)
		if err != nil {
			return supporting.AdaptErrorWithMessage(err, "Configuration file couldn't be loaded", 3)
		}
		config = c
	}

	if err := logging.InitializeLogging(config, logToStdErr); err != nil {
		return supporting.AdaptError(err, 4)
	}

	catalogType := spiconfig.GetOrDefault(config, spiconfig.PropertyCatalogType, spiconfig.PostgresCatalog)
	if catalogType == spiconfig.PostgresCatalog &&
		spiconfig.GetOrDefault(config, spiconfig.PropertyStoreConnection, "") == "" {

		return cli.NewExitError("Store connection string required", 5)
	}

	server, err := internal.NewServer(config)
	if err != nil {
		return supporting.AdaptError(err, 6)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	done := waiting.NewWaiter()
	go func() {
		<-signals
		if err := server.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Hard error when stopping conductor: %v\n", err)
			os.Exit(1)
		}
		done.Signal()
	}()

	if err := server.Start(context.Background()); err != nil {
		_ = server.Stop()
		return supporting.AdaptError(err, 7)
	}

	if err := done.Await(); err != nil {
		return supporting.AdaptError(err, 10)
	}
	return nil
}
