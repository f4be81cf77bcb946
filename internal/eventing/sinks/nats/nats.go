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

package nats

import (
	"context"
	"fmt"
	"github.com/nats-io/nats.go"
	"github.com/noctarius/conductor/internal/version"
	"github.com/noctarius/conductor/spi/config"
	"github.com/noctarius/conductor/spi/sink"
	"time"
)

func init() {
	sink.RegisterSink(config.NATS, newNatsSink)
}

type natsSink struct {
	client           *nats.Conn
	jetStreamContext nats.JetStreamContext
	timeout          time.Duration
}

func newNatsSink(
	c *config.Config,
) (sink.Sink, error) {

	address := config.GetOrDefault(c, config.PropertyNatsAddress, "nats://localhost:4222")
	timeout := time.Second * time.Duration(config.GetOrDefault(c, config.PropertyNatsTimeout, 5))

	authorization := config.GetOrDefault(c, config.PropertyNatsAuthorization, "userinfo")
	switch config.NatsAuthorizationType(authorization) {
	case config.UserInfo:
		username := config.GetOrDefault(c, config.PropertyNatsUserinfoUsername, "")
		password := config.GetOrDefault(c, config.PropertyNatsUserinfoPassword, "")
		return connectJetStreamContext(address, timeout, nats.UserInfo(username, password))
	case config.Credentials:
		certificate := config.GetOrDefault(c, config.PropertyNatsCredentialsCertificate, "")
		seeds := config.GetOrDefault(c, config.PropertyNatsCredentialsSeeds, []string{})
		return connectJetStreamContext(address, timeout, nats.UserCredentials(certificate, seeds...))
	case config.Jwt:
		jwt := config.GetOrDefault(c, config.PropertyNatsJwt, "")
		seed := config.GetOrDefault(c, config.PropertyNatsJwtSeed, "")
		return connectJetStreamContext(address, timeout, nats.UserJWTAndSeed(jwt, seed))
	}
	return nil, fmt.Errorf("NATS AuthorizationType '%s' doesn't exist", authorization)
}

func connectJetStreamContext(
	address string, timeout time.Duration, options ...nats.Option,
) (sink.Sink, error) {

	options = append(
		options,
		nats.Name(version.BinName),
		nats.RetryOnFailedConnect(true),
		nats.ReconnectWait(time.Second*10),
		nats.ReconnectBufSize(1024*1024),
		nats.MaxReconnects(-1),
	)

	client, err := nats.Connect(address, options...)
	if err != nil {
		return nil, err
	}

	jetStreamContext, err := client.JetStream()
	if err != nil {
		return nil, err
	}

	return &natsSink{
		client:           client,
		jetStreamContext: jetStreamContext,
		timeout:          timeout,
	}, nil
}

func (n *natsSink) Start() error {
	return nil
}

func (n *natsSink) Stop() error {
	n.client.Close()
	return nil
}

func (n *natsSink) Emit(
	ctx context.Context, _ time.Time, topicName string, key, envelope []byte,
) error {

	header := nats.Header{}
	header.Add("key", string(key))

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	_, err := n.jetStreamContext.PublishMsg(
		&nats.Msg{
			Subject: topicName,
			Header:  header,
			Data:    envelope,
		},
		nats.Context(ctx),
	)
	return err
}
