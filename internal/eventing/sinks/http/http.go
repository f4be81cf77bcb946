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

package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"github.com/go-errors/errors"
	"github.com/noctarius/conductor/spi/config"
	"github.com/noctarius/conductor/spi/sink"
	"io"
	"net/http"
	"strconv"
	"time"
)

const (
	headerTopic     = "X-Conductor-Topic"
	headerKey       = "X-Conductor-Key"
	headerTimestamp = "X-Conductor-Timestamp"
)

func init() {
	sink.RegisterSink(config.Http, newHttpSink)
}

func basicAuth(username, password string) string {
	auth := username + ":" + password
	return base64.StdEncoding.EncodeToString([]byte(auth))
}

type httpSink struct {
	client  *http.Client
	address string
	headers http.Header
}

func newHttpSink(
	c *config.Config,
) (sink.Sink, error) {

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if config.GetOrDefault(c, config.PropertyHttpSinkTlsEnabled, false) {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: config.GetOrDefault(
				c, config.PropertyHttpSinkTlsSkipVerify, false,
			),
			ClientAuth: config.GetOrDefault(
				c, config.PropertyHttpSinkTlsClientAuth, tls.NoClientCert,
			),
		}
	}

	address := config.GetOrDefault(c, config.PropertyHttpSinkUrl, "http://localhost:80")
	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")

	authenticationType := config.GetOrDefault(c, config.PropertyHttpSinkAuthenticationType, "none")
	switch config.HttpAuthenticationType(authenticationType) {
	case config.BasicAuthentication:
		headers.Add("Authorization",
			fmt.Sprintf("Basic %s",
				basicAuth(config.GetOrDefault(c, config.PropertyHttpSinkBasicAuthenticationUsername, ""),
					config.GetOrDefault(c, config.PropertyHttpSinkBasicAuthenticationPassword, ""),
				),
			),
		)
	case config.HeaderAuthentication:
		headers.Add(config.GetOrDefault(c, config.PropertyHttpSinkHeaderAuthenticationHeaderName, ""),
			config.GetOrDefault(c, config.PropertyHttpSinkHeaderAuthenticationHeaderValue, ""),
		)
	case config.NoneAuthentication:
	default:
		return nil, fmt.Errorf("http AuthenticationType '%s' doesn't exist", authenticationType)
	}

	return &httpSink{
		client:  &http.Client{Transport: transport, Timeout: time.Second * 30},
		address: address,
		headers: headers,
	}, nil
}

func (h *httpSink) Start() error {
	return nil
}

func (h *httpSink) Stop() error {
	h.client.CloseIdleConnections()
	return nil
}

func (h *httpSink) Emit(
	ctx context.Context, timestamp time.Time, topicName string, key, envelope []byte,
) error {

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.address, bytes.NewReader(envelope))
	if err != nil {
		return err
	}

	req.Header = h.headers.Clone()
	req.Header.Set(headerTopic, topicName)
	req.Header.Set(headerKey, string(key))
	req.Header.Set(headerTimestamp, strconv.FormatInt(timestamp.UnixMicro(), 10))

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("http sink endpoint answered with status %d", resp.StatusCode)
	}
	return nil
}
