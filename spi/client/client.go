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

package client

import (
	"bytes"
	"context"
	"github.com/go-errors/errors"
	"github.com/noctarius/conductor/spi/encoding"
	"github.com/noctarius/conductor/spi/producer"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	pathRegister = "/v1/producer/register"
	pathEmit     = "/v1/producer/emit"
	pathCheck    = "/v1/producer/check"
)

type Option func(c *Client)

// WithJson switches the framing from msgpack to JSON.
func WithJson() Option {
	return func(c *Client) {
		c.codec = encoding.JsonCodec()
	}
}

func WithHttpClient(
	httpClient *http.Client,
) Option {

	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Client talks the producer protocol to a conductor server.
type Client struct {
	baseUrl    string
	codec      encoding.Codec
	httpClient *http.Client
}

func New(
	baseUrl string, options ...Option,
) (*Client, error) {

	if _, err := url.ParseRequestURI(baseUrl); err != nil {
		return nil, errors.Errorf("illegal base url '%s': %s", baseUrl, err.Error())
	}

	c := &Client{
		baseUrl:    strings.TrimSuffix(baseUrl, "/"),
		codec:      encoding.MsgpackCodec(),
		httpClient: &http.Client{Timeout: time.Second * 30},
	}
	for _, option := range options {
		option(c)
	}
	return c, nil
}

// Register registers a producer and returns its identifier. A customId
// of nil lets the server generate one. Rejections are returned as
// *producer.CodedError.
func (c *Client) Register(
	ctx context.Context, name string, schema producer.Schema, customId *string,
) (string, error) {

	result := producer.RegistrationResult{}
	if err := c.call(ctx, pathRegister, producer.NewRegistration(name, schema, customId), &result); err != nil {
		return "", err
	}

	if result.Error != producer.NoError {
		return "", producer.NewCodedError(result.Error, "registration of '%s' rejected", name)
	}
	if result.Id == nil {
		return "", errors.Errorf("server accepted registration of '%s' without an identifier", name)
	}
	return *result.Id, nil
}

// Emit sends a record. A zero timestamp lets the server use its
// current time.
func (c *Client) Emit(
	ctx context.Context, id string, timestamp time.Time, data map[string]any,
) error {

	values := make(map[string]producer.Value, len(data))
	for column, v := range data {
		value, err := producer.ValueOf(v)
		if err != nil {
			return producer.NewCodedError(producer.InvalidData, "column '%s': %s", column, err.Error())
		}
		values[column] = value
	}

	emit := producer.Emit{
		ProducerId: id,
		Data:       values,
	}
	if !timestamp.IsZero() {
		if timestamp.UnixMicro() < 0 {
			return producer.NewCodedError(producer.InvalidData, "timestamp before the Unix epoch")
		}
		micros := uint64(timestamp.UnixMicro())
		emit.Timestamp = &micros
	}

	result := producer.EmitResult{}
	if err := c.call(ctx, pathEmit, emit, &result); err != nil {
		return err
	}

	if result.Error != producer.NoError {
		return producer.NewCodedError(result.Error, "emit to '%s' rejected", id)
	}
	return nil
}

func (c *Client) IsRegistered(
	ctx context.Context, id string,
) (bool, error) {

	target := c.baseUrl + pathCheck + "?uuid=" + url.QueryEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false, errors.Wrap(err, 0)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, errors.Wrap(err, 0)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	}
	return false, errors.Errorf("unexpected status %d from %s", resp.StatusCode, pathCheck)
}

func (c *Client) call(
	ctx context.Context, path string, request, response any,
) error {

	body, err := c.codec.Marshal(request)
	if err != nil {
		return errors.Wrap(err, 0)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseUrl+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, 0)
	}
	req.Header.Set("Content-Type", c.codec.ContentType())
	req.Header.Set("Accept", c.codec.ContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, 0)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, 0)
	}

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status %d from %s: %s", resp.StatusCode, path, strings.TrimSpace(string(payload)))
	}

	if err := c.codec.Unmarshal(payload, response); err != nil {
		return errors.Wrap(err, 0)
	}
	return nil
}
