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

package httpapi

import (
	"context"
	"github.com/go-errors/errors"
	"github.com/inhies/go-bytesize"
	"github.com/noctarius/conductor/internal/logging"
	"github.com/noctarius/conductor/spi/config"
	"github.com/noctarius/conductor/spi/encoding"
	"github.com/noctarius/conductor/spi/producer"
	"io"
	"net"
	"net/http"
	"time"
)

const (
	PathRegister = "/v1/producer/register"
	PathEmit     = "/v1/producer/emit"
	PathCheck    = "/v1/producer/check"

	defaultMaxBodySize bytesize.ByteSize = 1048576
)

// ProducerService is the set of producer operations served over HTTP.
type ProducerService interface {
	Register(
		ctx context.Context, registration producer.Registration,
	) producer.RegistrationResult
	Emit(
		ctx context.Context, emit producer.Emit,
	) producer.EmitResult
	CheckRegistered(
		ctx context.Context, id string,
	) bool
}

type Server struct {
	logger      *logging.Logger
	service     ProducerService
	maxBodySize int64
	server      *http.Server
	listener    net.Listener
}

func NewServer(
	c *config.Config, service ProducerService,
) (*Server, error) {

	logger, err := logging.NewLogger("HttpServer")
	if err != nil {
		return nil, err
	}

	maxBodySize := defaultMaxBodySize
	if value := config.GetOrDefault(c, config.PropertyHttpMaxBodySize, ""); value != "" {
		maxBodySize, err = bytesize.Parse(value)
		if err != nil {
			return nil, errors.Errorf("illegal http.maxbodysize '%s': %s", value, err.Error())
		}
	}

	address := config.GetOrDefault(c, config.PropertyHttpAddress, ":8080")
	readTimeout := config.GetOrDefault(c, config.PropertyHttpReadTimeout, 30)
	writeTimeout := config.GetOrDefault(c, config.PropertyHttpWriteTimeout, 30)

	s := &Server{
		logger:      logger,
		service:     service,
		maxBodySize: int64(maxBodySize),
	}

	s.server = &http.Server{
		Addr:              address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: time.Second * 10,
		ReadTimeout:       time.Second * time.Duration(readTimeout),
		WriteTimeout:      time.Second * time.Duration(writeTimeout),
	}
	return s, nil
}

// Handler routes the producer protocol.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+PathRegister, s.handleRegister)
	mux.HandleFunc("POST "+PathEmit, s.handleEmit)
	mux.HandleFunc("GET "+PathCheck, s.handleCheck)
	return mux
}

func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return errors.Wrap(err, 0)
	}
	s.listener = listener

	go func() {
		s.logger.Infof("Serving producer protocol on %s", listener.Addr().String())
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("Producer protocol endpoint failed: %s", err.Error())
		}
	}()
	return nil
}

// Addr returns the listening address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.server.Addr
	}
	return s.listener.Addr().String()
}

func (s *Server) Stop() error {
	if s.listener == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleRegister(
	w http.ResponseWriter, r *http.Request,
) {

	registration := producer.Registration{}
	codec, ok := s.decode(w, r, &registration)
	if !ok {
		return
	}

	s.respond(w, codec, s.service.Register(r.Context(), registration))
}

func (s *Server) handleEmit(
	w http.ResponseWriter, r *http.Request,
) {

	emit := producer.Emit{}
	codec, ok := s.decode(w, r, &emit)
	if !ok {
		return
	}

	s.respond(w, codec, s.service.Emit(r.Context(), emit))
}

func (s *Server) handleCheck(
	w http.ResponseWriter, r *http.Request,
) {

	if s.service.CheckRegistered(r.Context(), r.URL.Query().Get("uuid")) {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (s *Server) decode(
	w http.ResponseWriter, r *http.Request, target any,
) (encoding.Codec, bool) {

	codec, err := encoding.CodecFor(r.Header.Get("Content-Type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
		return nil, false
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodySize))
	if err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return nil, false
	}

	if err := codec.Unmarshal(body, target); err != nil {
		s.logger.Debugf("Undecodable %s request to %s: %s", codec.ContentType(), r.URL.Path, err.Error())
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return nil, false
	}
	return codec, true
}

func (s *Server) respond(
	w http.ResponseWriter, codec encoding.Codec, result any,
) {

	payload, err := codec.Marshal(result)
	if err != nil {
		s.logger.Errorf("Failed to encode response: %s", err.Error())
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", codec.ContentType())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		s.logger.Debugf("Failed to write response: %s", err.Error())
	}
}
