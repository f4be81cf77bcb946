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

package encoding

import (
	"github.com/go-errors/errors"
	"github.com/vmihailenco/msgpack/v5"
	"mime"
	"strings"
)

const (
	ContentTypeJson    = "application/json"
	ContentTypeMsgpack = "application/msgpack"
)

// Codec frames request and response bodies of the producer protocol.
type Codec interface {
	ContentType() string
	Marshal(
		value any,
	) ([]byte, error)
	Unmarshal(
		data []byte, v any,
	) error
}

var (
	jsonCodecInstance    = &jsonCodec{encoder: NewJsonEncoder(true), decoder: NewJsonDecoder(true)}
	msgpackCodecInstance = &msgpackCodec{}
)

func JsonCodec() Codec {
	return jsonCodecInstance
}

func MsgpackCodec() Codec {
	return msgpackCodecInstance
}

// CodecFor resolves the codec for a Content-Type or Accept header value.
// An empty value selects JSON.
func CodecFor(
	contentType string,
) (Codec, error) {

	if strings.TrimSpace(contentType) == "" {
		return jsonCodecInstance, nil
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	switch mediaType {
	case ContentTypeJson, "text/json":
		return jsonCodecInstance, nil
	case ContentTypeMsgpack, "application/x-msgpack", "application/vnd.msgpack":
		return msgpackCodecInstance, nil
	}
	return nil, errors.Errorf("unsupported content type: %s", mediaType)
}

type jsonCodec struct {
	encoder *JsonEncoder
	decoder *JsonDecoder
}

func (j *jsonCodec) ContentType() string {
	return ContentTypeJson
}

func (j *jsonCodec) Marshal(
	value any,
) ([]byte, error) {

	return j.encoder.Marshal(value)
}

func (j *jsonCodec) Unmarshal(
	data []byte, v any,
) error {

	return j.decoder.Unmarshal(data, v)
}

type msgpackCodec struct{}

func (m *msgpackCodec) ContentType() string {
	return ContentTypeMsgpack
}

func (m *msgpackCodec) Marshal(
	value any,
) ([]byte, error) {

	return msgpack.Marshal(value)
}

func (m *msgpackCodec) Unmarshal(
	data []byte, v any,
) error {

	return msgpack.Unmarshal(data, v)
}
