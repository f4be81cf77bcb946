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

package kafka

import (
	"crypto/tls"
	"github.com/IBM/sarama"
	"github.com/noctarius/conductor/spi/config"
	"github.com/stretchr/testify/assert"
	"testing"
)

func Test_Kafka_Config_Defaults(t *testing.T) {
	kafkaConfig := newKafkaConfig(&config.Config{})

	assert.Equal(t, "conductor", kafkaConfig.ClientID)
	assert.True(t, kafkaConfig.Producer.Return.Successes)
	assert.Equal(t, sarama.WaitForLocal, kafkaConfig.Producer.RequiredAcks)
	assert.False(t, kafkaConfig.Net.SASL.Enable)
	assert.False(t, kafkaConfig.Net.TLS.Enable)
	assert.NoError(t, kafkaConfig.Validate())
}

func Test_Kafka_Config_Loading(t *testing.T) {
	kafkaConfig := newKafkaConfig(&config.Config{
		Sink: config.SinkConfig{
			Kafka: config.KafkaConfig{
				Idempotent: true,
				Sasl: config.KafkaSaslConfig{
					Enabled:   true,
					User:      "user",
					Password:  "secret",
					Mechanism: sarama.SASLTypeSCRAMSHA256,
				},
				TLS: config.TLSConfig{
					Enabled:    true,
					SkipVerify: true,
					ClientAuth: tls.RequireAnyClientCert,
				},
			},
		},
	})

	assert.True(t, kafkaConfig.Producer.Idempotent)
	assert.Equal(t, sarama.WaitForAll, kafkaConfig.Producer.RequiredAcks)
	assert.True(t, kafkaConfig.Net.SASL.Enable)
	assert.Equal(t, "user", kafkaConfig.Net.SASL.User)
	assert.Equal(t, "secret", kafkaConfig.Net.SASL.Password)
	assert.Equal(t, sarama.SASLMechanism(sarama.SASLTypeSCRAMSHA256), kafkaConfig.Net.SASL.Mechanism)
	assert.True(t, kafkaConfig.Net.TLS.Enable)
	assert.True(t, kafkaConfig.Net.TLS.Config.InsecureSkipVerify)
	assert.Equal(t, tls.RequireAnyClientCert, kafkaConfig.Net.TLS.Config.ClientAuth)
}
