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
package namingstrategies

import (
	"fmt"
	"github.com/noctarius/conductor/spi/config"
	"github.com/noctarius/conductor/spi/namingstrategy"
)

func init() {
	namingstrategy.RegisterNamingStrategy(config.ProducerIdNaming,
		func(_ *config.Config) (namingstrategy.NamingStrategy, error) {
			return &ProducerIdNamingStrategy{}, nil
		},
	)
	namingstrategy.RegisterNamingStrategy(config.ProducerNameNaming,
		func(_ *config.Config) (namingstrategy.NamingStrategy, error) {
			return &ProducerNameNamingStrategy{}, nil
		},
	)
}

type ProducerIdNamingStrategy struct {
}

func (p *ProducerIdNamingStrategy) EventTopicName(
	topicPrefix string, producerId, _ string,
) string {

	return fmt.Sprintf("%s.%s", topicPrefix, producerId)
}

// ProducerNameNamingStrategy groups the topics of producers sharing a
// name, the producer id keeps the topic unique.
type ProducerNameNamingStrategy struct {
}

func (p *ProducerNameNamingStrategy) EventTopicName(
	topicPrefix string, producerId, producerName string,
) string {

	name, _ := namingstrategy.SanitizeTopicName(producerName)
	return fmt.Sprintf("%s.%s.%s", topicPrefix, name, producerId)
}
