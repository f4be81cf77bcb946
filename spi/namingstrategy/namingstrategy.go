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
package namingstrategy

import (
	"strings"
)

// NamingStrategy represents a strategy to generate
// topic names for producer records
type NamingStrategy interface {
	// EventTopicName generates an event topic name for the given producer
	EventTopicName(
		topicPrefix string, producerId, producerName string,
	) string
}

// SanitizeTopicName is a helper to sanitize topic
// names to be as compatible as possible
func SanitizeTopicName(
	topicName string,
) (topic string, changed bool) {

	builder := strings.Builder{}
	for _, r := range topicName {
		if isValidCharacter(r) {
			builder.WriteRune(r)
		} else {
			changed = true
			builder.WriteRune('_')
		}
	}
	return builder.String(), changed
}

func isValidCharacter(
	r rune,
) bool {

	return r == '.' ||
		r == '_' ||
		r == '-' ||
		(r >= 'A' && r <= 'Z') ||
		(r >= 'a' && r <= 'z') ||
		(r >= '0' && r <= '9')
}
