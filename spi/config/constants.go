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

package config

const (
	PropertyStoreConnection   = "store.connection"
	PropertyStorePassword     = "store.password"
	PropertyStoreDialect      = "store.dialect"
	PropertyStoreCatalogTable = "store.catalogtable"
	PropertyStorePoolSize     = "store.poolsize"
	PropertyStoreTimeout      = "store.timeout"

	PropertyCatalogType = "catalog.type"

	PropertyProducersStrictIdentifiers = "producers.identifiers.strict"

	PropertyHttpAddress      = "http.address"
	PropertyHttpReadTimeout  = "http.readtimeout"
	PropertyHttpWriteTimeout = "http.writetimeout"
	PropertyHttpMaxBodySize  = "http.maxbodysize"

	PropertyStatsEnabled        = "stats.enabled"
	PropertyStatsAddress        = "stats.address"
	PropertyRuntimeStatsEnabled = "stats.runtime.enabled"

	PropertySink                 = "sink.type"
	PropertySinkTopicPrefix      = "sink.topic.prefix"
	PropertyNamingStrategy       = "sink.topic.namingstrategy.type"
	PropertySinkRetryMaxAttempts = "sink.retries.maxattempts"

	PropertyKafkaBrokers       = "sink.kafka.brokers"
	PropertyKafkaIdempotent    = "sink.kafka.idempotent"
	PropertyKafkaSaslEnabled   = "sink.kafka.sasl.enabled"
	PropertyKafkaSaslUser      = "sink.kafka.sasl.user"
	PropertyKafkaSaslPassword  = "sink.kafka.sasl.password"
	PropertyKafkaSaslMechanism = "sink.kafka.sasl.mechanism"
	PropertyKafkaTlsEnabled    = "sink.kafka.tls.enabled"
	PropertyKafkaTlsSkipVerify = "sink.kafka.tls.skipverify"
	PropertyKafkaTlsClientAuth = "sink.kafka.tls.clientauth"

	PropertyNatsAddress                = "sink.nats.address"
	PropertyNatsAuthorization          = "sink.nats.authorization"
	PropertyNatsUserinfoUsername       = "sink.nats.userinfo.username"
	PropertyNatsUserinfoPassword       = "sink.nats.userinfo.password"
	PropertyNatsCredentialsCertificate = "sink.nats.credentials.certificate"
	PropertyNatsCredentialsSeeds       = "sink.nats.credentials.seeds"
	PropertyNatsJwt                    = "sink.nats.jwt.jwt"
	PropertyNatsJwtSeed                = "sink.nats.jwt.seed"
	PropertyNatsTimeout                = "sink.nats.timeout"

	PropertyRedisNetwork           = "sink.redis.network"
	PropertyRedisAddress           = "sink.redis.address"
	PropertyRedisPassword          = "sink.redis.password"
	PropertyRedisDatabase          = "sink.redis.database"
	PropertyRedisPoolsize          = "sink.redis.poolsize"
	PropertyRedisRetriesMax        = "sink.redis.retries.maxattempts"
	PropertyRedisRetriesBackoffMin = "sink.redis.retries.backoff.min"
	PropertyRedisRetriesBackoffMax = "sink.redis.retries.backoff.max"
	PropertyRedisTimeoutDial       = "sink.redis.timeouts.dial"
	PropertyRedisTimeoutRead       = "sink.redis.timeouts.read"
	PropertyRedisTimeoutWrite      = "sink.redis.timeouts.write"
	PropertyRedisTimeoutPool       = "sink.redis.timeouts.pool"
	PropertyRedisTimeoutIdle       = "sink.redis.timeouts.idle"
	PropertyRedisTlsSkipVerify     = "sink.redis.tls.skipverify"
	PropertyRedisTlsClientAuth     = "sink.redis.tls.clientauth"

	PropertyHttpSinkUrl                             = "sink.http.url"
	PropertyHttpSinkAuthenticationType              = "sink.http.authentication.type"
	PropertyHttpSinkBasicAuthenticationUsername     = "sink.http.authentication.basic.username"
	PropertyHttpSinkBasicAuthenticationPassword     = "sink.http.authentication.basic.password"
	PropertyHttpSinkHeaderAuthenticationHeaderName  = "sink.http.authentication.header.name"
	PropertyHttpSinkHeaderAuthenticationHeaderValue = "sink.http.authentication.header.value"
	PropertyHttpSinkTlsEnabled                      = "sink.http.tls.enabled"
	PropertyHttpSinkTlsSkipVerify                   = "sink.http.tls.skipverify"
	PropertyHttpSinkTlsClientAuth                   = "sink.http.tls.clientauth"

	PropertySqsQueueUrl           = "sink.sqs.queue.url"
	PropertySqsAwsRegion          = "sink.sqs.aws.region"
	PropertySqsAwsEndpoint        = "sink.sqs.aws.endpoint"
	PropertySqsAwsAccessKeyId     = "sink.sqs.aws.accesskeyid"
	PropertySqsAwsSecretAccessKey = "sink.sqs.aws.secretaccesskey"
	PropertySqsAwsSessionToken    = "sink.sqs.aws.sessiontoken"

	PropertyKinesisStreamName         = "sink.kinesis.stream.name"
	PropertyKinesisStreamCreate       = "sink.kinesis.stream.create"
	PropertyKinesisStreamShardCount   = "sink.kinesis.stream.shardcount"
	PropertyKinesisStreamMode         = "sink.kinesis.stream.mode"
	PropertyKinesisAwsRegion          = "sink.kinesis.aws.region"
	PropertyKinesisAwsEndpoint        = "sink.kinesis.aws.endpoint"
	PropertyKinesisAwsAccessKeyId     = "sink.kinesis.aws.accesskeyid"
	PropertyKinesisAwsSecretAccessKey = "sink.kinesis.aws.secretaccesskey"
	PropertyKinesisAwsSessionToken    = "sink.kinesis.aws.sessiontoken"
)
