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

import (
	"crypto/tls"
	"github.com/IBM/sarama"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

type StoreDialect string

const (
	QuestDB     StoreDialect = "questdb"
	TimescaleDB StoreDialect = "timescaledb"
)

type CatalogType string

const (
	PostgresCatalog CatalogType = "postgres"
	MemoryCatalog   CatalogType = "memory"
)

type SinkType string

const (
	None       SinkType = "none"
	Stdout     SinkType = "stdout"
	NATS       SinkType = "nats"
	Kafka      SinkType = "kafka"
	Redis      SinkType = "redis"
	Http       SinkType = "http"
	AwsSQS     SinkType = "awssqs"
	AwsKinesis SinkType = "awskinesis"
)

type NamingStrategyType string

const (
	ProducerIdNaming   NamingStrategyType = "producerid"
	ProducerNameNaming NamingStrategyType = "producername"
)

type NatsAuthorizationType string

const (
	UserInfo    NatsAuthorizationType = "userinfo"
	Credentials NatsAuthorizationType = "credentials"
	Jwt         NatsAuthorizationType = "jwt"
)

type HttpAuthenticationType string

const (
	NoneAuthentication   HttpAuthenticationType = "none"
	BasicAuthentication  HttpAuthenticationType = "basic"
	HeaderAuthentication HttpAuthenticationType = "header"
)

type Config struct {
	Store     StoreConfig     `toml:"store"`
	Catalog   CatalogConfig   `toml:"catalog"`
	Producers ProducersConfig `toml:"producers"`
	Http      HttpConfig      `toml:"http"`
	Stats     StatsConfig     `toml:"stats"`
	Sink      SinkConfig      `toml:"sink"`
	Logging   LoggerConfig    `toml:"logging"`
}

type StoreConfig struct {
	Connection   string       `toml:"connection"`
	Password     string       `toml:"password"`
	Dialect      StoreDialect `toml:"dialect"`
	CatalogTable string       `toml:"catalogtable"`
	PoolSize     int32        `toml:"poolsize"`
	Timeout      int          `toml:"timeout"`
}

type CatalogConfig struct {
	Type CatalogType `toml:"type"`
}

type ProducersConfig struct {
	Identifiers IdentifiersConfig `toml:"identifiers"`
}

type IdentifiersConfig struct {
	Strict *bool `toml:"strict"`
}

type HttpConfig struct {
	Address      string `toml:"address"`
	ReadTimeout  int    `toml:"readtimeout"`
	WriteTimeout int    `toml:"writetimeout"`
	MaxBodySize  string `toml:"maxbodysize"`
}

type StatsConfig struct {
	Enabled *bool              `toml:"enabled"`
	Address string             `toml:"address"`
	Runtime RuntimeStatsConfig `toml:"runtime"`
}

type RuntimeStatsConfig struct {
	Enabled *bool `toml:"enabled"`
}

type SinkConfig struct {
	Type       SinkType                     `toml:"type"`
	Topic      SinkTopicConfig              `toml:"topic"`
	Retries    SinkRetryConfig              `toml:"retries"`
	Filters    map[string]EventFilterConfig `toml:"filters"`
	Nats       NatsConfig                   `toml:"nats"`
	Kafka      KafkaConfig                  `toml:"kafka"`
	Redis      RedisConfig                  `toml:"redis"`
	Http       HttpSinkConfig               `toml:"http"`
	AwsSqs     AwsSqsConfig                 `toml:"sqs"`
	AwsKinesis AwsKinesisConfig             `toml:"kinesis"`
}

type SinkTopicConfig struct {
	Prefix         string               `toml:"prefix"`
	NamingStrategy NamingStrategyConfig `toml:"namingstrategy"`
}

type NamingStrategyConfig struct {
	Type NamingStrategyType `toml:"type"`
}

type SinkRetryConfig struct {
	MaxAttempts uint64 `toml:"maxattempts"`
}

type EventFilterConfig struct {
	Producers    []string `toml:"producers"`
	DefaultValue *bool    `toml:"default"`
	Condition    string   `toml:"condition"`
}

type NatsUserInfoConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

type NatsCredentialsConfig struct {
	Certificate string   `toml:"certificate"`
	Seeds       []string `toml:"seeds"`
}

type NatsJWTConfig struct {
	JWT  string `toml:"jwt"`
	Seed string `toml:"seed"`
}

type NatsConfig struct {
	Address       string                `toml:"address"`
	Authorization NatsAuthorizationType `toml:"authorization"`
	UserInfo      NatsUserInfoConfig    `toml:"userinfo"`
	Credentials   NatsCredentialsConfig `toml:"credentials"`
	JWT           NatsJWTConfig         `toml:"jwt"`
	Timeout       int                   `toml:"timeout"`
}

type KafkaSaslConfig struct {
	Enabled   bool                 `toml:"enabled"`
	User      string               `toml:"user"`
	Password  string               `toml:"password"`
	Mechanism sarama.SASLMechanism `toml:"mechanism"`
}

type KafkaConfig struct {
	Brokers    []string        `toml:"brokers"`
	Idempotent bool            `toml:"idempotent"`
	Sasl       KafkaSaslConfig `toml:"sasl"`
	TLS        TLSConfig       `toml:"tls"`
}

type RedisConfig struct {
	Network  string             `toml:"network"`
	Address  string             `toml:"address"`
	Password string             `toml:"password"`
	Database int                `toml:"database"`
	Retries  RedisRetryConfig   `toml:"retries"`
	Timeouts RedisTimeoutConfig `toml:"timeouts"`
	PoolSize int                `toml:"poolsize"`
	TLS      TLSConfig          `toml:"tls"`
}

type RedisRetryConfig struct {
	MaxAttempts int                     `toml:"maxattempts"`
	Backoff     RedisRetryBackoffConfig `toml:"backoff"`
}

type RedisRetryBackoffConfig struct {
	Min int `toml:"min"`
	Max int `toml:"max"`
}

type RedisTimeoutConfig struct {
	Dial  int `toml:"dial"`
	Read  int `toml:"read"`
	Write int `toml:"write"`
	Pool  int `toml:"pool"`
	Idle  int `toml:"idle"`
}

type HttpSinkConfig struct {
	Url            string                       `toml:"url"`
	Authentication HttpSinkAuthenticationConfig `toml:"authentication"`
	TLS            TLSConfig                    `toml:"tls"`
}

type HttpSinkAuthenticationConfig struct {
	Type   HttpAuthenticationType             `toml:"type"`
	Basic  HttpSinkBasicAuthenticationConfig  `toml:"basic"`
	Header HttpSinkHeaderAuthenticationConfig `toml:"header"`
}

type HttpSinkBasicAuthenticationConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

type HttpSinkHeaderAuthenticationConfig struct {
	Name  string `toml:"name"`
	Value string `toml:"value"`
}

type AwsConnectionConfig struct {
	Region          *string `toml:"region"`
	Endpoint        string  `toml:"endpoint"`
	AccessKeyId     string  `toml:"accesskeyid"`
	SecretAccessKey string  `toml:"secretaccesskey"`
	SessionToken    string  `toml:"sessiontoken"`
}

type AwsSqsConfig struct {
	Queue AwsSqsQueueConfig   `toml:"queue"`
	Aws   AwsConnectionConfig `toml:"aws"`
}

type AwsSqsQueueConfig struct {
	Url *string `toml:"url"`
}

type AwsKinesisConfig struct {
	Stream AwsKinesisStreamConfig `toml:"stream"`
	Aws    AwsConnectionConfig    `toml:"aws"`
}

type AwsKinesisStreamConfig struct {
	Name       *string `toml:"name"`
	Create     *bool   `toml:"create"`
	ShardCount *int64  `toml:"shardcount"`
	Mode       *string `toml:"mode"`
}

type TLSConfig struct {
	Enabled    bool               `toml:"enabled"`
	SkipVerify bool               `toml:"skipverify"`
	ClientAuth tls.ClientAuthType `toml:"clientauth"`
}

type LoggerConfig struct {
	Level   string                     `toml:"level"`
	Outputs LoggerOutputConfig         `toml:"outputs"`
	Loggers map[string]SubLoggerConfig `toml:"loggers"`
}

type LoggerOutputConfig struct {
	Console LoggerConsoleConfig `toml:"console"`
	File    LoggerFileConfig    `toml:"file"`
}

type SubLoggerConfig struct {
	Level   *string            `toml:"level"`
	Outputs LoggerOutputConfig `toml:"outputs"`
}

type LoggerConsoleConfig struct {
	Enabled *bool `toml:"enabled"`
}

type LoggerFileConfig struct {
	Enabled     *bool          `toml:"enabled"`
	Path        string         `toml:"path"`
	Rotate      *bool          `toml:"rotate"`
	MaxSize     *string        `toml:"maxsize"`
	MaxDuration *time.Duration `toml:"maxduration"`
	Compress    bool           `toml:"compress"`
}

// GetOrDefault resolves a dotted, canonical property name (see constants.go). An
// environment variable of the same name (upper case, dots replaced by underscores,
// underscores doubled) takes precedence over the configuration value.
func GetOrDefault[V any](config *Config, canonicalProperty string, defaultValue V) V {
	if env, found := findEnvProperty(canonicalProperty, defaultValue); found {
		return env
	}

	properties := strings.Split(canonicalProperty, ".")

	element := reflect.ValueOf(*config)
	for _, property := range properties {
		if e, ok := findProperty(element, property); ok {
			element = e
		} else {
			return defaultValue
		}
	}

	if element.IsZero() {
		return defaultValue
	}

	targetType := reflect.TypeOf(defaultValue)
	if targetType == nil {
		return element.Interface().(V)
	}

	if targetType.Kind() == reflect.Ptr {
		if element.Kind() == reflect.Ptr {
			return element.Convert(targetType).Interface().(V)
		}
		pointer := reflect.New(targetType.Elem())
		pointer.Elem().Set(element.Convert(targetType.Elem()))
		return pointer.Interface().(V)
	}

	if element.Kind() == reflect.Ptr {
		element = element.Elem()
	}
	return element.Convert(targetType).Interface().(V)
}

func findEnvProperty[V any](canonicalProperty string, defaultValue V) (V, bool) {
	t := reflect.TypeOf(defaultValue)
	if t == nil {
		return defaultValue, false
	}

	envVarName := strings.ToUpper(canonicalProperty)
	envVarName = strings.ReplaceAll(envVarName, "_", "__")
	envVarName = strings.ReplaceAll(envVarName, ".", "_")
	val, ok := os.LookupEnv(envVarName)
	if !ok || val == "" {
		return defaultValue, false
	}

	elementType := t
	if t.Kind() == reflect.Ptr {
		elementType = t.Elem()
	}

	parsed, ok := parseEnvValue(val, elementType)
	if !ok {
		return defaultValue, false
	}

	if t.Kind() == reflect.Ptr {
		pointer := reflect.New(elementType)
		pointer.Elem().Set(parsed)
		return pointer.Interface().(V), true
	}
	return parsed.Interface().(V), true
}

func parseEnvValue(val string, t reflect.Type) (reflect.Value, bool) {
	switch t.Kind() {
	case reflect.String:
		return reflect.ValueOf(val).Convert(t), true
	case reflect.Bool:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(b).Convert(t), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(val, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(i).Convert(t), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(val, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(u).Convert(t), true
	case reflect.Slice:
		if t.Elem().Kind() != reflect.String {
			return reflect.Value{}, false
		}
		parts := strings.Split(val, ",")
		slice := reflect.MakeSlice(t, 0, len(parts))
		for _, part := range parts {
			slice = reflect.Append(slice, reflect.ValueOf(strings.TrimSpace(part)).Convert(t.Elem()))
		}
		return slice, true
	}
	return reflect.Value{}, false
}

func findProperty(element reflect.Value, property string) (reflect.Value, bool) {
	if element.Kind() == reflect.Ptr {
		if element.IsNil() {
			return reflect.Value{}, false
		}
		element = element.Elem()
	}
	if element.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}

	t := element.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" && !f.Anonymous {
			continue
		}

		if f.Tag.Get("toml") == property {
			return element.Field(i), true
		}
	}
	return reflect.Value{}, false
}
