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

package awskinesis

import (
	"context"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/kinesis"
	"github.com/go-errors/errors"
	"github.com/noctarius/conductor/spi/config"
	"github.com/noctarius/conductor/spi/sink"
	"time"
)

func init() {
	sink.RegisterSink(config.AwsKinesis, newAwsKinesisSink)
}

type awsKinesisSink struct {
	streamName        *string
	streamCreate      bool
	shardCount        *int64
	streamModeDetails *kinesis.StreamModeDetails
	awsKinesis        *kinesis.Kinesis
}

func newAwsKinesisSink(
	c *config.Config,
) (sink.Sink, error) {

	streamName := config.GetOrDefault[*string](c, config.PropertyKinesisStreamName, nil)
	if streamName == nil {
		return nil, errors.Errorf("AWS Kinesis sink needs the stream name to be configured")
	}

	shardCount := config.GetOrDefault[*int64](c, config.PropertyKinesisStreamShardCount, nil)
	streamMode := config.GetOrDefault[*string](c, config.PropertyKinesisStreamMode, nil)
	streamCreate := config.GetOrDefault(c, config.PropertyKinesisStreamCreate, true)

	awsRegion := config.GetOrDefault[*string](c, config.PropertyKinesisAwsRegion, nil)
	endpoint := config.GetOrDefault(c, config.PropertyKinesisAwsEndpoint, "")
	accessKeyId := config.GetOrDefault[*string](c, config.PropertyKinesisAwsAccessKeyId, nil)
	secretAccessKey := config.GetOrDefault[*string](c, config.PropertyKinesisAwsSecretAccessKey, nil)
	sessionToken := config.GetOrDefault(c, config.PropertyKinesisAwsSessionToken, "")

	awsConfig := aws.NewConfig().WithEndpoint(endpoint)
	if accessKeyId != nil && secretAccessKey != nil {
		awsConfig = awsConfig.WithCredentials(
			credentials.NewStaticCredentials(*accessKeyId, *secretAccessKey, sessionToken),
		)
	}

	if awsRegion != nil {
		awsConfig = awsConfig.WithRegion(*awsRegion)
	}

	var streamModeDetails *kinesis.StreamModeDetails
	if streamMode != nil {
		streamModeDetails = &kinesis.StreamModeDetails{
			StreamMode: streamMode,
		}
	}

	awsSession, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, err
	}

	return &awsKinesisSink{
		streamName:        streamName,
		streamCreate:      streamCreate,
		shardCount:        shardCount,
		streamModeDetails: streamModeDetails,
		awsKinesis:        kinesis.New(awsSession),
	}, nil
}

// Start makes sure the stream exists, creating it when configured to.
func (a *awsKinesisSink) Start() error {
	_, err := a.awsKinesis.DescribeStream(&kinesis.DescribeStreamInput{
		StreamName: a.streamName,
	})
	if err == nil {
		return nil
	}

	var notFound *kinesis.ResourceNotFoundException
	if !errors.As(err, &notFound) || !a.streamCreate {
		return err
	}

	if _, err = a.awsKinesis.CreateStream(&kinesis.CreateStreamInput{
		ShardCount:        a.shardCount,
		StreamModeDetails: a.streamModeDetails,
		StreamName:        a.streamName,
	}); err != nil {
		return err
	}

	return a.awsKinesis.WaitUntilStreamExists(&kinesis.DescribeStreamInput{
		StreamName: a.streamName,
	})
}

func (a *awsKinesisSink) Stop() error {
	return nil
}

func (a *awsKinesisSink) Emit(
	ctx context.Context, _ time.Time, _ string, key, envelope []byte,
) error {

	_, err := a.awsKinesis.PutRecordWithContext(ctx, &kinesis.PutRecordInput{
		StreamName:   a.streamName,
		PartitionKey: aws.String(string(key)),
		Data:         envelope,
	})
	return err
}
