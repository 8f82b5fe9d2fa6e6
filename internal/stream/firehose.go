package stream

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/firehose"
	"github.com/aws/aws-sdk-go-v2/service/firehose/types"
)

// FirehoseSink writes records to a Kinesis Firehose delivery stream.
type FirehoseSink struct {
	client     *firehose.Client
	streamName string
}

func NewFirehoseSink(ctx context.Context, region, streamName string) (*FirehoseSink, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &FirehoseSink{
		client:     firehose.NewFromConfig(cfg),
		streamName: streamName,
	}, nil
}

func (s *FirehoseSink) Put(ctx context.Context, record []byte) error {
	_, err := s.client.PutRecord(ctx, &firehose.PutRecordInput{
		DeliveryStreamName: &s.streamName,
		Record:             &types.Record{Data: record},
	})
	return err
}
