package domain

import (
	"context"
	"time"
)

// FeedKind discriminates the payload of a raw source message.
type FeedKind string

const (
	FeedGridded  FeedKind = "gridded"
	FeedSounding FeedKind = "sounding"
	FeedAlerts   FeedKind = "alerts"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
