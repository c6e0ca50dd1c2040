package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// DefaultKafkaTopic is the topic ingestion tasks are produced to.
const DefaultKafkaTopic = "billgraph.tasks"

// Kafka dispatches tasks through a Kafka topic for multi-process deployments.
// Unlike the Redis list it is consumed through its own Run loop rather than
// the Queue interface; consumer-group commits give at-least-once delivery.
type Kafka struct {
	client *kgo.Client
	topic  string
	log    *slog.Logger
}

// NewKafka connects a producing and consuming client. group may be empty for
// a produce-only dispatcher.
func NewKafka(brokers []string, topic, group string, log *slog.Logger) (*Kafka, error) {
	if topic == "" {
		topic = DefaultKafkaTopic
	}
	opts := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
	}
	if group != "" {
		opts = append(opts,
			kgo.ConsumerGroup(group),
			kgo.ConsumeTopics(topic),
			kgo.DisableAutoCommit(),
		)
	}
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	return &Kafka{client: client, topic: topic, log: log}, nil
}

// EnsureTopic creates the task topic when it does not exist yet.
func (k *Kafka) EnsureTopic(ctx context.Context, partitions int32) error {
	admin := kadm.NewClient(k.client)
	resp, err := admin.CreateTopic(ctx, partitions, 1, nil, k.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", k.topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", k.topic, resp.Err)
	}
	return nil
}

func (k *Kafka) Enqueue(ctx context.Context, task Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	record := &kgo.Record{Topic: k.topic, Key: []byte(task.URL), Value: payload}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce task: %w", err)
	}
	return nil
}

// Run consumes tasks until ctx is cancelled. A failed task is logged and
// committed anyway: one document's failure must not wedge the partition, and
// dispatcher-level retry re-enqueues what should run again.
func (k *Kafka) Run(ctx context.Context, handler Handler) error {
	for {
		fetches := k.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return ctx.Err()
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			k.log.Error("kafka fetch error", "topic", topic, "partition", partition, "error", err)
		})
		fetches.EachRecord(func(record *kgo.Record) {
			var task Task
			if err := json.Unmarshal(record.Value, &task); err != nil {
				k.log.Error("discarding malformed task", "error", err)
				return
			}
			if err := handler.Handle(ctx, task); err != nil {
				k.log.Error("task failed", "kind", task.Kind, "url", task.URL, "error", err)
			}
		})
		if err := k.client.CommitUncommittedOffsets(ctx); err != nil {
			k.log.Error("commit offsets", "error", err)
		}
	}
}

// Close releases the underlying client.
func (k *Kafka) Close() { k.client.Close() }
