package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"poagov/internal/model"
)

type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaSink publishes notifications as JSON records keyed by ballot.
type KafkaSink struct {
	kcl   producer
	topic string
	close func()
}

// NewKafkaSink wraps a client. The record topic is left empty when topic is
// empty so the client's default produce topic applies.
func NewKafkaSink(client *kgo.Client, topic string) *KafkaSink {
	return &KafkaSink{kcl: client, topic: topic, close: client.Close}
}

// Close releases the client connections.
func (s *KafkaSink) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}

func (s *KafkaSink) Dispatch(ctx context.Context, n model.Notification) error {
	record, err := createRecord(n, s.topic)
	if err != nil {
		return fmt.Errorf("creating notification record: %w", err)
	}

	if err := s.kcl.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("producing notification record: %w", err)
	}
	return nil
}

func createRecord(n model.Notification, topic string) (*kgo.Record, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("marshalling to json: %w", err)
	}
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(n.Key()),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "network", Value: []byte(n.Network.String())},
			{Key: "contract", Value: []byte(n.Event.Contract.String())},
		},
	}, nil
}
