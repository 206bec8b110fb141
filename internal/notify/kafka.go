package notify

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

type KafkaOptions struct {
	Broker   string
	Topic    string
	Username string
	Password string
}

// messageWriter is the part of *kafka.Writer the sender uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSender publishes the rendered message as a JSON event keyed by lead
// id, for an external mailer to deliver.
type KafkaSender struct {
	writer messageWriter
}

func NewKafkaSender(options KafkaOptions) *KafkaSender {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(options.Broker),
		Topic:        options.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 10 * time.Second,
	}
	if options.Username != "" {
		writer.Transport = &kafka.Transport{
			SASL: plain.Mechanism{Username: options.Username, Password: options.Password},
			TLS:  &tls.Config{},
		}
	}
	return &KafkaSender{writer: writer}
}

func (sender *KafkaSender) Send(ctx context.Context, msg Message) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode lead event: %w", err)
	}
	if err := sender.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.LeadID),
		Value: value,
		Time:  time.Now(),
	}); err != nil {
		return fmt.Errorf("publish lead event: %w", err)
	}
	return nil
}

func (sender *KafkaSender) Close() error {
	return sender.writer.Close()
}
