package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

const (
	publishTimeout = 5 * time.Second
	DLQSuffix      = ".dlq"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

// NewAsyncWriter returns a writer whose WriteMessages does not wait for the
// brokers. Delivery errors surface only through the completion log.
func NewAsyncWriter(brokers []string, topic string, logger *slog.Logger) *kafka.Writer {
	w := NewWriter(brokers, topic)
	w.Async = true
	w.Completion = func(msgs []kafka.Message, err error) {
		if err != nil {
			logger.Error("notification_publish_failed", "topic", topic, "count", len(msgs), "error", err)
		}
	}
	return w
}

func NewReader(brokers []string, topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  group,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
}

// Queue publishes notifications to a topic keyed by order id, so every
// notification of one order lands on the same partition.
type Queue struct {
	W MessageWriter
}

func (q *Queue) Dispatch(ctx context.Context, ns ...Notification) error {
	if len(ns) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(ns))
	for _, n := range ns {
		data, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("notify: marshal %s: %w", n.ID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(strconv.FormatUint(uint64(n.Order.OrderID), 10)),
			Value: data,
			Headers: []kafka.Header{
				{Key: "kind", Value: []byte(n.Kind)},
			},
		})
	}

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := q.W.WriteMessages(wctx, msgs...); err != nil {
		return fmt.Errorf("notify: publish: %w", err)
	}
	return nil
}

func (q *Queue) Close() error {
	return q.W.Close()
}

// Worker consumes queued notifications. An offset is committed only after
// the notification was delivered or parked on the dead-letter topic.
type Worker struct {
	Reader MessageReader
	DLQ    MessageWriter
	Sender Sender
	Policy RetryPolicy
}

func (w *Worker) Run(ctx context.Context) error {
	ctx = logging.With(ctx, "component", "notify.worker")
	l := logging.FromContext(ctx)
	for {
		m, err := w.Reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("notify: fetch: %w", err)
		}

		if err := w.handle(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := w.Reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("notify: commit offset %d: %w", m.Offset, err)
		}
		l.Debug("message_committed", "partition", m.Partition, "offset", m.Offset)
	}
}

func (w *Worker) handle(ctx context.Context, m kafka.Message) error {
	l := logging.FromContext(ctx).With("offset", m.Offset)

	var n Notification
	if err := json.Unmarshal(m.Value, &n); err != nil {
		l.Warn("notification_decode_failed", "error", err)
		return w.deadLetter(ctx, m, err)
	}

	if err := w.Policy.Deliver(ctx, w.Sender, n); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.Error("notification_failed", "id", n.ID, "kind", n.Kind, "order_id", n.Order.OrderID, "error", err)
		return w.deadLetter(ctx, m, err)
	}

	l.Info("notification_sent", "id", n.ID, "kind", n.Kind, "order_id", n.Order.OrderID)
	return nil
}

func (w *Worker) deadLetter(ctx context.Context, m kafka.Message, cause error) error {
	headers := append([]kafka.Header{}, m.Headers...)
	headers = append(headers,
		kafka.Header{Key: "error", Value: []byte(cause.Error())},
		kafka.Header{Key: "source_topic", Value: []byte(m.Topic)},
	)
	err := w.DLQ.WriteMessages(ctx, kafka.Message{
		Key:     m.Key,
		Value:   m.Value,
		Headers: headers,
	})
	if err != nil {
		return fmt.Errorf("notify: dead letter offset %d: %w", m.Offset, err)
	}
	return nil
}
