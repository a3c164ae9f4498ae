// Package broker consumes moderation decisions arriving from external
// review tooling over Kafka and feeds them into the moderation service, so
// a decision made in an outside queue lands in the same transactional path
// as one made over HTTP.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/segmentio/kafka-go"

	"adboard/pkg/config"
	"adboard/pkg/logging"
	"adboard/pkg/metrics"
)

// Envelope is a decoded broker message. Type routes it to handlers; Raw is
// the full payload for the handler to unmarshal.
type Envelope struct {
	Type string
	Raw  []byte
}

// Predicate selects the envelopes a handler wants.
type Predicate func(Envelope) bool

// HandlerFunc processes one matching envelope.
type HandlerFunc func(ctx context.Context, e Envelope) error

// TypeIs matches a single message type.
func TypeIs(t string) Predicate {
	return func(e Envelope) bool { return e.Type == t }
}

type registration struct {
	name    string
	pred    Predicate
	handler HandlerFunc
}

type Consumer struct {
	reader   *kafka.Reader
	handlers []registration
	log      *logging.ComponentLogger

	mConsumed *metrics.Counter
	mFailed   *metrics.Counter
	mSkipped  *metrics.Counter
}

func NewConsumer(cfg *config.Config, log *logging.Logger) *Consumer {
	c := &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  strings.Split(cfg.KafkaBrokers, ","),
			GroupID:  cfg.KafkaGroupID,
			Topic:    cfg.KafkaTopic,
			MinBytes: 1,
			MaxBytes: 1 << 20,
		}),
		mConsumed: metrics.Default.Counter("broker_messages_consumed_total", "Total broker messages consumed"),
		mFailed:   metrics.Default.Counter("broker_handler_failures_total", "Total broker handler failures"),
		mSkipped:  metrics.Default.Counter("broker_messages_skipped_total", "Total broker messages without a handler"),
	}
	if log != nil {
		c.log = log.WithComponent("broker")
	}
	return c
}

// Register adds a handler. Call before Run; the set is fixed afterwards.
func (c *Consumer) Register(name string, pred Predicate, h HandlerFunc) {
	c.handlers = append(c.handlers, registration{name: name, pred: pred, handler: h})
}

// Run consumes until ctx is cancelled. Offsets are committed after dispatch
// whether or not a handler failed: a poison message is logged and skipped,
// not redelivered forever.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		c.mConsumed.Inc(1)

		c.dispatch(ctx, msg.Value)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, payload []byte) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &head); err != nil || head.Type == "" {
		c.mSkipped.Inc(1)
		if c.log != nil {
			c.log.Warn("broker message without a type field")
		}
		return
	}
	env := Envelope{Type: head.Type, Raw: payload}

	matched := false
	for _, reg := range c.handlers {
		if !reg.pred(env) {
			continue
		}
		matched = true
		if err := reg.handler(ctx, env); err != nil {
			c.mFailed.Inc(1)
			if c.log != nil {
				c.log.Error("broker handler failed", err,
					logging.String("handler", reg.name),
					logging.String("type", env.Type))
			}
		}
	}
	if !matched {
		c.mSkipped.Inc(1)
		if c.log != nil {
			c.log.Debug("no handler for broker message", logging.String("type", env.Type))
		}
	}
}
