package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/IBM/sarama"

	"sulytrack/internal/events"
	"sulytrack/internal/logx"
)

var newAsyncProducer = sarama.NewAsyncProducer

// Producer publishes domain events to a single topic. Delivery happens in the
// background, so a slow or unreachable cluster never holds up the caller.
type Producer struct {
	logger   logx.Logger
	producer sarama.AsyncProducer
	topic    string
	done     chan struct{}
}

var _ events.Publisher = (*Producer)(nil)

// NewProducer creates an async producer. It returns nil, nil when kafka is not configured.
func NewProducer(logger logx.Logger, brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" {
		return nil, nil
	}

	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true

	p, err := newAsyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return NewProducerFrom(logger, p, topic), nil
}

// NewProducerFrom wraps an existing sarama producer and starts draining its results.
func NewProducerFrom(logger logx.Logger, p sarama.AsyncProducer, topic string) *Producer {
	if logger == nil {
		logger = logx.Nop()
	}
	pr := &Producer{logger: logger, producer: p, topic: topic, done: make(chan struct{})}
	go pr.drain()
	return pr
}

// Publish queues the event keyed by the entity id so one entity stays on one partition.
// It blocks only while the producer's input buffer is full, and never past ctx.
func (p *Producer) Publish(ctx context.Context, e events.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(FromDomain(e))
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", e.Type, err)
	}
	msg := &sarama.ProducerMessage{
		Topic:    p.topic,
		Key:      sarama.StringEncoder(e.Key()),
		Value:    sarama.ByteEncoder(body),
		Metadata: e.Type,
	}
	select {
	case p.producer.Input() <- msg:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("publish %s: %w", e.Type, ctx.Err())
	}
}

func (p *Producer) drain() {
	defer close(p.done)
	successes, errs := p.producer.Successes(), p.producer.Errors()
	for successes != nil || errs != nil {
		select {
		case msg, ok := <-successes:
			if !ok {
				successes = nil
				continue
			}
			p.logger.Debug("event published",
				logx.Any("type", msg.Metadata),
				logx.Int("partition", int(msg.Partition)),
				logx.Int64("offset", msg.Offset),
			)
		case perr, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			var typ any
			if perr.Msg != nil {
				typ = perr.Msg.Metadata
			}
			p.logger.Warn("event delivery failed", logx.Any("type", typ), logx.Err(perr.Err))
		}
	}
}

// Close flushes buffered events and waits until every result has been logged.
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	p.producer.AsyncClose()
	<-p.done
	return nil
}
