package kafka

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"YieldDesk/pkg/logger"
)

// MessageHandler handles messages from a specific topic.
type MessageHandler interface {
	Topic() string
	Handle(context.Context, []byte) error
}

type message struct {
	topic string
	km    kafka.Message
}

type partitionKey struct {
	topic     string
	partition int
}

// Consumer reads registered topics and hands messages to a worker pool.
// A failing message is retried with jittered backoff, then sent to the DLQ
// when one is configured. At most one message per partition is in flight.
type Consumer struct {
	cfg      *ConsumerConfig
	log      *logger.Logger
	handlers map[string]MessageHandler
	readers  map[string]*kafka.Reader
	dlq      *kafka.Writer
	hook     ConsumerHook

	queue    chan message
	stop     chan struct{}
	stopOnce sync.Once
	readWg   sync.WaitGroup
	workWg   sync.WaitGroup

	locksMu sync.Mutex
	locks   map[partitionKey]*sync.Mutex
}

// NewConsumer creates a new Kafka consumer.
func NewConsumer(log *logger.Logger, opts ...ConsumerOption) (*Consumer, error) {
	cfg := &ConsumerConfig{
		GroupID:     "yielddesk",
		WorkerCount: 1,
		BufferSize:  10,
		RetryMax:    3,
		BackoffMin:  50 * time.Millisecond,
		BackoffMax:  2 * time.Second,
		MinBytes:    1,
		MaxBytes:    10e6,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}

	registerMetrics()
	c := &Consumer{
		cfg:      cfg,
		log:      log,
		handlers: make(map[string]MessageHandler),
		readers:  make(map[string]*kafka.Reader),
		hook:     NoopHook{},
		queue:    make(chan message, cfg.BufferSize),
		stop:     make(chan struct{}),
		locks:    make(map[partitionKey]*sync.Mutex),
	}
	if cfg.DLQTopic != "" {
		c.dlq = &kafka.Writer{Addr: kafka.TCP(cfg.Brokers...), Topic: cfg.DLQTopic, Balancer: &kafka.LeastBytes{}}
	}
	return c, nil
}

// RegisterHandler registers a handler for its topic. The first handler
// registered for a topic wins.
func (c *Consumer) RegisterHandler(h MessageHandler) {
	if _, ok := c.handlers[h.Topic()]; ok {
		c.log.Warn("kafka consumer: handler already registered", logger.String("topic", h.Topic()))
		return
	}
	c.handlers[h.Topic()] = h
}

// WithConsumerHook sets the lifecycle hook.
func (c *Consumer) WithConsumerHook(h ConsumerHook) {
	if h != nil {
		c.hook = h
	}
}

// Start launches the readers and workers.
func (c *Consumer) Start() error {
	if len(c.handlers) == 0 {
		return fmt.Errorf("no handlers registered")
	}
	for topic := range c.handlers {
		c.readers[topic] = kafka.NewReader(kafka.ReaderConfig{
			Brokers:  c.cfg.Brokers,
			Topic:    topic,
			GroupID:  c.cfg.GroupID,
			MinBytes: c.cfg.MinBytes,
			MaxBytes: c.cfg.MaxBytes,
		})
	}

	for i := 0; i < c.cfg.WorkerCount; i++ {
		c.workWg.Add(1)
		go c.work()
	}
	for topic, r := range c.readers {
		c.readWg.Add(1)
		go c.read(topic, r)
	}

	c.log.Info("kafka consumer started",
		logger.Int("workers", c.cfg.WorkerCount),
		logger.Int("topics", len(c.readers)),
		logger.String("group_id", c.cfg.GroupID))
	return nil
}

// Stop stops reading, drains queued messages and closes connections.
func (c *Consumer) Stop(ctx context.Context) error {
	var err error
	c.stopOnce.Do(func() {
		close(c.stop)
		for _, r := range c.readers {
			_ = r.Close() // unblocks FetchMessage
		}

		done := make(chan struct{})
		go func() {
			c.readWg.Wait()
			close(c.queue)
			c.workWg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			err = fmt.Errorf("timeout waiting for consumer to stop: %w", ctx.Err())
		}

		if c.dlq != nil {
			if cerr := c.dlq.Close(); cerr != nil {
				c.log.Warn("kafka consumer: close dlq writer", logger.Error(cerr))
			}
		}
		c.log.Info("kafka consumer stopped")
	})
	return err
}

func (c *Consumer) read(topic string, r *kafka.Reader) {
	defer c.readWg.Done()

	for {
		km, err := r.FetchMessage(context.Background())
		if err != nil {
			select {
			case <-c.stop:
				return
			default:
			}
			c.log.Warn("kafka consumer: fetch failed", logger.String("topic", topic), logger.Error(err))
			time.Sleep(c.cfg.BackoffMin)
			continue
		}

		select {
		case c.queue <- message{topic: topic, km: km}:
			consumerQueueDepth.WithLabelValues(topic).Set(float64(len(c.queue)))
		case <-c.stop:
			return
		}
	}
}

func (c *Consumer) work() {
	defer c.workWg.Done()
	for m := range c.queue {
		c.handle(m)
	}
}

func (c *Consumer) handle(m message) {
	h := c.handlers[m.topic]
	start := time.Now()

	lock := c.partitionLock(m.topic, m.km.Partition)
	lock.Lock()
	defer lock.Unlock()

	err := c.handleWithRetry(h, m)
	result := "ok"
	if err != nil {
		result = "error"
		c.hook.OnError(context.Background(), m.topic, m.km, m.km.Value, err)
		c.log.Error("kafka consumer: message failed",
			logger.String("topic", m.topic),
			logger.Int("partition", m.km.Partition),
			logger.Int64("offset", m.km.Offset),
			logger.Error(err))
		if c.dlq != nil {
			c.deadLetter(m, err)
		}
	}
	consumerHandled.WithLabelValues(m.topic, result).Inc()
	consumerLatency.WithLabelValues(m.topic).Observe(time.Since(start).Seconds())

	// Failed messages are committed only once they reached the DLQ, so
	// without one they are redelivered after a restart.
	if err == nil || c.dlq != nil {
		c.commit(m)
	}
}

func (c *Consumer) handleWithRetry(h MessageHandler, m message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	for attempt := 1; ; attempt++ {
		ctx, km, data, berr := c.hook.BeforeHandle(context.Background(), m.topic, m.km, m.km.Value)
		if berr != nil {
			return berr
		}
		err = h.Handle(ctx, data)
		c.hook.AfterHandle(ctx, m.topic, km, data, err)
		if err == nil || attempt > c.cfg.RetryMax {
			return err
		}

		select {
		case <-time.After(backoff(c.cfg.BackoffMin, c.cfg.BackoffMax, attempt)):
		case <-c.stop:
			return errors.Join(err, errors.New("consumer stopping"))
		}
	}
}

func (c *Consumer) deadLetter(m message, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := c.dlq.WriteMessages(ctx, kafka.Message{
		Key:   m.km.Key,
		Value: m.km.Value,
		Headers: []kafka.Header{
			{Key: "source_topic", Value: []byte(m.topic)},
			{Key: "error", Value: []byte(cause.Error())},
		},
	})
	if err != nil {
		c.log.Error("kafka consumer: dlq write failed", logger.String("dlq", c.cfg.DLQTopic), logger.Error(err))
	}
}

func (c *Consumer) commit(m message) {
	r := c.readers[m.topic]
	for attempt := 1; attempt <= 3; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := r.CommitMessages(ctx, m.km)
		cancel()
		if err == nil {
			return
		}
		if attempt == 3 {
			c.log.Warn("kafka consumer: commit failed", logger.String("topic", m.topic), logger.Error(err))
			return
		}
		time.Sleep(backoff(50*time.Millisecond, 500*time.Millisecond, attempt))
	}
}

func (c *Consumer) partitionLock(topic string, partition int) *sync.Mutex {
	c.locksMu.Lock()
	defer c.locksMu.Unlock()

	k := partitionKey{topic, partition}
	l, ok := c.locks[k]
	if !ok {
		l = &sync.Mutex{}
		c.locks[k] = l
	}
	return l
}

// backoff doubles from lo per attempt, capped at hi, minus up to 50% jitter.
func backoff(lo, hi time.Duration, attempt int) time.Duration {
	if lo <= 0 {
		lo = 50 * time.Millisecond
	}
	hi = max(hi, lo)
	d := lo << min(attempt-1, 30)
	if d <= 0 || d > hi {
		d = hi
	}
	return d - time.Duration(rand.Int64N(int64(d)/2+1))
}
