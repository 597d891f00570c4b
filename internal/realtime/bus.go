package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	kafkax "github.com/ariefcatur/resto-pos/internal/kafka"
	"github.com/ariefcatur/resto-pos/internal/orders"
	"github.com/ariefcatur/resto-pos/internal/redisx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	BusLocal = "local"
	BusRedis = "redis"
	BusKafka = "kafka"
)

var ErrBusClosed = errors.New("bus closed")

// Bus carries envelopes between relay instances. Subscribe registers fn and returns once
// delivery is set up; delivery stops when ctx ends.
type Bus interface {
	Publish(ctx context.Context, env orders.Envelope) error
	Subscribe(ctx context.Context, fn func(orders.Envelope)) error
	Close() error
}

// LocalBus delivers in-process, for a single relay instance.
type LocalBus struct {
	mu     sync.RWMutex
	subs   map[int]func(orders.Envelope)
	next   int
	closed bool
}

func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[int]func(orders.Envelope))}
}

func (b *LocalBus) Publish(_ context.Context, env orders.Envelope) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}
	for _, fn := range b.subs {
		fn(env)
	}
	return nil
}

func (b *LocalBus) Subscribe(ctx context.Context, fn func(orders.Envelope)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBusClosed
	}
	id := b.next
	b.next++
	b.subs[id] = fn
	context.AfterFunc(ctx, func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	})
	return nil
}

func (b *LocalBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = map[int]func(orders.Envelope){}
	return nil
}

// RedisBus fans out over a Redis pub/sub channel.
type RedisBus struct {
	rdb     *redis.Client
	channel string
	log     *slog.Logger
}

func NewRedisBus(rdb *redis.Client, topic string, log *slog.Logger) *RedisBus {
	if log == nil {
		log = slog.Default()
	}
	return &RedisBus{rdb: rdb, channel: fmt.Sprintf(redisx.ChannelRelay, topic), log: log}
}

func (b *RedisBus) Publish(ctx context.Context, env orders.Envelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, b.channel, raw).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", b.channel, err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, fn func(orders.Envelope)) error {
	ps := b.rdb.Subscribe(ctx, b.channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return fmt.Errorf("redis subscribe %s: %w", b.channel, err)
	}
	ch := ps.Channel()
	go func() {
		defer ps.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var env orders.Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					b.log.Warn("bad envelope on redis bus", "channel", msg.Channel, "err", err)
					continue
				}
				fn(env)
			}
		}
	}()
	return nil
}

func (b *RedisBus) Close() error { return nil }

// KafkaBus fans out over a Kafka topic. Every relay instance reads the whole topic under
// its own consumer group; redelivered events are dropped by event id when rdb is set.
type KafkaBus struct {
	brokers []string
	topic   string
	group   string
	prod    *kafkax.Producer
	rdb     *redis.Client
	log     *slog.Logger
}

func NewKafkaBus(brokers []string, topic, service string, rdb *redis.Client, log *slog.Logger) *KafkaBus {
	if log == nil {
		log = slog.Default()
	}
	prod := kafkax.NewProducer(brokers, topic, 1024, log)
	prod.Start()
	return &KafkaBus{
		brokers: brokers,
		topic:   topic,
		group:   service + "-" + uuid.NewString(),
		prod:    prod,
		rdb:     rdb,
		log:     log,
	}
}

func (b *KafkaBus) Publish(_ context.Context, env orders.Envelope) error {
	key := orders.PartitionKey(env.Room)
	b.prod.Publish(key, kafkax.MustMarshal(env),
		kafkago.Header{Key: kafkax.HeaderEventType, Value: []byte(env.EventType)},
	)
	return nil
}

func (b *KafkaBus) Subscribe(ctx context.Context, fn func(orders.Envelope)) error {
	cons := kafkax.NewConsumer(b.brokers, b.group, b.topic, 1, b.log)
	go func() {
		b.log.Info("kafka bus consumer started", "group", b.group, "topic", b.topic)
		if err := cons.Start(ctx, b.handler(fn)); err != nil {
			b.log.Error("kafka bus consumer exit", "err", err)
		}
	}()
	return nil
}

func (b *KafkaBus) handler(fn func(orders.Envelope)) kafkax.Handler {
	return func(ctx context.Context, m kafkago.Message) error {
		env, err := kafkax.Decode[orders.Envelope](m)
		if err != nil {
			// poison message: skip it
			b.log.Warn("bad envelope on kafka bus", "offset", m.Offset, "err", err)
			return nil
		}
		if env.EventType == "" {
			return nil
		}
		if b.rdb != nil && env.EventID != "" {
			first, err := redisx.FirstSeen(ctx, b.rdb, b.group, env.EventID)
			if err != nil {
				b.log.Warn("dedup unavailable", "event_id", env.EventID, "err", err)
			} else if !first {
				return nil
			}
		}
		fn(env)
		return nil
	}
}

// Close flushes queued messages and stops the producer.
func (b *KafkaBus) Close() error {
	b.prod.Close()
	b.prod.WaitClosed()
	return nil
}
