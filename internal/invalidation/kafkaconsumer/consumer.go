// Package kafkaconsumer drives cache invalidation from a Kafka topic.
package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/uiuifree/go-jismeshcode/internal/cache"
	"github.com/uiuifree/go-jismeshcode/internal/cache/keys"
	"github.com/uiuifree/go-jismeshcode/internal/core/model"
	obs "github.com/uiuifree/go-jismeshcode/internal/core/observability"
	"github.com/uiuifree/go-jismeshcode/internal/invalidation"
	"github.com/uiuifree/go-jismeshcode/pkg/jismesh"
)

type CellMapper interface {
	CellsForBBox(bbox model.BBox, level jismesh.Level) (model.Cells, error)
}

type Consumer struct {
	cfg    Config
	logger *slog.Logger
	cache  cache.Interface
	mapper CellMapper
	levels []jismesh.Level
	dedupe *eventDedupe

	mu         sync.Mutex
	ready      bool
	partitions []int32
}

func New(cfg Config, logger *slog.Logger, c cache.Interface, mapper CellMapper, levels []jismesh.Level) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		cfg:    cfg,
		logger: logger,
		cache:  c,
		mapper: mapper,
		levels: levels,
		dedupe: newEventDedupe(cfg.DedupeSize),
	}
}

// Start joins the consumer group and processes invalidation events until the
// context is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	if c.cache == nil || c.mapper == nil {
		return errors.New("kafkaconsumer: missing dependencies (cache/mapper)")
	}
	if len(c.levels) == 0 {
		return errors.New("kafkaconsumer: no mesh levels configured")
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Consumer.Group.Session.Timeout = c.cfg.SessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = c.cfg.Heartbeat
	cfg.Consumer.Group.Rebalance.Timeout = c.cfg.RebalanceTimeout
	if c.cfg.InitialOffsetOldest {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	cfg.Consumer.Offsets.AutoCommit.Enable = true

	group, err := sarama.NewConsumerGroup(c.cfg.Brokers, c.cfg.GroupID, cfg)
	if err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}
	defer func() { _ = group.Close() }()

	handler := &groupHandler{
		process:  c.ProcessOne,
		onAssign: c.setAssignment,
		onRevoke: func() { c.setAssignment(nil) },
	}

	c.logger.Info("kafka invalidation consumer starting",
		"brokers", c.cfg.Brokers, "topic", c.cfg.Topic, "group", c.cfg.GroupID)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("kafka invalidation consumer shutting down")
			return nil
		default:
			if err := group.Consume(ctx, []string{c.cfg.Topic}, handler); err != nil {
				obs.IncKafkaConsumerError("consume")
				c.logger.Error("consumer error", "err", err)
				time.Sleep(2 * time.Second)
			}
		}
	}
}

// Readiness reports whether the group has an active partition assignment.
func (c *Consumer) Readiness() (bool, []int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready, append([]int32(nil), c.partitions...)
}

func (c *Consumer) setAssignment(partitions []int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ready = len(partitions) > 0
	c.partitions = partitions
}

// ProcessOne handles a single invalidation event message.
func (c *Consumer) ProcessOne(ctx context.Context, msg *sarama.ConsumerMessage) error {
	start := time.Now()

	var ev invalidation.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		obs.IncKafkaConsumerError("decode")
		c.logger.Error("event decode failed",
			"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "err", err)
		return fmt.Errorf("json decode: %w", err)
	}
	if err := ev.Validate(); err != nil {
		// malformed events are logged and dropped, not retried
		obs.IncKafkaConsumerError("validate")
		c.logger.Warn("invalid event skipped",
			"topic", msg.Topic, "offset", msg.Offset, "err", err)
		return nil
	}

	if !c.dedupe.shouldApply(ev.Layer, uint64(ev.TS.UnixNano())) {
		c.logger.Debug("stale event skipped", "layer", ev.Layer, "ts", ev.TS)
		return nil
	}

	delKeys, err := c.keysForEvent(ev)
	if err != nil {
		obs.ObserveInvalidation(ev.Op, 0, time.Since(start), err)
		return fmt.Errorf("derive cells: %w", err)
	}
	if len(delKeys) == 0 {
		obs.ObserveInvalidation(ev.Op, 0, time.Since(start), nil)
		c.logger.Debug("no cells to invalidate", "layer", ev.Layer, "op", ev.Op)
		return nil
	}

	if err := c.cache.Del(delKeys...); err != nil {
		obs.IncKafkaConsumerError("cache_del")
		obs.ObserveInvalidation(ev.Op, 0, time.Since(start), err)
		c.logger.Error("invalidation delete failed",
			"topic", msg.Topic, "keys", len(delKeys), "err", err)
		return fmt.Errorf("cache del: %w", err)
	}

	obs.ObserveInvalidation(ev.Op, len(delKeys), time.Since(start), nil)
	c.logger.Info("invalidated keys",
		"layer", ev.Layer, "op", ev.Op, "keys", len(delKeys))
	return nil
}

// keysForEvent derives the cache keys covering the event bbox at every
// configured level.
func (c *Consumer) keysForEvent(ev invalidation.Event) ([]string, error) {
	bb := model.BBox{X1: ev.BBox.X1, Y1: ev.BBox.Y1, X2: ev.BBox.X2, Y2: ev.BBox.Y2, SRID: ev.BBox.SRID}
	var out []string
	for _, level := range c.levels {
		cells, err := c.mapper.CellsForBBox(bb, level)
		if err != nil {
			return nil, fmt.Errorf("cells at %s: %w", level, err)
		}
		for _, cell := range cells {
			out = append(out, keys.Key(ev.Layer, level, cell, ""))
		}
	}
	return out, nil
}
