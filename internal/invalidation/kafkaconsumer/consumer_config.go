package kafkaconsumer

import (
	"strings"
	"time"

	"github.com/uiuifree/go-jismeshcode/internal/core/config"
)

type Config struct {
	Brokers             []string
	Topic               string
	GroupID             string
	SessionTimeout      time.Duration
	Heartbeat           time.Duration
	RebalanceTimeout    time.Duration
	InitialOffsetOldest bool
	DedupeSize          int
}

func FromConfig(inv config.InvalidationCfg) Config {
	return Config{
		Brokers:             splitCSV(inv.Brokers),
		Topic:               inv.Topic,
		GroupID:             inv.GroupID,
		SessionTimeout:      30 * time.Second,
		Heartbeat:           3 * time.Second,
		RebalanceTimeout:    30 * time.Second,
		InitialOffsetOldest: true,
		DedupeSize:          4096,
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
