package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/uiuifree/go-jismeshcode/pkg/jismesh"
)

type InvalidationCfg struct {
	Enabled bool
	Topic   string
	Brokers string
	GroupID string
}

type Config struct {
	Addr            string
	LogLevel        string
	RedisAddr       string
	MeshLevel       jismesh.Level
	MeshLevelMin    jismesh.Level
	MeshLevelMax    jismesh.Level
	CacheOpTimeout  time.Duration
	CacheTTLDefault time.Duration
	CacheTTLOvr     map[string]time.Duration
	FillMaxWorkers  int
	FillQueue       int
	L1CacheSize     int
	Invalidation    InvalidationCfg
}

func FromEnv() Config {
	level := getlevel("MESH_LEVEL", jismesh.LevelThird)
	minLevel := getlevel("MESH_LEVEL_MIN", level)
	maxLevel := getlevel("MESH_LEVEL_MAX", level)
	if minLevel > maxLevel {
		minLevel, maxLevel = level, level
	}

	return Config{
		Addr:            getenv("ADDR", ":8090"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		RedisAddr:       getenv("REDIS_ADDR", "localhost:6379"),
		MeshLevel:       level,
		MeshLevelMin:    minLevel,
		MeshLevelMax:    maxLevel,
		CacheOpTimeout:  getduration("CACHE_OP_TIMEOUT", 250*time.Millisecond),
		CacheTTLDefault: getduration("CACHE_TTL_DEFAULT", 60*time.Second),
		CacheTTLOvr:     parseDurationMap(getenv("CACHE_TTL_OVERRIDES", "")),
		FillMaxWorkers:  getint("CACHE_FILL_MAX_WORKERS", 8),
		FillQueue:       getint("CACHE_FILL_QUEUE", 64),
		L1CacheSize:     getint("L1_CACHE_SIZE", 4096),
		Invalidation: InvalidationCfg{
			Enabled: getbool("INVALIDATION_ENABLED", false),
			Topic:   getenv("KAFKA_TOPIC", "mesh-invalidation"),
			Brokers: getenv("KAFKA_BROKERS", "localhost:9092"),
			GroupID: getenv("KAFKA_GROUP_ID", "cache-invalidator"),
		},
	}
}

// LevelRange lists the configured levels from coarsest to finest.
func (c Config) LevelRange() []jismesh.Level {
	var out []jismesh.Level
	for _, l := range jismesh.Levels {
		if l >= c.MeshLevelMin && l <= c.MeshLevelMax {
			out = append(out, l)
		}
	}
	return out
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getlevel(k string, def jismesh.Level) jismesh.Level {
	if v := os.Getenv(k); v != "" {
		if l, err := jismesh.ParseLevel(v); err == nil {
			return l
		}
	}
	return def
}

// parse "layer=5m,other=30s" into map
func parseDurationMap(s string) map[string]time.Duration {
	out := map[string]time.Duration{}
	s = strings.TrimSpace(s)
	if s == "" {
		return out
	}
	for p := range strings.SplitSeq(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		k := strings.TrimSpace(kv[0])
		v := strings.TrimSpace(kv[1])
		if k == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil {
			out[k] = d
		}
	}
	return out
}
