// Package tiles answers bbox queries with cached per-cell tile documents.
package tiles

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/uiuifree/go-jismeshcode/internal/cache"
	"github.com/uiuifree/go-jismeshcode/internal/cache/keys"
	"github.com/uiuifree/go-jismeshcode/internal/core/config"
	"github.com/uiuifree/go-jismeshcode/internal/core/model"
	"github.com/uiuifree/go-jismeshcode/internal/core/observability"
	"github.com/uiuifree/go-jismeshcode/internal/mapper"
	"github.com/uiuifree/go-jismeshcode/pkg/jismesh"
)

// Tile is the per-cell document served to clients and stored in the cache.
type Tile struct {
	Code      string              `json:"code"`
	Level     string              `json:"level"`
	Bounds    jismesh.BoundingBox `json:"bounds"`
	Center    jismesh.Coordinate  `json:"center"`
	Parent    string              `json:"parent,omitempty"`
	Neighbors []string            `json:"neighbors"`
}

type response struct {
	Layer string            `json:"layer"`
	Level string            `json:"level"`
	Count int               `json:"count"`
	Tiles []json.RawMessage `json:"tiles"`
}

type Engine struct {
	logger     *slog.Logger
	mapr       mapper.Interface
	store      cache.Interface
	level      jismesh.Level
	ttlDefault time.Duration
	ttlMap     map[string]time.Duration
	maxWorkers int
	queueSize  int
}

func New(cfg config.Config, logger *slog.Logger, m mapper.Interface, store cache.Interface) *Engine {
	return &Engine{
		logger:     logger,
		mapr:       m,
		store:      store,
		level:      cfg.MeshLevel,
		ttlDefault: cfg.CacheTTLDefault,
		ttlMap:     cfg.CacheTTLOvr,
		maxWorkers: cfg.FillMaxWorkers,
		queueSize:  cfg.FillQueue,
	}
}

type result struct {
	cell string
	body []byte
	err  error
}

func (e *Engine) HandleQuery(ctx context.Context, w http.ResponseWriter, r *http.Request, q model.QueryRequest) {
	start := time.Now()

	level := q.Level
	if level == 0 {
		level = e.level
	}

	cells, err := e.mapr.CellsForBBox(*q.BBox, level)
	if err != nil {
		e.logger.Error("mesh mapping failed", "err", err)
		http.Error(w, "failed to map query footprint", http.StatusBadRequest)
		return
	}
	observability.ObserveCellsPerQuery(len(cells))

	if len(cells) == 0 {
		writeJSON(w, response{Layer: q.Layer, Level: level.String(), Count: 0, Tiles: []json.RawMessage{}})
		return
	}

	keyList := make([]string, len(cells))
	for i, c := range cells {
		keyList[i] = keys.Key(q.Layer, level, c, q.Filters)
	}

	hits, err := e.store.MGet(keyList)
	if err != nil {
		e.logger.Warn("cache mget error, recomputing all cells", "err", err)
		hits = map[string][]byte{}
	}

	byCell := make(map[string][]byte, len(cells))
	missing := make([]string, 0, len(cells))
	for i, k := range keyList {
		if v, ok := hits[k]; ok && len(v) > 0 {
			byCell[cells[i]] = v
			continue
		}
		missing = append(missing, cells[i])
	}

	if len(missing) > 0 {
		filled, err := e.fill(ctx, q, level, missing)
		if err != nil {
			http.Error(w, "tile computation failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		for c, b := range filled {
			byCell[c] = b
		}
	}

	docs := make([]json.RawMessage, 0, len(cells))
	for _, c := range cells {
		docs = append(docs, byCell[c])
	}
	writeJSON(w, response{Layer: q.Layer, Level: level.String(), Count: len(docs), Tiles: docs})

	e.logger.Info("query served",
		"layer", q.Layer, "level", level.String(),
		"cells", len(cells), "hits", len(cells)-len(missing), "misses", len(missing),
		"dur", time.Since(start).String())
}

// fill computes tile documents for the missing cells on a bounded worker pool
// and writes them back with the layer TTL.
func (e *Engine) fill(ctx context.Context, q model.QueryRequest, level jismesh.Level, missing []string) (map[string][]byte, error) {
	ttl := e.ttlFor(q.Layer)

	workerN := e.maxWorkers
	if workerN <= 0 {
		workerN = 8
	}
	queueN := e.queueSize
	if queueN <= 0 {
		queueN = 64
	}

	jobs := make(chan string, queueN)
	results := make(chan result, len(missing))

	var wg sync.WaitGroup
	wg.Add(workerN)
	for range workerN {
		go func() {
			defer wg.Done()
			for cell := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				body, err := computeTile(cell)
				if err == nil {
					key := keys.Key(q.Layer, level, cell, q.Filters)
					if serr := e.store.Set(key, body, ttl); serr != nil {
						e.logger.Warn("cache backfill failed", "cell", cell, "err", serr)
					}
				}
				select {
				case results <- result{cell: cell, body: body, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	for _, c := range missing {
		select {
		case jobs <- c:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	out := make(map[string][]byte, len(missing))
	for r := range results {
		if r.err != nil {
			return nil, fmt.Errorf("cell %s: %w", r.cell, r.err)
		}
		out[r.cell] = r.body
	}
	if len(out) != len(missing) {
		return nil, ctx.Err()
	}
	return out, nil
}

// computeTile renders the document for one cell from the codec alone.
func computeTile(cell string) ([]byte, error) {
	code, err := jismesh.ParseCode(cell)
	if err != nil {
		return nil, fmt.Errorf("parse cell: %w", err)
	}

	t := Tile{
		Code:   code.String(),
		Level:  code.Level().String(),
		Bounds: code.Bounds(),
		Center: code.Center(),
	}
	if p, ok := code.Parent(); ok {
		t.Parent = p.String()
	}
	ns := code.Neighbors()
	t.Neighbors = make([]string, 0, len(ns))
	for _, n := range ns {
		t.Neighbors = append(t.Neighbors, n.String())
	}

	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal tile: %w", err)
	}
	return b, nil
}

func (e *Engine) ttlFor(layer string) time.Duration {
	if d, ok := e.ttlMap[layer]; ok {
		return d
	}
	return e.ttlDefault
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
