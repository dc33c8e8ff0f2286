package router

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/uiuifree/go-jismeshcode/internal/core/observability"
	"github.com/uiuifree/go-jismeshcode/pkg/jismesh"
)

type encodeResponse struct {
	Code   string              `json:"code"`
	Level  string              `json:"level"`
	Bounds jismesh.BoundingBox `json:"bounds"`
	Center jismesh.Coordinate  `json:"center"`
}

type decodeResponse struct {
	Code      string              `json:"code"`
	Level     string              `json:"level"`
	Bounds    jismesh.BoundingBox `json:"bounds"`
	Center    jismesh.Coordinate  `json:"center"`
	Parent    string              `json:"parent,omitempty"`
	Children  []string            `json:"children,omitempty"`
	Neighbors []string            `json:"neighbors"`
}

// HandleEncode maps ?lat=&lon=&level= to the containing cell code.
func HandleEncode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		status := http.StatusOK
		defer func() {
			observability.ObserveHTTP(r.Method, "/encode", status, time.Since(start).Seconds())
		}()

		lat, err := parseFloat(r.URL.Query().Get("lat"))
		if err != nil {
			status = http.StatusBadRequest
			http.Error(w, "invalid lat: "+err.Error(), status)
			return
		}
		lon, err := parseFloat(r.URL.Query().Get("lon"))
		if err != nil {
			status = http.StatusBadRequest
			http.Error(w, "invalid lon: "+err.Error(), status)
			return
		}
		level := jismesh.LevelThird
		if raw := strings.TrimSpace(r.URL.Query().Get("level")); raw != "" {
			level, err = jismesh.ParseLevel(raw)
			if err != nil {
				status = http.StatusBadRequest
				http.Error(w, "invalid level: "+err.Error(), status)
				return
			}
		}

		coord, err := jismesh.NewCoordinate(lat, lon)
		if err != nil {
			status = http.StatusBadRequest
			http.Error(w, err.Error(), status)
			return
		}

		code := jismesh.FromCoordinate(coord, level)
		writeJSON(w, encodeResponse{
			Code:   code.String(),
			Level:  level.String(),
			Bounds: code.Bounds(),
			Center: code.Center(),
		})
	}
}

// HandleDecode expands ?code= (optionally ?level= to pin the ten-digit
// reading) into the cell geometry and its relations.
func HandleDecode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		status := http.StatusOK
		defer func() {
			observability.ObserveHTTP(r.Method, "/decode", status, time.Since(start).Seconds())
		}()

		raw := strings.TrimSpace(r.URL.Query().Get("code"))
		if raw == "" {
			status = http.StatusBadRequest
			http.Error(w, "missing required parameter: code", status)
			return
		}

		var code jismesh.Code
		var err error
		if rawLevel := strings.TrimSpace(r.URL.Query().Get("level")); rawLevel != "" {
			var level jismesh.Level
			level, err = jismesh.ParseLevel(rawLevel)
			if err != nil {
				status = http.StatusBadRequest
				http.Error(w, "invalid level: "+err.Error(), status)
				return
			}
			code, err = jismesh.ParseCodeAtLevel(raw, level)
		} else {
			code, err = jismesh.ParseCode(raw)
		}
		if err != nil {
			status = http.StatusBadRequest
			http.Error(w, err.Error(), status)
			return
		}

		resp := decodeResponse{
			Code:   code.String(),
			Level:  code.Level().String(),
			Bounds: code.Bounds(),
			Center: code.Center(),
		}
		if p, ok := code.Parent(); ok {
			resp.Parent = p.String()
		}
		for _, k := range code.Children() {
			resp.Children = append(resp.Children, k.String())
		}
		resp.Neighbors = make([]string, 0, 8)
		for _, n := range code.Neighbors() {
			resp.Neighbors = append(resp.Neighbors, n.String())
		}
		writeJSON(w, resp)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
