package chart

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/naka-gawa/repo-health/internal/domain"
)

// JSONRenderer writes one JSON document per chart, newline delimited.
type JSONRenderer struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONRenderer creates a renderer writing to out.
func NewJSONRenderer(out io.Writer) *JSONRenderer {
	return &JSONRenderer{enc: json.NewEncoder(out)}
}

type jsonChart struct {
	Target string         `json:"target"`
	Config Config         `json:"config"`
	Data   domain.Dataset `json:"data"`
	Fit    []float64      `json:"fit,omitempty"`
}

// Render implements Renderer.
func (r *JSONRenderer) Render(ctx context.Context, cfg Config, data domain.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := jsonChart{Target: cfg.Target, Config: cfg, Data: data}
	if len(data) > 1 {
		s, err := cfg.Extract(data)
		if err != nil {
			return err
		}
		doc.Fit = fitFor(cfg, s)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode chart %s: %w", cfg.Target, err)
	}
	return nil
}
