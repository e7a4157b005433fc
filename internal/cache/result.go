package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/piwi3910/circlepack/internal/model"
)

// Hash computes the hex SHA-256 of data.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// keyRect is the part of a rectangle that affects the packing. IDs are
// random per rectangle and left out.
type keyRect struct {
	Label  string  `json:"label"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type resultKey struct {
	Rectangles   []keyRect            `json:"rectangles"`
	PaddingInner float64              `json:"padding_inner"`
	PaddingOuter float64              `json:"padding_outer"`
	Target       *float64             `json:"target,omitempty"`
	Mode         string               `json:"mode"`
	Settings     model.SolverSettings `json:"settings"`
}

// ResultKey derives the cache key of a solve. mode is a rotation mode name
// or "multi". The worker count is ignored because results do not depend on
// it.
func ResultKey(cfg model.PackingConfig, mode string, settings model.SolverSettings) string {
	k := resultKey{
		PaddingInner: cfg.PaddingInner,
		PaddingOuter: cfg.PaddingOuter,
		Target:       cfg.TargetRadius,
		Mode:         mode,
		Settings:     settings,
	}
	k.Settings.Workers = 0
	for i, r := range cfg.Rectangles {
		label := r.Label
		if label == "" {
			label = model.DefaultLabel(i)
		}
		k.Rectangles = append(k.Rectangles, keyRect{label, r.Width, r.Height})
	}
	data, _ := json.Marshal(k)
	return "result:" + Hash(data)
}

// LoadResult returns a cached result for key. Placements are re-attached to
// the rectangles of cfg so their IDs match the caller's.
func LoadResult(ctx context.Context, c Cache, key string, cfg model.PackingConfig) (model.PackingResult, bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return model.PackingResult{}, false, err
	}
	var result model.PackingResult
	if err := json.Unmarshal(data, &result); err != nil {
		_ = c.Delete(ctx, key)
		return model.PackingResult{}, false, nil
	}
	if len(result.Placements) == len(cfg.Rectangles) {
		for i := range result.Placements {
			result.Placements[i].Rectangle = cfg.Rectangles[i]
		}
	}
	return result, true, nil
}

// StoreResult caches result under key for DefaultTTL.
func StoreResult(ctx context.Context, c Cache, key string, result model.PackingResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return c.Set(ctx, key, data, DefaultTTL)
}
