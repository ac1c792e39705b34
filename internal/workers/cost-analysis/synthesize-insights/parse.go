// internal/workers/cost-analysis/synthesize-insights/parse.go
package synthesizeinsights

import (
	"encoding/json"
	"fmt"

	"costli-agents/internal/common/validation"
	"costli-agents/internal/llm"
	"costli-agents/internal/models"
)

var tileValidator = validation.NewValidator(tileSchema)

// ParseTiles accepts {"tiles":[...]}, {"insights":[...]} or a bare array.
// Elements that are not objects with a string headline are skipped.
func ParseTiles(text string) ([]models.Tile, error) {
	raw := llm.ExtractJSON(text)
	if raw == "" {
		return nil, fmt.Errorf("empty synthesizer output")
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode synthesizer output: %w", err)
	}

	var elems []interface{}
	switch v := doc.(type) {
	case []interface{}:
		elems = v
	case map[string]interface{}:
		if arr, ok := v["tiles"].([]interface{}); ok {
			elems = arr
		} else if arr, ok := v["insights"].([]interface{}); ok {
			elems = arr
		} else {
			return nil, fmt.Errorf("synthesizer output has no tiles array")
		}
	default:
		return nil, fmt.Errorf("synthesizer output is %T, want object or array", doc)
	}

	tiles := make([]models.Tile, 0, len(elems))
	for _, elem := range elems {
		res, err := tileValidator.Validate(elem)
		if err != nil || !res.Valid {
			continue
		}
		b, err := json.Marshal(elem)
		if err != nil {
			continue
		}
		var tile models.Tile
		if err := json.Unmarshal(b, &tile); err != nil {
			continue
		}
		tiles = append(tiles, tile)
	}
	return tiles, nil
}

// NormalizeTiles repairs ids and kinds and cuts the set to TileCount.
func NormalizeTiles(tiles []models.Tile) []models.Tile {
	if len(tiles) > models.TileCount {
		tiles = tiles[:models.TileCount]
	}
	out := make([]models.Tile, len(tiles))
	seen := make(map[string]bool, len(tiles))
	keep := make([]bool, len(tiles))
	for i, t := range tiles {
		if t.ID != "" && !seen[t.ID] {
			seen[t.ID] = true
			keep[i] = true
		}
	}
	for i, t := range tiles {
		t = t.Clone()
		if !keep[i] {
			t.ID = freeID(seen, i)
			seen[t.ID] = true
		}
		t.Type = models.NormalizeKind(string(t.Type))
		if t.Detail.Steps == nil {
			t.Detail.Steps = []models.Step{}
		}
		out[i] = t
	}
	return out
}

// freeID picks insight-{i+1}, suffixed until it clashes with nothing in seen.
func freeID(seen map[string]bool, i int) string {
	id := fmt.Sprintf("insight-%d", i+1)
	for n := 2; seen[id]; n++ {
		id = fmt.Sprintf("insight-%d-%d", i+1, n)
	}
	return id
}
