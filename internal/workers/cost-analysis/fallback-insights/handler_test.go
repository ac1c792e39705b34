// internal/workers/cost-analysis/fallback-insights/handler_test.go
package fallbackinsights

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"costli-agents/internal/common/errors"
	"costli-agents/internal/common/logger"
	"costli-agents/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor_KnownDomains(t *testing.T) {
	tests := []struct {
		domain   models.Domain
		firstID  string
		pricing  string
		headline string
	}{
		{models.DomainAWS, "aws-1", "aws-4", "Rightsize EC2 Instances"},
		{models.DomainAzure, "az-1", "az-1", "Use Azure Hybrid Benefit"},
		{models.DomainGCP, "gcp-1", "gcp-2", "Stop Idle VM Instances"},
	}

	for _, tt := range tests {
		t.Run(string(tt.domain), func(t *testing.T) {
			tiles := For(tt.domain)
			require.Len(t, tiles, models.TileCount)
			assert.Equal(t, tt.firstID, tiles[0].ID)
			assert.Equal(t, tt.headline, tiles[0].Headline)

			ids := map[string]bool{}
			for _, tile := range tiles {
				assert.False(t, ids[tile.ID], "duplicate id %s", tile.ID)
				ids[tile.ID] = true
				assert.NotEmpty(t, tile.Headline)
				assert.Len(t, tile.Detail.Steps, 3)
				if tile.ID == tt.pricing {
					assert.Equal(t, models.KindPricing, tile.Type)
				}
			}
		})
	}
}

func TestFor_AWSPricingTile(t *testing.T) {
	tile := For(models.DomainAWS)[3]
	assert.Equal(t, "aws-4", tile.ID)
	assert.Equal(t, "Pricing", tile.Title)
	assert.Equal(t, "Purchase Compute Savings Plans", tile.Headline)
}

func TestFor_UnknownDomain(t *testing.T) {
	tiles := For(models.Domain("Oracle"))
	require.Len(t, tiles, 5)
	assert.Equal(t, "oracle-fallback-1", tiles[0].ID)
	assert.Equal(t, "Rightsize overprovisioned Oracle compute", tiles[0].Headline)
	assert.Equal(t, models.KindWarning, tiles[4].Type)
	assert.Equal(t, "Open Oracle cost tooling and identify top services by spend over the last 30 days.",
		tiles[0].Detail.Steps[0].Description)
}

func TestFor_ReturnsFreshCopies(t *testing.T) {
	a := For(models.DomainGCP)
	a[0].Headline = "mutated"
	a[0].Detail.Steps[0].Title = "mutated"

	b := For(models.DomainGCP)
	assert.Equal(t, "Stop Idle VM Instances", b[0].Headline)
	assert.Equal(t, "Baseline spend", b[0].Detail.Steps[0].Title)
}

func TestFor_SurvivesWireRoundTrip(t *testing.T) {
	tiles := For(models.DomainAzure)
	raw, err := json.Marshal(tiles)
	require.NoError(t, err)

	var back []models.Tile
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, tiles, back)
}

func TestHandler_Execute(t *testing.T) {
	h := NewHandler(&Config{Timeout: time.Second}, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{Domain: "amazon", Reason: "synthesis_failed"})
	require.NoError(t, err)
	assert.Equal(t, "fallback", out.Status)
	assert.Equal(t, "synthesis_failed", out.Reason)
	assert.Equal(t, "aws-1", out.Tiles[0].ID)

	out, err = h.Execute(context.Background(), &Input{Domain: "Oracle"})
	require.NoError(t, err)
	assert.Equal(t, "requested", out.Reason)
	assert.Equal(t, "oracle-fallback-1", out.Tiles[0].ID)

	_, err = h.Execute(context.Background(), &Input{Domain: " "})
	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, errors.ErrCodeInvalidInput, stdErr.Code)
}
