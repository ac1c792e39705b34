// internal/models/tile.go
package models

import "strings"

// Kind classifies a recommendation tile.
type Kind string

const (
	KindOptimization Kind = "OPTIMIZATION"
	KindPricing      Kind = "PRICING"
	KindGuide        Kind = "GUIDE"
	KindWarning      Kind = "WARNING"
)

// NormalizeKind maps free-form model output onto a Kind. Matching is by
// prefix-ish substring on the uppercased value, first match wins.
func NormalizeKind(s string) Kind {
	up := strings.ToUpper(strings.TrimSpace(s))
	switch {
	case strings.Contains(up, "OPTIM"):
		return KindOptimization
	case strings.Contains(up, "PRIC"):
		return KindPricing
	case strings.Contains(up, "GUID"), strings.Contains(up, "ARCH"):
		return KindGuide
	case strings.Contains(up, "WARN"), strings.Contains(up, "RISK"):
		return KindWarning
	default:
		return KindOptimization
	}
}

type Step struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type PricingRow struct {
	Name          string   `json:"name"`
	CostEstimate  string   `json:"costEstimate"`
	Features      []string `json:"features"`
	Justification string   `json:"justification"`
}

type Detail struct {
	Steps            []Step       `json:"steps"`
	PricingTable     []PricingRow `json:"pricingTable,omitempty"`
	TechnicalDetails string       `json:"technicalDetails,omitempty"`
}

// Tile is one recommendation card. Type carries the Kind under the wire
// name "type".
type Tile struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Headline  string `json:"headline"`
	Rationale string `json:"rationale"`
	Type      Kind   `json:"type"`
	Detail    Detail `json:"detail"`
}

// Clone returns a deep copy so callers can mutate freely.
func (t Tile) Clone() Tile {
	out := t
	out.Detail.Steps = append([]Step{}, t.Detail.Steps...)
	if t.Detail.PricingTable != nil {
		out.Detail.PricingTable = make([]PricingRow, len(t.Detail.PricingTable))
		for i, row := range t.Detail.PricingTable {
			row.Features = append([]string(nil), row.Features...)
			out.Detail.PricingTable[i] = row
		}
	}
	return out
}
