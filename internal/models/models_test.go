// internal/models/models_test.go
package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDomain(t *testing.T) {
	tests := []struct {
		in      string
		want    Domain
		wantErr bool
	}{
		{"AWS", DomainAWS, false},
		{" aws ", DomainAWS, false},
		{"Amazon", DomainAWS, false},
		{"azure", DomainAzure, false},
		{"Microsoft", DomainAzure, false},
		{"gcp", DomainGCP, false},
		{"google", DomainGCP, false},
		{"oracle", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDomain(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Known())
		})
	}

	assert.False(t, Domain("Oracle").Known())
}

func TestNormalizeKind(t *testing.T) {
	tests := map[string]Kind{
		"OPTIMIZATION":  KindOptimization,
		"optimisation":  KindOptimization,
		"Pricing":       KindPricing,
		"price":         KindPricing,
		"guide":         KindGuide,
		"ARCHITECTURE":  KindGuide,
		"warning":       KindWarning,
		"Risk":          KindWarning,
		"":              KindOptimization,
		"something new": KindOptimization,
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeKind(in), in)
	}
}

func TestSourceSet(t *testing.T) {
	var s SourceSet
	s.Add("https://a")
	s.Add("https://b")
	s.Add("https://a")
	s.Add("")

	assert.Equal(t, []string{"https://a", "https://b"}, s.List())
	assert.Equal(t, 2, s.Len())

	var empty SourceSet
	assert.Empty(t, empty.List())
}

func TestTileClone(t *testing.T) {
	orig := Tile{
		ID: "aws-1",
		Detail: Detail{
			Steps:        []Step{{Title: "a"}},
			PricingTable: []PricingRow{{Name: "x", Features: []string{"f"}}},
		},
	}
	c := orig.Clone()
	c.Detail.Steps[0].Title = "changed"
	c.Detail.PricingTable[0].Features[0] = "g"

	assert.Equal(t, "a", orig.Detail.Steps[0].Title)
	assert.Equal(t, "f", orig.Detail.PricingTable[0].Features[0])
}

func TestResult(t *testing.T) {
	assert.True(t, Success(1).OK())
	assert.True(t, Degraded(1, errors.New("x")).OK())
	assert.False(t, Failed[int](errors.New("x")).OK())
}

func TestNewChatTurn(t *testing.T) {
	a := NewChatTurn(ChatRoleUser, "hi")
	b := NewChatTurn(ChatRoleModel, "hello")
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, ChatRoleModel, b.Role)
}
