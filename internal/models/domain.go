// internal/models/domain.go
package models

import (
	"fmt"
	"strings"
)

// Domain is the cloud provider a scenario is about.
type Domain string

const (
	DomainAWS   Domain = "AWS"
	DomainAzure Domain = "Azure"
	DomainGCP   Domain = "GCP"
)

const (
	TileCount = 5
	TaskCount = 3
)

// ParseDomain accepts provider names case-insensitively, plus the vendor
// aliases amazon, microsoft and google.
func ParseDomain(s string) (Domain, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "aws", "amazon", "amazon web services":
		return DomainAWS, nil
	case "azure", "microsoft", "microsoft azure":
		return DomainAzure, nil
	case "gcp", "google", "google cloud":
		return DomainGCP, nil
	default:
		return "", fmt.Errorf("unknown cloud provider %q", s)
	}
}

func (d Domain) String() string {
	return string(d)
}

// Known reports whether d is one of the three supported providers.
func (d Domain) Known() bool {
	switch d {
	case DomainAWS, DomainAzure, DomainGCP:
		return true
	}
	return false
}
