// internal/workers/cost-analysis/fallback-insights/fallback.go
package fallbackinsights

import (
	"fmt"
	"strings"

	"costli-agents/internal/models"
)

type seed struct {
	id, title, headline, rationale string
	kind                           models.Kind
}

var domainSeeds = map[models.Domain][]seed{
	models.DomainAWS: {
		{"aws-1", "Compute", "Rightsize EC2 Instances", "20-30% of instances are typically over-provisioned.", models.KindOptimization},
		{"aws-2", "Storage", "Enable S3 Intelligent-Tiering", "Automatically move rarely accessed data to cheaper tiers.", models.KindOptimization},
		{"aws-3", "Database", "Pause Idle RDS Instances", "Dev/Test databases often run 24/7 unnecessarily.", models.KindOptimization},
		{"aws-4", "Pricing", "Purchase Compute Savings Plans", "Commit to consistent usage for up to 66% discount.", models.KindPricing},
		{"aws-5", "Networking", "Use CloudFront for Egress", "Data transfer out via CDN is cheaper than direct EC2 egress.", models.KindGuide},
	},
	models.DomainAzure: {
		{"az-1", "Compute", "Use Azure Hybrid Benefit", "Reuse on-premise Windows/SQL licenses to save up to 40%.", models.KindPricing},
		{"az-2", "Storage", "Delete Unattached Managed Disks", "Disks persist and charge even after VMs are deleted.", models.KindWarning},
		{"az-3", "Database", "Switch to Azure SQL Serverless", "Auto-pause compute during inactive periods.", models.KindOptimization},
		{"az-4", "Spot", "Deploy Spot VMs for Batch Jobs", "Use unused capacity for up to 90% savings.", models.KindOptimization},
		{"az-5", "Governance", "Apply Management Groups", "Enforce tagging and budget policies hierarchically.", models.KindGuide},
	},
	models.DomainGCP: {
		{"gcp-1", "Compute", "Stop Idle VM Instances", "GCP can recommend stopping instances with low utilization.", models.KindOptimization},
		{"gcp-2", "Discounts", "Leverage Sustained Use Discounts", "Automatic discounts for running instances significantly.", models.KindPricing},
		{"gcp-3", "Storage", "Set Object Lifecycle Policies", "Transition Coldline/Archive storage automatically.", models.KindOptimization},
		{"gcp-4", "Kubernetes", "Enable GKE Autopilot", "Pay only for the pods you run, not the nodes.", models.KindOptimization},
		{"gcp-5", "BigQuery", "Use Slot Reservations", "Switch from on-demand to flat-rate for predictable high-volume workloads.", models.KindPricing},
	},
}

func genericSeeds(d models.Domain) []seed {
	prefix := strings.ToLower(string(d))
	return []seed{
		{prefix + "-fallback-1", "Compute", fmt.Sprintf("Rightsize overprovisioned %s compute", d),
			"Overprovisioned compute is a common cost driver and typically offers immediate optimization opportunity.", models.KindOptimization},
		{prefix + "-fallback-2", "Pricing", fmt.Sprintf("Use commitment discounts for steady %s workloads", d),
			"Commitment-based pricing can materially reduce effective unit costs versus on-demand usage.", models.KindPricing},
		{prefix + "-fallback-3", "Storage", fmt.Sprintf("Move infrequently accessed data to cheaper %s tiers", d),
			"Lifecycle policies and colder storage tiers reduce recurring storage spend without architecture changes.", models.KindOptimization},
		{prefix + "-fallback-4", "Governance", "Enable budget alerts and anomaly detection",
			"Continuous spend monitoring detects regressions early and prevents surprise cost spikes.", models.KindGuide},
		{prefix + "-fallback-5", "Risk", "Audit idle resources and unattached assets",
			"Unused resources and orphaned storage regularly create hidden spend with no production value.", models.KindWarning},
	}
}

// detail is shared by every fallback tile.
func detail(d models.Domain) models.Detail {
	return models.Detail{
		Steps: []models.Step{
			{Title: "Baseline spend", Description: fmt.Sprintf("Open %s cost tooling and identify top services by spend over the last 30 days.", d)},
			{Title: "Apply one low-risk optimization", Description: "Start with a single high-impact change and validate results before broader rollout."},
			{Title: "Track realized savings", Description: "Compare post-change spend and usage metrics to confirm measurable cost reduction."},
		},
		TechnicalDetails: "Fallback insights shown because live agent analysis failed. Check API keys and network access for the LLM and search providers.",
	}
}

// For returns a fresh set of exactly five tiles for d. It never does I/O
// and callers may mutate the result.
func For(d models.Domain) []models.Tile {
	seeds, ok := domainSeeds[d]
	if !ok {
		seeds = genericSeeds(d)
	}

	tiles := make([]models.Tile, 0, len(seeds))
	for _, s := range seeds {
		tiles = append(tiles, models.Tile{
			ID:        s.id,
			Title:     s.title,
			Headline:  s.headline,
			Rationale: s.rationale,
			Type:      s.kind,
			Detail:    detail(d),
		})
	}
	return tiles
}
