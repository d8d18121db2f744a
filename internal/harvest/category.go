package harvest

import (
	"context"
	"go.uber.org/zap"
	"leadharvest/internal/extract"
	"leadharvest/internal/fetch"
	"leadharvest/pkg/models"
)

// Stats summarizes one category harvest.
type Stats struct {
	ProvidersTried int
	Listings       int
	Drops          map[models.DropReason]int
}

// Factory builds the extractor for a provider spec. Injected so the tests
// can substitute canned extractors.
type Factory func(models.ProviderSpec) (extract.Extractor, error)

// Harvester fills one category's quota from a region's providers. Providers
// are tried in priority order and the chain stops the moment the quota is
// met, so lower-priority providers cost nothing when the first one delivers.
type Harvester struct {
	quota   int
	fetcher fetch.Client
	build   Factory
	log     *zap.Logger
}

func NewHarvester(quota int, fetcher fetch.Client, build Factory, log *zap.Logger) *Harvester {
	if log == nil {
		log = zap.NewNop()
	}
	return &Harvester{quota: quota, fetcher: fetcher, build: build, log: log}
}

// Category runs the provider chain for one (region, category) pair. A
// provider failure is logged and the next provider takes over; the block is
// marked with a shortfall note when the chain ends under quota.
func (h *Harvester) Category(ctx context.Context, region models.Region, category string) (models.CategoryBlock, Stats) {
	h.log.Info("harvesting category",
		zap.String("region", region.Key),
		zap.String("category", category))

	set := NewDedupe()
	stats := Stats{Drops: make(map[models.DropReason]int)}

	for _, spec := range region.Providers {
		if set.Count() >= h.quota || ctx.Err() != nil {
			break
		}
		stats.ProvidersTried++

		if err := h.provider(ctx, spec, region, category, set, &stats); err != nil {
			h.log.Warn("provider failed",
				zap.String("region", region.Key),
				zap.String("category", category),
				zap.String("provider", spec.Kind.String()),
				zap.Error(err))
		}
	}

	block := models.CategoryBlock{Category: category, Records: set.Records(h.quota)}
	if len(block.Records) < h.quota {
		block.Marker = models.ShortfallText(h.quota, category)
		h.log.Warn("category under quota",
			zap.String("region", region.Key),
			zap.String("category", category),
			zap.Int("records", len(block.Records)),
			zap.Int("quota", h.quota))
	}

	h.log.Info("category done",
		zap.String("region", region.Key),
		zap.String("category", category),
		zap.Int("records", len(block.Records)),
		zap.Int("listings", stats.Listings),
		zap.Int("providers", stats.ProvidersTried))
	return block, stats
}

// provider fetches one provider's search page and feeds its listings into
// the dedupe set. The emit callback returning false is how the extractor
// learns the quota is met.
func (h *Harvester) provider(ctx context.Context, spec models.ProviderSpec, region models.Region, category string, set *Dedupe, stats *Stats) error {
	e, err := h.build(spec)
	if err != nil {
		return err
	}

	page, err := h.fetcher.Get(ctx, e.SearchURL(region, category))
	if err != nil {
		return err
	}

	return e.Extract(ctx, page, category, func(o extract.Outcome) bool {
		stats.Listings++

		reason := o.Drop
		if reason == models.DropNone {
			reason = set.Add(o.Candidate)
		}
		if reason != models.DropNone {
			stats.Drops[reason]++
			h.log.Debug("listing dropped",
				zap.String("provider", spec.Kind.String()),
				zap.String("category", category),
				zap.String("reason", reason.String()))
		}
		return set.Count() < h.quota
	})
}
