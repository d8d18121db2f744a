package harvest

import (
	"context"
	"fmt"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"leadharvest/internal/fetch"
	"leadharvest/pkg/models"
	"time"
)

// Sink receives one region's flattened export rows.
type Sink interface {
	Export(regionKey string, rows [][]string) error
}

// CategoryHarvester is the per-category unit the runner drives.
type CategoryHarvester interface {
	Category(ctx context.Context, region models.Region, category string) (models.CategoryBlock, Stats)
}

// RunnerOptions configures the region runner.
type RunnerOptions struct {
	Categories []string

	// DelayMin and DelayMax bound the politeness pause between categories.
	DelayMin time.Duration
	DelayMax time.Duration
	Delay    fetch.Delay

	// Workers caps how many regions run at once. 1, the default, keeps the
	// strictly sequential behavior.
	Workers int

	Sinks []Sink
	Log   *zap.Logger
}

func (o RunnerOptions) withDefaults() RunnerOptions {
	if o.DelayMin <= 0 {
		o.DelayMin = 2 * time.Second
	}
	if o.DelayMax < o.DelayMin {
		o.DelayMax = o.DelayMin + 2*time.Second
	}
	if o.Delay == nil {
		o.Delay = fetch.NewRandomDelay(nil)
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	return o
}

// Runner walks regions through every category and hands the flattened
// results to its sinks. One region failing, even by panic, never takes the
// others down.
type Runner struct {
	harvester CategoryHarvester
	opts      RunnerOptions
}

func NewRunner(h CategoryHarvester, opts RunnerOptions) *Runner {
	return &Runner{harvester: h, opts: opts.withDefaults()}
}

// Region harvests every category for one region, in declaration order, with
// a politeness pause between consecutive categories.
func (r *Runner) Region(ctx context.Context, region models.Region) (result models.HarvestResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("region %s panicked: %v", region.Key, p)
		}
	}()

	r.opts.Log.Info("starting region",
		zap.String("region", region.Key),
		zap.String("name", region.Name),
		zap.String("country", region.Country))

	result.RegionKey = region.Key
	for i, category := range r.opts.Categories {
		if i > 0 {
			if werr := r.opts.Delay.Wait(ctx, r.opts.DelayMin, r.opts.DelayMax); werr != nil {
				return result, werr
			}
		}
		block, _ := r.harvester.Category(ctx, region, category)
		result.Blocks = append(result.Blocks, block)
	}

	r.opts.Log.Info("region complete",
		zap.String("region", region.Key),
		zap.Int("records", result.RecordCount()),
		zap.Int("categories", len(result.Blocks)))
	return result, nil
}

// All runs every region and reports how many failed. Workers=1 processes
// them strictly in declaration order; higher values fan out whole regions,
// never single providers, so per-host pacing inside a region stays intact.
func (r *Runner) All(ctx context.Context, regions []models.Region) error {
	g := new(errgroup.Group)
	g.SetLimit(r.opts.Workers)

	errs := make([]error, len(regions))
	for i, region := range regions {
		g.Go(func() error {
			errs[i] = r.runOne(ctx, region)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}

	r.opts.Log.Info("run complete",
		zap.Int("regions", len(regions)),
		zap.Int("failed", failed))
	if failed > 0 {
		return fmt.Errorf("%d of %d regions failed", failed, len(regions))
	}
	return nil
}

// runOne walks one region and exports it. A region that fails partway
// still has its already-gathered rows exported; the failure is reported
// either way.
func (r *Runner) runOne(ctx context.Context, region models.Region) error {
	result, err := r.Region(ctx, region)
	if err == nil {
		return r.export(result)
	}
	r.opts.Log.Error("region failed",
		zap.String("region", region.Key),
		zap.Error(err))
	if len(result.Rows()) > 0 {
		_ = r.export(result)
	}
	return err
}

// export pushes the region's rows through every sink. Shortfall marker rows
// count as content; a region is only skipped when it produced nothing at
// all.
func (r *Runner) export(result models.HarvestResult) error {
	rows := result.Rows()
	if len(rows) == 0 {
		r.opts.Log.Warn("no rows to export", zap.String("region", result.RegionKey))
		return nil
	}

	for _, sink := range r.opts.Sinks {
		if err := sink.Export(result.RegionKey, rows); err != nil {
			r.opts.Log.Error("export failed",
				zap.String("region", result.RegionKey),
				zap.Error(err))
			return fmt.Errorf("export region %s: %w", result.RegionKey, err)
		}
	}
	return nil
}
