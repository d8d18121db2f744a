package main

import (
	"context"
	"fmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"io"
	"leadharvest/internal/config"
	"leadharvest/internal/export"
	"leadharvest/internal/extract"
	"leadharvest/internal/fetch"
	"leadharvest/internal/harvest"
	"leadharvest/internal/storage"
	"leadharvest/pkg/models"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
)

var rootCmd = &cobra.Command{
	Use:   "harvester",
	Short: "Collects business contact records from public directories",
	Long: `harvester walks every configured region through its category list,
pulling business listings from the region's directory providers in priority
order, validating and deduplicating them, and writing one spreadsheet per
region. Categories that come up short of the record quota are marked in the
output instead of being silently thin.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Harvest every region and write the export files",
	RunE:  runHarvest,
}

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the configured regions and their providers",
	RunE:  listRegions,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the business categories every region is walked through",
	Run: func(cmd *cobra.Command, _ []string) {
		for _, category := range config.Categories {
			cmd.Println(category)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(regionsCmd)
	rootCmd.AddCommand(categoriesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runHarvest(cmd *cobra.Command, _ []string) error {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync()

	regions, err := config.LoadRegions(cfg.RegionsFile)
	if err != nil {
		return err
	}

	// 2. Stop cleanly on Ctrl+C
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Wire the fetch side: per-host pacing, robots, rotating identity
	domains := fetch.NewDomains(cfg.HostRateEvery, cfg.RespectRobots, logger)
	fetcher := fetch.New(fetch.Options{
		Timeout:    cfg.FetchTimeout,
		DelayMin:   cfg.FetchDelayMin,
		DelayMax:   cfg.FetchDelayMax,
		UserAgents: cfg.UserAgents,
		Domains:    domains,
		Logger:     logger,
	})

	deps := extract.Deps{
		Fetcher:       fetcher,
		Emails:        extract.NewEmailHunter(fetcher, cfg.VerifyEmailMX, logger),
		FollowWebsite: cfg.FollowWebsiteEmail,
		Cap:           cfg.ListingCap,
		Log:           logger,
	}
	build := func(spec models.ProviderSpec) (extract.Extractor, error) {
		return extract.New(spec, deps)
	}

	// 4. Assemble the pipeline
	sinks, closers, err := buildSinks(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	runner := harvest.NewRunner(
		harvest.NewHarvester(cfg.Quota, fetcher, build, logger),
		harvest.RunnerOptions{
			Categories: config.Categories,
			DelayMin:   cfg.CategoryDelayMin,
			DelayMax:   cfg.CategoryDelayMax,
			Workers:    cfg.RegionWorkers,
			Sinks:      sinks,
			Log:        logger,
		})

	// 5. Run every region
	if err := runner.All(ctx, regions); err != nil {
		return err
	}

	cmd.Println("Harvest complete. Export files:")
	for _, region := range regions {
		cmd.Printf("  %s_businesses.%s\n", filepath.Join(cfg.OutputDir, region.Key), cfg.OutputFormat)
	}
	return nil
}

// buildSinks picks the file sink for the configured format, plus the run
// history database when one is configured.
func buildSinks(ctx context.Context, cfg *config.Config, logger *zap.Logger) ([]harvest.Sink, []io.Closer, error) {
	var sinks []harvest.Sink
	switch cfg.OutputFormat {
	case "xlsx":
		sinks = append(sinks, export.NewXLSX(cfg.OutputDir, logger))
	case "csv":
		sinks = append(sinks, export.NewCSV(cfg.OutputDir, logger))
	default:
		return nil, nil, fmt.Errorf("unknown OUTPUT_FORMAT %q (want xlsx or csv)", cfg.OutputFormat)
	}

	var closers []io.Closer
	if cfg.DatabaseURL != "" {
		history, err := storage.Connect(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, history)
		closers = append(closers, history)
	}
	return sinks, closers, nil
}

func listRegions(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	regions, err := config.LoadRegions(cfg.RegionsFile)
	if err != nil {
		return err
	}

	for _, region := range regions {
		cmd.Printf("%s: %s, %s\n", region.Key, region.Name, region.Country)
		for _, p := range region.Providers {
			cmd.Printf("  %d. %s (%s)\n", p.Priority, p.Kind, p.BaseURL)
		}
	}
	return nil
}
