package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"log"
	"os"
	"time"
)

type Config struct {
	// Quota maps to QUOTA: validated records required per (region, category)
	// before no further providers are consulted.
	Quota int `envconfig:"QUOTA" default:"10"`

	// ListingCap maps to LISTING_CAP: listings examined per result page.
	// A small multiple of the quota bounds extraction work per page.
	ListingCap int `envconfig:"LISTING_CAP" default:"15"`

	// FetchTimeout maps to FETCH_TIMEOUT. Durations parse directly!
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"10s"`

	// Politeness window before every page fetch.
	FetchDelayMin time.Duration `envconfig:"FETCH_DELAY_MIN" default:"1s"`
	FetchDelayMax time.Duration `envconfig:"FETCH_DELAY_MAX" default:"3s"`

	// Pacing window between categories. Distinct from the per-fetch delay.
	CategoryDelayMin time.Duration `envconfig:"CATEGORY_DELAY_MIN" default:"2s"`
	CategoryDelayMax time.Duration `envconfig:"CATEGORY_DELAY_MAX" default:"4s"`

	// FollowWebsiteEmail controls the extra fetch of a listing's own website
	// when its card shows no email. Multiplies fetch volume when on.
	FollowWebsiteEmail bool `envconfig:"FOLLOW_WEBSITE_EMAIL" default:"true"`

	// VerifyEmailMX gates extracted emails on an MX lookup of their domain.
	VerifyEmailMX bool `envconfig:"VERIFY_EMAIL_MX" default:"false"`

	// RespectRobots maps to RESPECT_ROBOTS.
	RespectRobots bool `envconfig:"RESPECT_ROBOTS" default:"true"`

	// HostRateEvery maps to HOST_RATE_EVERY: minimum spacing between
	// requests against one host, on top of the random delay.
	HostRateEvery time.Duration `envconfig:"HOST_RATE_EVERY" default:"1s"`

	// RegionWorkers maps to REGION_WORKERS. 1 keeps the strictly sequential
	// default; higher values harvest whole regions concurrently.
	RegionWorkers int `envconfig:"REGION_WORKERS" default:"1"`

	// UserAgents maps to USER_AGENTS (comma separated). Empty keeps the
	// built-in desktop pool.
	UserAgents []string `envconfig:"USER_AGENTS"`

	OutputDir    string `envconfig:"OUTPUT_DIR" default:"."`
	OutputFormat string `envconfig:"OUTPUT_FORMAT" default:"xlsx"`

	// RegionsFile maps to REGIONS_FILE: optional YAML file replacing the
	// built-in region table.
	RegionsFile string `envconfig:"REGIONS_FILE"`

	// DatabaseURL maps to DB_URL. Optional: when set, finished runs are
	// also recorded in Postgres.
	DatabaseURL string `envconfig:"DB_URL"`
}

// Load processes environment variables and populates the Config struct.
func Load() (*Config, error) {
	// 1. Try to load .env file (if it exists)
	// We don't panic here because in Production (Docker/K8s),
	// there often is no .env file (vars are injected directly).
	if err := godotenv.Load(); err != nil {
		// Only log if the file actually exists but failed to load.
		// If it's missing, we assume we're in Prod.
		if _, statErr := os.Stat(".env"); statErr == nil {
			log.Printf("Warning: .env file found but could not be loaded: %v", err)
		}
	}

	// 2. Process Environment Variables (System + Loaded from .env)
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
