package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// HTTP server configuration
	Port      string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36" description:"User agent for upstream requests (the timeline endpoint expects a browser profile)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	// Roster configuration
	RosterFile string `long:"roster-file" env:"ROSTER_FILE" description:"YAML file overriding the built-in account roster"`

	// Upstream sources
	SyndicationURL string `long:"syndication-url" env:"SYNDICATION_URL" default:"https://syndication.twitter.com" description:"Base URL of the timeline endpoint"`
	RSSURL         string `long:"rss-url" env:"RSS_URL" default:"https://nitter.net" description:"Base URL of the RSS fallback endpoint"`

	// Fetch policy
	FetchTimeout     int `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"7" description:"Per-account fetch timeout in seconds"`
	RateLimitRetries int `long:"rate-limit-retries" env:"RATE_LIMIT_RETRIES" default:"2" description:"Additional attempts after an HTTP 429"`
	RetryBackoff     int `long:"retry-backoff" env:"RETRY_BACKOFF" default:"500" description:"Base retry backoff in milliseconds (multiplied by attempt number)"`

	// Scheduling policy
	BatchSize   int `long:"batch-size" env:"BATCH_SIZE" default:"5" description:"Accounts fetched concurrently per batch"`
	BatchPacing int `long:"batch-pacing" env:"BATCH_PACING" default:"200" description:"Pause between batches in milliseconds"`

	// Aggregation policy
	MaxEntriesPerAccount int `long:"max-entries-per-account" env:"MAX_ENTRIES_PER_ACCOUNT" default:"20" description:"Timeline entries considered per account"`
	FreshWindow          int `long:"fresh-window" env:"FRESH_WINDOW" default:"4" description:"Max post age in hours for guaranteed-fresh accounts"`
	StaleWindow          int `long:"stale-window" env:"STALE_WINDOW" default:"24" description:"Max post age in hours for all other accounts"`
	MaxPosts             int `long:"max-posts" env:"MAX_POSTS" default:"60" description:"Maximum posts in the aggregated feed"`
	PerHandleCap         int `long:"per-handle-cap" env:"PER_HANDLE_CAP" default:"0" description:"Per-account post cap before backfill (0 disables balancing)"`

	// Background refresh
	RefreshInterval int    `long:"refresh-interval" env:"REFRESH_INTERVAL" default:"900" description:"Snapshot refresh interval in seconds"`
	WorkerCount     int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background task workers"`
	DBPath          string `long:"db-path" env:"DB_PATH" default:"./signal-feed.db" description:"SQLite database path for the feed snapshot"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Port:                 raw.Port,
		UserAgent:            raw.UserAgent,
		Debug:                raw.Debug,
		RosterFile:           raw.RosterFile,
		SyndicationURL:       raw.SyndicationURL,
		RSSURL:               raw.RSSURL,
		FetchTimeout:         raw.FetchTimeout,
		RateLimitRetries:     raw.RateLimitRetries,
		RetryBackoff:         raw.RetryBackoff,
		BatchSize:            raw.BatchSize,
		BatchPacing:          raw.BatchPacing,
		MaxEntriesPerAccount: raw.MaxEntriesPerAccount,
		FreshWindow:          raw.FreshWindow,
		StaleWindow:          raw.StaleWindow,
		MaxPosts:             raw.MaxPosts,
		PerHandleCap:         raw.PerHandleCap,
		RefreshInterval:      raw.RefreshInterval,
		WorkerCount:          raw.WorkerCount,
		DBPath:               raw.DBPath,
		Version:              GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
