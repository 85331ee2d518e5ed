package cfg

type Cfg struct {
	// HTTP server configuration
	Port      string
	UserAgent string
	Debug     bool

	// Roster configuration
	RosterFile string

	// Upstream sources
	SyndicationURL string
	RSSURL         string

	// Fetch policy
	FetchTimeout     int // seconds
	RateLimitRetries int
	RetryBackoff     int // milliseconds

	// Scheduling policy
	BatchSize   int
	BatchPacing int // milliseconds

	// Aggregation policy
	MaxEntriesPerAccount int
	FreshWindow          int // hours
	StaleWindow          int // hours
	MaxPosts             int
	PerHandleCap         int

	// Background refresh
	RefreshInterval int // seconds
	WorkerCount     int
	DBPath          string

	Version string
}
