package cli

import "github.com/runnerr0/webtime/internal/tracker"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// TickCommand — record visit ticks for a hostname.
type TickCommand struct {
	Host    string `long:"host" description:"Hostname to record time against (required)"`
	Favicon string `long:"favicon" description:"Favicon URL stored with the hostname"`
	Count   int    `long:"count" description:"Number of one-second ticks to record" default:"1"`

	globals *GlobalFlags
	version string
}

// TopCommand — show the leaderboard for a period.
type TopCommand struct {
	Period string `long:"period" description:"Leaderboard period" choice:"today" choice:"yesterday" choice:"month" choice:"last-month" default:"today"`
	Month  string `long:"month" description:"Explicit month key (1-12), only with --period month"`

	globals *GlobalFlags
	version string
}

// SummaryCommand — render the full overview: totals, leaderboards, histograms.
type SummaryCommand struct {
	globals *GlobalFlags
	version string
}

// StatusCommand — show store health, storage usage, and daemon reachability.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// ServeCommand — run the local tick-ingest daemon in the foreground.
type ServeCommand struct {
	Port int `long:"port" description:"Override daemon port"`

	globals *GlobalFlags
	version string
}

// PurgeCommand — delete ALL recorded time data with safety confirmation.
type PurgeCommand struct {
	All   bool `long:"all" description:"Required flag to confirm purge intent"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
	store   *tracker.Store // injectable for testing; nil means open default store
}
