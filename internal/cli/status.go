package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/runnerr0/webtime/internal/config"
	"github.com/runnerr0/webtime/internal/report"
	"github.com/runnerr0/webtime/internal/storage"
	"github.com/runnerr0/webtime/internal/tracker"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version        string  `json:"version"`
	StoreName      string  `json:"store_name"`
	DatabasePath   string  `json:"database_path"`
	Hostnames      int     `json:"hostnames"`
	AllTimeSeconds int64   `json:"all_time_seconds"`
	AllTime        string  `json:"all_time"`
	BytesInUse     int64   `json:"bytes_in_use"`
	QuotaBytes     int64   `json:"quota_bytes"`
	QuotaFraction  float64 `json:"quota_fraction"`
	DaemonRunning  bool    `json:"daemon_running"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}

	store, kv, db, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()
	defer kv.Close()

	return c.executeWithStore(cfg, store)
}

// executeWithStore runs status against a provided store (used by tests).
func (c *StatusCommand) executeWithStore(cfg *config.Config, store *tracker.Store) error {
	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return err
	}

	size, err := store.BytesInUse(context.Background())
	if err != nil {
		size = 0
	}

	out := statusJSON{
		Version:        c.version,
		StoreName:      store.Name(),
		DatabasePath:   dbPath,
		Hostnames:      store.HostnameCount(),
		AllTimeSeconds: store.AllTimeSeconds(),
		AllTime:        report.FormatDuration(store.AllTimeSeconds()),
		BytesInUse:     size,
		QuotaBytes:     storage.QuotaBytes,
		QuotaFraction:  float64(size) / float64(storage.QuotaBytes),
		DaemonRunning:  checkDaemon(cfg),
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Println("webtime Status")
	fmt.Println("==============")
	fmt.Printf("Version:    %s\n", out.Version)
	fmt.Printf("Store:      %s\n", out.StoreName)
	fmt.Printf("Database:   %s\n", out.DatabasePath)
	fmt.Printf("Hostnames:  %s\n", formatNumber(int64(out.Hostnames)))
	fmt.Printf("All time:   %s\n", out.AllTime)
	fmt.Printf("Storage:    %s of %s (%.1f%%)\n",
		formatBytes(out.BytesInUse), formatBytes(out.QuotaBytes), out.QuotaFraction*100)

	if out.DaemonRunning {
		fmt.Println("Daemon:     running")
	} else {
		fmt.Println("Daemon:     not running")
	}

	return nil
}

// checkDaemon attempts an HTTP GET against the configured daemon endpoint.
// Returns true if the daemon responds within 1 second.
func checkDaemon(cfg *config.Config) bool {
	client := &http.Client{Timeout: 1 * time.Second}
	url := fmt.Sprintf("http://%s:%d/status", cfg.Daemon.Host, cfg.Daemon.Port)
	resp, err := client.Get(url)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
