package cli

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/runnerr0/webtime/internal/storage"
	"github.com/runnerr0/webtime/internal/tracker"
)

// setStore allows tests to inject a tracker store.
func (c *PurgeCommand) setStore(store *tracker.Store) {
	c.store = store
}

// Execute implements the go-flags Commander interface for PurgeCommand.
func (c *PurgeCommand) Execute(args []string) error {
	if !c.All {
		return fmt.Errorf("purge requires --all flag for safety")
	}

	// Confirmation prompt unless --force
	if !c.Force {
		fmt.Println("⚠ WARNING: This will permanently delete ALL recorded time data.")
		fmt.Println("  - Every hostname's counters")
		fmt.Println("  - All calendar and week histograms")
		fmt.Println()
		fmt.Println("This action cannot be undone.")
		fmt.Println()
		fmt.Print(`Type "PURGE" to confirm: `)

		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			return fmt.Errorf("aborted: no input received")
		}
		input := strings.TrimSpace(scanner.Text())
		if input != "PURGE" {
			return fmt.Errorf("aborted: confirmation text did not match")
		}
	}

	// Open or use injected store
	store := c.store
	if store == nil {
		cfg, err := loadConfig(c.globals)
		if err != nil {
			return err
		}

		var kv storage.KV
		var db *sql.DB
		store, kv, db, err = openStore(cfg)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer db.Close()
		defer kv.Close()
	}

	if err := store.Purge(context.Background()); err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		out := map[string]interface{}{
			"purged":  true,
			"message": "all recorded time deleted",
		}
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(out)
	}

	fmt.Println("Purged all recorded time. webtime is empty.")
	return nil
}
