package doctor

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

const cacheCheckName = "Cache"

// CacheStalenessCheck verifies that the SQLite cache matches the tasks file
// by comparing SHA256 content hashes. It opens the cache read-only and never
// modifies any file. A stale or missing cache is a warning because every
// read rebuilds it.
type CacheStalenessCheck struct {
	Path      string
	CachePath string
}

// Run executes the cache staleness check.
func (c *CacheStalenessCheck) Run(_ context.Context) []CheckResult {
	raw, err := os.ReadFile(c.Path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return []CheckResult{{
			Name:     cacheCheckName,
			Passed:   false,
			Severity: SeverityError,
			Details:  fmt.Sprintf("tasks file unreadable: %v", err),
		}}
	}

	if _, err := os.Stat(c.CachePath); errors.Is(err, os.ErrNotExist) {
		return []CheckResult{{
			Name:       cacheCheckName,
			Passed:     false,
			Severity:   SeverityWarning,
			Details:    "cache.db not found: cache has not been built",
			Suggestion: "Run `tasktrack rebuild` to build the cache",
		}}
	}

	h := sha256.Sum256(raw)
	stored, err := queryStoredHash(c.CachePath)
	if err != nil || stored != hex.EncodeToString(h[:]) {
		return []CheckResult{{
			Name:       cacheCheckName,
			Passed:     false,
			Severity:   SeverityWarning,
			Details:    "cache.db is stale: hash mismatch between tasks file and cache",
			Suggestion: "Run `tasktrack rebuild` to refresh the cache",
		}}
	}

	return []CheckResult{{Name: cacheCheckName, Passed: true}}
}

// queryStoredHash opens the cache read-only and returns the stored file hash.
func queryStoredHash(cachePath string) (string, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", cachePath))
	if err != nil {
		return "", fmt.Errorf("failed to open cache.db: %w", err)
	}
	defer db.Close()

	var stored string
	if err := db.QueryRow("SELECT value FROM metadata WHERE key = 'file_hash'").Scan(&stored); err != nil {
		return "", fmt.Errorf("failed to query file_hash: %w", err)
	}
	return stored, nil
}
