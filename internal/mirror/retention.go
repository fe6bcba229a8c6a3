package mirror

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/tomasz-wiszkowski/hubitat-backup/internal/backup"
)

// pruneCutoff returns the oldest date (inclusive) a backup may carry and
// still be kept. Dates compare in UTC at day granularity, so the wall-clock
// time and local zone of the run never shift which files qualify.
func pruneCutoff(now time.Time, maxAgeDays int) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -maxAgeDays)
}

// Prune deletes backup files strictly older than maxAgeDays, judged by the
// date embedded in the filename. A file exactly maxAgeDays old stays.
// Files that do not parse as backup names are never touched. Returns the
// number of files removed; failed removals are collected, not fatal.
func Prune(destDir string, maxAgeDays int, now time.Time) (int, error) {
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return 0, fmt.Errorf("read destination: %w", err)
	}

	cutoff := pruneCutoff(now, maxAgeDays)

	var pruned int
	var errs []error
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		bf, ok := backup.ParseBackupName(entry.Name())
		if !ok {
			continue
		}
		if !bf.Date.Before(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(destDir, entry.Name())); err != nil {
			slog.Error("prune error", "op", "delete", "name", entry.Name(), "error", err)
			errs = append(errs, err)
			continue
		}
		pruned++
		slog.Info("prune", "op", "delete", "name", entry.Name(), "age_days", bf.AgeDays(now))
	}
	return pruned, errors.Join(errs...)
}
