package mirror

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/dustin/go-humanize"

	"github.com/tomasz-wiszkowski/hubitat-backup/internal/backup"
)

// sync downloads every listed backup that is not already present locally.
// A file that exists under the same name is trusted as-is and never
// re-fetched or overwritten. Individual download failures are logged and
// collected; the remaining files still get their turn.
func (m *Mirror) sync(ctx context.Context, remote []backup.BackupFile, res *RunResult) error {
	local, err := LocalState(m.destDir)
	if err != nil {
		return err
	}

	remoteNames := mapset.NewSet[string]()
	byName := make(map[string]backup.BackupFile, len(remote))
	for _, bf := range remote {
		remoteNames.Add(bf.Name)
		byName[bf.Name] = bf
	}

	res.Skipped = remoteNames.Intersect(local).Cardinality()
	if res.Skipped > 0 {
		slog.Debug("sync", "op", "download", "status", "Skipped", "present", res.Skipped)
	}

	missing := remoteNames.Difference(local).ToSlice()
	sort.Strings(missing)

	var errs []error
	for _, name := range missing {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		size, err := m.downloadOne(ctx, byName[name])
		if err != nil {
			slog.Error("sync error", "op", "download", "status", "Error", "name", name, "error", err)
			errs = append(errs, err)
			continue
		}

		res.Downloaded++
		res.TotalBytes += size
		slog.Info("sync", "op", "download", "status", "Completed", "name", name, "size", humanize.Bytes(uint64(size)))
	}
	return errors.Join(errs...)
}

// downloadOne fetches a single backup through a temp file in the destination
// directory, then renames it into place so a killed run never leaves a
// half-written file under a valid backup name. The final file's mtime is set
// to the backup's own date, mirroring how the hub presents it.
func (m *Mirror) downloadOne(ctx context.Context, bf backup.BackupFile) (int64, error) {
	tmp, err := os.CreateTemp(m.destDir, bf.Name+".tmp-*")
	if err != nil {
		return 0, err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer func() { _ = os.Remove(tmpPath) }()

	size, err := m.hub.DownloadBackup(ctx, bf.Name, tmpPath)
	if err != nil {
		return 0, err
	}

	destPath := filepath.Join(m.destDir, bf.Name)
	if err := os.Rename(tmpPath, destPath); err != nil {
		return 0, err
	}

	if err := os.Chtimes(destPath, bf.Date, bf.Date); err != nil {
		slog.Warn("sync", "op", "timestamp", "name", bf.Name, "error", err)
	}
	return size, nil
}
