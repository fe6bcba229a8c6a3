package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tomasz-wiszkowski/hubitat-backup/internal/backup"
	"github.com/tomasz-wiszkowski/hubitat-backup/internal/utils"
)

// DefaultMaxAgeDays is the retention window applied when the user does not
// pick one.
const DefaultMaxAgeDays = 90

// ErrNoBackups means the hub listing contained no recognizable backup files.
// Usually the hub simply has backups disabled.
var ErrNoBackups = errors.New("no backup files in the hub listing")

// HubClient is the slice of the diagnostic service client the mirror needs.
type HubClient interface {
	Login(ctx context.Context) error
	ListBackups(ctx context.Context) ([]byte, error)
	DownloadBackup(ctx context.Context, name, destPath string) (int64, error)
}

// Options tune a mirror run.
type Options struct {
	// MaxAgeDays is the retention window. Files strictly older are deleted
	// after the sync step. Must be >= 0; zero keeps only files dated today.
	MaxAgeDays int

	// DirLock guards the destination against a second instance running on
	// it at the same time.
	DirLock bool
}

// RunResult summarizes what one run did.
type RunResult struct {
	Listed     int   // backup files in the hub listing
	Downloaded int   // files fetched this run
	Skipped    int   // files already present locally
	Pruned     int   // files removed by the retention sweep
	TotalBytes int64 // bytes downloaded this run
}

// Mirror keeps a destination directory in sync with the backups a hub offers
// and applies the retention window. It holds no state between runs; the
// directory contents are the only record.
type Mirror struct {
	hub     HubClient
	destDir string
	opts    Options
}

func New(hub HubClient, destDir string, opts Options) *Mirror {
	return &Mirror{
		hub:     hub,
		destDir: destDir,
		opts:    opts,
	}
}

// Run executes one full pass: login, fetch and parse the listing, download
// missing files, then sweep out-of-window files. Download failures do not
// stop the remaining files or the sweep; everything that went wrong is
// folded into the returned error. Login and listing failures abort the run
// before anything is touched.
func (m *Mirror) Run(ctx context.Context) (*RunResult, error) {
	if err := utils.EnsureDir(m.destDir); err != nil {
		return nil, fmt.Errorf("create destination %s: %w", m.destDir, err)
	}
	if !utils.IsWritable(m.destDir) {
		return nil, fmt.Errorf("destination %s is not writable", m.destDir)
	}

	if m.opts.DirLock {
		lock := NewDirLock(m.destDir)
		if err := lock.Lock(); err != nil {
			return nil, err
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				slog.Warn("unlock destination", "error", err)
			}
		}()
	}

	if err := m.hub.Login(ctx); err != nil {
		return nil, err
	}

	body, err := m.hub.ListBackups(ctx)
	if err != nil {
		return nil, err
	}
	remote := backup.ParseListing(body)
	if len(remote) == 0 {
		return nil, ErrNoBackups
	}
	slog.Info("hub listing", "backups", len(remote))

	res := &RunResult{Listed: len(remote)}
	syncErr := m.sync(ctx, remote, res)

	pruned, pruneErr := Prune(m.destDir, m.opts.MaxAgeDays, time.Now())
	res.Pruned = pruned

	return res, errors.Join(syncErr, pruneErr)
}
