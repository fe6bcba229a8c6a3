// Package backup models the configuration snapshots a Hubitat hub exposes
// on its diagnostic endpoint and parses them out of listing pages.
package backup

import (
	"regexp"
	"time"
)

const (
	// Suffix is the fixed extension of hub backup files.
	Suffix = ".lzf"

	dateLayout = "2006-01-02"
)

// namePattern matches hub backup filenames: a calendar date, a single '~'
// separator, and an opaque version token before the fixed suffix. The version
// class excludes '~', so a matching name has exactly one separator.
var namePattern = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})~([0-9A-Za-z._-]+)` + regexp.QuoteMeta(Suffix))

// BackupFile is one snapshot taken by the hub, identified entirely by its
// filename of the form <date>~<version>.lzf.
type BackupFile struct {
	Name    string    // full filename, e.g. "2024-03-01~2.3.9.159.lzf"
	Date    time.Time // date embedded in the name, midnight UTC
	Version string    // opaque token, distinguishes same-day snapshots
}

// ParseBackupName parses name as a hub backup filename. It reports false for
// anything that does not match the pattern exactly or carries an impossible
// calendar date; such names are invisible to both sync and retention.
func ParseBackupName(name string) (BackupFile, bool) {
	m := namePattern.FindStringSubmatch(name)
	if m == nil || m[0] != name {
		return BackupFile{}, false
	}

	date, err := time.Parse(dateLayout, m[1])
	if err != nil {
		return BackupFile{}, false
	}

	return BackupFile{
		Name:    name,
		Date:    date,
		Version: m[2],
	}, true
}

// AgeDays returns the whole calendar days between the file's embedded date
// and now. Used for log output only; retention compares dates directly.
func (b BackupFile) AgeDays(now time.Time) int {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(today.Sub(b.Date).Hours() / 24)
}
