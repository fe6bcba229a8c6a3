package mirror

import (
	"fmt"
	"os"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/tomasz-wiszkowski/hubitat-backup/internal/backup"
)

// LocalState scans dir and returns the names of the backup files already
// present. Only regular files with well-formed backup names count; anything
// else in the directory is invisible to the sync step.
func LocalState(dir string) (mapset.Set[string], error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read destination: %w", err)
	}

	names := mapset.NewSet[string]()
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if _, ok := backup.ParseBackupName(entry.Name()); ok {
			names.Add(entry.Name())
		}
	}
	return names, nil
}
