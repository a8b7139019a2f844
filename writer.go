package scout

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/elasticchain/scout/types"
)

// versionedTimestampLayout is compact ISO-8601 basic, always UTC.
const versionedTimestampLayout = "20060102T150405Z"

// WriteSnapshot persists the snapshot atomically: it serializes into a
// temporary file inside the destination directory and renames it onto the
// destination path, so a concurrent reader sees either the previous complete
// file or the new one, never a truncated write. The rename does not protect
// two unversioned writer instances racing for the same path; versioned mode
// exists for that.
//
// In versioned mode the filename gains a UTC timestamp before the extension
// and an existing file at the resolved name is never overwritten.
//
// The resolved destination path is returned.
func WriteSnapshot(snap *types.Snapshot, path string, versioned bool) (string, error) {
	if versioned {
		path = versionedPath(path, time.Now().UTC())
		if _, err := os.Stat(path); err == nil {
			return "", &SnapshotWriteError{Path: path, Err: &VersionedOutputExistsError{Path: path}}
		}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", &SnapshotWriteError{Path: path, Err: err}
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &SnapshotWriteError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return "", &SnapshotWriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if err := writeAndClose(tmp, data); err != nil {
		_ = os.Remove(tmpName)

		return "", &SnapshotWriteError{Path: path, Err: err}
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)

		return "", &SnapshotWriteError{Path: path, Err: err}
	}

	return path, nil
}

func writeAndClose(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		_ = f.Close()

		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()

		return err
	}
	if err := f.Chmod(0o644); err != nil {
		_ = f.Close()

		return err
	}

	return f.Close()
}

// versionedPath inserts the run timestamp before the extension:
// data/output.json becomes data/output-20240131T120000Z.json.
func versionedPath(path string, now time.Time) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)

	return fmt.Sprintf("%s-%s%s", base, now.Format(versionedTimestampLayout), ext)
}
