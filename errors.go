package scout

import "fmt"

// SnapshotWriteError is the only fatal failure of a scan run: the assembled
// snapshot could not be persisted.
type SnapshotWriteError struct {
	Path string
	Err  error
}

func (e *SnapshotWriteError) Error() string {
	return fmt.Sprintf("write snapshot to %s: %v", e.Path, e.Err)
}

func (e *SnapshotWriteError) Unwrap() error {
	return e.Err
}

// VersionedOutputExistsError is returned when a versioned-output run resolves
// to a filename that already exists. Overwriting silently would destroy an
// earlier run's output, so the collision is surfaced instead.
type VersionedOutputExistsError struct {
	Path string
}

func (e *VersionedOutputExistsError) Error() string {
	return fmt.Sprintf("versioned output %s already exists, refusing to overwrite", e.Path)
}
