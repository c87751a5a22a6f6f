package cache

import "errors"

// ErrSnapshotCorruption is reported when the snapshot file exists but
// is unreadable or structurally invalid. The caller recovers by
// constructing an empty cache; this is never fatal.
var ErrSnapshotCorruption = errors.New("snapshot corruption")
