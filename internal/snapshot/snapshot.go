// Package snapshot tracks the last observed state of every candidate file.
package snapshot

import (
	"cmp"
	"iter"
	"slices"
	"time"
)

// Snapshot is the record kept for a tracked path.
type Snapshot struct {
	Path         string
	FirstSeen    time.Time
	LastModified time.Time
	LastChecked  time.Time
	// ChangedAt is when the watcher last saw LastModified move.
	ChangedAt time.Time
	Size      int64
	Inode     uint64
	// Misses counts consecutive scans the path was absent from.
	Misses int
}

// Observation classifies what Observe learned about a path.
type Observation int

const (
	// New means the path was not tracked before.
	New Observation = iota
	// Unchanged means the modification time matches the stored one.
	Unchanged
	// Changed means the file was touched again since the last scan.
	Changed
	// Anomaly means the modification time moved backwards or the file was
	// replaced under the same name. It resets maturity like Changed.
	Anomaly
)

func (o Observation) String() string {
	switch o {
	case New:
		return "new"
	case Unchanged:
		return "unchanged"
	case Changed:
		return "changed"
	case Anomaly:
		return "anomaly"
	default:
		return "unknown"
	}
}

// Resets reports whether the observation restarts the maturity clock.
func (o Observation) Resets() bool {
	return o != Unchanged
}

// Store maps paths to snapshots. It is owned by one watch invocation and is
// not safe for concurrent use.
type Store struct {
	snaps map[string]*Snapshot
}

func NewStore() *Store {
	return &Store{snaps: map[string]*Snapshot{}}
}

// Observe records the current state of path as seen at now.
func (s *Store) Observe(path string, st FileState, now time.Time) Observation {
	snap, ok := s.snaps[path]
	if !ok {
		s.snaps[path] = &Snapshot{
			Path:         path,
			FirstSeen:    now,
			LastModified: st.ModTime,
			LastChecked:  now,
			ChangedAt:    now,
			Size:         st.Size,
			Inode:        st.Inode,
		}
		return New
	}

	snap.LastChecked = now
	snap.Misses = 0

	obs := Unchanged
	switch {
	case st.Inode != 0 && snap.Inode != 0 && st.Inode != snap.Inode:
		obs = Anomaly
	case st.ModTime.Before(snap.LastModified):
		obs = Anomaly
	case !st.ModTime.Equal(snap.LastModified) || st.Size != snap.Size:
		obs = Changed
	}

	if obs != Unchanged {
		snap.LastModified = st.ModTime
		snap.ChangedAt = now
		snap.Size = st.Size
		snap.Inode = st.Inode
	}
	return obs
}

// MarkMissing bumps the miss counter of every tracked path not in present.
// Paths absent from two consecutive scans are dropped and returned.
func (s *Store) MarkMissing(present map[string]struct{}) []string {
	var gone []string
	for path, snap := range s.snaps {
		if _, ok := present[path]; ok {
			continue
		}
		snap.Misses++
		if snap.Misses >= 2 {
			gone = append(gone, path)
		}
	}
	for _, path := range gone {
		delete(s.snaps, path)
	}
	slices.Sort(gone)
	return gone
}

// Get returns a copy of the snapshot for path.
func (s *Store) Get(path string) (Snapshot, bool) {
	snap, ok := s.snaps[path]
	if !ok {
		return Snapshot{}, false
	}
	return *snap, true
}

// Remove drops path.
func (s *Store) Remove(path string) {
	delete(s.snaps, path)
}

func (s *Store) Len() int {
	return len(s.snaps)
}

// All yields copies of every snapshot ordered by first-seen time, then path.
// The order is fixed when iteration starts; a fresh call sees later changes.
func (s *Store) All() iter.Seq2[string, Snapshot] {
	return func(yield func(string, Snapshot) bool) {
		snaps := make([]Snapshot, 0, len(s.snaps))
		for _, snap := range s.snaps {
			snaps = append(snaps, *snap)
		}
		slices.SortFunc(snaps, Compare)

		for _, snap := range snaps {
			if !yield(snap.Path, snap) {
				return
			}
		}
	}
}

// Compare orders snapshots by first-seen time, then by path.
func Compare(a, b Snapshot) int {
	if c := a.FirstSeen.Compare(b.FirstSeen); c != 0 {
		return c
	}
	return cmp.Compare(a.Path, b.Path)
}
